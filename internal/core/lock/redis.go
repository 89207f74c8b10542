package lock

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// 只有持有者（token 匹配）才能删除
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// Redis 跨实例的作用域锁（SET NX PX），ttl 防止持有者崩溃后死锁
type Redis struct {
	RDB    *redis.Client
	Prefix string
	TTL    time.Duration
	Retry  time.Duration
}

func NewRedis(addr, pass string, db int, ttl, retry time.Duration) *Redis {
	if ttl <= 0 {
		ttl = 5 * time.Second
	}
	if retry <= 0 {
		retry = 25 * time.Millisecond
	}
	return &Redis{
		RDB:    redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db}),
		Prefix: "studybuddy:lock:",
		TTL:    ttl,
		Retry:  retry,
	}
}

func (r *Redis) Lock(ctx context.Context, key string) (func(), error) {
	k := r.Prefix + key
	token := uuid.NewString()
	t := time.NewTicker(r.Retry)
	defer t.Stop()
	for {
		ok, err := r.RDB.SetNX(ctx, k, token, r.TTL).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return nil, err
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-t.C:
		}
	}
	return func() {
		// 释放不跟随请求 ctx：请求超时后也要尽量归还
		c, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = releaseScript.Run(c, r.RDB, []string{k}, token).Err()
	}, nil
}

func (r *Redis) Ping(ctx context.Context) error { return r.RDB.Ping(ctx).Err() }

func (r *Redis) Close() error { return r.RDB.Close() }
