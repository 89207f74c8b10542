// Package lock 作用域锁：把"检查 + 写入"串成一个原子步骤
package lock

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
)

// Locker 按 key 互斥；返回的 unlock 必须调用且只调用一次
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// Do 持锁执行 fn
func Do(ctx context.Context, l Locker, key string, fn func() error) error {
	unlock, err := l.Lock(ctx, key)
	if err != nil {
		return err
	}
	defer unlock()
	return fn()
}

// DoAll 同时持有多个 key；排序去重后依次加锁，保证全局一致的加锁顺序
func DoAll(ctx context.Context, l Locker, keys []string, fn func() error) error {
	ks := slices.Clone(keys)
	slices.Sort(ks)
	ks = slices.Compact(ks)

	unlocks := make([]func(), 0, len(ks))
	defer func() {
		for i := len(unlocks) - 1; i >= 0; i-- {
			unlocks[i]()
		}
	}()
	for _, k := range ks {
		if k == "" {
			continue
		}
		u, err := l.Lock(ctx, k)
		if err != nil {
			return err
		}
		unlocks = append(unlocks, u)
	}
	return fn()
}

// ErrScopeChanged 锁内重读发现需要的 key 不在已持有的集合中
var ErrScopeChanged = errors.New("lock scope changed")

// maxScopeAttempts 作用域连续变化时的最大尝试次数
const maxScopeAttempts = 3

// DoScoped 由 keys 预读计算作用域并加锁；fn 返回 ErrScopeChanged 时重新预读再试
func DoScoped(ctx context.Context, l Locker, keys func() ([]string, error), fn func(held []string) error) error {
	for i := 0; i < maxScopeAttempts; i++ {
		ks, err := keys()
		if err != nil {
			return err
		}
		err = DoAll(ctx, l, ks, func() error { return fn(ks) })
		if !errors.Is(err, ErrScopeChanged) {
			return err
		}
	}
	return fmt.Errorf("gave up after %d attempts: %w", maxScopeAttempts, ErrScopeChanged)
}

// Covers need 中的每个 key 都已持有
func Covers(held, need []string) bool {
	for _, k := range need {
		if k != "" && !slices.Contains(held, k) {
			return false
		}
	}
	return true
}

// Local 进程内按 key 的互斥锁，空闲 key 会被回收
type Local struct {
	mu    sync.Mutex
	slots map[string]*slot
}

type slot struct {
	ch   chan struct{} // 容量 1 的令牌，便于配合 ctx 取消
	refs int
}

func NewLocal() *Local { return &Local{slots: make(map[string]*slot)} }

func (l *Local) Lock(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	s, ok := l.slots[key]
	if !ok {
		s = &slot{ch: make(chan struct{}, 1)}
		l.slots[key] = s
	}
	s.refs++
	l.mu.Unlock()

	select {
	case s.ch <- struct{}{}:
	case <-ctx.Done():
		l.release(key, s)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-s.ch
			l.release(key, s)
		})
	}, nil
}

func (l *Local) release(key string, s *slot) {
	l.mu.Lock()
	s.refs--
	if s.refs == 0 {
		delete(l.slots, key)
	}
	l.mu.Unlock()
}

// size 测试用
func (l *Local) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.slots)
}
