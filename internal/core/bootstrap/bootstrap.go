// Package bootstrap 按配置组装日志、存储、锁、事件与服务，供 cmd/api 与 cmd/admin 共用
package bootstrap

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"studybuddy/internal/core/config"
	"studybuddy/internal/core/database"
	"studybuddy/internal/core/events"
	"studybuddy/internal/core/lock"
	"studybuddy/internal/core/logger"
	"studybuddy/internal/repo"
	"studybuddy/internal/service"
)

func NewLogger(c config.Log) (*zap.Logger, func()) {
	if c.Rotate.Enable {
		return logger.NewWithRotate(c.Level, c.JSON, c.Rotate.Filename,
			c.Rotate.MaxSizeMB, c.Rotate.MaxBackups, c.Rotate.MaxAgeDays, c.Rotate.Compress)
	}
	return logger.New(c.Level, c.JSON)
}

// App 组装结果；Close 按逆序释放外部连接
type App struct {
	Services *service.Services
	closers  []func()
}

func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func Build(ctx context.Context, cfg *config.Config, l *zap.Logger) (*App, error) {
	a := &App{}
	ok := false
	defer func() {
		if !ok {
			a.Close()
		}
	}()

	set, err := a.openStore(ctx, cfg, l)
	if err != nil {
		return nil, err
	}

	var locker lock.Locker = lock.NewLocal()
	if cfg.Redis.Addr != "" {
		rl := lock.NewRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Lock.TTL(), cfg.Lock.Retry())
		if err := rl.Ping(ctx); err != nil {
			_ = rl.Close()
			return nil, fmt.Errorf("redis ping: %w", err)
		}
		a.closers = append(a.closers, func() { _ = rl.Close() })
		locker = rl
		l.Info("scope lock: redis", zap.String("addr", cfg.Redis.Addr))
	} else {
		l.Info("scope lock: in-process")
	}

	var pub events.Publisher = events.Nop{}
	if cfg.AMQP.URL != "" {
		p, err := events.NewAMQP(cfg.AMQP.URL, cfg.AMQP.Exchange)
		if err != nil {
			return nil, fmt.Errorf("amqp: %w", err)
		}
		a.closers = append(a.closers, p.Close)
		pub = p
		l.Info("events: amqp", zap.String("exchange", cfg.AMQP.Exchange))
	}

	a.Services = service.New(service.Deps{
		Users:        set.Users,
		Rooms:        set.Rooms,
		Sessions:     set.Sessions,
		Reservations: set.Reservations,
		Locker:       locker,
		Events:       pub,
		Log:          l,
		MeetingLink:  service.MeetingLinkGenerator(cfg.Session.MeetingBaseURL),
	})
	ok = true
	return a, nil
}

func (a *App) openStore(ctx context.Context, cfg *config.Config, l *zap.Logger) (repo.Set, error) {
	switch cfg.Store.Driver {
	case "postgres", "mysql":
		db, err := database.NewGorm(cfg.Store.Driver, cfg.DB, l)
		if err != nil {
			return repo.Set{}, fmt.Errorf("db open: %w", err)
		}
		if sqlDB, err := db.DB(); err == nil {
			a.closers = append(a.closers, func() { _ = sqlDB.Close() })
		}
		l.Info("database connected", zap.String("driver", cfg.Store.Driver))
		if cfg.DB.AutoMigrate {
			if err := db.AutoMigrate(repo.Models()...); err != nil {
				return repo.Set{}, fmt.Errorf("automigrate: %w", err)
			}
			l.Info("automigrate done")
		}
		return repo.NewGorm(db), nil

	case "mongo":
		cli, db, err := database.NewMongo(ctx, database.MongoOpts{
			URI: cfg.Mongo.URI, Database: cfg.Mongo.Database, Timeout: cfg.Mongo.Timeout(),
		})
		if err != nil {
			return repo.Set{}, err
		}
		a.closers = append(a.closers, func() { _ = cli.Disconnect(context.Background()) })
		l.Info("mongo connected", zap.String("database", cfg.Mongo.Database))
		return repo.NewMongo(ctx, db)

	default:
		l.Warn("using in-memory store; data is lost on restart")
		return repo.NewMemory(), nil
	}
}
