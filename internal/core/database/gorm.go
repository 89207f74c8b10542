package database

import (
	"errors"
	"fmt"
	"time"

	gomysql "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"studybuddy/internal/core/config"
)

var ErrUnsupportedDriver = errors.New("unsupported sql driver")

// NewGorm 按 store.driver 打开 postgres/mysql，SQL 日志走 zap
func NewGorm(driver string, c config.DB, l *zap.Logger) (*gorm.DB, error) {
	var dial gorm.Dialector
	switch driver {
	case "postgres":
		dial = postgres.Open(c.DSN)
		l.Info("opening sql store", zap.String("driver", driver))
	case "mysql":
		dsn, masked, err := mysqlDSN(c.DSN, c.Username, c.Password)
		if err != nil {
			return nil, err
		}
		l.Info("opening sql store", zap.String("driver", driver), zap.String("dsn", masked))
		dial = mysql.Open(dsn)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, driver)
	}

	db, err := gorm.Open(dial, &gorm.Config{
		Logger: logger.New(zap.NewStdLog(l.Named("gorm")), logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormLevel(c.LogLevel),
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(c.MaxOpenConns)
	sqlDB.SetMaxIdleConns(c.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(c.ConnMaxLifetimeMin) * time.Minute)
	return db.Session(&gorm.Session{
		PrepareStmt:            true,
		SkipDefaultTransaction: true, // 单条写入无需事务
	}), nil
}

func gormLevel(s string) logger.LogLevel {
	switch s {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	}
	return logger.Warn
}

// mysqlDSN 覆盖账号密码并强制 parseTime；返回可直接打印的脱敏版本
func mysqlDSN(dsn, user, pass string) (string, string, error) {
	mc, err := gomysql.ParseDSN(dsn)
	if err != nil {
		return "", "", fmt.Errorf("parse mysql dsn: %w", err)
	}
	if user != "" {
		mc.User = user
	}
	if pass != "" {
		mc.Passwd = pass
	}
	mc.ParseTime = true
	out := mc.FormatDSN()
	if mc.Passwd != "" {
		mc.Passwd = "****"
	}
	return out, mc.FormatDSN(), nil
}
