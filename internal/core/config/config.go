package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type HTTP struct {
	Host            string
	Port            int
	ReadTimeoutSec  int
	WriteTimeoutSec int
	IdleTimeoutSec  int
}
type AdminHTTP struct {
	Host string
	Port int
}

type App struct {
	Name  string
	Env   string
	HTTP  HTTP
	Admin AdminHTTP
}

type Rotate struct {
	Enable     bool
	Filename   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

type Log struct {
	Level  string
	JSON   bool
	Rotate Rotate
}

// Store 选择仓储实现：memory / postgres / mysql / mongo
type Store struct {
	Driver string
}

type DB struct {
	DSN                string
	Username           string
	Password           string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeMin int
	AutoMigrate        bool
	LogLevel           string
}

type Mongo struct {
	URI        string `mapstructure:"uri"`
	Database   string `mapstructure:"database"`
	TimeoutSec int    `mapstructure:"timeoutSec"`
}

// Redis Addr 为空时使用进程内锁
type Redis struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type Lock struct {
	TTLMs   int `mapstructure:"ttlMs"`
	RetryMs int `mapstructure:"retryMs"`
}

// AMQP URL 为空时不发布事件
type AMQP struct {
	URL      string `mapstructure:"url"`
	Exchange string `mapstructure:"exchange"`
}

type Session struct {
	MeetingBaseURL string `mapstructure:"meetingBaseURL"`
}

// Limits HTTP 入口保护
type Limits struct {
	RPS           float64 `mapstructure:"rps"`
	Burst         int     `mapstructure:"burst"`
	MaxConcurrent int64   `mapstructure:"maxConcurrent"`
	MaxBodyBytes  int64   `mapstructure:"maxBodyBytes"`
	TimeoutSec    int     `mapstructure:"timeoutSec"`
}

type Config struct {
	App     App
	Log     Log
	Store   Store
	DB      DB
	Mongo   Mongo   `mapstructure:"mongo"`
	Redis   Redis   `mapstructure:"redis"`
	Lock    Lock    `mapstructure:"lock"`
	AMQP    AMQP    `mapstructure:"amqp"`
	Session Session `mapstructure:"session"`
	HTTP    Limits  `mapstructure:"http"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "studybuddy")
	v.SetDefault("app.env", "local")
	v.SetDefault("app.http.host", "0.0.0.0")
	v.SetDefault("app.http.port", 8080)
	v.SetDefault("app.http.readTimeoutSec", 10)
	v.SetDefault("app.http.writeTimeoutSec", 15)
	v.SetDefault("app.http.idleTimeoutSec", 60)
	v.SetDefault("app.admin.host", "127.0.0.1")
	v.SetDefault("app.admin.port", 8081)
	v.SetDefault("log.level", "info")
	v.SetDefault("store.driver", "memory")
	v.SetDefault("db.maxOpenConns", 20)
	v.SetDefault("db.maxIdleConns", 5)
	v.SetDefault("db.connMaxLifetimeMin", 30)
	v.SetDefault("mongo.database", "studybuddy")
	v.SetDefault("mongo.timeoutSec", 10)
	v.SetDefault("lock.ttlMs", 5000)
	v.SetDefault("lock.retryMs", 50)
	v.SetDefault("amqp.exchange", "studybuddy.events")
	v.SetDefault("session.meetingBaseURL", "https://zoom.us/j")
	v.SetDefault("http.rps", 50)
	v.SetDefault("http.burst", 100)
	v.SetDefault("http.maxConcurrent", 256)
	v.SetDefault("http.maxBodyBytes", 1<<20)
	v.SetDefault("http.timeoutSec", 10)
}

// Load 读取 YAML 并叠加 APP_ 前缀环境变量（app.http.port → APP_APP_HTTP_PORT）
func Load(path string) (*Config, error) {
	v := viper.New()
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
		if path == "" {
			path = "./configs/config.local.yaml"
		}
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("APP")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	switch c.Store.Driver {
	case "memory", "postgres", "mysql", "mongo":
	default:
		return nil, fmt.Errorf("config: unsupported store.driver %q", c.Store.Driver)
	}
	return &c, nil
}

func MustLoad(path string) *Config {
	c, err := Load(path)
	if err != nil {
		log.Fatalf("%v", err)
	}
	return c
}

func (l Lock) TTL() time.Duration   { return time.Duration(l.TTLMs) * time.Millisecond }
func (l Lock) Retry() time.Duration { return time.Duration(l.RetryMs) * time.Millisecond }

func (m Mongo) Timeout() time.Duration { return time.Duration(m.TimeoutSec) * time.Second }

func (h HTTP) Timeouts() (read, write, idle time.Duration) {
	return time.Duration(h.ReadTimeoutSec) * time.Second,
		time.Duration(h.WriteTimeoutSec) * time.Second,
		time.Duration(h.IdleTimeoutSec) * time.Second
}
