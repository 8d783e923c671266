package config

import (
	"fmt"
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
	Name         string
	Env          string
	HTTP         HTTP
	Admin        AdminHTTP
	AllowOrigins []string `mapstructure:"allowOrigins"`
}

type Log struct {
	Level  string
	JSON   bool
	Rotate LogRotate
}

type LogRotate struct {
	Enable     bool
	Filename   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

type JWT struct {
	Secret            string
	Issuer            string
	AccessTokenTTLMin int
}

type Redis struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (r Redis) Enabled() bool { return r.Addr != "" }

type DB struct {
	Driver             string // postgres | mysql | memory
	DSN                string
	Username           string
	Password           string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeMin int
	AutoMigrate        bool
	LogLevel           string
}

// Upstream is the water-analysis service fountains, devices and analyses come from.
type Upstream struct {
	BaseURL      string `mapstructure:"baseURL"`
	TimeoutSec   int    `mapstructure:"timeoutSec"`
	MaxIdleConns int    `mapstructure:"maxIdleConns"`
}

func (u Upstream) Timeout() time.Duration { return time.Duration(u.TimeoutSec) * time.Second }

type Favorites struct {
	ResolveConcurrency int `mapstructure:"resolveConcurrency"`
	LockTTLSec         int `mapstructure:"lockTTLSec"`
}

type Statistics struct {
	CacheTTLMin int `mapstructure:"cacheTTLMin"`
}

type Config struct {
	App        App
	Log        Log
	JWT        JWT
	DB         DB
	Redis      Redis      `mapstructure:"redis"`
	Upstream   Upstream   `mapstructure:"upstream"`
	Favorites  Favorites  `mapstructure:"favorites"`
	Statistics Statistics `mapstructure:"statistics"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.http.host", "0.0.0.0")
	v.SetDefault("app.http.port", 8080)
	v.SetDefault("app.http.readTimeoutSec", 5)
	v.SetDefault("app.http.writeTimeoutSec", 15)
	v.SetDefault("app.http.idleTimeoutSec", 60)
	v.SetDefault("app.admin.host", "0.0.0.0")
	v.SetDefault("app.admin.port", 8081)
	v.SetDefault("log.level", "info")
	v.SetDefault("jwt.issuer", "fountain-monitor")
	v.SetDefault("jwt.accessTokenTTLMin", 60)
	v.SetDefault("db.driver", "memory")
	v.SetDefault("db.maxOpenConns", 20)
	v.SetDefault("db.maxIdleConns", 10)
	v.SetDefault("db.connMaxLifetimeMin", 30)
	v.SetDefault("upstream.baseURL", "http://localhost:5269/api/")
	v.SetDefault("upstream.timeoutSec", 5)
	v.SetDefault("upstream.maxIdleConns", 32)
	v.SetDefault("favorites.resolveConcurrency", 4)
	v.SetDefault("favorites.lockTTLSec", 15)
	v.SetDefault("statistics.cacheTTLMin", 60)
}

// Load reads the yaml file at path (or CONFIG_PATH, or ./configs/config.local.yaml),
// applying APP_* environment overrides.
func Load(path string) (*Config, error) {
	v := viper.New()
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
		if path == "" {
			path = "./configs/config.local.yaml"
		}
	}
	setDefaults(v)
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("APP")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate rejects settings the services cannot run with safely. The redis
// favorites lease is never renewed, so it must outlive a mutation: one
// upstream lookup and one store write, budgeted as two upstream timeouts.
func (c *Config) Validate() error {
	if c.Upstream.TimeoutSec <= 0 {
		return fmt.Errorf("invalid config: upstream.timeoutSec must be positive, got %d", c.Upstream.TimeoutSec)
	}
	if c.Redis.Enabled() && c.Favorites.LockTTLSec <= 2*c.Upstream.TimeoutSec {
		return fmt.Errorf("invalid config: favorites.lockTTLSec (%d) must exceed twice upstream.timeoutSec (%d)",
			c.Favorites.LockTTLSec, c.Upstream.TimeoutSec)
	}
	return nil
}
