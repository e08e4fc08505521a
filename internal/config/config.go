package config

import (
	"errors"
	"fmt"
	"time"
)

type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	Subpath         string        `koanf:"subpath"`
	JWTSecret       string        `koanf:"jwt_secret"`
	RequireAuth     bool          `koanf:"require_auth"`
	AllowedOrigins  []string      `koanf:"allowed_origins"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Driver string `koanf:"driver"` // memory | null | sqlite | postgres | mysql
	DSN    string `koanf:"dsn"`
}

type RedisConfig struct {
	Enabled  bool   `koanf:"enabled"`
	Addr     string `koanf:"addr"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db"`
}

type LockConfig struct {
	Backend     string        `koanf:"backend"` // local | redis
	TTL         time.Duration `koanf:"ttl"`
	WaitTimeout time.Duration `koanf:"wait_timeout"`
}

type ReplyConfig struct {
	Mode    string        `koanf:"mode"` // rule | model
	Timeout time.Duration `koanf:"timeout"`
}

type LLMConfig struct {
	Name             string        `koanf:"name"`
	URL              string        `koanf:"url"`
	APIKey           string        `koanf:"api_key"`
	MaxConcurrent    int           `koanf:"max_concurrent"`
	QueueSize        int           `koanf:"queue_size"`
	Timeout          time.Duration `koanf:"timeout"`
	RateLimit        float64       `koanf:"rate_limit"`
	Burst            int           `koanf:"burst"`
	BreakerThreshold int           `koanf:"breaker_threshold"`
	BreakerCooldown  time.Duration `koanf:"breaker_cooldown"`
}

type GrowthConfig struct {
	PersonalityWindow int `koanf:"personality_window"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"` // json | console
}

type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Redis    RedisConfig    `koanf:"redis"`
	Lock     LockConfig     `koanf:"lock"`
	Reply    ReplyConfig    `koanf:"reply"`
	LLM      LLMConfig      `koanf:"llm"`
	Growth   GrowthConfig   `koanf:"growth"`
	Log      LogConfig      `koanf:"log"`
}

// Default returns a config that runs fully in memory with rule replies.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(c *Config) {
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "memory"
	}
	if c.Redis.Addr == "" {
		c.Redis.Addr = "localhost:6379"
	}
	if c.Lock.Backend == "" {
		c.Lock.Backend = "local"
	}
	if c.Lock.TTL == 0 {
		c.Lock.TTL = 30 * time.Second
	}
	if c.Lock.WaitTimeout == 0 {
		c.Lock.WaitTimeout = 10 * time.Second
	}
	if c.Reply.Mode == "" {
		c.Reply.Mode = "rule"
	}
	if c.Reply.Timeout == 0 {
		c.Reply.Timeout = 20 * time.Second
	}
	if c.LLM.MaxConcurrent == 0 {
		c.LLM.MaxConcurrent = 2
	}
	if c.LLM.QueueSize == 0 {
		c.LLM.QueueSize = 20
	}
	if c.LLM.Timeout == 0 {
		c.LLM.Timeout = 30 * time.Second
	}
	if c.LLM.BreakerThreshold == 0 {
		c.LLM.BreakerThreshold = 3
	}
	if c.LLM.BreakerCooldown == 0 {
		c.LLM.BreakerCooldown = time.Minute
	}
	if c.Growth.PersonalityWindow == 0 {
		c.Growth.PersonalityWindow = 50
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
}

// Validate checks cross-field requirements.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	if c.Server.RequireAuth && c.Server.JWTSecret == "" {
		errs = append(errs, errors.New("server.jwt_secret must be set when require_auth is on"))
	}
	switch c.Database.Driver {
	case "memory", "null":
	case "sqlite", "postgres", "mysql":
		if c.Database.DSN == "" {
			errs = append(errs, fmt.Errorf("database.dsn is required for driver %q", c.Database.Driver))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown database.driver %q", c.Database.Driver))
	}
	switch c.Lock.Backend {
	case "local":
	case "redis":
		if !c.Redis.Enabled {
			errs = append(errs, errors.New("lock.backend redis requires redis.enabled"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown lock.backend %q", c.Lock.Backend))
	}
	switch c.Reply.Mode {
	case "rule":
	case "model":
		if c.LLM.URL == "" {
			errs = append(errs, errors.New("reply.mode model requires llm.url"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown reply.mode %q", c.Reply.Mode))
	}
	if c.Growth.PersonalityWindow < 1 {
		errs = append(errs, errors.New("growth.personality_window must be positive"))
	}
	return errors.Join(errs...)
}
