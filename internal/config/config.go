package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const DefaultSessionSecret = "journal-mate-secret-key-change-in-production"

type ServerConfig struct {
	Address      string `mapstructure:"address"`
	CookieSecure bool   `mapstructure:"cookie_secure"`
	// TrustProxyHeaders takes the client IP from X-Forwarded-For/X-Real-IP.
	// Enable only behind a reverse proxy that overwrites those headers.
	TrustProxyHeaders bool          `mapstructure:"trust_proxy_headers"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"` // postgres | sqlite3
	URL    string `mapstructure:"url"`
	Path   string `mapstructure:"path"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type SessionConfig struct {
	Secret     string        `mapstructure:"secret"`
	TTL        time.Duration `mapstructure:"ttl"`
	CookieName string        `mapstructure:"cookie_name"`
}

type SecurityConfig struct {
	BcryptCost int `mapstructure:"bcrypt_cost"`
}

type RateLimitConfig struct {
	RPS          float64       `mapstructure:"rps"`
	Burst        int           `mapstructure:"burst"`
	MaxStrikes   int           `mapstructure:"max_strikes"`
	StrikeWindow time.Duration `mapstructure:"strike_window"`
	BanDuration  time.Duration `mapstructure:"ban_duration"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

type SeedConfig struct {
	DefaultUser bool `mapstructure:"default_user"`
}

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Session   SessionConfig   `mapstructure:"session"`
	Security  SecurityConfig  `mapstructure:"security"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Log       LogConfig       `mapstructure:"log"`
	Seed      SeedConfig      `mapstructure:"seed"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.cookie_secure", false)
	v.SetDefault("server.trust_proxy_headers", false)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("database.driver", "sqlite3")
	v.SetDefault("database.url", "")
	v.SetDefault("database.path", "./data/journal.db")

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("session.secret", DefaultSessionSecret)
	v.SetDefault("session.ttl", 30*24*time.Hour)
	v.SetDefault("session.cookie_name", "journal_session")

	v.SetDefault("security.bcrypt_cost", 10)

	v.SetDefault("ratelimit.rps", 1.0)
	v.SetDefault("ratelimit.burst", 5)
	v.SetDefault("ratelimit.max_strikes", 5)
	v.SetDefault("ratelimit.strike_window", 10*time.Minute)
	v.SetDefault("ratelimit.ban_duration", 15*time.Minute)

	v.SetDefault("log.level", "INFO")
	v.SetDefault("log.file", "")

	v.SetDefault("seed.default_user", true)
}

// Load reads configuration from the given file (e.g. "config.yaml").
// If path is empty, "config.yaml" in the working directory is used when it
// exists. Environment variables override file values, e.g.
// JOURNAL_SERVER_ADDRESS=:9000. DATABASE_URL and REDIS_ADDR are honored too.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path == "" {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	} else {
		v.SetConfigFile(path)
	}

	v.SetEnvPrefix("JOURNAL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("database.url", "JOURNAL_DATABASE_URL", "DATABASE_URL")
	_ = v.BindEnv("redis.addr", "JOURNAL_REDIS_ADDR", "REDIS_ADDR")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case "postgres":
		if c.Database.URL == "" {
			return errors.New("config: database.url is required for the postgres driver")
		}
	case "sqlite3":
		if c.Database.Path == "" {
			return errors.New("config: database.path is required for the sqlite3 driver")
		}
	default:
		return fmt.Errorf("config: unsupported database driver %q", c.Database.Driver)
	}

	if c.Session.Secret == "" {
		return errors.New("config: session.secret must not be empty")
	}
	if c.Session.TTL <= 0 {
		return errors.New("config: session.ttl must be positive")
	}
	if c.Session.CookieName == "" {
		return errors.New("config: session.cookie_name must not be empty")
	}
	return nil
}
