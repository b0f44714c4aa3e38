// Package config loads server configuration from the environment and an
// optional .env file. Every key can be set as BAIYU_<SECTION>_<NAME>,
// for example BAIYU_SERVER_ADDR or BAIYU_JWT_SECRET.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all server settings.
type Config struct {
	App      AppConfig
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Throttle ThrottleConfig
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Name          string
	Environment   string // development or production
	SeedDemoUsers bool
}

// Development reports whether the app runs in development mode. Error
// responses carry diagnostic detail only in development.
func (a AppConfig) Development() bool {
	return a.Environment != "production"
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// DatabaseConfig holds PostgreSQL settings. An empty DSN selects the
// in-memory user store.
type DatabaseConfig struct {
	DSN string
}

// RedisConfig holds Redis settings for login throttling. An empty Addr
// disables throttling.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// JWTConfig holds token signing settings.
type JWTConfig struct {
	Secret    string
	AccessTTL time.Duration
	Issuer    string
}

// ThrottleConfig holds login rate-limit settings.
type ThrottleConfig struct {
	MaxAttempts int
	Window      time.Duration
	ByIP        bool
}

// Load reads configuration from the environment, with a .env file in the
// working directory taken as a fallback when present.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	// Missing or unreadable .env is fine; the environment still applies.
	_ = v.ReadInConfig()

	v.SetEnvPrefix("BAIYU")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	cfg := &Config{
		App: AppConfig{
			Name:          v.GetString("app.name"),
			Environment:   v.GetString("app.environment"),
			SeedDemoUsers: v.GetBool("app.seed_demo_users"),
		},
		Server: ServerConfig{
			Addr:            v.GetString("server.addr"),
			ReadTimeout:     v.GetDuration("server.read_timeout"),
			WriteTimeout:    v.GetDuration("server.write_timeout"),
			IdleTimeout:     v.GetDuration("server.idle_timeout"),
			ShutdownTimeout: v.GetDuration("server.shutdown_timeout"),
		},
		Database: DatabaseConfig{
			DSN: v.GetString("database.dsn"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		JWT: JWTConfig{
			Secret:    v.GetString("jwt.secret"),
			AccessTTL: v.GetDuration("jwt.access_ttl"),
			Issuer:    v.GetString("jwt.issuer"),
		},
		Throttle: ThrottleConfig{
			MaxAttempts: v.GetInt("throttle.max_attempts"),
			Window:      v.GetDuration("throttle.window"),
			ByIP:        v.GetBool("throttle.by_ip"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "baiyuspace")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.seed_demo_users", true)

	v.SetDefault("server.addr", ":3000")
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("database.dsn", "")

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.access_ttl", "24h")
	v.SetDefault("jwt.issuer", "baiyuspace")

	v.SetDefault("throttle.max_attempts", 5)
	v.SetDefault("throttle.window", "15m")
	v.SetDefault("throttle.by_ip", true)
}

// Validate checks settings that cannot be defaulted safely.
func (c *Config) Validate() error {
	switch c.App.Environment {
	case "development", "production":
	default:
		return fmt.Errorf("config: unknown environment %q", c.App.Environment)
	}

	if c.JWT.Secret == "" {
		if !c.App.Development() {
			return fmt.Errorf("config: BAIYU_JWT_SECRET is required in production")
		}
	} else if len(c.JWT.Secret) < 32 {
		return fmt.Errorf("config: BAIYU_JWT_SECRET must be at least 32 bytes")
	}

	if c.JWT.AccessTTL <= 0 {
		return fmt.Errorf("config: BAIYU_JWT_ACCESS_TTL must be positive")
	}
	if c.Throttle.MaxAttempts <= 0 {
		return fmt.Errorf("config: BAIYU_THROTTLE_MAX_ATTEMPTS must be positive")
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("config: BAIYU_SERVER_ADDR must not be empty")
	}

	return nil
}
