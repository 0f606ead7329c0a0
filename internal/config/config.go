package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

type Config struct {
	HTTPAddr string `env:"HTTP_ADDR" env-default:":8080"`
	Env      string `env:"ENVIRONMENT" env-default:"local"`
	LogLevel string `env:"LOG_LEVEL" env-default:"info"`

	// StoreBackend selects where journals live: memory, postgres or redis.
	StoreBackend string `env:"STORE_BACKEND" env-default:"postgres"`
	DatabaseURL  string `env:"DATABASE_URL"`
	RedisURL     string `env:"REDIS_URL" env-default:"redis://localhost:6379/0"`

	CORSAllowedOrigins   []string `env:"CORS_ALLOWED_ORIGINS" env-separator:","`
	CORSAllowCredentials bool     `env:"CORS_ALLOW_CREDENTIALS" env-default:"false"`

	JWTSecret string `env:"JWT_SECRET"`

	ReminderLead       time.Duration `env:"REMINDER_LEAD" env-default:"4h"`
	WorkerPollInterval time.Duration `env:"WORKER_POLL_INTERVAL" env-default:"800ms"`
}

// Load reads .env if present, then the environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: read env: %w", err)
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config: validate: %w", err)
	}
	return cfg, nil
}

func (c *Config) normalize() {
	c.StoreBackend = strings.ToLower(strings.TrimSpace(c.StoreBackend))
	origins := c.CORSAllowedOrigins[:0]
	for _, o := range c.CORSAllowedOrigins {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	c.CORSAllowedOrigins = origins
}

func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.JWTSecret) == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	switch c.StoreBackend {
	case BackendMemory:
	case BackendPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres backend"))
		}
	case BackendRedis:
		if c.RedisURL == "" {
			errs = append(errs, errors.New("REDIS_URL is required for the redis backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend))
	}
	if c.ReminderLead < 0 {
		errs = append(errs, errors.New("REMINDER_LEAD must not be negative"))
	}
	return errors.Join(errs...)
}

// UsesDatabase reports whether users and jobs can live in postgres.
func (c Config) UsesDatabase() bool {
	return c.DatabaseURL != ""
}
