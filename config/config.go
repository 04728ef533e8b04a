package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/caarlos0/env/v11"
)

// Store backends
const (
	StoreMemory   = "memory"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
)

// Event transports
const (
	EventsNone  = "none"
	EventsRedis = "redis"
)

// Config is read once at startup and passed to the components that need it
type Config struct {
	Salt   string `env:"BADGES_SALT"`
	Issuer Issuer `envPrefix:"BADGES_ISSUER_"`
	Baker  Baker  `envPrefix:"BADGES_BAKER_"`
	Server Server
	Log    Log   `envPrefix:"BADGES_LOG_"`
	Trace  Trace `envPrefix:"BADGES_TRACE_"`
}

type Issuer struct {
	Origin  string `env:"ORIGIN"`
	Name    string `env:"NAME"`
	Org     string `env:"ORG"`
	Contact string `env:"CONTACT"`
}

type Baker struct {
	URL     string        `env:"URL"`
	Timeout time.Duration `env:"TIMEOUT" envDefault:"10s"`
}

type Server struct {
	Addr             string `env:"BADGES_HTTP_ADDR" envDefault:":9000"`
	MountPath        string `env:"BADGES_MOUNT_PATH"`
	AdminSecret      string `env:"BADGES_ADMIN_SECRET"`
	Store            string `env:"BADGES_STORE" envDefault:"memory"`
	Events           string `env:"BADGES_EVENTS" envDefault:"none"`
	RedisURL         string `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`
	PostgresDsn      string `env:"BADGES_POSTGRES_DSN"`
	UsersTable       string `env:"BADGES_USERS_TABLE" envDefault:"users"`
	UsersEmailColumn string `env:"BADGES_USERS_EMAIL_COLUMN" envDefault:"email"`
}

type Log struct {
	Level  string `env:"LEVEL" envDefault:"info"`
	Format string `env:"FORMAT" envDefault:"text"` // text, json
}

type Trace struct {
	Enabled  bool   `env:"ENABLED"`
	Endpoint string `env:"ENDPOINT" envDefault:"localhost:4318"`
}

// Load reads the configuration from the environment and validates it
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the values every deployment must provide
func (c Config) Validate() error {
	var errs []error

	if c.Salt == "" {
		errs = append(errs, errors.New("BADGES_SALT is required"))
	}
	if err := requireURL("BADGES_ISSUER_ORIGIN", c.Issuer.Origin); err != nil {
		errs = append(errs, err)
	}
	if err := requireURL("BADGES_BAKER_URL", c.Baker.URL); err != nil {
		errs = append(errs, err)
	}
	if c.Baker.Timeout <= 0 {
		errs = append(errs, errors.New("BADGES_BAKER_TIMEOUT must be positive"))
	}

	switch c.Server.Store {
	case StoreMemory, StoreRedis:
	case StorePostgres:
		if c.Server.PostgresDsn == "" {
			errs = append(errs, errors.New("BADGES_POSTGRES_DSN is required for the postgres store"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown BADGES_STORE %q", c.Server.Store))
	}

	switch c.Server.Events {
	case EventsNone, EventsRedis:
	default:
		errs = append(errs, fmt.Errorf("unknown BADGES_EVENTS %q", c.Server.Events))
	}

	return errors.Join(errs...)
}

func requireURL(name, value string) error {
	if value == "" {
		return fmt.Errorf("%s is required", name)
	}
	u, err := url.Parse(value)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%s must be an absolute URL", name)
	}
	return nil
}
