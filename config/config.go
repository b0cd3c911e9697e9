package config

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	gconfig "github.com/goliatone/go-config/config"
	marketplace "github.com/goliatone/go-marketplace"
	"github.com/spf13/pflag"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	redacted = "******"
)

// Config is the process configuration. It is built once at startup and
// never changes afterwards.
type Config struct {
	Address         string        `json:"address" koanf:"address"`
	DatabaseDriver  string        `json:"database_driver" koanf:"database_driver"`
	DatabaseURI     string        `json:"database_uri" koanf:"database_uri"`
	SigningKey      string        `json:"jwt_secret" koanf:"jwt_secret"`
	AdminEmail      string        `json:"admin_email" koanf:"admin_email"`
	AdminPassword   string        `json:"admin_password" koanf:"admin_password"`
	Environment     string        `json:"environment" koanf:"environment"`
	RedisAddr       string        `json:"redis_addr" koanf:"redis_addr"`
	CatalogCacheTTL time.Duration `json:"catalog_cache_ttl" koanf:"catalog_cache_ttl"`
	CORSOrigin      string        `json:"cors_origin" koanf:"cors_origin"`
	PasswordCost    int           `json:"bcrypt_cost" koanf:"bcrypt_cost"`
	HashidUserIDs   bool          `json:"hashid_user_ids" koanf:"hashid_user_ids"`
	LogLevel        string        `json:"log_level" koanf:"log_level"`
	ReadTimeout     time.Duration `json:"read_timeout" koanf:"read_timeout"`
	WriteTimeout    time.Duration `json:"write_timeout" koanf:"write_timeout"`
}

var _ marketplace.Config = Config{}

// Defaults returns the development configuration
func Defaults() Config {
	return Config{
		Address:         ":8080",
		DatabaseDriver:  DriverSQLite,
		DatabaseURI:     "file:marketplace.db?cache=shared",
		AdminEmail:      marketplace.DefaultAdminEmail,
		AdminPassword:   marketplace.DefaultAdminPassword,
		Environment:     "development",
		CatalogCacheTTL: 5 * time.Minute,
		CORSOrigin:      "http://localhost:5173",
		PasswordCost:    marketplace.DefaultPasswordCost,
		LogLevel:        "info",
		ReadTimeout:     10 * time.Second,
		WriteTimeout:    10 * time.Second,
	}
}

// Load parses flags from args and then applies environment overrides read
// through lookup. The result goes through the go-config container, which
// layers its own providers on top and validates the final value.
func Load(args []string, lookup func(string) (string, bool)) (Config, error) {
	return LoadContext(context.Background(), args, lookup)
}

// LoadContext is Load with a caller supplied context
func LoadContext(ctx context.Context, args []string, lookup func(string) (string, bool)) (Config, error) {
	cfg := Defaults()

	fs := pflag.NewFlagSet("marketplace", pflag.ContinueOnError)
	fs.StringVarP(&cfg.Address, "address", "a", cfg.Address, "The address to bind the server to")
	fs.StringVarP(&cfg.DatabaseURI, "database-uri", "d", cfg.DatabaseURI, "The database DSN")
	fs.StringVar(&cfg.DatabaseDriver, "driver", cfg.DatabaseDriver, "The database driver, postgres or sqlite")
	fs.StringVar(&cfg.RedisAddr, "redis", cfg.RedisAddr, "The redis address for the catalog cache")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "The log level")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if lookup == nil {
		lookup = func(string) (string, bool) { return "", false }
	}

	env := envReader{lookup: lookup}
	env.str("RUN_ADDRESS", &cfg.Address)
	env.str("DATABASE_DRIVER", &cfg.DatabaseDriver)
	env.str("DATABASE_URI", &cfg.DatabaseURI)
	env.str("JWT_SECRET", &cfg.SigningKey)
	env.str("ADMIN_EMAIL", &cfg.AdminEmail)
	env.str("ADMIN_PASSWORD", &cfg.AdminPassword)
	env.str("NODE_ENV", &cfg.Environment)
	env.str("APP_ENV", &cfg.Environment)
	env.str("REDIS_ADDR", &cfg.RedisAddr)
	env.str("CORS_ORIGIN", &cfg.CORSOrigin)
	env.str("LOG_LEVEL", &cfg.LogLevel)
	env.duration("CATALOG_CACHE_TTL", &cfg.CatalogCacheTTL)
	env.duration("READ_TIMEOUT", &cfg.ReadTimeout)
	env.duration("WRITE_TIMEOUT", &cfg.WriteTimeout)
	env.integer("BCRYPT_COST", &cfg.PasswordCost)
	env.boolean("HASHID_USER_IDS", &cfg.HashidUserIDs)

	if env.err != nil {
		return Config{}, env.err
	}

	cfg.DatabaseDriver = normalizeDriver(cfg.DatabaseDriver)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	container := gconfig.New(&cfg)
	if err := container.Load(ctx); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}

	out := *container.Raw()
	out.DatabaseDriver = normalizeDriver(out.DatabaseDriver)

	if err := out.Validate(); err != nil {
		return Config{}, err
	}

	return out, nil
}

func normalizeDriver(driver string) string {
	return strings.ToLower(strings.TrimSpace(driver))
}

// Validate fails closed on a missing signing key
func (c Config) Validate() error {
	if strings.TrimSpace(c.SigningKey) == "" {
		return marketplace.ErrMissingSigningKey
	}

	switch c.DatabaseDriver {
	case DriverPostgres:
		if c.DatabaseURI == "" {
			return &marketplace.ConfigError{Key: "DATABASE_URI", Reason: "is required for postgres"}
		}
	case DriverSQLite:
	default:
		return &marketplace.ConfigError{Key: "DATABASE_DRIVER", Reason: fmt.Sprintf("must be postgres or sqlite, got %q", c.DatabaseDriver)}
	}

	return nil
}

func (c Config) GetSigningKey() string {
	return c.SigningKey
}

func (c Config) GetAdminEmail() string {
	return c.AdminEmail
}

func (c Config) GetAdminPassword() string {
	return c.AdminPassword
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

func (c Config) GetPasswordCost() int {
	return c.PasswordCost
}

func (c Config) UseHashidUserIDs() bool {
	return c.HashidUserIDs
}

// Redacted returns a copy safe to print
func (c Config) Redacted() Config {
	out := c
	if out.SigningKey != "" {
		out.SigningKey = redacted
	}
	if out.AdminPassword != "" {
		out.AdminPassword = redacted
	}
	if u, err := url.Parse(out.DatabaseURI); err == nil && u.User != nil {
		out.DatabaseURI = u.Redacted()
	}
	return out
}

type envReader struct {
	lookup func(string) (string, bool)
	err    error
}

func (e *envReader) value(key string) (string, bool) {
	if e.err != nil {
		return "", false
	}
	v, ok := e.lookup(key)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

func (e *envReader) str(key string, dst *string) {
	if v, ok := e.value(key); ok {
		*dst = v
	}
}

func (e *envReader) duration(key string, dst *time.Duration) {
	v, ok := e.value(key)
	if !ok {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		e.err = &marketplace.ConfigError{Key: key, Reason: fmt.Sprintf("is not a duration: %v", err)}
		return
	}
	*dst = d
}

func (e *envReader) integer(key string, dst *int) {
	v, ok := e.value(key)
	if !ok {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		e.err = &marketplace.ConfigError{Key: key, Reason: fmt.Sprintf("is not an integer: %v", err)}
		return
	}
	*dst = n
}

func (e *envReader) boolean(key string, dst *bool) {
	v, ok := e.value(key)
	if !ok {
		return
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		e.err = &marketplace.ConfigError{Key: key, Reason: fmt.Sprintf("is not a boolean: %v", err)}
		return
	}
	*dst = b
}
