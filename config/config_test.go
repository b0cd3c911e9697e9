package config_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-test/deep"
	marketplace "github.com/goliatone/go-marketplace"
	"github.com/goliatone/go-marketplace/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(values map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := values[key]
		return v, ok
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load(nil, env(map[string]string{"JWT_SECRET": "s3cret"}))
	require.NoError(t, err)

	want := config.Defaults()
	want.SigningKey = "s3cret"

	if diff := deep.Equal(cfg, want); diff != nil {
		t.Error(diff)
	}
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, "admin@code4web.com", cfg.GetAdminEmail())
	assert.Equal(t, marketplace.DefaultPasswordCost, cfg.GetPasswordCost())
}

func TestLoad_MissingSigningKey(t *testing.T) {
	for name, lookup := range map[string]func(string) (string, bool){
		"absent": env(nil),
		"empty":  env(map[string]string{"JWT_SECRET": ""}),
		"blank":  env(map[string]string{"JWT_SECRET": "   "}),
	} {
		t.Run(name, func(t *testing.T) {
			_, err := config.Load(nil, lookup)
			assert.ErrorIs(t, err, marketplace.ErrMissingSigningKey)
		})
	}
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := config.Load(
		[]string{"-a", ":9000", "--log-level", "debug"},
		env(map[string]string{
			"JWT_SECRET":        "k",
			"DATABASE_DRIVER":   "Postgres",
			"DATABASE_URI":      "postgres://app:pw@db:5432/market",
			"ADMIN_EMAIL":       "ops@example.com",
			"NODE_ENV":          "staging",
			"APP_ENV":           "production",
			"REDIS_ADDR":        "redis:6379",
			"CATALOG_CACHE_TTL": "30s",
			"BCRYPT_COST":       "12",
			"HASHID_USER_IDS":   "true",
		}),
	)
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Address)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, config.DriverPostgres, cfg.DatabaseDriver)
	assert.Equal(t, "ops@example.com", cfg.GetAdminEmail())
	assert.Equal(t, "admin123", cfg.GetAdminPassword())
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "redis:6379", cfg.RedisAddr)
	assert.Equal(t, 30*time.Second, cfg.CatalogCacheTTL)
	assert.Equal(t, 12, cfg.GetPasswordCost())
	assert.True(t, cfg.UseHashidUserIDs())
}

func TestLoadContext_LongFlags(t *testing.T) {
	cfg, err := config.LoadContext(context.Background(),
		[]string{"--address", ":7000", "--database-uri", "file:other.db", "--driver", "SQLite", "--redis", "cache:6379"},
		env(map[string]string{"JWT_SECRET": "k"}),
	)
	require.NoError(t, err)

	assert.Equal(t, ":7000", cfg.Address)
	assert.Equal(t, "file:other.db", cfg.DatabaseURI)
	assert.Equal(t, config.DriverSQLite, cfg.DatabaseDriver)
	assert.Equal(t, "cache:6379", cfg.RedisAddr)
}

func TestLoad_UnknownFlag(t *testing.T) {
	_, err := config.Load([]string{"--nope"}, env(map[string]string{"JWT_SECRET": "k"}))
	assert.Error(t, err)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		args []string
		env  map[string]string
		key  string
	}{
		{"bad duration", nil, map[string]string{"CATALOG_CACHE_TTL": "soon"}, "CATALOG_CACHE_TTL"},
		{"bad cost", nil, map[string]string{"BCRYPT_COST": "high"}, "BCRYPT_COST"},
		{"bad bool", nil, map[string]string{"HASHID_USER_IDS": "maybe"}, "HASHID_USER_IDS"},
		{"bad driver", nil, map[string]string{"DATABASE_DRIVER": "mysql"}, "DATABASE_DRIVER"},
		{"postgres without uri", []string{"-d", ""}, map[string]string{"DATABASE_DRIVER": "postgres"}, "DATABASE_URI"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values := map[string]string{"JWT_SECRET": "k"}
			for k, v := range tt.env {
				values[k] = v
			}

			_, err := config.Load(tt.args, env(values))
			assertConfigError(t, err, tt.key)
		})
	}
}

func assertConfigError(t *testing.T, err error, key string) {
	t.Helper()
	var cerr *marketplace.ConfigError
	require.True(t, errors.As(err, &cerr), "got %v", err)
	assert.Equal(t, key, cerr.Key)
}

func TestRedacted(t *testing.T) {
	cfg := config.Defaults()
	cfg.SigningKey = "k"
	cfg.DatabaseURI = "postgres://app:pw@db:5432/market"

	out := cfg.Redacted()
	assert.Equal(t, "******", out.SigningKey)
	assert.Equal(t, "******", out.AdminPassword)
	assert.Equal(t, "postgres://app:xxxxx@db:5432/market", out.DatabaseURI)
	assert.Equal(t, "k", cfg.SigningKey)
}
