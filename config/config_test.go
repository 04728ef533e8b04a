package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("BADGES_SALT", "s3cr3t")
	t.Setenv("BADGES_ISSUER_ORIGIN", "https://badges.example.org")
	t.Setenv("BADGES_BAKER_URL", "https://baker.example.org/")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "s3cr3t", cfg.Salt)
	assert.Equal(t, "https://badges.example.org", cfg.Issuer.Origin)
	assert.Equal(t, 10*time.Second, cfg.Baker.Timeout)
	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, StoreMemory, cfg.Server.Store)
	assert.Equal(t, EventsNone, cfg.Server.Events)
	assert.Equal(t, "users", cfg.Server.UsersTable)
	assert.Equal(t, "email", cfg.Server.UsersEmailColumn)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.Trace.Enabled)
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("BADGES_BAKER_TIMEOUT", "3s")
	t.Setenv("BADGES_MOUNT_PATH", "/badges")
	t.Setenv("BADGES_ISSUER_NAME", "Matehackers")
	t.Setenv("BADGES_STORE", "postgres")
	t.Setenv("BADGES_POSTGRES_DSN", "host=localhost dbname=badges")
	t.Setenv("BADGES_LOG_FORMAT", "json")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3*time.Second, cfg.Baker.Timeout)
	assert.Equal(t, "/badges", cfg.Server.MountPath)
	assert.Equal(t, "Matehackers", cfg.Issuer.Name)
	assert.Equal(t, StorePostgres, cfg.Server.Store)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadMissingRequired(t *testing.T) {
	t.Setenv("BADGES_SALT", "")
	t.Setenv("BADGES_ISSUER_ORIGIN", "")
	t.Setenv("BADGES_BAKER_URL", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BADGES_SALT is required")
	assert.Contains(t, err.Error(), "BADGES_ISSUER_ORIGIN is required")
	assert.Contains(t, err.Error(), "BADGES_BAKER_URL is required")
}

func TestValidate(t *testing.T) {
	valid := Config{
		Salt:   "s3cr3t",
		Issuer: Issuer{Origin: "https://badges.example.org"},
		Baker:  Baker{URL: "https://baker.example.org", Timeout: time.Second},
		Server: Server{Store: StoreMemory, Events: EventsNone},
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"relative origin", func(c *Config) { c.Issuer.Origin = "/badges" }, "BADGES_ISSUER_ORIGIN must be an absolute URL"},
		{"zero timeout", func(c *Config) { c.Baker.Timeout = 0 }, "BADGES_BAKER_TIMEOUT must be positive"},
		{"unknown store", func(c *Config) { c.Server.Store = "mongo" }, `unknown BADGES_STORE "mongo"`},
		{"postgres without dsn", func(c *Config) { c.Server.Store = StorePostgres }, "BADGES_POSTGRES_DSN is required"},
		{"unknown events", func(c *Config) { c.Server.Events = "kafka" }, `unknown BADGES_EVENTS "kafka"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
