package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every key Load reads so the host environment cannot leak
// into a test. envdecode treats an empty value as unset.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"CONFIG_FILE", "SERVER_PORT", "DATABASE_URL", "LOG_LEVEL",
		"JWT_SECRET", "GITHUB_CLIENT_ID", "GITHUB_CLIENT_SECRET", "GITHUB_CALLBACK_URL",
		"RATE_LIMIT_RPS", "RATE_LIMIT_BURST", "CORS_ALLOWED_ORIGINS",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 2022, cfg.Server.Port)
	assert.Equal(t, "data/nutrition.db", cfg.Database.URL)
	assert.Equal(t, "http://localhost:2022/auth/github/callback", cfg.Auth.GitHubCallbackURL)
	assert.False(t, cfg.Auth.Enabled())
	assert.Zero(t, cfg.RateLimit.RPS)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins())
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("DATABASE_URL", "postgres://localhost/nutrition")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("RATE_LIMIT_BURST", "5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "postgres://localhost/nutrition", cfg.Database.URL)
	assert.True(t, cfg.Auth.Enabled())
	assert.False(t, cfg.Auth.GitHubEnabled())
	assert.Equal(t, 2.5, cfg.RateLimit.RPS)
	assert.Equal(t, 5, cfg.RateLimit.Burst)
}

func TestLoad_YAMLThenEnv(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	yamlDoc := `
server:
  port: 3000
database:
  url: /tmp/from-yaml.db
log:
  level: debug
auth:
  jwt_secret: yaml-secret
  github_client_id: id
  github_client_secret: secret
`
	require.NoError(t, os.WriteFile(path, []byte(yamlDoc), 0o600))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("SERVER_PORT", "4000")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 4000, cfg.Server.Port, "environment beats YAML")
	assert.Equal(t, "/tmp/from-yaml.db", cfg.Database.URL)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Auth.GitHubEnabled())
}

func TestLoad_MissingConfigFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "nope.yaml"))

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults are valid", mutate: func(*Config) {}},
		{name: "port zero", mutate: func(c *Config) { c.Server.Port = 0 }, wantErr: true},
		{name: "port too large", mutate: func(c *Config) { c.Server.Port = 70000 }, wantErr: true},
		{name: "empty database url", mutate: func(c *Config) { c.Database.URL = " " }, wantErr: true},
		{name: "bad log level", mutate: func(c *Config) { c.Log.Level = "loud" }, wantErr: true},
		{name: "negative rps", mutate: func(c *Config) { c.RateLimit.RPS = -1 }, wantErr: true},
		{name: "rps without burst", mutate: func(c *Config) { c.RateLimit.RPS = 1; c.RateLimit.Burst = 0 }, wantErr: true},
		{name: "rps with burst", mutate: func(c *Config) { c.RateLimit.RPS = 1; c.RateLimit.Burst = 1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"":      slog.LevelInfo,
		"DEBUG": slog.LevelDebug,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	}
	for in, want := range tests {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}

func TestAllowedOrigins(t *testing.T) {
	assert.Equal(t,
		[]string{"https://app.example.com", "http://localhost:5173"},
		ServerConfig{CORSOrigins: " https://app.example.com, ,http://localhost:5173 "}.AllowedOrigins(),
	)
	assert.Empty(t, ServerConfig{}.AllowedOrigins())
}
