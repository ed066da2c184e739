// Package config loads server configuration.
//
// LOAD ORDER:
// Values are layered, each step overriding the one before it:
//  1. Defaults (Default)
//  2. An optional YAML file named by CONFIG_FILE
//  3. A .env file in the working directory, if present (joho/godotenv)
//  4. Process environment variables (joeshaw/envdecode, `env` struct tags)
//
// godotenv never overwrites variables that are already set, so a real
// environment variable always beats the same key in .env.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the full server configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Log       LogConfig       `yaml:"log"`
	Auth      AuthConfig      `yaml:"auth"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

type ServerConfig struct {
	Port int `yaml:"port" env:"SERVER_PORT"`
	// CORSOrigins is a comma-separated list of allowed origins; "*" allows
	// any origin and an empty value disables CORS headers.
	CORSOrigins string `yaml:"cors_origins" env:"CORS_ALLOWED_ORIGINS"`
}

// AllowedOrigins splits CORSOrigins, dropping empty entries.
func (s ServerConfig) AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(s.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

type DatabaseConfig struct {
	// URL is a SQLite file path, ":memory:", or a postgres:// URL.
	URL string `yaml:"url" env:"DATABASE_URL"`
}

type LogConfig struct {
	Level string `yaml:"level" env:"LOG_LEVEL"`
}

// AuthConfig configures token auth and GitHub sign-in. An empty JWTSecret
// leaves the API open.
type AuthConfig struct {
	JWTSecret          string `yaml:"jwt_secret"           env:"JWT_SECRET"`
	GitHubClientID     string `yaml:"github_client_id"     env:"GITHUB_CLIENT_ID"`
	GitHubClientSecret string `yaml:"github_client_secret" env:"GITHUB_CLIENT_SECRET"`
	GitHubCallbackURL  string `yaml:"github_callback_url"  env:"GITHUB_CALLBACK_URL"`
}

// Enabled reports whether API requests must carry a token.
func (a AuthConfig) Enabled() bool {
	return a.JWTSecret != ""
}

// GitHubEnabled reports whether the GitHub OAuth routes can be served.
func (a AuthConfig) GitHubEnabled() bool {
	return a.Enabled() && a.GitHubClientID != "" && a.GitHubClientSecret != ""
}

// RateLimitConfig is a per-client token bucket. RPS <= 0 disables limiting.
type RateLimitConfig struct {
	RPS   float64 `yaml:"rps"   env:"RATE_LIMIT_RPS"`
	Burst int     `yaml:"burst" env:"RATE_LIMIT_BURST"`
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		Server:    ServerConfig{Port: 2022, CORSOrigins: "*"},
		Database:  DatabaseConfig{URL: "data/nutrition.db"},
		Log:       LogConfig{Level: "info"},
		RateLimit: RateLimitConfig{RPS: 0, Burst: 20},
	}
}

// Load builds a Config from defaults, CONFIG_FILE, .env and the environment,
// then validates it.
func Load() (Config, error) {
	cfg := Default()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("loading .env: %w", err)
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadYAML(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return Config{}, fmt.Errorf("decoding environment: %w", err)
	}

	if cfg.Auth.GitHubCallbackURL == "" {
		cfg.Auth.GitHubCallbackURL = fmt.Sprintf("http://localhost:%d/auth/github/callback", cfg.Server.Port)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadYAML(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return nil
}

// Validate rejects values the server cannot start with.
func (c Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server port %d out of range", c.Server.Port)
	}
	if strings.TrimSpace(c.Database.URL) == "" {
		return errors.New("config: database url is required")
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}
	if c.RateLimit.RPS < 0 {
		return fmt.Errorf("config: rate limit rps must not be negative, got %v", c.RateLimit.RPS)
	}
	if c.RateLimit.RPS > 0 && c.RateLimit.Burst < 1 {
		return fmt.Errorf("config: rate limit burst must be at least 1 when rps is set, got %d", c.RateLimit.Burst)
	}
	return nil
}

// ParseLevel maps a LOG_LEVEL value to a slog level. Empty means info.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("config: unknown log level %q", s)
}
