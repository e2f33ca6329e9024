// Copyright (c) 2026 Pressroom Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
)

// knownWeakSecrets contains default/example secrets that must be rejected in production.
var knownWeakSecrets = []string{
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
}

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath        string `env:"PRESSROOM_DB_PATH" envDefault:"./data/pressroom.db"`
	SessionSecret string `env:"PRESSROOM_SESSION_SECRET,required"`
	ServerHost    string `env:"PRESSROOM_SERVER_HOST" envDefault:"localhost"`
	ServerPort    int    `env:"PRESSROOM_SERVER_PORT" envDefault:"8080"`
	Env           string `env:"PRESSROOM_ENV" envDefault:"development"`
	LogLevel      string `env:"PRESSROOM_LOG_LEVEL" envDefault:"info"`
	SiteName      string `env:"PRESSROOM_SITE_NAME" envDefault:"Pressroom"`

	// Token configuration
	AccessTokenTTL  int `env:"PRESSROOM_ACCESS_TOKEN_TTL" envDefault:"3600"`    // Access token lifetime in seconds
	RefreshTokenTTL int `env:"PRESSROOM_REFRESH_TOKEN_TTL" envDefault:"604800"` // Refresh token lifetime in seconds

	// Cache configuration
	RedisURL     string `env:"PRESSROOM_REDIS_URL"`                           // Optional Redis URL for distributed caching
	CachePrefix  string `env:"PRESSROOM_CACHE_PREFIX" envDefault:"pressroom:"` // Redis key prefix
	CacheTTL     int    `env:"PRESSROOM_CACHE_TTL" envDefault:"300"`          // Default cache TTL in seconds
	CacheMaxSize int    `env:"PRESSROOM_CACHE_MAX_SIZE" envDefault:"10000"`   // Max memory cache entries

	// Seeding configuration
	DoSeed bool `env:"PRESSROOM_DO_SEED" envDefault:"false"` // Enable database seeding
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedisCache returns true if Redis caching is configured.
func (c Config) UseRedisCache() bool {
	return c.RedisURL != ""
}

// MinSessionSecretLength is the minimum required length for the session secret.
const MinSessionSecretLength = 32

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if len(cfg.SessionSecret) < MinSessionSecretLength {
		return nil, fmt.Errorf("PRESSROOM_SESSION_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinSessionSecretLength, len(cfg.SessionSecret))
	}

	for _, weak := range knownWeakSecrets {
		if cfg.SessionSecret == weak {
			return nil, fmt.Errorf("PRESSROOM_SESSION_SECRET is a known default value and must not be used; " +
				"generate a secure secret with: openssl rand -base64 32")
		}
	}

	if !hasMinimumEntropy(cfg.SessionSecret) {
		slog.Warn("PRESSROOM_SESSION_SECRET has low character diversity; " +
			"consider generating a random secret with: openssl rand -base64 32")
	}

	return cfg, nil
}

// hasMinimumEntropy checks that a secret contains at least 3 character classes
// (lowercase, uppercase, digits, special characters).
func hasMinimumEntropy(s string) bool {
	charTypes := 0
	if strings.ContainsAny(s, "abcdefghijklmnopqrstuvwxyz") {
		charTypes++
	}
	if strings.ContainsAny(s, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		charTypes++
	}
	if strings.ContainsAny(s, "0123456789") {
		charTypes++
	}
	if strings.ContainsAny(s, "!@#$%^&*()-_=+[]{}|;:,.<>?/~`'\"\\") {
		charTypes++
	}
	return charTypes >= 3
}
