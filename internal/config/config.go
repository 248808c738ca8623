// Package config loads process configuration from the environment.
package config

import (
	"fmt"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
)

// Config holds every tunable the server reads at startup. It is built once
// in main and never mutated afterwards.
type Config struct {
	Port     int    `env:"PORT,default=8080"`
	DBPath   string `env:"DB_PATH,default=data/publicboard.db"`
	LogLevel string `env:"LOG_LEVEL,default=info"`

	// JWTSecret signs bearer tokens. The default exists so a dev checkout
	// runs out of the box; set a real secret in production.
	JWTSecret string `env:"JWT_SECRET,default=publicboard_secret_key"`

	// Admin seed account, synced at startup when both email and password
	// are present. Registration with AdminEmail is rejected.
	AdminName     string `env:"ADMIN_NAME,default=Admin"`
	AdminEmail    string `env:"ADMIN_EMAIL"`
	AdminPassword string `env:"ADMIN_PASSWORD"`
}

// Load reads .env (if present) and decodes the environment into a Config.
func Load() (*Config, error) {
	// Missing .env is fine — env vars may come from the process environment.
	_ = godotenv.Load()

	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("config: decoding environment: %w", err)
	}
	return &cfg, nil
}
