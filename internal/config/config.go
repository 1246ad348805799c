// internal/config/config.go
//
// Process configuration, read from the environment after an optional .env file.

package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Port           string        `env:"PORT" envDefault:"5175"`
	DBPath         string        `env:"DB_PATH" envDefault:"./data/numguess.db"`
	LogLevel       string        `env:"LOG_LEVEL" envDefault:"info"`
	LogPretty      bool          `env:"LOG_PRETTY" envDefault:"false"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"10s"`
	ClientOrigin   string        `env:"CLIENT_ORIGIN" envDefault:"http://localhost:5173"`

	SessionSecret string        `env:"SESSION_SECRET" envDefault:"dev_secret_change_me"`
	SessionTTL    time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	CookieSecure  bool          `env:"COOKIE_SECURE" envDefault:"false"`
	SweepInterval time.Duration `env:"SWEEP_INTERVAL" envDefault:"10m"`

	// Admin routes are only mounted when AdminPasswordHash is set.
	AdminUser         string `env:"ADMIN_USER" envDefault:"admin"`
	AdminPasswordHash string `env:"ADMIN_PASSWORD_HASH"`
}

// Load reads .env (if present) and parses the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	if cfg.SessionTTL <= 0 {
		return nil, fmt.Errorf("SESSION_TTL must be positive, got %s", cfg.SessionTTL)
	}
	if cfg.SweepInterval <= 0 {
		return nil, fmt.Errorf("SWEEP_INTERVAL must be positive, got %s", cfg.SweepInterval)
	}
	return &cfg, nil
}

// Addr is the listen address derived from Port.
func (c *Config) Addr() string { return ":" + c.Port }
