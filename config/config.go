// Package config loads the estimator frontend settings from the environment.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v9"
	"github.com/joho/godotenv"
)

// Config holds the runtime settings of the estimator frontend.
type Config struct {
	Env                 string        `env:"APP_ENV" envDefault:"development"`
	PricingAPIURL       string        `env:"PRICING_API_URL" envDefault:"http://localhost:5000"`
	HTTPRequestTimeout  time.Duration `env:"HTTP_REQUEST_TIMEOUT" envDefault:"60s"`
	SessionTTL          time.Duration `env:"SESSION_TTL" envDefault:"2h"`
	ProgressTick        time.Duration `env:"PROGRESS_TICK" envDefault:"200ms"`
	ProgressRevealDelay time.Duration `env:"PROGRESS_REVEAL_DELAY" envDefault:"500ms"`
	StaticDir           string        `env:"STATIC_DIR" envDefault:"./static"`
	RateLimitPerMinute  int           `env:"RATE_LIMIT_PER_MINUTE" envDefault:"60"`
	RateLimitBurst      int           `env:"RATE_LIMIT_BURST" envDefault:"10"`
}

// Load reads an optional .env file and parses the environment into a Config.
func Load() (*Config, error) {
	// A missing .env file is normal outside local development.
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.PricingAPIURL = strings.TrimRight(cfg.PricingAPIURL, "/")
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.PricingAPIURL == "" {
		return fmt.Errorf("PRICING_API_URL must not be empty")
	}
	if !strings.HasPrefix(c.PricingAPIURL, "http://") && !strings.HasPrefix(c.PricingAPIURL, "https://") {
		return fmt.Errorf("PRICING_API_URL must be an http(s) URL, got %q", c.PricingAPIURL)
	}
	if c.ProgressTick <= 0 {
		return fmt.Errorf("PROGRESS_TICK must be positive")
	}
	if c.RateLimitPerMinute > 0 && c.RateLimitBurst <= 0 {
		return fmt.Errorf("RATE_LIMIT_BURST must be positive when RATE_LIMIT_PER_MINUTE is set")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}
	return nil
}

// IsProduction reports whether the app runs with production logging.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
