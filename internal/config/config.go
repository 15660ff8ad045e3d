package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Port string `env:"PORT" envDefault:"10000"`

	PollInterval time.Duration `env:"POLL_INTERVAL" envDefault:"2s"`
	FetchTimeout time.Duration `env:"FETCH_TIMEOUT" envDefault:"10s"`

	// Empty disables the control check.
	ControlSecret string `env:"CONTROL_SECRET" envDefault:""`

	MatcherinoBaseURL string `env:"MATCHERINO_BASE_URL" envDefault:"https://api.matcherino.com"`
	IDMapPath         string `env:"ID_MAP_PATH" envDefault:"static/assets/id_to_slug.json"`

	RedisURL string        `env:"REDIS_URL" envDefault:""`
	RedisTTL time.Duration `env:"REDIS_TTL" envDefault:"6h"`

	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"*"`
	LogLevel    string   `env:"LOG_LEVEL" envDefault:"info"`
}

// Load reads the process environment. Call godotenv first if a .env file
// should take part.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parsing env: %w", err)
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if c.PollInterval <= 0 {
		return fmt.Errorf("POLL_INTERVAL must be positive, got %s", c.PollInterval)
	}
	if c.FetchTimeout <= 0 {
		return fmt.Errorf("FETCH_TIMEOUT must be positive, got %s", c.FetchTimeout)
	}
	if strings.TrimSpace(c.Port) == "" {
		return fmt.Errorf("PORT must not be empty")
	}
	return nil
}

func (c Config) Addr() string {
	if strings.Contains(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}
