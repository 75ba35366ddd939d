// Package config loads process configuration from the environment.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Leaderboard storage backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

type Config struct {
	Port      string `env:"PORT" envDefault:"5175"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"` // "json" or "console"

	// WordsFile overrides the embedded word bank when set.
	WordsFile string `env:"WORDS_FILE"`

	LeaderboardBackend string `env:"LEADERBOARD_BACKEND" envDefault:"file"`
	LeaderboardFile    string `env:"LEADERBOARD_FILE" envDefault:"data/leaderboard.json"`
	DatabasePath       string `env:"DATABASE_PATH" envDefault:"data/cremewhiz.db"`
	LeaderboardSize    int    `env:"LEADERBOARD_SIZE" envDefault:"10"`

	// BotSecret signs the bearer tokens the bot gateway sends with each command.
	BotSecret string `env:"BOT_SHARED_SECRET,notEmpty"`

	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS" envDefault:"2"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" envDefault:"5"`
}

// Load reads an optional .env file, then parses the environment.
func Load() (Config, error) {
	_ = godotenv.Load()
	return Parse()
}

// Parse reads the environment into a Config and validates it.
func Parse() (Config, error) {
	var c Config
	if err := env.Parse(&c); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate rejects values the service cannot run with.
func (c Config) Validate() error {
	switch c.LeaderboardBackend {
	case BackendFile, BackendSQLite:
	default:
		return fmt.Errorf("LEADERBOARD_BACKEND must be %q or %q, got %q", BackendFile, BackendSQLite, c.LeaderboardBackend)
	}
	if c.LeaderboardSize <= 0 {
		return fmt.Errorf("LEADERBOARD_SIZE must be positive, got %d", c.LeaderboardSize)
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		return fmt.Errorf("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
	}
	return nil
}
