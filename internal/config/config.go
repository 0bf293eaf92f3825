package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"

	"github.com/jeengbe/dominion/internal/game"
)

// Config is the process configuration shared by the dominion binaries.
// Command-line flags override whatever the environment provides.
type Config struct {
	Addr          string `env:"DOMINION_ADDR"           envDefault:":8080"`
	KingdomFile   string `env:"DOMINION_KINGDOM_FILE"   envDefault:"kingdoms.yaml"`
	Kingdom       string `env:"DOMINION_KINGDOM"        envDefault:"first-game"`
	LobbySize     int    `env:"DOMINION_LOBBY_SIZE"     envDefault:"2"`
	PageSize      int    `env:"DOMINION_PAGE_SIZE"      envDefault:"20"`
	MaxViolations int    `env:"DOMINION_MAX_VIOLATIONS" envDefault:"3"`
	MaxTurns      int    `env:"DOMINION_MAX_TURNS"      envDefault:"200"`
	Seed          int64  `env:"DOMINION_SEED"`
	ServerURL     string `env:"DOMINION_SERVER_URL"     envDefault:"ws://localhost:8080/ws"`
}

// Load reads the configuration from environment variables.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the values a server cannot run without.
func (c Config) Validate() error {
	if c.LobbySize < 2 || c.LobbySize > game.MaxPlayers {
		return fmt.Errorf("lobby size must be 2-%d, got %d", game.MaxPlayers, c.LobbySize)
	}
	if c.PageSize < 1 {
		return fmt.Errorf("page size must be positive, got %d", c.PageSize)
	}
	if c.MaxViolations < 1 {
		return fmt.Errorf("max violations must be positive, got %d", c.MaxViolations)
	}
	return nil
}
