package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"
)

// Load fills cfg from environment variables according to its `env` tags.
//
// Example:
//
//	type Config struct {
//	    HTTPPort  int    `env:"HTTP_PORT" envDefault:"8000"`
//	    ClientURL string `env:"CLIENT_URL" envDefault:"http://localhost:3000"`
//	}
func Load(cfg any) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}
