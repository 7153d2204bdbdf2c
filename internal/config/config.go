// Package config loads client configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	// APIBaseURL is the action-submission service.
	APIBaseURL string `env:"API_BASE_URL" envDefault:"http://localhost:8000"`
	// SyncURL is the document-sync service websocket endpoint.
	SyncURL string `env:"SYNC_URL" envDefault:"ws://localhost:8090"`
	// SyncListenAddr is where the devsync emulator binds.
	SyncListenAddr string `env:"SYNC_LISTEN_ADDR" envDefault:":8090"`
	// Debug switches development logging on.
	Debug bool `env:"DEBUG" envDefault:"false"`
}

// Load reads .env (if present) and then the process environment.
func Load() (Config, error) {
	_ = godotenv.Load() // missing .env is fine

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}
