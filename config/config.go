package config

import (
	"errors"

	"github.com/caarlos0/env/v11"
)

// Config holds all runtime settings, parsed from environment variables.
type Config struct {
	Addr          string `env:"ADDR" envDefault:":8080"`
	MongoURI      string `env:"MONGODB_URI"`
	MongoDatabase string `env:"MONGODB_DATABASE" envDefault:"once"`

	GeminiAPIKey string `env:"GEMINI_API_KEY"`
	// GeminiModel is used for every model call: narration, echo
	// evaluation, and codex extraction.
	GeminiModel string `env:"GEMINI_MODEL" envDefault:"gemini-2.5-flash"`

	// MemoryAPIURL points at the mem0-compatible memory service. Empty
	// disables memory storage and retrieval.
	MemoryAPIURL string `env:"MEMORY_API_URL"`

	AllowedOrigins string `env:"ALLOWED_ORIGINS"`
}

// Load parses the environment into a Config and validates the settings
// the server cannot run without.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	if cfg.MongoURI == "" {
		return nil, errors.New("MONGODB_URI environment variable not set")
	}
	if cfg.GeminiAPIKey == "" {
		return nil, errors.New("GEMINI_API_KEY environment variable not set")
	}
	return &cfg, nil
}
