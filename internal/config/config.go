package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds all service configuration, loaded from the environment.
// MongoURI and AMQPURL are optional: without them the service falls back to
// the in-memory store and the logging notifier.
type Config struct {
	Port      string `env:"PORT" envDefault:"8080"`
	MongoURI  string `env:"MONGO_URI"`
	MongoDB   string `env:"MONGO_DB" envDefault:"auction"`
	AMQPURL   string `env:"AMQP_URL"`
	JWTSecret string `env:"JWT_SECRET" envDefault:"dev-secret"`
}

// Load parses configuration from environment variables
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
