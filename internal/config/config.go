package config

import (
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	Port           int    `envconfig:"PORT" default:"8080"`
	LogLevel       string `envconfig:"LOG_LEVEL" default:"info"`
	DatabaseURL    string `envconfig:"DATABASE_URL" required:"true"`
	Version        string `envconfig:"VERSION" default:"dev"`
	StrictDecoding bool   `envconfig:"STRICT_DECODING" default:"false"`
}

// Load reads configuration from environment variables into a Config struct.
// A .env file in the working directory is loaded first when present; real
// environment variables take precedence over values from the file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
