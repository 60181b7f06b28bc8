// Package config loads the server configuration from YAML.
package config

import (
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/rxtech-lab/securities-trading/pkg/errors"
)

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr            string        `yaml:"addr" validate:"required"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// DatabaseConfig configures the PostgreSQL connection.
type DatabaseConfig struct {
	DSN string `yaml:"dsn" validate:"required"`
}

// FeedConfig configures the upstream quote feed and its retry ladder.
type FeedConfig struct {
	BaseURL        string        `yaml:"base_url" validate:"required,url"`
	Exchange       string        `yaml:"exchange" validate:"required"`
	MaxRetries     int           `yaml:"max_retries" validate:"gte=0"`
	RetryDelayUnit time.Duration `yaml:"retry_delay_unit" validate:"gte=0"`
	QuoteTTL       time.Duration `yaml:"quote_ttl" validate:"gt=0"`
	StockTTL       time.Duration `yaml:"stock_ttl" validate:"gt=0"`
}

// Config is the full server configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Feed     FeedConfig     `yaml:"feed"`
}

// Default returns a configuration with every tunable at its stock value. The
// database DSN has no default and must come from the file.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ShutdownTimeout: 10 * time.Second,
		},
		Feed: FeedConfig{
			BaseURL:        "https://mis.twse.com.tw",
			Exchange:       "tse",
			MaxRetries:     2,
			RetryDelayUnit: time.Second,
			QuoteTTL:       5 * time.Second,
			StockTTL:       5 * time.Minute,
		},
	}
}

// Load reads path, layers it over the defaults and validates the result.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err,
			"failed to read config file %s", path)
	}

	return Parse(data)
}

// Parse decodes YAML bytes over the defaults and validates the result.
func Parse(data []byte) (Config, error) {
	config := Default()

	if err := yaml.Unmarshal(data, &config); err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to parse config", err)
	}

	if err := config.Validate(); err != nil {
		return Config{}, err
	}

	return config, nil
}

// Validate validates the Config struct.
func (c *Config) Validate() error {
	validate := validator.New()

	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid config", err)
	}

	return nil
}
