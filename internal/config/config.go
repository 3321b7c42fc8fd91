package config

import (
	"fmt"
	"time"

	"golang.org/x/text/language"

	"github.com/utafrali/giftcard-catalog/internal/domain"
	pkgconfig "github.com/utafrali/giftcard-catalog/pkg/config"
	"github.com/utafrali/giftcard-catalog/pkg/logger"
)

// Config holds all configuration for the catalog service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"CATALOG_HTTP_PORT" envDefault:"8080"`

	// File store
	StoreFilePath        string `env:"STORE_FILE_PATH" envDefault:"data/products.json"`
	StoreCreateIfMissing bool   `env:"STORE_CREATE_IF_MISSING" envDefault:"true"`
	StoreSlowOpMs        int    `env:"STORE_SLOW_OP_MS" envDefault:"200"`

	// Listing
	SearchFields []string `env:"SEARCH_FIELDS" envDefault:"name" envSeparator:","`
	SortLocale   string   `env:"SORT_LOCALE" envDefault:"en"`

	// CORS
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"http://localhost:5173" envSeparator:","`

	// Kafka
	KafkaEnabled bool     `env:"KAFKA_ENABLED" envDefault:"false"`
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// OpenTelemetry
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load catalog config: %w", err)
	}
	return cfg, nil
}

// Validate checks ranges and enumerations after parsing.
func (c *Config) Validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("LOG_LEVEL: %w", err)
	}
	if c.StoreFilePath == "" {
		return fmt.Errorf("STORE_FILE_PATH is required")
	}
	if c.StoreSlowOpMs < 0 {
		return fmt.Errorf("STORE_SLOW_OP_MS must not be negative, got %d", c.StoreSlowOpMs)
	}
	if _, err := domain.ParseSearchFields(c.SearchFields); err != nil {
		return fmt.Errorf("SEARCH_FIELDS: %w", err)
	}
	if _, err := language.Parse(c.SortLocale); err != nil {
		return fmt.Errorf("SORT_LOCALE: %w", err)
	}
	if c.KafkaEnabled && len(c.KafkaBrokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS is required when KAFKA_ENABLED is set")
	}
	if c.OTELSampleRate < 0 || c.OTELSampleRate > 1.0 {
		return fmt.Errorf("OTEL_SAMPLE_RATE must be between 0.0 and 1.0, got %f", c.OTELSampleRate)
	}
	return nil
}

// SlowOpThreshold returns the store slow-operation threshold.
func (c *Config) SlowOpThreshold() time.Duration {
	return time.Duration(c.StoreSlowOpMs) * time.Millisecond
}

// SearchFieldSet returns the parsed search fields. Call after Validate.
func (c *Config) SearchFieldSet() []domain.SearchField {
	fields, _ := domain.ParseSearchFields(c.SearchFields)
	return fields
}

// Locale returns the parsed sort locale, falling back to English.
func (c *Config) Locale() language.Tag {
	tag, err := language.Parse(c.SortLocale)
	if err != nil {
		return language.English
	}
	return tag
}
