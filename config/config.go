// Package config loads process configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the full process configuration, loaded once at startup
type Config struct {
	HTTP     HTTPConfig
	Database DatabaseConfig
	JWT      JWTConfig
	SMTP     SMTPConfig
	S3       S3Config
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogPretty bool   `env:"LOG_PRETTY" envDefault:"false"`
}

// HTTPConfig configures the listener
type HTTPConfig struct {
	Addr string `env:"HTTP_ADDR" envDefault:":8080"`
}

// DatabaseConfig points at the relational store
type DatabaseConfig struct {
	DSN string `env:"DATABASE_DSN"`
}

// JWTConfig configures the token codec
type JWTConfig struct {
	Secret string        `env:"JWT_SECRET"`
	Expiry time.Duration `env:"JWT_EXPIRY" envDefault:"24h"`
	Issuer string        `env:"JWT_ISSUER" envDefault:"ecobuilt-api"`
}

// SMTPConfig configures outbound mail
type SMTPConfig struct {
	Host     string `env:"SMTP_HOST"`
	Port     int    `env:"SMTP_PORT" envDefault:"587"`
	Username string `env:"SMTP_USERNAME"`
	Password string `env:"SMTP_PASSWORD"`
	From     string `env:"SMTP_FROM" envDefault:"Eco Built <support@ecobuilt.com>"`
}

// S3Config configures the object store
type S3Config struct {
	Region        string `env:"S3_REGION" envDefault:"us-east-1"`
	Bucket        string `env:"S3_BUCKET"`
	AccessKey     string `env:"S3_ACCESS_KEY"`
	SecretKey     string `env:"S3_SECRET_KEY"`
	BaseEndpoint  string `env:"S3_BASE_ENDPOINT"`
	PublicBaseURL string `env:"S3_PUBLIC_BASE_URL"`
}

// Load parses the environment and validates the result
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Database.DSN == "" {
		return fmt.Errorf("config: missing DATABASE_DSN")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("config: missing JWT_SECRET")
	}
	if c.JWT.Expiry <= 0 {
		return fmt.Errorf("config: JWT_EXPIRY must be positive")
	}
	return nil
}
