package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Port                 string
	Environment          string
	BaseURL              string // public storefront URL used to build checkout redirect targets
	Database             DatabaseConfig
	Redis                RedisConfig
	CMS                  CMSConfig
	Auth                 AuthConfig
	Payment              PaymentConfig
	LogLevel             string
	PaymentWebhookSecret string // PAYMENT_WEBHOOK_SECRET: verify incoming payment provider webhooks
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// CMSConfig is used to query and mutate the headless CMS content API
type CMSConfig struct {
	ProjectID  string
	Dataset    string
	APIVersion string
	Token      string // required for mutations; queries work without it on public datasets
	BaseURL    string // optional override of the project API host
}

// AuthConfig is used to verify shopper session tokens with the identity provider
type AuthConfig struct {
	BaseURL   string // e.g. https://api.clerk.dev
	SecretKey string
}

// PaymentConfig is used to create and retrieve payment checkout sessions
type PaymentConfig struct {
	BaseURL   string // e.g. https://api.stripe.com
	SecretKey string
	Currency  string
}

func Load() (*Config, error) {
	viper.SetConfigType("env")
	viper.SetConfigName(".env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")

	// Set defaults
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("ENVIRONMENT", "development")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("LOG_LEVEL", "info")

	// Read from environment variables
	viper.AutomaticEnv()

	// Try to read .env file (optional)
	if err := viper.ReadInConfig(); err != nil {
		// It's okay if .env doesn't exist, we'll use env vars
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{
		Port:        getEnvOrViper("PORT", "8080"),
		Environment: getEnvOrViper("ENVIRONMENT", "development"),
		BaseURL:     strings.TrimSuffix(getEnvOrViper("BASE_URL", "http://localhost:3000"), "/"),
		Database: DatabaseConfig{
			Host:     getEnvOrViper("DB_HOST", "localhost"),
			Port:     getEnvOrViper("DB_PORT", "5432"),
			User:     getEnvOrViper("DB_USER", "postgres"),
			Password: getEnvOrViper("DB_PASSWORD", "postgres"),
			DBName:   getEnvOrViper("DB_NAME", "storefront"),
			SSLMode:  getEnvOrViper("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:     getEnvOrViper("REDIS_ADDR", "localhost:6379"),
			Password: getEnvOrViper("REDIS_PASSWORD", ""),
			DB:       viper.GetInt("REDIS_DB"),
		},
		CMS: CMSConfig{
			ProjectID:  strings.TrimSpace(getEnvOrViper("CMS_PROJECT_ID", "")),
			Dataset:    getEnvOrViper("CMS_DATASET", "production"),
			APIVersion: getEnvOrViper("CMS_API_VERSION", "2024-11-20"),
			Token:      strings.TrimSpace(getEnvOrViper("CMS_TOKEN", "")),
			BaseURL:    strings.TrimSpace(getEnvOrViper("CMS_BASE_URL", "")),
		},
		Auth: AuthConfig{
			BaseURL:   strings.TrimSpace(getEnvOrViper("AUTH_BASE_URL", "")),
			SecretKey: strings.TrimSpace(getEnvOrViper("AUTH_SECRET_KEY", "")),
		},
		Payment: PaymentConfig{
			BaseURL:   strings.TrimSpace(getEnvOrViper("PAYMENT_BASE_URL", "https://api.stripe.com")),
			SecretKey: strings.TrimSpace(getEnvOrViper("PAYMENT_SECRET_KEY", "")),
			Currency:  getEnvOrViper("PAYMENT_CURRENCY", "inr"),
		},
		LogLevel:             getEnvOrViper("LOG_LEVEL", "info"),
		PaymentWebhookSecret: strings.TrimSpace(getEnvOrViper("PAYMENT_WEBHOOK_SECRET", "")),
	}

	// Validate required fields
	if cfg.CMS.ProjectID == "" {
		return nil, fmt.Errorf("CMS_PROJECT_ID is required")
	}
	if cfg.Payment.SecretKey == "" {
		return nil, fmt.Errorf("PAYMENT_SECRET_KEY is required")
	}
	if cfg.Auth.SecretKey == "" {
		return nil, fmt.Errorf("AUTH_SECRET_KEY is required")
	}

	return cfg, nil
}

func getEnvOrViper(key, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	if viper.IsSet(key) {
		return viper.GetString(key)
	}
	return defaultValue
}
