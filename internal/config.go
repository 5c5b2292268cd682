package internal

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

type Config struct {
	Env           string
	LogLevel      string
	Port          uint16
	MongoURI      string
	DatabaseName  string
	SessionSecret string
	BaseURL       string
	TaxRate       float64
	Stripe        StripeConfig
	Shipping      ShippingConfig
	Email         EmailConfig
	Worker        WorkerConfig
	Orders        OrdersConfig
	Sentry        SentryConfig
}

// SentryConfig configures error tracking.
type SentryConfig struct {
	DSN        string
	Enabled    bool
	SampleRate float64
}

type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
	SuccessURL    string
	CancelURL     string
}

// ShippingConfig selects the rate provider. An EasyPost key switches
// from flat-rate quotes to live carrier rates.
type ShippingConfig struct {
	EasyPostAPIKey   string
	OriginStreet     string
	OriginCity       string
	OriginState      string
	OriginPostalCode string
	OriginCountry    string
}

type EmailConfig struct {
	Host     string
	Port     uint16
	Username string
	Password string
	From     string
	FromName string
}

// WorkerConfig tunes the background notification worker.
type WorkerConfig struct {
	PollIntervalSeconds uint16
	MaxAttempts         uint16
}

// OrdersConfig tunes order lifecycle behavior.
type OrdersConfig struct {
	// StrictTransitions enforces the status graph on admin edits.
	StrictTransitions bool
}

func NewConfig() (*Config, error) {
	// Try to load .env from current directory, then walk up (max 2 levels).
	err := godotenv.Load()
	if err != nil {
		dir, _ := os.Getwd()
		found := false
		for i := 0; i < 2; i++ {
			dir = filepath.Join(dir, "..")
			if err := godotenv.Load(filepath.Join(dir, ".env")); err == nil {
				found = true
				break
			}
		}
		if !found {
			slog.Default().Warn("Warning: .env file not found, using environment variables and defaults")
		}
	}

	cfg := &Config{
		Env:           getEnv("ENV", "dev"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		Port:          getEnvInt("PORT", 3000),
		MongoURI:      getEnv("MONGODB_URI", ""),
		DatabaseName:  getEnv("MONGODB_DATABASE", "storefront"),
		SessionSecret: getEnv("SESSION_SECRET", "dev-secret-change-in-production-0000"),
		BaseURL:       getEnv("BASE_URL", "http://localhost:3000"),
		TaxRate:       getEnvFloat("TAX_RATE", 0.08),
		Stripe: StripeConfig{
			SecretKey:     getEnv("STRIPE_SECRET_KEY", ""),
			WebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", ""),
			SuccessURL:    getEnv("STRIPE_SUCCESS_URL", ""),
			CancelURL:     getEnv("STRIPE_CANCEL_URL", ""),
		},
		Shipping: ShippingConfig{
			EasyPostAPIKey:   getEnv("EASYPOST_API_KEY", ""),
			OriginStreet:     getEnv("SHIP_FROM_STREET", ""),
			OriginCity:       getEnv("SHIP_FROM_CITY", ""),
			OriginState:      getEnv("SHIP_FROM_STATE", ""),
			OriginPostalCode: getEnv("SHIP_FROM_POSTAL_CODE", ""),
			OriginCountry:    getEnv("SHIP_FROM_COUNTRY", "US"),
		},
		Email: EmailConfig{
			Host:     getEnv("SMTP_HOST", ""),
			Port:     getEnvInt("SMTP_PORT", 587),
			Username: getEnv("SMTP_USERNAME", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			From:     getEnv("SMTP_FROM", "orders@revxrent.local"),
			FromName: getEnv("EMAIL_FROM_NAME", "Rev X Rent"),
		},
		Worker: WorkerConfig{
			PollIntervalSeconds: getEnvInt("WORKER_POLL_INTERVAL_SECONDS", 5),
			MaxAttempts:         getEnvInt("WORKER_MAX_ATTEMPTS", 3),
		},
		Orders: OrdersConfig{
			StrictTransitions: getEnvBool("ORDER_STRICT_TRANSITIONS", true),
		},
		Sentry: SentryConfig{
			DSN:        getEnv("SENTRY_DSN", ""),
			Enabled:    getEnvBool("SENTRY_ENABLED", true),
			SampleRate: getEnvFloat("SENTRY_SAMPLE_RATE", 1.0),
		},
	}

	validEnv := cfg.Env == "dev" || cfg.Env == "prod"
	if !validEnv {
		slog.Default().Warn("Invalid environment. Using default: prod", slog.String("env", cfg.Env))
		cfg.Env = "prod"
	}

	validLevel := cfg.LogLevel == "info" || cfg.LogLevel == "debug" || cfg.LogLevel == "warn" || cfg.LogLevel == "error"
	if !validLevel {
		slog.Default().Warn("Invalid log level. Using default: info", slog.String("value", cfg.LogLevel))
		cfg.LogLevel = "info"
	}

	if cfg.Env == "prod" {
		if cfg.SessionSecret == "dev-secret-change-in-production-0000" {
			return nil, fmt.Errorf("SESSION_SECRET must be set in production environment")
		}
		if cfg.MongoURI == "" {
			return nil, fmt.Errorf("MONGODB_URI must be set in production environment")
		}
	}

	if cfg.TaxRate < 0 || cfg.TaxRate > 1 {
		return nil, fmt.Errorf("TAX_RATE must be between 0 and 1, got %v", cfg.TaxRate)
	}

	if cfg.Stripe.SuccessURL == "" {
		cfg.Stripe.SuccessURL = cfg.BaseURL + "/order-confirmation"
	}
	if cfg.Stripe.CancelURL == "" {
		cfg.Stripe.CancelURL = cfg.BaseURL + "/cart"
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue uint16) uint16 {
	if value := os.Getenv(key); value != "" {
		var intValue uint16
		if _, err := fmt.Sscanf(value, "%d", &intValue); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		var floatValue float64
		if _, err := fmt.Sscanf(value, "%f", &floatValue); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
