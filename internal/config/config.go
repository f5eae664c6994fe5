package config

import (
	"fmt"

	pkgconfig "github.com/shibinnakam/cochin-backoffice/pkg/config"
)

// Config holds all configuration for the back-office service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"HTTP_PORT" envDefault:"8000"`

	// Client application, used for OAuth redirects and email links.
	ClientURL string `env:"CLIENT_URL" envDefault:"http://localhost:3000"`

	// PostgreSQL
	PostgresHost string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser string `env:"POSTGRES_USER" envDefault:"backoffice"`
	PostgresPass string `env:"POSTGRES_PASSWORD" envDefault:"backoffice_secret"`
	PostgresDB   string `env:"POSTGRES_DB_NAME" envDefault:"backoffice_db"`
	PostgresSSL  string `env:"POSTGRES_SSL_MODE" envDefault:"disable"`

	// Redis (cart storage)
	RedisHost string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort int    `env:"REDIS_PORT" envDefault:"6379"`
	RedisPass string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`

	// Kafka
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// JWT
	JWTSecret string `env:"JWT_SECRET" envDefault:"change-this-to-a-secure-secret"`

	// Payment gateway
	GatewayBaseURL   string `env:"GATEWAY_BASE_URL" envDefault:"https://api.razorpay.com/v1"`
	GatewayKeyID     string `env:"GATEWAY_KEY_ID" envDefault:""`
	GatewayKeySecret string `env:"GATEWAY_KEY_SECRET" envDefault:""`

	// Transactional email
	EmailAPIBaseURL string `env:"EMAIL_API_BASE_URL" envDefault:""`
	EmailAPIKey     string `env:"EMAIL_API_KEY" envDefault:""`
	EmailFrom       string `env:"EMAIL_FROM" envDefault:"noreply@localhost"`

	// Google OAuth
	GoogleClientID     string `env:"GOOGLE_CLIENT_ID" envDefault:""`
	GoogleClientSecret string `env:"GOOGLE_CLIENT_SECRET" envDefault:""`
	GoogleCallbackURL  string `env:"GOOGLE_CALLBACK_URL" envDefault:"http://localhost:8000/api/v1/auth/google/callback"`

	// CORS
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if cfg.HTTPPort < 1 || cfg.HTTPPort > 65535 {
		return nil, fmt.Errorf("invalid HTTP port: %d", cfg.HTTPPort)
	}

	// In non-development environments, require an explicitly set, strong JWT secret.
	if cfg.Environment != "development" {
		if cfg.JWTSecret == "change-this-to-a-secure-secret" {
			return nil, fmt.Errorf("JWT_SECRET must be explicitly set via environment variable in %q mode", cfg.Environment)
		}
		if len(cfg.JWTSecret) < 32 {
			return nil, fmt.Errorf("JWT_SECRET must be at least 32 characters long, got %d", len(cfg.JWTSecret))
		}
		if cfg.GatewayKeySecret == "" {
			return nil, fmt.Errorf("GATEWAY_KEY_SECRET must be set in %q mode", cfg.Environment)
		}
	}

	return cfg, nil
}

// PostgresDSN returns the PostgreSQL connection string.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.PostgresUser, c.PostgresPass, c.PostgresHost, c.PostgresPort, c.PostgresDB, c.PostgresSSL,
	)
}

// RedisAddr returns the Redis address in host:port form.
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}
