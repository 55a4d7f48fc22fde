package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DevelopmentSecret signs session tokens when JWT_SECRET is not configured
// outside production. Tokens signed with it are forgeable by anyone who has
// read this source, so real deployments must set JWT_SECRET.
const DevelopmentSecret = "toko-development-only-secret"

// Config holds the runtime settings of the store API.
type Config struct {
	AppEnv   string
	AppPort  string
	LogLevel string

	DBDriver     string
	DatabaseDSN  string
	StoreTimeout time.Duration

	JWTSecret      string
	InsecureSecret bool // true when DevelopmentSecret is in use
	SessionTTL     time.Duration
	CookieName     string

	RabbitMQURL    string
	SeedSampleData bool
}

// IsProduction reports whether the app runs in a production deployment.
func (c Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

// Load reads configuration from environment variables and an optional
// config.yaml in the working directory.
func Load() (Config, error) {
	return load(viper.New())
}

func load(v *viper.Viper) (Config, error) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("DATABASE_DSN", "toko.db")
	v.SetDefault("STORE_TIMEOUT", "5s")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("SESSION_TTL", "168h")
	v.SetDefault("COOKIE_NAME", "token")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("SEED_SAMPLE_DATA", false)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
	}
	v.AutomaticEnv()

	cfg := Config{
		AppEnv:         v.GetString("APP_ENV"),
		AppPort:        v.GetString("APP_PORT"),
		LogLevel:       v.GetString("LOG_LEVEL"),
		DBDriver:       strings.ToLower(v.GetString("DB_DRIVER")),
		DatabaseDSN:    v.GetString("DATABASE_DSN"),
		StoreTimeout:   v.GetDuration("STORE_TIMEOUT"),
		JWTSecret:      v.GetString("JWT_SECRET"),
		SessionTTL:     v.GetDuration("SESSION_TTL"),
		CookieName:     v.GetString("COOKIE_NAME"),
		RabbitMQURL:    v.GetString("RABBITMQ_URL"),
		SeedSampleData: v.GetBool("SEED_SAMPLE_DATA"),
	}

	if cfg.JWTSecret == "" {
		if cfg.IsProduction() {
			return Config{}, errors.New("JWT_SECRET must be set in production")
		}
		cfg.JWTSecret = DevelopmentSecret
		cfg.InsecureSecret = true
	}
	if cfg.StoreTimeout <= 0 {
		return Config{}, fmt.Errorf("STORE_TIMEOUT must be positive, got %s", cfg.StoreTimeout)
	}
	if cfg.SessionTTL <= 0 {
		return Config{}, fmt.Errorf("SESSION_TTL must be positive, got %s", cfg.SessionTTL)
	}
	switch cfg.DBDriver {
	case "sqlite", "postgres", "memory":
	default:
		return Config{}, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	return cfg, nil
}
