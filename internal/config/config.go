package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config carries everything the service reads from the environment.
type Config struct {
	ServiceName string
	AppEnv      string
	LogLevel    string

	HTTPAddr string

	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	RedisHost string
	RedisPort int

	SessionTTL time.Duration

	// Hosted checkout pages. Completion is only learned through the
	// manual confirmation endpoint, there is no webhook.
	PremiumPaymentLink string
	MerchPaymentLink   string
}

func Load() Config {
	v := viper.New()

	v.SetDefault("SERVICE_NAME", "storefront-api")
	v.SetDefault("APP_ENV", "dev")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("HTTP_ADDR", ":8080")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "storefront_db")
	v.SetDefault("DB_SSLMODE", "disable")

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)

	v.SetDefault("SESSION_TTL", "24h")

	v.SetDefault("PREMIUM_PAYMENT_LINK", "https://buy.stripe.com/7sYdRb1Nj5xCfSlfKd6Na07")
	v.SetDefault("MERCH_PAYMENT_LINK", "https://buy.stripe.com/6oU3cx77D1hmcG92Xr6Na02")

	v.AutomaticEnv()

	return Config{
		ServiceName: v.GetString("SERVICE_NAME"),
		AppEnv:      v.GetString("APP_ENV"),
		LogLevel:    v.GetString("LOG_LEVEL"),
		HTTPAddr:    v.GetString("HTTP_ADDR"),

		DBHost:     v.GetString("DB_HOST"),
		DBPort:     v.GetInt("DB_PORT"),
		DBUser:     v.GetString("DB_USER"),
		DBPassword: v.GetString("DB_PASSWORD"),
		DBName:     v.GetString("DB_NAME"),
		DBSSLMode:  v.GetString("DB_SSLMODE"),

		RedisHost: v.GetString("REDIS_HOST"),
		RedisPort: v.GetInt("REDIS_PORT"),

		SessionTTL: v.GetDuration("SESSION_TTL"),

		PremiumPaymentLink: v.GetString("PREMIUM_PAYMENT_LINK"),
		MerchPaymentLink:   v.GetString("MERCH_PAYMENT_LINK"),
	}
}

// DSN renders the lib/pq connection string.
func (c Config) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

// RedisAddr renders the host:port pair for the Redis client.
func (c Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}
