package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	AppEnv   string
	LogLevel string

	HTTPPort           string
	RequestTimeout     time.Duration
	ShutdownTimeout    time.Duration
	MaxRequestBodySize int64

	APIBaseURL     string
	APITimeout     time.Duration
	BreakerTimeout time.Duration

	IdentityBaseURL string
	IdentityAPIKey  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	KafkaBrokers []string
	KafkaTopic   string

	CartMaxQuantity       int
	Currency              string
	OrderRecordTimeout    time.Duration
	OrderRecordRetries    int
	OrderRecordBackoff    time.Duration
	SimulatedPaymentDelay time.Duration
	PaymentWindow         time.Duration
	SessionTTL            time.Duration
	CatalogCacheTTL       time.Duration
}

func Load() *Config {
	return &Config{
		AppEnv:   getEnv("APP_ENV", "dev"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		HTTPPort:           getEnv("HTTP_PORT", "8080"),
		RequestTimeout:     getEnvDuration("REQUEST_TIMEOUT", 30*time.Second),
		ShutdownTimeout:    getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		MaxRequestBodySize: 1 << 20, // 1MB

		APIBaseURL:     getEnv("API_BASE_URL", "https://amazon-clone-backend-1-s6de.onrender.com/api"),
		APITimeout:     getEnvDuration("API_TIMEOUT", 15*time.Second),
		BreakerTimeout: getEnvDuration("API_BREAKER_TIMEOUT", 30*time.Second),

		IdentityBaseURL: getEnv("IDENTITY_BASE_URL", "https://identitytoolkit.googleapis.com/v1"),
		IdentityAPIKey:  getEnv("IDENTITY_API_KEY", ""),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		KafkaBrokers: splitList(getEnv("KAFKA_BROKERS", "")),
		KafkaTopic:   getEnv("KAFKA_TOPIC", "storefront-checkout"),

		CartMaxQuantity:       getEnvInt("CART_MAX_QUANTITY", 10),
		Currency:              getEnv("CURRENCY", "INR"),
		OrderRecordTimeout:    getEnvDuration("ORDER_RECORD_TIMEOUT", 10*time.Second),
		OrderRecordRetries:    getEnvInt("ORDER_RECORD_RETRIES", 2),
		OrderRecordBackoff:    getEnvDuration("ORDER_RECORD_BACKOFF", 500*time.Millisecond),
		SimulatedPaymentDelay: getEnvDuration("SIMULATED_PAYMENT_DELAY", 2*time.Second),
		PaymentWindow:         getEnvDuration("PAYMENT_WINDOW", 15*time.Minute),
		SessionTTL:            getEnvDuration("SESSION_TTL", 2*time.Hour),
		CatalogCacheTTL:       getEnvDuration("CATALOG_CACHE_TTL", 5*time.Minute),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return defaultValue
	}
	return n
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultValue
	}
	return d
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
