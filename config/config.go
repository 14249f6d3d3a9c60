package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server configuration
	Environment string

	// Admin auth
	JWTSecret     string
	AdminEmail    string
	AdminPassword string

	// Payment gateway (Midtrans Snap)
	MidtransBaseURL   string
	MidtransServerKey string
	MidtransClientKey string
	GatewayTimeout    time.Duration

	// Transactional email (Resend)
	ResendAPIKey    string
	ResendFromEmail string

	// Redis configuration
	RedisURL string

	// Payment session cache
	SessionTTL time.Duration

	// PubNub order-events channel
	PubNubPublishKey   string
	PubNubSubscribeKey string
	PubNubUserID       string
	PubNubChannel      string

	// Rate limiting for order creation
	OrderRateLimit  int
	OrderRateWindow time.Duration

	// Monitoring
	EnableMetrics bool
}

func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using process environment")
	}

	return &Config{
		Environment: getEnv("ENVIRONMENT", "development"),

		JWTSecret:     getEnv("JWT_SECRET", ""),
		AdminEmail:    getEnv("ADMIN_EMAIL", ""),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),

		MidtransBaseURL:   getEnv("MIDTRANS_BASE_URL", "https://app.sandbox.midtrans.com"),
		MidtransServerKey: getEnv("MIDTRANS_SERVER_KEY", ""),
		MidtransClientKey: getEnv("MIDTRANS_CLIENT_KEY", ""),
		GatewayTimeout:    getEnvAsDuration("GATEWAY_TIMEOUT", "10s"),

		ResendAPIKey:    getEnv("RESEND_API_KEY", ""),
		ResendFromEmail: getEnv("RESEND_FROM_EMAIL", ""),

		RedisURL: getEnv("REDIS_URL", "localhost:6379"),

		SessionTTL: getEnvAsDuration("PAYMENT_SESSION_TTL", "10m"),

		PubNubPublishKey:   getEnv("PUBNUB_PUBLISH_KEY", ""),
		PubNubSubscribeKey: getEnv("PUBNUB_SUBSCRIBE_KEY", ""),
		PubNubUserID:       getEnv("PUBNUB_USER_ID", "ticketing-backend"),
		PubNubChannel:      getEnv("PUBNUB_CHANNEL", "order-events"),

		OrderRateLimit:  getEnvAsInt("ORDER_RATE_LIMIT", 30),
		OrderRateWindow: getEnvAsDuration("ORDER_RATE_WINDOW", "1m"),

		EnableMetrics: getEnvAsBool("ENABLE_METRICS", true),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
