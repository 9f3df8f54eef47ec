package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// JWT
	JWTSecret        string
	JWTAccessExpiry  time.Duration
	JWTRefreshExpiry time.Duration

	// PayPal
	PayPalClientID       string
	PayPalClientSecret   string
	PayPalAPIBase        string
	PayPalWebhookID      string
	SkipPayPalValidation bool // dev-only escape hatch, must stay off in production

	// RevenueCat
	RevenueCatWebhookAuth string

	// AI Providers
	OpenAIAPIKey      string
	OpenAIAPIURL      string
	OpenAIModel       string
	OpenAIVisionModel string

	DeepSeekAPIKey string
	DeepSeekAPIURL string
	DeepSeekModel  string

	AITimeout time.Duration

	// Premium pricing (expected charge per tier, USD)
	MonthlyPriceUSD float64
	YearlyPriceUSD  float64

	// Free-tier daily limits
	FreeFoodScansPerDay     int
	FreeCoachMessagesPerDay int

	// Sign in with Apple
	AppleBundleID string

	// Admin
	AdminEmails string

	// Server
	Port        string
	CORSOrigins string

	// Optional Redis-backed rate limiting
	RedisHost     string
	RedisPort     int
	RedisPassword string
}

func Load() *Config {
	// Local development convenience; no-op when the file is absent.
	_ = godotenv.Load()

	return &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "gatofit"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		JWTSecret:        getEnv("JWT_SECRET", ""),
		JWTAccessExpiry:  parseDuration(getEnv("JWT_ACCESS_EXPIRY", "15m")),
		JWTRefreshExpiry: parseDuration(getEnv("JWT_REFRESH_EXPIRY", "168h")),

		PayPalClientID:       getEnv("PAYPAL_CLIENT_ID", ""),
		PayPalClientSecret:   getEnv("PAYPAL_CLIENT_SECRET", ""),
		PayPalAPIBase:        getEnv("PAYPAL_API_BASE", "https://api-m.paypal.com"),
		PayPalWebhookID:      getEnv("PAYPAL_WEBHOOK_ID", ""),
		SkipPayPalValidation: parseBool(getEnv("SKIP_PAYPAL_VALIDATION", "false")),

		RevenueCatWebhookAuth: getEnv("REVENUECAT_WEBHOOK_AUTH", ""),

		OpenAIAPIKey:      getEnv("OPENAI_API_KEY", ""),
		OpenAIAPIURL:      getEnv("OPENAI_API_URL", "https://api.openai.com/v1/chat/completions"),
		OpenAIModel:       getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIVisionModel: getEnv("OPENAI_VISION_MODEL", "gpt-4o"),

		DeepSeekAPIKey: getEnv("DEEPSEEK_API_KEY", ""),
		DeepSeekAPIURL: getEnv("DEEPSEEK_API_URL", "https://api.deepseek.com/v1/chat/completions"),
		DeepSeekModel:  getEnv("DEEPSEEK_MODEL", "deepseek-chat"),

		AITimeout: parseDuration(getEnv("AI_TIMEOUT", "60s")),

		MonthlyPriceUSD: parseFloat(getEnv("PREMIUM_MONTHLY_PRICE", "9.99")),
		YearlyPriceUSD:  parseFloat(getEnv("PREMIUM_YEARLY_PRICE", "59.99")),

		FreeFoodScansPerDay:     parseInt(getEnv("FREE_FOOD_SCANS_PER_DAY", "3")),
		FreeCoachMessagesPerDay: parseInt(getEnv("FREE_COACH_MESSAGES_PER_DAY", "5")),

		AppleBundleID: getEnv("APPLE_BUNDLE_ID", "com.gatofit.app"),

		AdminEmails: getEnv("ADMIN_EMAILS", ""),

		Port:        getEnv("PORT", "8080"),
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),

		RedisHost:     getEnv("REDIS_HOST", ""),
		RedisPort:     parseInt(getEnv("REDIS_PORT", "6379")),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
	}
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseDuration(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 15 * time.Minute
	}
	return d
}

func parseBool(s string) bool {
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false
	}
	return b
}

func parseInt(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

func parseFloat(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}
