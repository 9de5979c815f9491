package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	DBUrl       string
	FrontendURL string
	Environment string

	// Auth
	JWTSecret       string // HS256 secret for locally issued tokens
	JWKSUrl         string // optional RS256 provider (external IdP)
	TokenTTLMinutes int

	// Booking policy
	CancellationCutoffHours int // refund window before class start
	DefaultSignupCredits    int // welcome credits granted on signup

	// Reporting policy
	RevenuePerCredit float64 // currency value attributed to one redeemed credit

	// Redis
	RedisURL      string
	RedisPassword string

	// Rate limiting
	RateLimitWindowSeconds   int
	RateLimitLoginThreshold  int
	RateLimitGlobalThreshold int

	// S3-compatible media + audit anchor storage
	S3Region          string
	S3AccessKeyID     string
	S3SecretAccessKey string
	MediaBucket       string
	AuditAnchorBucket string

	// Audit dashboard
	AuditTOTPSecret string // TOTP secret gating ledger audit endpoints
}

func LoadConfig() (*Config, error) {
	// .env is only present locally; ignored in production.
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		DBUrl:       getEnv("DATABASE_URL", ""),
		FrontendURL: strings.TrimRight(getEnv("FRONTEND_URL", "http://localhost:3000"), "/"),
		Environment: getEnv("APP_ENV", "development"),

		JWTSecret:       getEnv("JWT_SECRET", ""),
		JWKSUrl:         strings.TrimRight(getEnv("JWKS_URL", ""), "/"),
		TokenTTLMinutes: getEnvInt("TOKEN_TTL_MINUTES", 60*24),

		CancellationCutoffHours: getEnvInt("CANCELLATION_CUTOFF_HOURS", 24),
		DefaultSignupCredits:    getEnvInt("DEFAULT_SIGNUP_CREDITS", 10),

		// The per-credit revenue factor is a business policy value, not a
		// ledger-native currency amount.
		RevenuePerCredit: getEnvFloat("REVENUE_PER_CREDIT", 10.0),

		RedisURL:      getEnv("REDIS_URL", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		RateLimitWindowSeconds:   getEnvInt("RATE_LIMIT_WINDOW_SECONDS", 60),
		RateLimitLoginThreshold:  getEnvInt("RATE_LIMIT_LOGIN_THRESHOLD", 10),
		RateLimitGlobalThreshold: getEnvInt("RATE_LIMIT_GLOBAL_THRESHOLD", 100),

		S3Region:          getEnv("S3_REGION", ""),
		S3AccessKeyID:     getEnv("S3_ACCESS_KEY_ID", ""),
		S3SecretAccessKey: getEnv("S3_SECRET_ACCESS_KEY", ""),
		MediaBucket:       getEnv("MEDIA_BUCKET", ""),
		AuditAnchorBucket: getEnv("AUDIT_ANCHOR_BUCKET", ""),

		AuditTOTPSecret: getEnv("AUDIT_TOTP_SECRET", ""),
	}

	if cfg.DBUrl == "" {
		log.Println("WARNING: DATABASE_URL is missing. Application may fail to connect.")
	}
	if cfg.JWTSecret == "" && cfg.JWKSUrl == "" {
		log.Println("WARNING: neither JWT_SECRET nor JWKS_URL configured. Authentication will reject all tokens.")
	}
	if cfg.RedisURL == "" {
		log.Println("WARNING: REDIS_URL not configured. Rate limiting will use in-memory fallback.")
	}

	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}
