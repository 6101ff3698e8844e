package config

import (
	"context"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const devSecret = "dev-only-secret"

type Config struct {
	Env         string
	Port        int
	StoreDriver string
	DBURL       string

	MongoURI string
	MongoDB  string

	RedisAddr         string
	RedisPassword     string
	RedisDB           int
	AnalyticsCacheTTL time.Duration

	JWTSecret string

	AMQPURL      string
	AMQPExchange string

	OTelEnabled     bool
	OTelEndpoint    string
	// OTelSampleRatio is the fraction of root spans kept, in (0, 1].
	OTelSampleRatio float64

	CORSAllowedOrigins []string
	RequestTimeout     time.Duration
	SignInRateLimit    int
	// WriteRateLimit caps authenticated rating and order writes per user per minute.
	WriteRateLimit     int
	// TrustedProxies lists proxy IPs/CIDRs whose X-Forwarded-For is believed. Empty trusts none.
	TrustedProxies     []string

	SeedSellerEmail    string
	SeedSellerPassword string
	SeedSellerName     string
}

// Load reads an optional .env file and then the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Env:         getEnv("APP_ENV", "dev"),
		Port:        getEnvInt("PORT", 3000),
		StoreDriver: strings.ToLower(getEnv("STORE_DRIVER", "postgres")),
		DBURL:       buildDBURL(),

		MongoURI: getEnv("MONGO_URI", "mongodb://127.0.0.1:27017"),
		MongoDB:  getEnv("MONGO_DB", "storefront"),

		RedisAddr:         getEnv("REDIS_ADDR", ""),
		RedisPassword:     getEnv("REDIS_PASSWORD", ""),
		RedisDB:           getEnvInt("REDIS_DB", 0),
		AnalyticsCacheTTL: time.Duration(getEnvInt("ANALYTICS_CACHE_TTL_SECONDS", 30)) * time.Second,

		JWTSecret: getEnv("JWT_SECRET", ""),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "storefront.orders"),

		OTelEnabled:     getEnv("OTEL_ENABLED", "false") == "true",
		OTelEndpoint:    getEnv("OTEL_ENDPOINT", "localhost:4317"),
		OTelSampleRatio: getEnvFloat("OTEL_SAMPLE_RATIO", 1),

		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "")),
		RequestTimeout:     time.Duration(getEnvInt("REQUEST_TIMEOUT_MS", 3000)) * time.Millisecond,
		SignInRateLimit:    getEnvInt("SIGNIN_RATE_LIMIT", 20),
		WriteRateLimit:     getEnvInt("WRITE_RATE_LIMIT", 60),
		TrustedProxies:     splitList(getEnv("TRUSTED_PROXIES", "")),

		SeedSellerEmail:    getEnv("SEED_SELLER_EMAIL", ""),
		SeedSellerPassword: getEnv("SEED_SELLER_PASSWORD", ""),
		SeedSellerName:     getEnv("SEED_SELLER_NAME", "Store Owner"),
	}

	if cfg.JWTSecret == "" {
		if cfg.Env != "dev" && cfg.Env != "test" {
			return Config{}, fmt.Errorf("JWT_SECRET is required when APP_ENV=%s", cfg.Env)
		}
		cfg.JWTSecret = devSecret
	}

	if err := validateProxies(cfg.TrustedProxies); err != nil {
		return Config{}, err
	}

	switch cfg.StoreDriver {
	case "memory", "postgres", "mongo":
	default:
		return Config{}, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}

	return cfg, nil
}

func validateProxies(entries []string) error {
	for _, entry := range entries {
		if strings.Contains(entry, "/") {
			if _, _, err := net.ParseCIDR(entry); err != nil {
				return fmt.Errorf("TRUSTED_PROXIES: %w", err)
			}
			continue
		}
		if net.ParseIP(entry) == nil {
			return fmt.Errorf("TRUSTED_PROXIES: invalid IP %q", entry)
		}
	}
	return nil
}

func buildDBURL() string {
	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "storefront")
	pass := getEnv("DB_PASSWORD", "storefront")
	name := getEnv("DB_NAME", "storefront")
	ssl := getEnv("DB_SSLMODE", "disable")

	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=" + ssl
}

// WithTimeout bounds a store call made on behalf of parent.
func WithTimeout(parent context.Context, duration time.Duration) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(parent, duration)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		num, err := strconv.Atoi(v)
		if err != nil {
			return fallback
		}

		return num
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}

	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))

	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
