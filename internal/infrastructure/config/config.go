package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds environment-driven configuration.
type Config struct {
	Addr         string
	DatabaseURL  string
	RedisURL     string
	JWTSecret    string
	LogLevel     string
	AllowOrigins string

	// CheckoutMaxRetries bounds how many times a conflicting checkout is
	// replayed before the conflict is reported to the caller.
	CheckoutMaxRetries uint64
}

// Load reads a local .env file when present and then the process environment.
// An empty DatabaseURL selects the in-memory store; an empty RedisURL disables
// the cart cache.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Addr:               getEnv("BOOKSTORE_ADDR", ":8080"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		RedisURL:           os.Getenv("REDIS_URL"),
		JWTSecret:          os.Getenv("JWT_SECRET"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		AllowOrigins:       getEnv("CORS_ALLOW_ORIGINS", "*"),
		CheckoutMaxRetries: getUint("CHECKOUT_MAX_RETRIES", 3),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getUint(key string, fallback uint64) uint64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}
