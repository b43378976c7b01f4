package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// HTTP
	Port string

	// Logging
	LogLevel  string
	LogFormat string
	AppName   string

	// Postgres (opcional: sin DSN todo queda in-memory)
	DBDSN string

	// Redis (opcional: publica alertas/lecturas si hay addr)
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Simulador
	TickInterval        time.Duration
	FreshWindow         time.Duration
	AlertProbability    float64
	AlertSuppressUnread bool
	SeedMockData        bool
	RNGSeed             int64

	// Sync
	SyncDelay       time.Duration
	SyncSuccessRate float64
	SyncTimeout     time.Duration
	SyncMaxAttempts int

	// Auth
	AuthBaseURL         string
	AuthAPIKey          string
	AuthTimeout         time.Duration
	AllowAllPermissions bool
}

// Load lee .env (si existe) y luego variables de entorno.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:                getEnv("PORT", "8080"),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		LogFormat:           getEnv("LOG_FORMAT", "text"),
		AppName:             getEnv("APP_NAME", "pet-health-monitor"),
		DBDSN:               getEnv("DB_DSN", ""),
		RedisAddr:           getEnv("REDIS_ADDR", ""),
		RedisPassword:       getEnv("REDIS_PASSWORD", ""),
		RedisDB:             getEnvInt("REDIS_DB", 0),
		TickInterval:        getEnvDuration("TICK_INTERVAL", 10*time.Second),
		FreshWindow:         getEnvDuration("FRESH_WINDOW", 60*time.Second),
		AlertProbability:    getEnvFloat("ALERT_PROBABILITY", 0.1),
		AlertSuppressUnread: getEnvBool("ALERT_SUPPRESS_UNREAD", false),
		SeedMockData:        getEnvBool("SEED_MOCK_DATA", true),
		RNGSeed:             int64(getEnvInt("RNG_SEED", 0)),
		SyncDelay:           getEnvDuration("SYNC_DELAY", 2*time.Second),
		SyncSuccessRate:     getEnvFloat("SYNC_SUCCESS_RATE", 0.9),
		SyncTimeout:         getEnvDuration("SYNC_TIMEOUT", 30*time.Second),
		SyncMaxAttempts:     getEnvInt("SYNC_MAX_ATTEMPTS", 3),
		AuthBaseURL:         getEnv("AUTH_BASE_URL", ""),
		AuthAPIKey:          getEnv("AUTH_API_KEY", ""),
		AuthTimeout:         getEnvDuration("AUTH_TIMEOUT", 5*time.Second),
		AllowAllPermissions: getEnvBool("ALLOW_ALL_PERMISSIONS", false),
	}
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvFloat(key string, fallback float64) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func getEnvBool(key string, fallback bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

// getEnvDuration acepta "10s", "1m" o segundos enteros ("10").
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil && d > 0 {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil && n > 0 {
		return time.Duration(n) * time.Second
	}
	return fallback
}
