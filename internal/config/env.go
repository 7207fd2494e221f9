package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Env struct {
	AppAddr string
	GinMode string

	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string

	RedisAddr     string
	RedisPassword string

	RabbitMQURL   string
	TelegramToken string

	JWTSecret     string
	PublicBaseURL string
	Timezone      string

	MaxRoutesPerDay   int
	PendingTTL        time.Duration
	SchedulerInterval time.Duration

	CORSOrigins []string
	LogLevel    string
}

// LoadEnv reads configuration from the environment, loading a .env file first when present.
func LoadEnv() Env {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("could not load .env file", "error", err)
	}

	return Env{
		AppAddr: getEnv("APP_ADDR", ":8080"),
		GinMode: getEnv("GIN_MODE", ""),

		DBHost:     getEnv("DB_HOST", "127.0.0.1"),
		DBPort:     getEnvInt("DB_PORT", 3306),
		DBUser:     getEnv("DB_USER", "root"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     getEnv("DB_NAME", "carpool"),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		RabbitMQURL:   getEnv("RABBITMQ_URL", ""),
		TelegramToken: getEnv("TELEGRAM_BOT_TOKEN", ""),

		JWTSecret:     getEnv("JWT_SECRET", "change-me"),
		PublicBaseURL: strings.TrimRight(getEnv("PUBLIC_BASE_URL", "http://localhost:8080"), "/"),
		Timezone:      getEnv("APP_TIMEZONE", "Local"),

		MaxRoutesPerDay:   getEnvInt("MAX_ROUTES_PER_DAY", 2),
		PendingTTL:        getEnvDuration("PENDING_TTL", 30*time.Minute),
		SchedulerInterval: getEnvDuration("SCHEDULER_INTERVAL", time.Minute),

		CORSOrigins: splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://127.0.0.1:3000")),
		LogLevel:    getEnv("LOG_LEVEL", "INFO"),
	}
}

// Location resolves Timezone, falling back to the process local zone.
func (e Env) Location() *time.Location {
	if e.Timezone == "" || strings.EqualFold(e.Timezone, "Local") {
		return time.Local
	}
	loc, err := time.LoadLocation(e.Timezone)
	if err != nil {
		slog.Warn("unknown APP_TIMEZONE, using local", "timezone", e.Timezone, "error", err)
		return time.Local
	}
	return loc
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("invalid integer env, using default", "key", key, "value", v)
		return def
	}
	return n
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		slog.Warn("invalid duration env, using default", "key", key, "value", v)
		return def
	}
	return d
}

func splitCSV(s string) []string {
	out := []string{}
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
