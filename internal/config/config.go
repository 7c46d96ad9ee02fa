package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config contains runtime configuration values. It is built once at startup
// and never mutated afterwards.
type Config struct {
	Environment          string
	HTTPPort             string
	DatabaseURL          string
	SecretKey            string
	Algorithm            string
	AccessTokenTTL       time.Duration
	SuperuserEmail       string
	SuperuserUsername    string
	SuperuserPassword    string
	RedisAddr            string
	RedisPassword        string
	RedisDB              int
	IdentityCacheTTL     time.Duration
	ServiceName          string
	RateLimitRPM         int
	TelemetryEndpoint    string
	TelemetryInsecure    bool
	CORSAllowedOrigins   []string
	CORSAllowedMethods   []string
	CORSAllowedHeaders   []string
	CORSAllowCredentials bool
}

// Load reads configuration from environment variables with sane defaults.
func Load() (Config, error) {
	_ = godotenv.Load()

	secret := strings.TrimSpace(os.Getenv("SECRET_KEY"))
	if secret == "" {
		return Config{}, fmt.Errorf("SECRET_KEY is required")
	}
	superEmail := strings.TrimSpace(os.Getenv("FIRST_SUPERUSER_EMAIL"))
	if superEmail == "" {
		return Config{}, fmt.Errorf("FIRST_SUPERUSER_EMAIL is required")
	}
	superUsername := strings.TrimSpace(os.Getenv("FIRST_SUPERUSER_USERNAME"))
	if superUsername == "" {
		return Config{}, fmt.Errorf("FIRST_SUPERUSER_USERNAME is required")
	}
	superPassword := strings.TrimSpace(os.Getenv("FIRST_SUPERUSER_PASSWORD"))
	if superPassword == "" {
		return Config{}, fmt.Errorf("FIRST_SUPERUSER_PASSWORD is required")
	}

	cfg := Config{
		Environment:          getEnv("APP_ENV", "development"),
		HTTPPort:             getEnv("HTTP_PORT", "8000"),
		DatabaseURL:          os.Getenv("DATABASE_URL"),
		SecretKey:            secret,
		Algorithm:            getEnv("JWT_ALGORITHM", "HS256"),
		AccessTokenTTL:       time.Duration(getInt("ACCESS_TOKEN_EXPIRE_MINUTES", 120)) * time.Minute,
		SuperuserEmail:       superEmail,
		SuperuserUsername:    superUsername,
		SuperuserPassword:    superPassword,
		RedisAddr:            os.Getenv("REDIS_ADDR"),
		RedisPassword:        os.Getenv("REDIS_PASSWORD"),
		RedisDB:              getInt("REDIS_DB", 0),
		IdentityCacheTTL:     getDuration("IDENTITY_CACHE_TTL", 30*time.Second),
		ServiceName:          getEnv("SERVICE_NAME", "poetry-todo-api"),
		RateLimitRPM:         getInt("RATE_LIMIT_RPM", 600),
		TelemetryEndpoint:    os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		TelemetryInsecure:    getBool("OTEL_EXPORTER_OTLP_INSECURE", true),
		CORSAllowedOrigins:   getList("BACKEND_CORS_ORIGINS", []string{"*"}),
		CORSAllowedMethods:   getList("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"}),
		CORSAllowedHeaders:   getList("CORS_ALLOWED_HEADERS", []string{"Authorization", "Content-Type"}),
		CORSAllowCredentials: getBool("CORS_ALLOW_CREDENTIALS", false),
	}

	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.AccessTokenTTL <= 0 {
		return Config{}, fmt.Errorf("ACCESS_TOKEN_EXPIRE_MINUTES must be positive")
	}

	return cfg, nil
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok {
		d, err := time.ParseDuration(v)
		if err == nil {
			return d
		}
	}
	return def
}

func getInt(key string, def int) int {
	if v, ok := os.LookupEnv(key); ok {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getBool(key string, def bool) bool {
	if v, ok := os.LookupEnv(key); ok {
		switch strings.ToLower(v) {
		case "1", "true", "t", "yes", "y", "on":
			return true
		case "0", "false", "f", "no", "n", "off":
			return false
		}
	}
	return def
}

func getList(key string, def []string) []string {
	if v, ok := os.LookupEnv(key); ok {
		parts := strings.Split(v, ",")
		var cleaned []string
		for _, p := range parts {
			trimmed := strings.TrimSpace(p)
			if trimmed != "" {
				cleaned = append(cleaned, trimmed)
			}
		}
		if len(cleaned) > 0 {
			return cleaned
		}
	}
	return def
}
