package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/MoosaAfzal2/poetry-todo-api/internal/config"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("SECRET_KEY", "test-secret")
	t.Setenv("FIRST_SUPERUSER_EMAIL", "admin@example.com")
	t.Setenv("FIRST_SUPERUSER_USERNAME", "admin")
	t.Setenv("FIRST_SUPERUSER_PASSWORD", "admin-secret")
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/todo")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := config.Load()
	require.NoError(t, err)

	require.Equal(t, "development", cfg.Environment)
	require.Equal(t, "8000", cfg.HTTPPort)
	require.Equal(t, "HS256", cfg.Algorithm)
	require.Equal(t, 120*time.Minute, cfg.AccessTokenTTL)
	require.Equal(t, 30*time.Second, cfg.IdentityCacheTTL)
	require.Equal(t, 600, cfg.RateLimitRPM)
	require.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	require.Empty(t, cfg.RedisAddr)
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("ACCESS_TOKEN_EXPIRE_MINUTES", "15")
	t.Setenv("JWT_ALGORITHM", "HS512")
	t.Setenv("BACKEND_CORS_ORIGINS", "https://a.example.com, https://b.example.com")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("IDENTITY_CACHE_TTL", "2m")

	cfg, err := config.Load()
	require.NoError(t, err)

	require.Equal(t, 15*time.Minute, cfg.AccessTokenTTL)
	require.Equal(t, "HS512", cfg.Algorithm)
	require.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORSAllowedOrigins)
	require.Equal(t, "localhost:6379", cfg.RedisAddr)
	require.Equal(t, 2*time.Minute, cfg.IdentityCacheTTL)
}

func TestLoadMissingRequired(t *testing.T) {
	setRequired(t)
	t.Setenv("SECRET_KEY", "")

	_, err := config.Load()
	require.Error(t, err)

	setRequired(t)
	t.Setenv("DATABASE_URL", "")

	_, err = config.Load()
	require.Error(t, err)
}

func TestLoadRejectsNonPositiveTokenLifetime(t *testing.T) {
	setRequired(t)
	t.Setenv("ACCESS_TOKEN_EXPIRE_MINUTES", "0")

	_, err := config.Load()
	require.Error(t, err)
}
