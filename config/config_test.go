package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("APP_ENV", "development")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("JWT_REFRESH_SECRET", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, StoreMemory, cfg.StoreDriver)
	assert.Equal(t, 15*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.RefreshTokenTTL)
	assert.NotEqual(t, cfg.JWTSecret, cfg.JWTRefreshSecret)
	assert.True(t, cfg.EnableSwagger)
	assert.True(t, cfg.EnableMetrics)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("STORE_DRIVER", "MONGO")
	t.Setenv("JWT_SECRET", "a")
	t.Setenv("JWT_REFRESH_SECRET", "b")
	t.Setenv("ACCESS_TOKEN_TTL", "5m")
	t.Setenv("ENABLE_SWAGGER", "false")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example ,")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, StoreMongo, cfg.StoreDriver)
	assert.Equal(t, 5*time.Minute, cfg.AccessTokenTTL)
	assert.False(t, cfg.EnableSwagger)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
}

func TestLoadConfigRejects(t *testing.T) {
	testCases := []struct {
		name string
		env  map[string]string
	}{
		{name: "unknown store", env: map[string]string{"STORE_DRIVER": "sqlite"}},
		{name: "missing secrets in production", env: map[string]string{"STORE_DRIVER": "memory", "APP_ENV": "production", "JWT_SECRET": "", "JWT_REFRESH_SECRET": ""}},
		{name: "shared secret", env: map[string]string{"STORE_DRIVER": "memory", "JWT_SECRET": "same", "JWT_REFRESH_SECRET": "same"}},
		{name: "weak bcrypt cost", env: map[string]string{"STORE_DRIVER": "memory", "BCRYPT_COST": "4"}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			_, err := LoadConfig()
			assert.Error(t, err)
		})
	}
}
