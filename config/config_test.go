package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecomstore/passport/config"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PASSPORT_JWT_SECRET", "test-secret")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.HTTPPort)
	assert.Equal(t, "/", cfg.BaseURI)
	assert.Equal(t, "test-secret", cfg.JWTSecret)
	assert.Equal(t, 3*time.Hour, cfg.TokenTTL())
	assert.Equal(t, 120*time.Second, cfg.ProfileTTL())
	assert.Equal(t, 10*time.Minute, cfg.ReconcileInterval())
	assert.Equal(t, 800*time.Millisecond, cfg.ReconcileStagger())
	assert.Empty(t, cfg.RedisAddr)
}

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Setenv("PASSPORT_JWT_SECRET", "")

	_, err := config.Load()
	assert.ErrorContains(t, err, "jwt_secret")
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PASSPORT_JWT_SECRET", "test-secret")
	t.Setenv("PASSPORT_HTTP_PORT", "8080")
	t.Setenv("PASSPORT_BASE_URI", "/v1/login")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.HTTPPort)
	// The base URI always ends with a slash so callback URLs concatenate
	// cleanly.
	assert.Equal(t, "/v1/login/", cfg.BaseURI)
}
