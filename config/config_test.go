package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Environment)
	assert.True(t, cfg.App.Development())
	assert.Equal(t, ":3000", cfg.Server.Addr)
	assert.Equal(t, 24*time.Hour, cfg.JWT.AccessTTL)
	assert.Equal(t, 5, cfg.Throttle.MaxAttempts)
	assert.Equal(t, 15*time.Minute, cfg.Throttle.Window)
	assert.Empty(t, cfg.Database.DSN)
	assert.Empty(t, cfg.Redis.Addr)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("BAIYU_SERVER_ADDR", ":8443")
	t.Setenv("BAIYU_JWT_SECRET", "0123456789abcdef0123456789abcdef")
	t.Setenv("BAIYU_JWT_ACCESS_TTL", "45m")
	t.Setenv("BAIYU_DATABASE_DSN", "postgres://app@localhost/forum")
	t.Setenv("BAIYU_APP_SEED_DEMO_USERS", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8443", cfg.Server.Addr)
	assert.Equal(t, "0123456789abcdef0123456789abcdef", cfg.JWT.Secret)
	assert.Equal(t, 45*time.Minute, cfg.JWT.AccessTTL)
	assert.Equal(t, "postgres://app@localhost/forum", cfg.Database.DSN)
	assert.False(t, cfg.App.SeedDemoUsers)
}

func TestLoadRejectsBadSettings(t *testing.T) {
	cases := []struct {
		name  string
		key   string
		value string
	}{
		{"unknown environment", "BAIYU_APP_ENVIRONMENT", "staging"},
		{"short secret", "BAIYU_JWT_SECRET", "too-short"},
		{"zero ttl", "BAIYU_JWT_ACCESS_TTL", "0"},
		{"zero attempts", "BAIYU_THROTTLE_MAX_ATTEMPTS", "0"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestProductionRequiresSecret(t *testing.T) {
	t.Setenv("BAIYU_APP_ENVIRONMENT", "production")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BAIYU_JWT_SECRET")
}
