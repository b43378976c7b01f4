package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"PORT", "TICK_INTERVAL", "ALERT_PROBABILITY", "SEED_MOCK_DATA", "SYNC_MAX_ATTEMPTS"} {
		t.Setenv(k, "")
	}

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 10*time.Second, cfg.TickInterval)
	assert.Equal(t, 60*time.Second, cfg.FreshWindow)
	assert.Equal(t, 0.1, cfg.AlertProbability)
	assert.True(t, cfg.SeedMockData)
	assert.False(t, cfg.AlertSuppressUnread)
	assert.Equal(t, 3, cfg.SyncMaxAttempts)
	assert.Equal(t, 0.9, cfg.SyncSuccessRate)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("TICK_INTERVAL", "5")
	t.Setenv("SYNC_TIMEOUT", "2m")
	t.Setenv("ALERT_PROBABILITY", "0.5")
	t.Setenv("ALERT_SUPPRESS_UNREAD", "true")
	t.Setenv("REDIS_DB", "not-a-number")

	cfg := Load()

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 5*time.Second, cfg.TickInterval)
	assert.Equal(t, 2*time.Minute, cfg.SyncTimeout)
	assert.Equal(t, 0.5, cfg.AlertProbability)
	assert.True(t, cfg.AlertSuppressUnread)
	assert.Equal(t, 0, cfg.RedisDB)
}
