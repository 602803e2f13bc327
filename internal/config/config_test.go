package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocationResolvesConfiguredZone(t *testing.T) {
	cfg := Config{Timezone: "Asia/Manila"}
	loc := cfg.Location()
	require.NotNil(t, loc)

	// Noon in Manila is 04:00 UTC.
	at := time.Date(2024, time.March, 1, 12, 0, 0, 0, loc)
	assert.Equal(t, 4, at.UTC().Hour())
}

func TestEnvHelpers(t *testing.T) {
	t.Setenv("X_STR", "value")
	t.Setenv("X_BOOL", "true")
	t.Setenv("X_INT", "7")
	t.Setenv("X_DUR", "90s")

	assert.Equal(t, "value", envStr("X_STR", "fallback"))
	assert.Equal(t, "fallback", envStr("X_MISSING", "fallback"))
	assert.True(t, envBool("X_BOOL", false))
	assert.False(t, envBool("X_MISSING", false))
	assert.Equal(t, 7, envInt("X_INT", 1))
	assert.Equal(t, 1, envInt("X_MISSING", 1))
	assert.Equal(t, 90*time.Second, envDur("X_DUR", time.Second))
	assert.Equal(t, time.Second, envDur("X_MISSING", time.Second))
}

func TestLoadRateLimitConfigDefaults(t *testing.T) {
	cfg := LoadRateLimitConfig()
	assert.True(t, cfg.Enabled)
	assert.GreaterOrEqual(t, cfg.Capacity, 1)
	assert.GreaterOrEqual(t, cfg.RefillTokens, 1)
	assert.Greater(t, cfg.RefillInterval, time.Duration(0))
	// TTL never drops below a few refill intervals or bucket state would
	// vanish between refills.
	assert.GreaterOrEqual(t, cfg.TTL, 5*cfg.RefillInterval)
}
