package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("ARENA_TEST_INT", "42")
	t.Setenv("ARENA_TEST_BAD_INT", "abc")
	t.Setenv("ARENA_TEST_FLOAT", "0.5")
	t.Setenv("ARENA_TEST_DURATION", "90s")
	t.Setenv("ARENA_TEST_DURATION_SECS", "2.5")
	t.Setenv("ARENA_TEST_BOOL", "true")

	assert.Equal(t, 42, GetEnvInt("ARENA_TEST_INT", 1))
	assert.Equal(t, 1, GetEnvInt("ARENA_TEST_BAD_INT", 1))
	assert.Equal(t, 7, GetEnvInt("ARENA_TEST_MISSING", 7))
	assert.InDelta(t, 0.5, GetEnvFloat("ARENA_TEST_FLOAT", 1), 1e-9)
	assert.Equal(t, 90*time.Second, GetEnvDuration("ARENA_TEST_DURATION", time.Second))
	assert.Equal(t, 2500*time.Millisecond, GetEnvDuration("ARENA_TEST_DURATION_SECS", time.Second))
	assert.True(t, GetEnvBool("ARENA_TEST_BOOL", false))
	assert.Equal(t, "fallback", GetEnvOrDefault("ARENA_TEST_MISSING", "fallback"))
}

func TestSanitizeConfigForLog(t *testing.T) {
	got := SanitizeConfigForLog(map[string]any{
		"http_port":      "8080",
		"redis_password": "secret",
		"database_url":   "postgres://u:p@db/arena",
	})

	assert.Equal(t, "8080", got["http_port"])
	assert.Equal(t, "***REDACTED***", got["redis_password"])
	assert.Equal(t, "***REDACTED***", got["database_url"])
}
