package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_DefaultsAndOverrides(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("ATTENDANCE_MULTI_SESSION", "true")
	t.Setenv("LOCK_WAIT", "750ms")
	t.Setenv("DASHBOARD_TREND_WEEKS", "not-a-number")
	t.Setenv("CORS_ORIGINS", "http://kiosk.local, ,http://dash.local")

	cfg := Load()

	assert.Equal(t, "3000", cfg.AppPort)
	assert.True(t, cfg.MultiSession)
	assert.Equal(t, 750*time.Millisecond, cfg.LockWait)
	assert.Equal(t, 4, cfg.TrendWeeks)
	assert.Equal(t, []string{"http://kiosk.local", "http://dash.local"}, cfg.CORSOrigins)
}

func TestLocation(t *testing.T) {
	cfg := &Config{Timezone: "UTC"}
	loc, err := cfg.Location()
	assert.NoError(t, err)
	assert.Equal(t, time.UTC, loc)

	cfg.Timezone = "Mars/Olympus"
	_, err = cfg.Location()
	assert.Error(t, err)
}
