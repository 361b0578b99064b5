package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config collects every setting the binaries read from the environment.
// cmd/* call godotenv.Load before Load so a local .env file works too.
type Config struct {
	AppPort string
	AppEnv  string

	// Timezone decides which calendar day a clock instant belongs to.
	Timezone string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// StorageDriver is "postgres" or "memory".
	StorageDriver string
	// LockDriver is "local" or "redis".
	LockDriver  string
	LockWait    time.Duration
	LockTTL     time.Duration
	RedisAddr   string
	KafkaBroker string

	// OutboxBatchSize caps how many outbox rows one relay round publishes.
	OutboxBatchSize int

	JWTSecret    string
	KioskKeyHash string
	CORSOrigins  []string
	// KioskRatePerMin and KioskBurst throttle each kiosk device.
	KioskRatePerMin int
	KioskBurst      int

	ShiftPolicyFile string
	// RosterFile seeds the directory when StorageDriver is "memory".
	RosterFile   string
	MultiSession bool
	TrendWeeks   int

	// SweepAt schedules the close-out of the previous day: a local
	// wall-clock time (HH:MM) or a five-field cron spec.
	SweepAt string
}

func get(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getBool(k string, def bool) bool {
	v, err := strconv.ParseBool(os.Getenv(k))
	if err != nil {
		return def
	}
	return v
}

func getInt(k string, def int) int {
	v, err := strconv.Atoi(os.Getenv(k))
	if err != nil {
		return def
	}
	return v
}

func getDuration(k string, def time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(k))
	if err != nil {
		return def
	}
	return v
}

func Load() *Config {
	return &Config{
		AppPort: get("PORT", "3000"),
		AppEnv:  get("APP_ENV", "dev"),

		Timezone: get("APP_TIMEZONE", "UTC"),

		DBHost:     get("DB_HOST", "localhost"),
		DBPort:     get("DB_PORT", "5432"),
		DBUser:     get("DB_USER", "postgres"),
		DBPassword: get("DB_PASSWORD", ""),
		DBName:     get("DB_NAME", "attendance"),
		DBSSLMode:  get("DB_SSLMODE", "disable"),

		StorageDriver: get("STORAGE_DRIVER", "postgres"),
		LockDriver:    get("LOCK_DRIVER", "local"),
		LockWait:      getDuration("LOCK_WAIT", 2*time.Second),
		LockTTL:       getDuration("LOCK_TTL", 5*time.Second),
		RedisAddr:     get("REDIS_ADDR", ""),
		KafkaBroker:   get("KAFKA_BROKER", ""),

		OutboxBatchSize: getInt("OUTBOX_BATCH_SIZE", 50),

		JWTSecret:    get("JWT_SECRET", ""),
		KioskKeyHash: get("KIOSK_KEY_HASH", ""),
		CORSOrigins:  splitList(get("CORS_ORIGINS", "http://localhost:3000")),

		KioskRatePerMin: getInt("KIOSK_RATE_PER_MIN", 60),
		KioskBurst:      getInt("KIOSK_BURST", 10),

		ShiftPolicyFile: get("SHIFT_POLICY_FILE", "config/shifts.yaml"),
		RosterFile:      get("ROSTER_FILE", "config/roster.yaml"),
		MultiSession:    getBool("ATTENDANCE_MULTI_SESSION", false),
		TrendWeeks:      getInt("DASHBOARD_TREND_WEEKS", 4),

		SweepAt: get("SWEEP_AT", "00:05"),
	}
}

// Location resolves Timezone, failing loudly on a typo instead of
// silently bucketing events into UTC days.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid APP_TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBSSLMode,
	)
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
