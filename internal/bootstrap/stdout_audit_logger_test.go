package bootstrap

import (
	"context"
	"testing"
	"time"

	"github.com/Tabintel/attendance/internal/shared/contextutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestStdoutAuditLogger_Log(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	l := NewStdoutAuditLogger(zap.New(core))
	l.now = func() time.Time { return time.Date(2024, 3, 2, 0, 5, 0, 0, time.UTC) }

	ctx := contextutil.WithRequestID(context.Background(), "req-1")
	ctx = contextutil.WithActorID(ctx, "scheduler")
	l.Log(ctx, AuditLog{Action: "DAY_CLOSED_OUT", Message: "closed", Meta: map[string]any{"created": 2}})

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "audit", entry.LoggerName)
	fields := entry.ContextMap()
	assert.Equal(t, "DAY_CLOSED_OUT", fields["action"])
	assert.Equal(t, "2024-03-02T00:05:00Z", fields["timestamp"])
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, "scheduler", fields["actor_id"])
}
