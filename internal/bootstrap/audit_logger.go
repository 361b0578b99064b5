package bootstrap

import "context"

// AuditLog is an operational event worth keeping apart from debug logs:
// server lifecycle and day close-outs.
type AuditLog struct {
	Action  string
	Message string
	Meta    map[string]any
}

type AuditLogger interface {
	Log(ctx context.Context, entry AuditLog)
}
