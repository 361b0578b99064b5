package attendance

import (
	"context"
	"strings"
	"time"

	attendanceerrors "github.com/Tabintel/attendance/internal/attendance/errors"
	"github.com/Tabintel/attendance/internal/directory"
	"github.com/Tabintel/attendance/internal/shared/apperror"
)

// ClockEvent is a validated clock assertion ready for the session resolver.
// Action is empty when the caller left the direction to be inferred.
type ClockEvent struct {
	EmployeeID   string
	EmployeeName string
	Instant      time.Time
	WorkDate     time.Time
	Action       string
	DeviceID     *string
	Location     *string
}

// Ingest validates clock submissions. It never mutates state.
type Ingest struct {
	directory directory.Service
	loc       *time.Location
	now       func() time.Time
}

func NewIngest(dir directory.Service, loc *time.Location, now func() time.Time) *Ingest {
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return &Ingest{directory: dir, loc: loc, now: now}
}

func (i *Ingest) Normalize(ctx context.Context, req SubmitClockEventRequest) (ClockEvent, error) {
	token := strings.TrimSpace(req.IdentityToken)
	if token == "" {
		return ClockEvent{}, apperror.RequiredField("identity_token")
	}

	action := strings.ToLower(strings.TrimSpace(req.Direction))
	if action != "" && action != ActionIn && action != ActionOut {
		return ClockEvent{}, attendanceerrors.ErrInvalidDirection
	}

	emp, err := i.directory.ResolveIdentity(ctx, token)
	if err != nil {
		return ClockEvent{}, err
	}

	instant := i.now()
	if req.Instant != nil && !req.Instant.IsZero() {
		instant = *req.Instant
	}
	instant = instant.In(i.loc)

	return ClockEvent{
		EmployeeID:   emp.ID,
		EmployeeName: emp.FullName,
		Instant:      instant,
		WorkDate:     WorkDateOf(instant, i.loc),
		Action:       action,
		DeviceID:     optional(req.DeviceID),
		Location:     optional(req.Location),
	}, nil
}

// CheckOrder rejects an event that does not come strictly after the last
// event recorded for the same employee and day.
func CheckOrder(rec *AttendanceRecord, ev ClockEvent) error {
	if rec == nil || rec.LastEventAt == nil {
		return nil
	}
	if !ev.Instant.After(*rec.LastEventAt) {
		return attendanceerrors.ErrInstantOutOfOrder.WithDetails(map[string]string{
			"last_event_at": rec.LastEventAt.Format(time.RFC3339),
			"instant":       ev.Instant.Format(time.RFC3339),
		})
	}
	return nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
