package events

import "time"

const AttendanceRecordTopic = "attendance.record.v1"

const (
	EventClockInRecorded  = "clock_in_recorded"
	EventClockOutRecorded = "clock_out_recorded"
	EventSessionReopened  = "session_reopened"
	EventAbsenceRecorded  = "absence_recorded"
)

// AttendanceRecordedEvent is published after every committed transition
// of an attendance record.
type AttendanceRecordedEvent struct {
	EventType  string     `json:"event_type"`
	RequestID  string     `json:"request_id,omitempty"`
	RecordID   string     `json:"record_id"`
	EmployeeID string     `json:"employee_id"`
	WorkDate   string     `json:"work_date"`
	Status     string     `json:"status"`
	ClockIn    *time.Time `json:"clock_in,omitempty"`
	ClockOut   *time.Time `json:"clock_out,omitempty"`
	TotalHours float64    `json:"total_hours"`
	OccurredAt time.Time  `json:"occurred_at"`
}
