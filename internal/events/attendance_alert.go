package events

import "time"

const AttendanceAlertTopic = "attendance.alert.v1"

const AlertShiftPolicyMissing = "shift_policy_missing"

type AttendanceAlertEvent struct {
	EventType  string    `json:"event_type"`
	RequestID  string    `json:"request_id,omitempty"`
	EmployeeID string    `json:"employee_id"`
	WorkDate   string    `json:"work_date"`
	Message    string    `json:"message"`
	OccurredAt time.Time `json:"occurred_at"`
}
