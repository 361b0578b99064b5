package events

import "time"

const EmployeeLifecycleTopic = "hr.employee.lifecycle.v1"

const (
	EmployeeCreated     = "employee_created"
	EmployeeUpdated     = "employee_updated"
	EmployeeDeactivated = "employee_deactivated"
)

// EmployeeLifecycleEvent is produced by the HR directory.
type EmployeeLifecycleEvent struct {
	EventType  string    `json:"event_type"`
	EmployeeID string    `json:"employee_id"`
	FacialID   string    `json:"facial_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
