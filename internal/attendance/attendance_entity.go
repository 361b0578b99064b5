package attendance

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusOnTime       = "on-time"
	StatusLate         = "late"
	StatusAbsent       = "absent"
	StatusUnclassified = "unclassified"
)

const (
	ActionIn  = "in"
	ActionOut = "out"
)

const DateLayout = "2006-01-02"

// AttendanceRecord is the single row kept per employee and work date.
// OpenSince is set while a session is open.
type AttendanceRecord struct {
	ID           uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	EmployeeID   string     `gorm:"column:employee_id;type:varchar(50);not null;uniqueIndex:uq_attendance_employee_date,priority:1"`
	EmployeeName string     `gorm:"column:employee_name;type:varchar(150);not null"`
	WorkDate     time.Time  `gorm:"column:work_date;type:date;not null;uniqueIndex:uq_attendance_employee_date,priority:2;index"`
	ClockIn      *time.Time `gorm:"column:clock_in;type:timestamptz"`
	ClockOut     *time.Time `gorm:"column:clock_out;type:timestamptz"`
	OpenSince    *time.Time `gorm:"column:open_since;type:timestamptz"`
	LastEventAt  *time.Time `gorm:"column:last_event_at;type:timestamptz"`
	Status       string     `gorm:"column:status;type:varchar(20);not null"`
	ShiftID      string     `gorm:"column:shift_id;type:varchar(50)"`
	TotalHours   float64    `gorm:"column:total_hours;type:double precision;not null;default:0"`
	Sessions     int        `gorm:"column:sessions;not null;default:0"`
	Version      int        `gorm:"column:version;not null;default:1"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	UpdatedAt    time.Time  `gorm:"column:updated_at"`
}

func (AttendanceRecord) TableName() string {
	return "attendance_records"
}

// IsPresent reports whether the employee clocked in on the record's day.
func (r AttendanceRecord) IsPresent() bool {
	return r.ClockIn != nil
}

// ClockLog is the append-only trail of accepted clock actions.
type ClockLog struct {
	ID         string    `gorm:"column:id;type:char(26);primaryKey"`
	RecordID   uuid.UUID `gorm:"column:record_id;type:uuid;not null;index"`
	EmployeeID string    `gorm:"column:employee_id;type:varchar(50);not null;index:idx_clock_logs_employee_instant,priority:1"`
	Action     string    `gorm:"column:action;type:varchar(3);not null"`
	Instant    time.Time `gorm:"column:instant;type:timestamptz;not null;index:idx_clock_logs_employee_instant,priority:2"`
	DeviceID   *string   `gorm:"column:device_id;type:varchar(100)"`
	Location   *string   `gorm:"column:location;type:varchar(150)"`
	CreatedAt  time.Time `gorm:"column:created_at"`
}

func (ClockLog) TableName() string {
	return "attendance_clock_logs"
}

// WorkDateOf returns the calendar day of instant in loc as a UTC midnight
// value, the form stored in the work_date column.
func WorkDateOf(instant time.Time, loc *time.Location) time.Time {
	y, m, d := instant.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseWorkDate parses a YYYY-MM-DD string into a work date.
func ParseWorkDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}
