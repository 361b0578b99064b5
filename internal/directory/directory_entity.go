package directory

import "time"

const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// Employee is owned by the HR directory. This service only reads the
// table; enrollment and profile edits happen elsewhere.
type Employee struct {
	ID         string    `gorm:"column:id;type:varchar(32);primaryKey" json:"id" yaml:"id"`
	FacialID   string    `gorm:"column:facial_id;type:varchar(128);uniqueIndex" json:"facial_id" yaml:"facial_id"`
	FullName   string    `gorm:"column:full_name" json:"full_name" yaml:"full_name"`
	Email      string    `gorm:"column:email" json:"email" yaml:"email"`
	Department string    `gorm:"column:department" json:"department" yaml:"department"`
	Status     string    `gorm:"column:status;type:varchar(16)" json:"status" yaml:"status"`
	ShiftID    *string   `gorm:"column:shift_id;type:varchar(32)" json:"shift_id,omitempty" yaml:"shift_id"`
	EnrolledAt time.Time `gorm:"column:enrolled_at" json:"enrolled_at" yaml:"enrolled_at"`
}

func (Employee) TableName() string {
	return "employees"
}

func (e Employee) IsActive() bool {
	return e.Status == StatusActive
}
