package attendance

import (
	"context"
	"time"

	"github.com/Tabintel/attendance/internal/messaging/kafka"

	"gorm.io/gorm"
)

// Repository stores attendance records, their clock log and the outbox
// rows emitted by each transition. Lookups of a single record return
// gorm.ErrRecordNotFound on a miss.
type Repository interface {
	Transaction(ctx context.Context, fn func(tx Repository) error) error
	FindByEmployeeAndDate(ctx context.Context, employeeID string, workDate time.Time) (*AttendanceRecord, error)
	FindByDate(ctx context.Context, workDate time.Time) ([]AttendanceRecord, error)
	FindByDateRange(ctx context.Context, from, to time.Time) ([]AttendanceRecord, error)
	FindByEmployeeAndDateRange(ctx context.Context, employeeID string, from, to time.Time) ([]AttendanceRecord, error)
	Create(ctx context.Context, rec *AttendanceRecord) error
	Update(ctx context.Context, rec *AttendanceRecord) error
	AppendLog(ctx context.Context, log *ClockLog) error
	FindLogs(ctx context.Context, employeeID string, from, to time.Time) ([]ClockLog, error)
	EnqueueEvent(ctx context.Context, event kafka.OutboxEvent) error
}

type repository struct {
	db     *gorm.DB
	tx     *gorm.DB
	outbox kafka.OutboxRepository
}

func NewRepository(db *gorm.DB, outbox kafka.OutboxRepository) Repository {
	return &repository{db: db, outbox: outbox}
}

func (r *repository) conn(ctx context.Context) *gorm.DB {
	if r.tx != nil {
		return r.tx.WithContext(ctx)
	}
	return r.db.WithContext(ctx)
}

func (r *repository) Transaction(ctx context.Context, fn func(tx Repository) error) error {
	if r.tx != nil {
		return fn(r)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&repository{db: r.db, tx: tx, outbox: r.outbox})
	})
}

func (r *repository) FindByEmployeeAndDate(ctx context.Context, employeeID string, workDate time.Time) (*AttendanceRecord, error) {
	var rec AttendanceRecord
	err := r.conn(ctx).
		Where("employee_id = ?", employeeID).
		Where("work_date = ?", workDate.Format(DateLayout)).
		First(&rec).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *repository) FindByDate(ctx context.Context, workDate time.Time) ([]AttendanceRecord, error) {
	var rows []AttendanceRecord
	err := r.conn(ctx).
		Where("work_date = ?", workDate.Format(DateLayout)).
		Order("employee_name ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) FindByDateRange(ctx context.Context, from, to time.Time) ([]AttendanceRecord, error) {
	var rows []AttendanceRecord
	err := r.conn(ctx).
		Where("work_date BETWEEN ? AND ?", from.Format(DateLayout), to.Format(DateLayout)).
		Order("work_date ASC, employee_id ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) FindByEmployeeAndDateRange(ctx context.Context, employeeID string, from, to time.Time) ([]AttendanceRecord, error) {
	var rows []AttendanceRecord
	err := r.conn(ctx).
		Where("employee_id = ?", employeeID).
		Where("work_date BETWEEN ? AND ?", from.Format(DateLayout), to.Format(DateLayout)).
		Order("work_date ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) Create(ctx context.Context, rec *AttendanceRecord) error {
	if rec.Version == 0 {
		rec.Version = 1
	}
	return r.conn(ctx).Create(rec).Error
}

// Update writes the whole record in one statement guarded by its version.
func (r *repository) Update(ctx context.Context, rec *AttendanceRecord) error {
	res := r.conn(ctx).
		Model(&AttendanceRecord{}).
		Where("id = ? AND version = ?", rec.ID, rec.Version).
		Updates(map[string]any{
			"clock_in":      rec.ClockIn,
			"clock_out":     rec.ClockOut,
			"open_since":    rec.OpenSince,
			"last_event_at": rec.LastEventAt,
			"status":        rec.Status,
			"shift_id":      rec.ShiftID,
			"total_hours":   rec.TotalHours,
			"sessions":      rec.Sessions,
			"version":       rec.Version + 1,
			"updated_at":    time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errStaleVersion
	}
	rec.Version++
	return nil
}

func (r *repository) AppendLog(ctx context.Context, log *ClockLog) error {
	return r.conn(ctx).Create(log).Error
}

func (r *repository) FindLogs(ctx context.Context, employeeID string, from, to time.Time) ([]ClockLog, error) {
	var rows []ClockLog
	err := r.conn(ctx).
		Where("employee_id = ?", employeeID).
		Where("instant >= ? AND instant < ?", from, to).
		Order("instant DESC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) EnqueueEvent(ctx context.Context, event kafka.OutboxEvent) error {
	if r.outbox == nil {
		return nil
	}
	if r.tx != nil {
		return r.outbox.WithTx(r.tx).Create(ctx, event)
	}
	return r.outbox.Create(ctx, event)
}
