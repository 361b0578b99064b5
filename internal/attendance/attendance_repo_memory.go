package attendance

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Tabintel/attendance/internal/messaging/kafka"

	"gorm.io/gorm"
)

type memoryKey struct {
	employeeID string
	workDate   string
}

type memoryStore struct {
	mu      sync.Mutex
	records map[memoryKey]AttendanceRecord
	logs    []ClockLog
	outbox  kafka.OutboxRepository
}

// memoryRepository backs STORAGE_DRIVER=memory. Transactions are
// serialized and staged, so a failed transition leaves nothing behind.
type memoryRepository struct {
	store *memoryStore
	stage *memoryStage
}

type memoryStage struct {
	records map[memoryKey]AttendanceRecord
	logs    []ClockLog
	events  []kafka.OutboxEvent
}

func NewMemoryRepository(outbox kafka.OutboxRepository) Repository {
	return &memoryRepository{store: &memoryStore{
		records: make(map[memoryKey]AttendanceRecord),
		outbox:  outbox,
	}}
}

func keyOf(employeeID string, workDate time.Time) memoryKey {
	return memoryKey{employeeID: employeeID, workDate: workDate.Format(DateLayout)}
}

func (r *memoryRepository) Transaction(ctx context.Context, fn func(tx Repository) error) error {
	if r.stage != nil {
		return fn(r)
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	tx := &memoryRepository{store: r.store, stage: &memoryStage{records: make(map[memoryKey]AttendanceRecord)}}
	if err := fn(tx); err != nil {
		return err
	}

	for _, ev := range tx.stage.events {
		if r.store.outbox == nil {
			break
		}
		if err := r.store.outbox.Create(ctx, ev); err != nil {
			return err
		}
	}
	for k, rec := range tx.stage.records {
		r.store.records[k] = rec
	}
	r.store.logs = append(r.store.logs, tx.stage.logs...)
	return nil
}

// view runs fn with the store locked unless a transaction already holds it.
func (r *memoryRepository) view(fn func()) {
	if r.stage == nil {
		r.store.mu.Lock()
		defer r.store.mu.Unlock()
	}
	fn()
}

func (r *memoryRepository) lookup(k memoryKey) (AttendanceRecord, bool) {
	if r.stage != nil {
		if rec, ok := r.stage.records[k]; ok {
			return rec, true
		}
	}
	rec, ok := r.store.records[k]
	return rec, ok
}

func (r *memoryRepository) all() []AttendanceRecord {
	merged := make(map[memoryKey]AttendanceRecord, len(r.store.records))
	for k, rec := range r.store.records {
		merged[k] = rec
	}
	if r.stage != nil {
		for k, rec := range r.stage.records {
			merged[k] = rec
		}
	}
	out := make([]AttendanceRecord, 0, len(merged))
	for _, rec := range merged {
		out = append(out, rec)
	}
	return out
}

func (r *memoryRepository) FindByEmployeeAndDate(_ context.Context, employeeID string, workDate time.Time) (*AttendanceRecord, error) {
	var (
		rec AttendanceRecord
		ok  bool
	)
	r.view(func() { rec, ok = r.lookup(keyOf(employeeID, workDate)) })
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &rec, nil
}

func (r *memoryRepository) FindByDate(_ context.Context, workDate time.Time) ([]AttendanceRecord, error) {
	return r.filter(func(rec AttendanceRecord) bool { return rec.WorkDate.Equal(workDate) }, func(a, b AttendanceRecord) bool {
		return a.EmployeeName < b.EmployeeName
	}), nil
}

func (r *memoryRepository) FindByDateRange(_ context.Context, from, to time.Time) ([]AttendanceRecord, error) {
	return r.filter(func(rec AttendanceRecord) bool { return inRange(rec.WorkDate, from, to) }, byDateThenEmployee), nil
}

func (r *memoryRepository) FindByEmployeeAndDateRange(_ context.Context, employeeID string, from, to time.Time) ([]AttendanceRecord, error) {
	return r.filter(func(rec AttendanceRecord) bool {
		return rec.EmployeeID == employeeID && inRange(rec.WorkDate, from, to)
	}, byDateThenEmployee), nil
}

func (r *memoryRepository) filter(keep func(AttendanceRecord) bool, less func(a, b AttendanceRecord) bool) []AttendanceRecord {
	var out []AttendanceRecord
	r.view(func() {
		for _, rec := range r.all() {
			if keep(rec) {
				out = append(out, rec)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

func byDateThenEmployee(a, b AttendanceRecord) bool {
	if !a.WorkDate.Equal(b.WorkDate) {
		return a.WorkDate.Before(b.WorkDate)
	}
	return a.EmployeeID < b.EmployeeID
}

func inRange(d, from, to time.Time) bool {
	return !d.Before(from) && !d.After(to)
}

func (r *memoryRepository) Create(ctx context.Context, rec *AttendanceRecord) error {
	return r.Transaction(ctx, func(tx Repository) error {
		m := tx.(*memoryRepository)
		k := keyOf(rec.EmployeeID, rec.WorkDate)
		if _, exists := m.lookup(k); exists {
			return fmt.Errorf("duplicate key value violates unique constraint %q", uniqueEmployeeDate)
		}
		now := time.Now().UTC()
		if rec.Version == 0 {
			rec.Version = 1
		}
		rec.CreatedAt, rec.UpdatedAt = now, now
		m.stage.records[k] = *rec
		return nil
	})
}

func (r *memoryRepository) Update(ctx context.Context, rec *AttendanceRecord) error {
	return r.Transaction(ctx, func(tx Repository) error {
		m := tx.(*memoryRepository)
		k := keyOf(rec.EmployeeID, rec.WorkDate)
		current, ok := m.lookup(k)
		if !ok || current.ID != rec.ID || current.Version != rec.Version {
			return errStaleVersion
		}
		rec.Version++
		rec.UpdatedAt = time.Now().UTC()
		m.stage.records[k] = *rec
		return nil
	})
}

func (r *memoryRepository) AppendLog(ctx context.Context, log *ClockLog) error {
	return r.Transaction(ctx, func(tx Repository) error {
		m := tx.(*memoryRepository)
		log.CreatedAt = time.Now().UTC()
		m.stage.logs = append(m.stage.logs, *log)
		return nil
	})
}

func (r *memoryRepository) FindLogs(_ context.Context, employeeID string, from, to time.Time) ([]ClockLog, error) {
	var out []ClockLog
	r.view(func() {
		logs := r.store.logs
		if r.stage != nil {
			logs = append(append([]ClockLog(nil), logs...), r.stage.logs...)
		}
		for _, l := range logs {
			if l.EmployeeID == employeeID && !l.Instant.Before(from) && l.Instant.Before(to) {
				out = append(out, l)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Instant.After(out[j].Instant) })
	return out, nil
}

func (r *memoryRepository) EnqueueEvent(ctx context.Context, event kafka.OutboxEvent) error {
	if err := kafka.ValidateOutboxEvent(event); err != nil {
		return err
	}
	return r.Transaction(ctx, func(tx Repository) error {
		m := tx.(*memoryRepository)
		m.stage.events = append(m.stage.events, event)
		return nil
	})
}
