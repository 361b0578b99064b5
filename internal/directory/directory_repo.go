package directory

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

type Repository interface {
	FindByFacialID(ctx context.Context, facialID string) (*Employee, error)
	FindByID(ctx context.Context, id string) (*Employee, error)
	FindActive(ctx context.Context) ([]Employee, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindByFacialID(ctx context.Context, facialID string) (*Employee, error) {
	var e Employee
	err := r.db.WithContext(ctx).
		Where("facial_id = ?", facialID).
		First(&e).Error
	return &e, err
}

func (r *repository) FindByID(ctx context.Context, id string) (*Employee, error) {
	var e Employee
	err := r.db.WithContext(ctx).
		First(&e, "id = ?", id).Error
	return &e, err
}

func (r *repository) FindActive(ctx context.Context) ([]Employee, error) {
	var rows []Employee
	err := r.db.WithContext(ctx).
		Where("status = ?", StatusActive).
		Order("id ASC").
		Find(&rows).Error
	return rows, err
}

// memoryRepository backs STORAGE_DRIVER=memory and tests. Lookups miss
// with gorm.ErrRecordNotFound so callers handle both drivers alike.
type memoryRepository struct {
	mu   sync.RWMutex
	byID map[string]Employee
}

func NewMemoryRepository(employees ...Employee) Repository {
	r := &memoryRepository{byID: make(map[string]Employee, len(employees))}
	for _, e := range employees {
		r.byID[e.ID] = e
	}
	return r
}

func (r *memoryRepository) FindByFacialID(_ context.Context, facialID string) (*Employee, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, e := range r.byID {
		if e.FacialID == facialID {
			cp := e
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memoryRepository) FindByID(_ context.Context, id string) (*Employee, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &e, nil
}

func (r *memoryRepository) FindActive(_ context.Context) ([]Employee, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Employee, 0, len(r.byID))
	for _, e := range r.byID {
		if e.IsActive() {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type rosterFile struct {
	Employees []Employee `yaml:"employees"`
}

// LoadRoster reads the employee list used to seed the memory repository.
// Entries without a status are active.
func LoadRoster(path string) ([]Employee, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read roster file: %w", err)
	}
	var f rosterFile
	if err := yaml.Unmarshal(buf, &f); err != nil {
		return nil, fmt.Errorf("parse roster file: %w", err)
	}
	for i := range f.Employees {
		if f.Employees[i].ID == "" || f.Employees[i].FacialID == "" {
			return nil, fmt.Errorf("roster entry %d: id and facial_id are required", i)
		}
		if f.Employees[i].Status == "" {
			f.Employees[i].Status = StatusActive
		}
	}
	return f.Employees, nil
}
