package directory

import (
	"fmt"
	"os"
	"sort"
	"time"

	directoryerrors "github.com/Tabintel/attendance/internal/directory/errors"

	"gopkg.in/yaml.v3"
)

const dateLayout = "2006-01-02"

// ShiftPolicy is the resolved arrival rule for one employee on one day.
type ShiftPolicy struct {
	ShiftID string
	// StartOffset is the shift start measured from local midnight.
	StartOffset time.Duration
	Grace       time.Duration
}

// StartOn returns the shift start on the calendar day of workDate, in
// workDate's location.
func (p ShiftPolicy) StartOn(workDate time.Time) time.Time {
	y, m, d := workDate.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, workDate.Location()).Add(p.StartOffset)
}

type shiftSpec struct {
	Start string `yaml:"start"`
	Grace string `yaml:"grace"`
}

type assignmentSpec struct {
	Shift         string `yaml:"shift"`
	EffectiveFrom string `yaml:"effective_from"`
}

type policyFile struct {
	DefaultShift string                      `yaml:"default_shift"`
	Shifts       map[string]shiftSpec        `yaml:"shifts"`
	Departments  map[string]string           `yaml:"departments"`
	Employees    map[string][]assignmentSpec `yaml:"employees"`
}

type assignment struct {
	shiftID string
	from    time.Time
}

// PolicyBook answers "which shift applies to this employee on this day".
// Resolution order: dated employee override, the directory's shift_id,
// department mapping, default shift.
type PolicyBook struct {
	defaultShift string
	shifts       map[string]ShiftPolicy
	departments  map[string]string
	employees    map[string][]assignment
}

func LoadPolicyBook(path string) (*PolicyBook, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read shift policy file: %w", err)
	}
	return ParsePolicyBook(buf)
}

func ParsePolicyBook(buf []byte) (*PolicyBook, error) {
	var f policyFile
	if err := yaml.Unmarshal(buf, &f); err != nil {
		return nil, directoryerrors.ErrInvalidPolicyBook.WithCause(err)
	}

	book := &PolicyBook{
		defaultShift: f.DefaultShift,
		shifts:       make(map[string]ShiftPolicy, len(f.Shifts)),
		departments:  f.Departments,
		employees:    make(map[string][]assignment, len(f.Employees)),
	}

	for id, s := range f.Shifts {
		start, err := time.Parse("15:04", s.Start)
		if err != nil {
			return nil, directoryerrors.ErrInvalidPolicyBook.WithCause(fmt.Errorf("shift %s: start %q: %w", id, s.Start, err))
		}
		var grace time.Duration
		if s.Grace != "" {
			grace, err = time.ParseDuration(s.Grace)
			if err != nil || grace < 0 {
				return nil, directoryerrors.ErrInvalidPolicyBook.WithCause(fmt.Errorf("shift %s: grace %q", id, s.Grace))
			}
		}
		book.shifts[id] = ShiftPolicy{
			ShiftID:     id,
			StartOffset: time.Duration(start.Hour())*time.Hour + time.Duration(start.Minute())*time.Minute,
			Grace:       grace,
		}
	}

	for empID, list := range f.Employees {
		out := make([]assignment, 0, len(list))
		for _, a := range list {
			from := time.Time{}
			if a.EffectiveFrom != "" {
				t, err := time.Parse(dateLayout, a.EffectiveFrom)
				if err != nil {
					return nil, directoryerrors.ErrInvalidPolicyBook.WithCause(fmt.Errorf("employee %s: effective_from %q: %w", empID, a.EffectiveFrom, err))
				}
				from = t
			}
			out = append(out, assignment{shiftID: a.Shift, from: from})
		}
		sort.Slice(out, func(i, j int) bool { return out[i].from.Before(out[j].from) })
		book.employees[empID] = out
	}

	return book, nil
}

// Resolve picks the policy for emp on date. Only the calendar part of
// date is used.
func (b *PolicyBook) Resolve(emp Employee, date time.Time) (ShiftPolicy, error) {
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)

	shiftID := ""
	if list := b.employees[emp.ID]; len(list) > 0 {
		for _, a := range list {
			if !a.from.After(day) {
				shiftID = a.shiftID
			}
		}
	}
	if shiftID == "" && emp.ShiftID != nil {
		shiftID = *emp.ShiftID
	}
	if shiftID == "" {
		shiftID = b.departments[emp.Department]
	}
	if shiftID == "" {
		shiftID = b.defaultShift
	}
	if shiftID == "" {
		return ShiftPolicy{}, directoryerrors.ErrNoShiftConfigured
	}

	policy, ok := b.shifts[shiftID]
	if !ok {
		return ShiftPolicy{}, directoryerrors.ErrNoShiftConfigured.WithCause(fmt.Errorf("unknown shift %q", shiftID))
	}
	return policy, nil
}
