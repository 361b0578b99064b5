package attendance

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	attendanceerrors "github.com/Tabintel/attendance/internal/attendance/errors"
	"github.com/Tabintel/attendance/internal/directory"
	directoryerrors "github.com/Tabintel/attendance/internal/directory/errors"
	"github.com/Tabintel/attendance/internal/events"
	"github.com/Tabintel/attendance/internal/messaging/kafka"
	"github.com/Tabintel/attendance/internal/shared/contextutil"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	FilterAll     = "all"
	FilterPresent = "present"

	SortName   = "name"
	SortDate   = "date"
	SortStatus = "status"
	SortHours  = "hours"
)

const warnNoShiftConfigured = "no shift policy configured; clock-in recorded as unclassified"

//go:generate mockgen -source=attendance_service.go -destination=mock/attendance_service_mock.go -package=mock
type Service interface {
	SubmitClockEvent(ctx context.Context, req SubmitClockEventRequest) (ClockEventResponse, error)
	CloseOutDay(ctx context.Context, date string) (CloseOutResult, error)
	GetRecordsForDate(ctx context.Context, q RecordQuery) ([]RecordResponse, error)
	GetEmployeeSummary(ctx context.Context, employeeID, date string) (EmployeeSummaryResponse, error)
}

type Options struct {
	Location     *time.Location
	MultiSession bool
	Now          func() time.Time
}

type service struct {
	repo         Repository
	directory    directory.Service
	ingest       *Ingest
	locker       Locker
	weekly       WeeklyTotals
	loc          *time.Location
	multiSession bool
	now          func() time.Time
	logger       *zap.Logger
}

func NewService(
	repo Repository,
	dir directory.Service,
	locker Locker,
	weekly WeeklyTotals,
	opts Options,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("attendance.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("attendance.service")
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if weekly == nil {
		weekly = NewMemoryWeeklyTotals()
	}
	return &service{
		repo:         repo,
		directory:    dir,
		ingest:       NewIngest(dir, opts.Location, opts.Now),
		locker:       locker,
		weekly:       weekly,
		loc:          opts.Location,
		multiSession: opts.MultiSession,
		now:          opts.Now,
		logger:       l,
	}
}

func (s *service) SubmitClockEvent(ctx context.Context, req SubmitClockEventRequest) (ClockEventResponse, error) {
	rid := contextutil.GetRequestID(ctx)

	ev, err := s.ingest.Normalize(ctx, req)
	if err != nil {
		s.logger.Warn("clock event rejected",
			zap.String("request_id", rid),
			zap.String("direction", req.Direction),
			zap.Error(err),
		)
		return ClockEventResponse{}, err
	}

	lockKey := GetLockKey(ev.EmployeeID, ev.WorkDate)
	unlock, err := s.locker.Lock(ctx, lockKey)
	if err != nil {
		s.logger.Warn("acquire attendance lock failed",
			zap.String("request_id", rid),
			zap.String("key", lockKey),
			zap.Error(err),
		)
		return ClockEventResponse{}, err
	}
	defer unlock()

	// Clock-outs on other days of the same week update the same total.
	weekKey := GetWeeklyLockKey(ev.EmployeeID, ev.WorkDate)
	unlockWeek, err := s.locker.Lock(ctx, weekKey)
	if err != nil {
		s.logger.Warn("acquire weekly total lock failed",
			zap.String("request_id", rid),
			zap.String("key", weekKey),
			zap.Error(err),
		)
		return ClockEventResponse{}, err
	}
	defer unlockWeek()

	var (
		result       AttendanceRecord
		action       string
		transition   Transition
		sessionHours float64
		warnings     []string
	)
	err = s.repo.Transaction(ctx, func(tx Repository) error {
		rec, err := tx.FindByEmployeeAndDate(ctx, ev.EmployeeID, ev.WorkDate)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err := CheckOrder(rec, ev); err != nil {
			return err
		}

		action = ev.Action
		if action == "" {
			action = InferDirection(StateOf(rec))
		}
		transition, err = Decide(rec, action, s.multiSession)
		if err != nil {
			return err
		}

		switch transition {
		case TransitionOpen:
			rec, warnings, err = s.openRecord(ctx, tx, ev)
		case TransitionClose:
			sessionHours, err = s.closeSession(ctx, tx, rec, ev)
		case TransitionReopen:
			err = s.reopenSession(ctx, tx, rec, ev)
		}
		if err != nil {
			return err
		}

		if err := tx.AppendLog(ctx, newClockLog(rec, action, ev)); err != nil {
			return err
		}
		if err := s.enqueueRecorded(ctx, tx, eventTypeOf(transition), *rec); err != nil {
			return err
		}
		result = *rec
		return nil
	})
	if err != nil {
		err = mapRepositoryError(err)
		s.logger.Warn("clock event not applied",
			zap.String("request_id", rid),
			zap.String("employee_id", ev.EmployeeID),
			zap.String("work_date", ev.WorkDate.Format(DateLayout)),
			zap.String("action", action),
			zap.Error(err),
		)
		return ClockEventResponse{}, err
	}

	if transition == TransitionClose {
		s.addWeeklyHours(ctx, result, sessionHours)
	}

	s.logger.Info("clock event recorded",
		zap.String("request_id", rid),
		zap.String("employee_id", result.EmployeeID),
		zap.String("work_date", result.WorkDate.Format(DateLayout)),
		zap.String("action", action),
		zap.String("status", result.Status),
		zap.Float64("total_hours", result.TotalHours),
	)

	return ClockEventResponse{
		Action:   action,
		Record:   mapToResponse(result, s.loc),
		Warnings: warnings,
	}, nil
}

func (s *service) openRecord(ctx context.Context, tx Repository, ev ClockEvent) (*AttendanceRecord, []string, error) {
	var warnings []string

	status := StatusUnclassified
	shiftID := ""
	policy, err := s.directory.GetShiftPolicy(ctx, ev.EmployeeID, ev.WorkDate)
	switch {
	case err == nil:
		status = Classify(ev.Instant, policy)
		shiftID = policy.ShiftID
	case errors.Is(err, directoryerrors.ErrNoShiftConfigured):
		s.logger.Warn("no shift policy for clock-in, recording as unclassified",
			zap.String("employee_id", ev.EmployeeID),
			zap.String("work_date", ev.WorkDate.Format(DateLayout)),
			zap.Error(err),
		)
		warnings = append(warnings, warnNoShiftConfigured)
		if err := s.enqueueAlert(ctx, tx, ev); err != nil {
			return nil, nil, err
		}
	default:
		return nil, nil, err
	}

	instant := ev.Instant
	rec := &AttendanceRecord{
		ID:           uuid.New(),
		EmployeeID:   ev.EmployeeID,
		EmployeeName: ev.EmployeeName,
		WorkDate:     ev.WorkDate,
		ClockIn:      &instant,
		OpenSince:    &instant,
		LastEventAt:  &instant,
		Status:       status,
		ShiftID:      shiftID,
	}
	if err := tx.Create(ctx, rec); err != nil {
		return nil, nil, err
	}
	return rec, warnings, nil
}

func (s *service) closeSession(ctx context.Context, tx Repository, rec *AttendanceRecord, ev ClockEvent) (float64, error) {
	hours, err := ComputeHours(*rec.OpenSince, ev.Instant)
	if err != nil {
		s.logger.Error("clock-out precedes session start",
			zap.String("record_id", rec.ID.String()),
			zap.Time("open_since", *rec.OpenSince),
			zap.Time("clock_out", ev.Instant),
			zap.Error(err),
		)
		return 0, err
	}

	instant := ev.Instant
	rec.TotalHours += hours
	rec.ClockOut = &instant
	rec.OpenSince = nil
	rec.LastEventAt = &instant
	rec.Sessions++
	if err := tx.Update(ctx, rec); err != nil {
		return 0, err
	}
	return hours, nil
}

func (s *service) reopenSession(ctx context.Context, tx Repository, rec *AttendanceRecord, ev ClockEvent) error {
	instant := ev.Instant
	rec.OpenSince = &instant
	rec.LastEventAt = &instant
	return tx.Update(ctx, rec)
}

func newClockLog(rec *AttendanceRecord, action string, ev ClockEvent) *ClockLog {
	return &ClockLog{
		ID:         ulid.Make().String(),
		RecordID:   rec.ID,
		EmployeeID: rec.EmployeeID,
		Action:     action,
		Instant:    ev.Instant,
		DeviceID:   ev.DeviceID,
		Location:   ev.Location,
	}
}

func eventTypeOf(t Transition) string {
	switch t {
	case TransitionClose:
		return events.EventClockOutRecorded
	case TransitionReopen:
		return events.EventSessionReopened
	default:
		return events.EventClockInRecorded
	}
}

func (s *service) enqueueRecorded(ctx context.Context, tx Repository, eventType string, rec AttendanceRecord) error {
	rid := contextutil.GetRequestID(ctx)
	payload := events.AttendanceRecordedEvent{
		EventType:  eventType,
		RequestID:  rid,
		RecordID:   rec.ID.String(),
		EmployeeID: rec.EmployeeID,
		WorkDate:   rec.WorkDate.Format(DateLayout),
		Status:     rec.Status,
		ClockIn:    rec.ClockIn,
		ClockOut:   rec.ClockOut,
		TotalHours: rec.TotalHours,
		OccurredAt: s.now().UTC(),
	}
	event, err := kafka.NewOutboxEvent(rid, "attendance_record", rec.ID.String(), eventType, events.AttendanceRecordTopic, payload)
	if err != nil {
		s.logger.Error("marshal attendance event failed", zap.String("request_id", rid), zap.Error(err))
		return err
	}
	return tx.EnqueueEvent(ctx, event)
}

func (s *service) enqueueAlert(ctx context.Context, tx Repository, ev ClockEvent) error {
	rid := contextutil.GetRequestID(ctx)
	payload := events.AttendanceAlertEvent{
		EventType:  events.AlertShiftPolicyMissing,
		RequestID:  rid,
		EmployeeID: ev.EmployeeID,
		WorkDate:   ev.WorkDate.Format(DateLayout),
		Message:    warnNoShiftConfigured,
		OccurredAt: s.now().UTC(),
	}
	event, err := kafka.NewOutboxEvent(rid, "employee", ev.EmployeeID, events.AlertShiftPolicyMissing, events.AttendanceAlertTopic, payload)
	if err != nil {
		return err
	}
	return tx.EnqueueEvent(ctx, event)
}

func (s *service) weekSeed(employeeID string, workDate time.Time) SeedFunc {
	from := WeekStart(workDate)
	to := from.AddDate(0, 0, 6)
	return func(ctx context.Context) (float64, error) {
		rows, err := s.repo.FindByEmployeeAndDateRange(ctx, employeeID, from, to)
		if err != nil {
			return 0, err
		}
		return sumHours(rows), nil
	}
}

// addWeeklyHours runs after commit while both locks are held. A failed
// update leaves the key deleted, so the next read scans storage.
func (s *service) addWeeklyHours(ctx context.Context, rec AttendanceRecord, hours float64) {
	week := ISOWeekKey(rec.WorkDate)
	total, err := s.weekly.Add(ctx, rec.EmployeeID, week, hours, s.weekSeed(rec.EmployeeID, rec.WorkDate))
	if err != nil {
		s.logger.Warn("update weekly total failed",
			zap.String("employee_id", rec.EmployeeID),
			zap.String("week", week),
			zap.Error(err),
		)
		return
	}
	s.logger.Debug("weekly total updated",
		zap.String("employee_id", rec.EmployeeID),
		zap.String("week", week),
		zap.Float64("total_hours", total),
	)
}

func sumHours(rows []AttendanceRecord) float64 {
	var total float64
	for _, r := range rows {
		total += r.TotalHours
	}
	return total
}

func (s *service) CloseOutDay(ctx context.Context, date string) (CloseOutResult, error) {
	rid := contextutil.GetRequestID(ctx)

	workDate, err := ParseWorkDate(date)
	if err != nil {
		return CloseOutResult{}, attendanceerrors.ErrInvalidDate
	}
	today := WorkDateOf(s.now(), s.loc)
	if !workDate.Before(today) {
		return CloseOutResult{}, attendanceerrors.ErrDayNotEnded
	}

	employees, err := s.directory.ListActiveEmployees(ctx)
	if err != nil {
		return CloseOutResult{}, err
	}

	result := CloseOutResult{Date: workDate.Format(DateLayout), StillOpen: []string{}}
	for _, emp := range employees {
		if !emp.EnrolledAt.IsZero() && WorkDateOf(emp.EnrolledAt, s.loc).After(workDate) {
			continue
		}
		created, open, err := s.closeOutEmployee(ctx, emp, workDate)
		if err != nil {
			s.logger.Error("close out employee failed",
				zap.String("request_id", rid),
				zap.String("employee_id", emp.ID),
				zap.String("work_date", result.Date),
				zap.Error(err),
			)
			return result, err
		}
		switch {
		case created:
			result.Created++
		case open:
			result.AlreadyPresent++
			result.StillOpen = append(result.StillOpen, emp.ID)
		default:
			result.AlreadyPresent++
		}
	}

	s.logger.Info("day closed out",
		zap.String("request_id", rid),
		zap.String("work_date", result.Date),
		zap.Int("absent_created", result.Created),
		zap.Int("already_present", result.AlreadyPresent),
		zap.Int("still_open", len(result.StillOpen)),
	)
	return result, nil
}

func (s *service) closeOutEmployee(ctx context.Context, emp directory.Employee, workDate time.Time) (created, open bool, err error) {
	unlock, err := s.locker.Lock(ctx, GetLockKey(emp.ID, workDate))
	if err != nil {
		return false, false, err
	}
	defer unlock()

	err = s.repo.Transaction(ctx, func(tx Repository) error {
		rec, err := tx.FindByEmployeeAndDate(ctx, emp.ID, workDate)
		if err == nil {
			open = StateOf(rec) == StateOpen
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		absent := &AttendanceRecord{
			ID:           uuid.New(),
			EmployeeID:   emp.ID,
			EmployeeName: emp.FullName,
			WorkDate:     workDate,
			Status:       StatusAbsent,
		}
		if err := tx.Create(ctx, absent); err != nil {
			return err
		}
		if err := s.enqueueRecorded(ctx, tx, events.EventAbsenceRecorded, *absent); err != nil {
			return err
		}
		created = true
		return nil
	})
	if err != nil {
		if isUniqueEmployeeDateViolation(err) {
			return false, false, nil
		}
		return false, false, mapRepositoryError(err)
	}
	return created, open, nil
}

func (s *service) GetRecordsForDate(ctx context.Context, q RecordQuery) ([]RecordResponse, error) {
	workDate := WorkDateOf(s.now(), s.loc)
	if q.Date != "" {
		d, err := ParseWorkDate(q.Date)
		if err != nil {
			return nil, attendanceerrors.ErrInvalidDate
		}
		workDate = d
	}

	filter := strings.ToLower(strings.TrimSpace(q.Status))
	if filter == "" {
		filter = FilterAll
	}
	if !validFilter(filter) {
		return nil, attendanceerrors.ErrInvalidStatusFilter
	}
	sortBy := strings.ToLower(strings.TrimSpace(q.Sort))
	if sortBy == "" {
		sortBy = SortName
	}
	less, ok := recordOrderings[sortBy]
	if !ok {
		return nil, attendanceerrors.ErrInvalidSort
	}

	rows, err := s.repo.FindByDate(ctx, workDate)
	if err != nil {
		s.logger.Error("list attendance records failed", zap.String("work_date", workDate.Format(DateLayout)), zap.Error(err))
		return nil, err
	}

	search := strings.ToLower(strings.TrimSpace(q.Search))
	kept := rows[:0]
	for _, r := range rows {
		if !matchesFilter(r, filter) {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(r.EmployeeName), search) &&
			!strings.Contains(strings.ToLower(r.EmployeeID), search) {
			continue
		}
		kept = append(kept, r)
	}
	sort.SliceStable(kept, func(i, j int) bool { return less(kept[i], kept[j]) })

	res := make([]RecordResponse, len(kept))
	for i, r := range kept {
		res[i] = mapToResponse(r, s.loc)
	}
	return res, nil
}

func validFilter(f string) bool {
	switch f {
	case FilterAll, FilterPresent, StatusAbsent, StatusLate, StatusOnTime, StatusUnclassified:
		return true
	}
	return false
}

func matchesFilter(r AttendanceRecord, filter string) bool {
	switch filter {
	case FilterAll:
		return true
	case FilterPresent:
		return r.IsPresent()
	default:
		return r.Status == filter
	}
}

var statusRank = map[string]int{
	StatusOnTime:       0,
	StatusLate:         1,
	StatusUnclassified: 2,
	StatusAbsent:       3,
}

var recordOrderings = map[string]func(a, b AttendanceRecord) bool{
	SortName: func(a, b AttendanceRecord) bool {
		if a.EmployeeName != b.EmployeeName {
			return a.EmployeeName < b.EmployeeName
		}
		return a.EmployeeID < b.EmployeeID
	},
	SortDate: func(a, b AttendanceRecord) bool {
		switch {
		case a.ClockIn == nil:
			return false
		case b.ClockIn == nil:
			return true
		}
		return a.ClockIn.Before(*b.ClockIn)
	},
	SortStatus: func(a, b AttendanceRecord) bool {
		return statusRank[a.Status] < statusRank[b.Status]
	},
	SortHours: func(a, b AttendanceRecord) bool {
		return a.TotalHours > b.TotalHours
	},
}

func (s *service) GetEmployeeSummary(ctx context.Context, employeeID, date string) (EmployeeSummaryResponse, error) {
	employeeID = strings.TrimSpace(employeeID)
	if employeeID == "" {
		return EmployeeSummaryResponse{}, attendanceerrors.ErrRecordNotFound
	}

	workDate := WorkDateOf(s.now(), s.loc)
	if date != "" {
		d, err := ParseWorkDate(date)
		if err != nil {
			return EmployeeSummaryResponse{}, attendanceerrors.ErrInvalidDate
		}
		workDate = d
	}

	monthStart := time.Date(workDate.Year(), workDate.Month(), 1, 0, 0, 0, 0, time.UTC)
	monthRows, err := s.repo.FindByEmployeeAndDateRange(ctx, employeeID, monthStart, workDate)
	if err != nil {
		s.logger.Error("load monthly records failed", zap.String("employee_id", employeeID), zap.Error(err))
		return EmployeeSummaryResponse{}, err
	}

	week := ISOWeekKey(workDate)
	seed := s.weekSeed(employeeID, workDate)
	weekly, err := s.weekly.Get(ctx, employeeID, week, seed)
	if err != nil {
		s.logger.Warn("weekly total cache unavailable, scanning records",
			zap.String("employee_id", employeeID),
			zap.String("week", week),
			zap.Error(err),
		)
		if weekly, err = seed(ctx); err != nil {
			return EmployeeSummaryResponse{}, err
		}
	}

	// logs are bounded by local midnights of the month
	y, m, d := workDate.Date()
	logFrom := time.Date(y, m, 1, 0, 0, 0, 0, s.loc)
	logTo := time.Date(y, m, d+1, 0, 0, 0, 0, s.loc)
	logs, err := s.repo.FindLogs(ctx, employeeID, logFrom, logTo)
	if err != nil {
		s.logger.Error("load clock logs failed", zap.String("employee_id", employeeID), zap.Error(err))
		return EmployeeSummaryResponse{}, err
	}

	monthly := sumHours(monthRows)
	resp := EmployeeSummaryResponse{
		EmployeeID:          employeeID,
		Date:                workDate.Format(DateLayout),
		Week:                week,
		WeeklyHours:         weekly,
		WeeklyHoursDisplay:  FormatHours(weekly),
		MonthlyHours:        monthly,
		MonthlyHoursDisplay: FormatHours(monthly),
		Logs:                make([]ClockLogResponse, len(logs)),
	}
	for _, r := range monthRows {
		resp.EmployeeName = r.EmployeeName
		if r.WorkDate.Equal(workDate) {
			today := mapToResponse(r, s.loc)
			resp.Today = &today
		}
	}
	for i, l := range logs {
		resp.Logs[i] = mapLogToResponse(l, s.loc)
	}
	return resp, nil
}
