package dashboard_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Tabintel/attendance/internal/attendance"
	"github.com/Tabintel/attendance/internal/dashboard"
	dashboarderrors "github.com/Tabintel/attendance/internal/dashboard/errors"
	"github.com/Tabintel/attendance/internal/dashboard/mock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
)

var fixedNow = func() time.Time { return time.Date(2024, 3, 8, 15, 0, 0, 0, time.UTC) }

func TestService_GetMetrics_DefaultsToToday(t *testing.T) {
	ctrl := gomock.NewController(t)
	source := mock.NewMockRecordSource(ctrl)
	// the week of Friday 8 March starts on Monday 4 March
	source.EXPECT().
		FindByDateRange(gomock.Any(), day(4), day(8)).
		Return([]attendance.AttendanceRecord{
			rec("EMP001", day(4), attendance.StatusOnTime, 8),
			rec("EMP001", day(8), attendance.StatusLate, 4),
		}, nil)

	svc := dashboard.NewService(source, dashboard.Options{Now: fixedNow}, zap.NewNop())
	m, err := svc.GetMetrics(context.Background(), dashboard.RangeQuery{})
	require.NoError(t, err)

	assert.Equal(t, "2024-03-08", m.From)
	assert.Equal(t, "2024-03-08", m.To)
	assert.Equal(t, 1, m.LateArrivals)
	assert.Equal(t, 1, m.TotalRecords)
	assert.InDelta(t, 12.0, m.TotalHoursThisWeek, 1e-9)
}

func TestService_GetMetrics_Validation(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := dashboard.NewService(mock.NewMockRecordSource(ctrl), dashboard.Options{Now: fixedNow}, zap.NewNop())
	ctx := context.Background()

	_, err := svc.GetMetrics(ctx, dashboard.RangeQuery{From: "2024-03-09", To: "2024-03-08"})
	assert.ErrorIs(t, err, dashboarderrors.ErrInvalidRange)

	_, err = svc.GetMetrics(ctx, dashboard.RangeQuery{From: "yesterday"})
	assert.ErrorIs(t, err, dashboarderrors.ErrInvalidRange)

	_, err = svc.GetMetrics(ctx, dashboard.RangeQuery{From: "2023-01-01", To: "2024-03-08"})
	assert.ErrorIs(t, err, dashboarderrors.ErrRangeTooLarge)

	_, err = svc.GetSeries(ctx, dashboard.RangeQuery{Weeks: 60})
	assert.ErrorIs(t, err, dashboarderrors.ErrInvalidWeeks)
}

func TestService_GetMetrics_FullYearAllowed(t *testing.T) {
	ctrl := gomock.NewController(t)
	source := mock.NewMockRecordSource(ctrl)
	source.EXPECT().FindByDateRange(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil)

	svc := dashboard.NewService(source, dashboard.Options{Now: fixedNow}, zap.NewNop())
	// 2024 is a leap year: 366 days
	_, err := svc.GetMetrics(context.Background(), dashboard.RangeQuery{From: "2024-01-01", To: "2024-12-31"})
	assert.NoError(t, err)
}

func TestService_GetSeries_DefaultRange(t *testing.T) {
	ctrl := gomock.NewController(t)
	source := mock.NewMockRecordSource(ctrl)
	// four trailing weeks ending with the week of 8 March start on 12 February
	source.EXPECT().
		FindByDateRange(gomock.Any(), time.Date(2024, 2, 12, 0, 0, 0, 0, time.UTC), day(8)).
		Return(nil, nil)

	svc := dashboard.NewService(source, dashboard.Options{Now: fixedNow}, zap.NewNop())
	s, err := svc.GetSeries(context.Background(), dashboard.RangeQuery{})
	require.NoError(t, err)
	assert.Equal(t, "2024-03-02", s.From)
	assert.Len(t, s.Days, 7)
	assert.Len(t, s.WeeklyLate, 4)
}

func TestService_GetSeries_PropagatesStorageError(t *testing.T) {
	ctrl := gomock.NewController(t)
	source := mock.NewMockRecordSource(ctrl)
	source.EXPECT().FindByDateRange(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errors.New("db down"))

	svc := dashboard.NewService(source, dashboard.Options{Now: fixedNow}, zap.NewNop())
	_, err := svc.GetSeries(context.Background(), dashboard.RangeQuery{Weeks: 2})
	assert.Error(t, err)
}

type slowSource struct {
	calls   atomic.Int32
	release chan struct{}
}

func (s *slowSource) FindByDateRange(context.Context, time.Time, time.Time) ([]attendance.AttendanceRecord, error) {
	s.calls.Add(1)
	<-s.release
	return []attendance.AttendanceRecord{rec("EMP001", day(8), attendance.StatusOnTime, 8)}, nil
}

func TestService_GetMetrics_CollapsesConcurrentQueries(t *testing.T) {
	source := &slowSource{release: make(chan struct{})}
	svc := dashboard.NewService(source, dashboard.Options{Now: fixedNow}, zap.NewNop())

	const callers = 8
	var wg sync.WaitGroup
	results := make([]dashboard.MetricsResponse, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = svc.GetMetrics(context.Background(), dashboard.RangeQuery{From: "2024-03-08", To: "2024-03-08"})
		}(i)
	}

	// let every caller join the in-flight query before releasing it
	time.Sleep(50 * time.Millisecond)
	close(source.release)
	wg.Wait()

	assert.Equal(t, int32(1), source.calls.Load())
	for _, r := range results {
		assert.Equal(t, 1, r.OnTimeToday)
	}
}

// ctxSource fails the way a SQL driver does when its context is gone.
type ctxSource struct {
	started chan struct{}
	release chan struct{}
}

func (s *ctxSource) FindByDateRange(ctx context.Context, _, _ time.Time) ([]attendance.AttendanceRecord, error) {
	close(s.started)
	<-s.release
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return []attendance.AttendanceRecord{rec("EMP001", day(8), attendance.StatusOnTime, 8)}, nil
}

func TestService_GetMetrics_CancelledLeaderDoesNotFailFollowers(t *testing.T) {
	source := &ctxSource{started: make(chan struct{}), release: make(chan struct{})}
	svc := dashboard.NewService(source, dashboard.Options{Now: fixedNow}, zap.NewNop())
	q := dashboard.RangeQuery{From: "2024-03-08", To: "2024-03-08"}

	leaderCtx, cancelLeader := context.WithCancel(context.Background())
	leader := make(chan error, 1)
	go func() {
		_, err := svc.GetMetrics(leaderCtx, q)
		leader <- err
	}()
	<-source.started

	var got dashboard.MetricsResponse
	follower := make(chan error, 1)
	go func() {
		var err error
		got, err = svc.GetMetrics(context.Background(), q)
		follower <- err
	}()
	time.Sleep(50 * time.Millisecond)
	cancelLeader()
	close(source.release)

	require.NoError(t, <-follower)
	assert.Equal(t, 1, got.OnTimeToday)
	assert.NoError(t, <-leader)
}

func TestService_GetSeries_ConfiguredTrendWeeks(t *testing.T) {
	ctrl := gomock.NewController(t)
	source := mock.NewMockRecordSource(ctrl)
	source.EXPECT().FindByDateRange(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil)

	svc := dashboard.NewService(source, dashboard.Options{Now: fixedNow, TrendWeeks: 8}, zap.NewNop())
	s, err := svc.GetSeries(context.Background(), dashboard.RangeQuery{From: "2024-03-08", To: "2024-03-08"})
	require.NoError(t, err)
	assert.Len(t, s.WeeklyLate, 8)
	assert.Len(t, s.Days, 1)
}
