package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/Tabintel/attendance/internal/attendance"
	dashboarderrors "github.com/Tabintel/attendance/internal/dashboard/errors"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	maxRangeDays = 366
	defaultWeeks = 4
	maxWeeks     = 52
	// series without an explicit range cover the last week
	defaultSeriesDays = 7
)

// RecordSource is the read side of the attendance store.
type RecordSource interface {
	FindByDateRange(ctx context.Context, from, to time.Time) ([]attendance.AttendanceRecord, error)
}

//go:generate mockgen -source=dashboard_service.go -destination=mock/dashboard_service_mock.go -package=mock
type Service interface {
	GetMetrics(ctx context.Context, q RangeQuery) (MetricsResponse, error)
	GetSeries(ctx context.Context, q RangeQuery) (SeriesResponse, error)
}

type Options struct {
	Location *time.Location
	Now      func() time.Time
	// TrendWeeks is the series trend length when a query names none.
	TrendWeeks int
}

type service struct {
	records    RecordSource
	sf         *singleflight.Group
	loc        *time.Location
	now        func() time.Time
	trendWeeks int
	logger     *zap.Logger
}

func NewService(records RecordSource, opts Options, logger ...*zap.Logger) Service {
	l := zap.L().Named("dashboard.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("dashboard.service")
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.TrendWeeks < 1 || opts.TrendWeeks > maxWeeks {
		opts.TrendWeeks = defaultWeeks
	}
	return &service{
		records:    records,
		sf:         &singleflight.Group{},
		loc:        opts.Location,
		now:        opts.Now,
		trendWeeks: opts.TrendWeeks,
		logger:     l,
	}
}

func (s *service) GetMetrics(ctx context.Context, q RangeQuery) (MetricsResponse, error) {
	r, err := s.parseRange(q, 1)
	if err != nil {
		return MetricsResponse{}, err
	}

	key := fmt.Sprintf("metrics:%s:%s", r.From.Format(attendance.DateLayout), r.To.Format(attendance.DateLayout))
	// Shared by every caller with this key; one cancellation must not fail the rest.
	sctx := context.WithoutCancel(ctx)
	v, err, shared := s.sf.Do(key, func() (interface{}, error) {
		rows, err := s.records.FindByDateRange(sctx, earliest(r, 1), r.To)
		if err != nil {
			return nil, err
		}
		return ComputeMetrics(rows, r), nil
	})
	if err != nil {
		s.logger.Error("compute dashboard metrics failed", zap.String("key", key), zap.Error(err))
		return MetricsResponse{}, err
	}
	s.logger.Debug("dashboard metrics computed", zap.String("key", key), zap.Bool("shared", shared))
	return v.(MetricsResponse), nil
}

func (s *service) GetSeries(ctx context.Context, q RangeQuery) (SeriesResponse, error) {
	weeks := q.Weeks
	if weeks == 0 {
		weeks = s.trendWeeks
	}
	if weeks < 1 || weeks > maxWeeks {
		return SeriesResponse{}, dashboarderrors.ErrInvalidWeeks
	}
	r, err := s.parseRange(q, defaultSeriesDays)
	if err != nil {
		return SeriesResponse{}, err
	}

	key := fmt.Sprintf("series:%s:%s:%d", r.From.Format(attendance.DateLayout), r.To.Format(attendance.DateLayout), weeks)
	sctx := context.WithoutCancel(ctx)
	v, err, _ := s.sf.Do(key, func() (interface{}, error) {
		rows, err := s.records.FindByDateRange(sctx, earliest(r, weeks), r.To)
		if err != nil {
			return nil, err
		}
		return ComputeSeries(rows, r, weeks), nil
	})
	if err != nil {
		s.logger.Error("compute dashboard series failed", zap.String("key", key), zap.Error(err))
		return SeriesResponse{}, err
	}
	return v.(SeriesResponse), nil
}

// parseRange fills missing bounds: to defaults to today and from to the
// span of defaultDays ending at to.
func (s *service) parseRange(q RangeQuery, defaultDays int) (DateRange, error) {
	to := attendance.WorkDateOf(s.now(), s.loc)
	if q.To != "" {
		d, err := attendance.ParseWorkDate(q.To)
		if err != nil {
			return DateRange{}, dashboarderrors.ErrInvalidRange
		}
		to = d
	}
	from := to.AddDate(0, 0, -(defaultDays - 1))
	if q.From != "" {
		d, err := attendance.ParseWorkDate(q.From)
		if err != nil {
			return DateRange{}, dashboarderrors.ErrInvalidRange
		}
		from = d
	}

	r := DateRange{From: from, To: to}
	if to.Before(from) {
		return DateRange{}, dashboarderrors.ErrInvalidRange
	}
	if r.Days() > maxRangeDays {
		return DateRange{}, dashboarderrors.ErrRangeTooLarge
	}
	return r, nil
}
