package directory

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	directoryerrors "github.com/Tabintel/attendance/internal/directory/errors"
	"github.com/Tabintel/attendance/internal/shared/apperror"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

const (
	IdentityKeyPrefix = "directory:identity:"
	identityCacheTTL  = 10 * time.Minute
)

func GetIdentityKey(facialID string) string {
	return IdentityKeyPrefix + facialID
}

// Service is the directory boundary consumed by the attendance core.
//
//go:generate mockgen -source=directory_service.go -destination=mock/directory_service_mock.go -package=mock
type Service interface {
	ResolveIdentity(ctx context.Context, token string) (Employee, error)
	GetShiftPolicy(ctx context.Context, employeeID string, date time.Time) (ShiftPolicy, error)
	ListActiveEmployees(ctx context.Context) ([]Employee, error)
	InvalidateEmployee(ctx context.Context, employeeID, facialID string) error
}

type service struct {
	repo   Repository
	book   *PolicyBook
	rdb    *redis.Client
	sf     *singleflight.Group
	logger *zap.Logger
}

func NewService(repo Repository, book *PolicyBook, rdb *redis.Client, logger ...*zap.Logger) Service {
	l := zap.L().Named("directory.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("directory.service")
	}
	return &service{
		repo:   repo,
		book:   book,
		rdb:    rdb,
		sf:     &singleflight.Group{},
		logger: l,
	}
}

func (s *service) ResolveIdentity(ctx context.Context, token string) (Employee, error) {
	if token == "" {
		return Employee{}, directoryerrors.ErrIdentityNotFound
	}
	cacheKey := GetIdentityKey(token)

	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, cacheKey).Result(); err == nil {
			var emp Employee
			if json.Unmarshal([]byte(cached), &emp) == nil {
				return s.recheckCached(ctx, cacheKey, token, emp)
			}
		} else if !errors.Is(err, redis.Nil) {
			s.logger.Warn("identity cache read failed", zap.String("key", cacheKey), zap.Error(err))
		}
	}
	return s.loadIdentity(ctx, cacheKey, token)
}

// recheckCached confirms a cached identity against the employee row. The
// cache only saves the facial lookup; status always comes from storage.
func (s *service) recheckCached(ctx context.Context, cacheKey, token string, cached Employee) (Employee, error) {
	emp, err := s.repo.FindByID(ctx, cached.ID)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		s.dropIdentity(ctx, cacheKey)
		return Employee{}, directoryerrors.ErrIdentityNotFound
	case err != nil:
		s.logger.Error("recheck cached identity failed", zap.String("employee_id", cached.ID), zap.Error(err))
		return Employee{}, apperror.ErrUpstreamUnavailable.WithCause(err)
	case !emp.IsActive():
		s.logger.Info("cached identity belongs to inactive employee", zap.String("employee_id", emp.ID))
		s.dropIdentity(ctx, cacheKey)
		return Employee{}, directoryerrors.ErrIdentityNotFound
	case emp.FacialID != token:
		// Re-enrolled since it was cached.
		s.dropIdentity(ctx, cacheKey)
		return s.loadIdentity(ctx, cacheKey, token)
	}
	return *emp, nil
}

func (s *service) dropIdentity(ctx context.Context, cacheKey string) {
	if err := s.rdb.Del(ctx, cacheKey).Err(); err != nil {
		s.logger.Warn("identity cache drop failed", zap.String("key", cacheKey), zap.Error(err))
	}
}

func (s *service) loadIdentity(ctx context.Context, cacheKey, token string) (Employee, error) {
	// A kiosk burst often presents the same face several times in a row.
	// The shared call must not die with whichever caller started it.
	sctx := context.WithoutCancel(ctx)
	v, err, _ := s.sf.Do(cacheKey, func() (interface{}, error) {
		emp, err := s.repo.FindByFacialID(sctx, token)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, directoryerrors.ErrIdentityNotFound
			}
			s.logger.Error("resolve identity lookup failed", zap.Error(err))
			return nil, apperror.ErrUpstreamUnavailable.WithCause(err)
		}
		if !emp.IsActive() {
			s.logger.Info("identity belongs to inactive employee", zap.String("employee_id", emp.ID))
			return nil, directoryerrors.ErrIdentityNotFound
		}

		if s.rdb != nil {
			if payload, err := json.Marshal(emp); err == nil {
				if err := s.rdb.Set(sctx, cacheKey, payload, identityCacheTTL).Err(); err != nil {
					s.logger.Warn("identity cache write failed", zap.String("key", cacheKey), zap.Error(err))
				}
			}
		}
		return *emp, nil
	})
	if err != nil {
		return Employee{}, err
	}
	return v.(Employee), nil
}

func (s *service) GetShiftPolicy(ctx context.Context, employeeID string, date time.Time) (ShiftPolicy, error) {
	if s.book == nil {
		return ShiftPolicy{}, directoryerrors.ErrNoShiftConfigured
	}
	emp, err := s.repo.FindByID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ShiftPolicy{}, directoryerrors.ErrNoShiftConfigured.WithCause(directoryerrors.ErrEmployeeNotFound)
		}
		return ShiftPolicy{}, apperror.ErrUpstreamUnavailable.WithCause(err)
	}
	return s.book.Resolve(*emp, date)
}

func (s *service) ListActiveEmployees(ctx context.Context) ([]Employee, error) {
	rows, err := s.repo.FindActive(ctx)
	if err != nil {
		s.logger.Error("list active employees failed", zap.Error(err))
		return nil, apperror.ErrUpstreamUnavailable.WithCause(err)
	}
	return rows, nil
}

// InvalidateEmployee drops the cached identity of an employee after a
// directory change. facialID may be empty; it is then looked up.
func (s *service) InvalidateEmployee(ctx context.Context, employeeID, facialID string) error {
	if s.rdb == nil {
		return nil
	}
	if facialID == "" {
		emp, err := s.repo.FindByID(ctx, employeeID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		facialID = emp.FacialID
	}
	if facialID == "" {
		return nil
	}
	cacheKey := GetIdentityKey(facialID)
	if err := s.rdb.Del(ctx, cacheKey).Err(); err != nil {
		s.logger.Error("failed to invalidate identity cache", zap.String("key", cacheKey), zap.Error(err))
		return err
	}
	s.logger.Info("identity cache invalidated", zap.String("employee_id", employeeID))
	return nil
}
