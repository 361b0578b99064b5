package attendance

import (
	"context"
	"sync"
	"time"

	attendanceerrors "github.com/Tabintel/attendance/internal/attendance/errors"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const LockKeyPrefix = "attendance:lock:"

func GetLockKey(employeeID string, workDate time.Time) string {
	return LockKeyPrefix + employeeID + ":" + workDate.Format(DateLayout)
}

// GetWeeklyLockKey guards an employee's weekly total. It is always taken
// after the day lock, never before.
func GetWeeklyLockKey(employeeID string, workDate time.Time) string {
	return LockKeyPrefix + employeeID + ":" + ISOWeekKey(workDate)
}

// Locker grants exclusive sections keyed by employee and work date.
// Lock waits at most the configured duration, then fails with
// ErrLockTimeout.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

type localEntry struct {
	sem  chan struct{}
	refs int
}

type LocalLocker struct {
	mu      sync.Mutex
	entries map[string]*localEntry
	wait    time.Duration
}

func NewLocalLocker(wait time.Duration) *LocalLocker {
	return &LocalLocker{entries: make(map[string]*localEntry), wait: wait}
}

func (l *LocalLocker) Lock(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	e, ok := l.entries[key]
	if !ok {
		e = &localEntry{sem: make(chan struct{}, 1)}
		l.entries[key] = e
	}
	e.refs++
	l.mu.Unlock()

	timer := time.NewTimer(l.wait)
	defer timer.Stop()

	select {
	case e.sem <- struct{}{}:
		return func() {
			<-e.sem
			l.release(key, e)
		}, nil
	case <-ctx.Done():
		l.release(key, e)
		return nil, ctx.Err()
	case <-timer.C:
		l.release(key, e)
		return nil, attendanceerrors.ErrLockTimeout
	}
}

func (l *LocalLocker) release(key string, e *localEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(l.entries, key)
	}
}

// Size reports how many keys currently have holders or waiters.
func (l *LocalLocker) Size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

const releaseScript = `if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`

// RedisLocker shares the exclusive section across replicas.
type RedisLocker struct {
	rdb      *redis.Client
	ttl      time.Duration
	wait     time.Duration
	retry    time.Duration
	newToken func() string
	logger   *zap.Logger
}

func NewRedisLocker(rdb *redis.Client, ttl, wait time.Duration, logger ...*zap.Logger) *RedisLocker {
	l := zap.L().Named("attendance.locker")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("attendance.locker")
	}
	return &RedisLocker{
		rdb:      rdb,
		ttl:      ttl,
		wait:     wait,
		retry:    25 * time.Millisecond,
		newToken: uuid.NewString,
		logger:   l,
	}
}

func (r *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	token := r.newToken()
	deadline := time.Now().Add(r.wait)

	for {
		ok, err := r.rdb.SetNX(ctx, key, token, r.ttl).Result()
		if err != nil {
			return nil, attendanceerrors.ErrLockTimeout.WithCause(err)
		}
		if ok {
			return func() { r.unlock(key, token) }, nil
		}
		if time.Now().Add(r.retry).After(deadline) {
			return nil, attendanceerrors.ErrLockTimeout
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(r.retry):
		}
	}
}

func (r *RedisLocker) unlock(key, token string) {
	// the caller's context may already be cancelled
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := r.rdb.Eval(ctx, releaseScript, []string{key}, token).Err(); err != nil {
		r.logger.Warn("release lock failed", zap.String("key", key), zap.Error(err))
	}
}
