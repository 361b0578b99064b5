package attendance

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	attendanceerrors "github.com/Tabintel/attendance/internal/attendance/errors"
	"github.com/Tabintel/attendance/internal/shared/apperror"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func constSeed(v float64) SeedFunc {
	return func(context.Context) (float64, error) { return v, nil }
}

func TestMemoryWeeklyTotals(t *testing.T) {
	ctx := context.Background()
	w := NewMemoryWeeklyTotals()

	seeded := 0
	seed := func(context.Context) (float64, error) {
		seeded++
		return 8, nil
	}

	total, err := w.Add(ctx, "EMP002", "2024-W09", 8, seed)
	require.NoError(t, err)
	assert.Equal(t, 8.0, total)

	total, err = w.Add(ctx, "EMP002", "2024-W09", 8.5, seed)
	require.NoError(t, err)
	assert.Equal(t, 16.5, total)

	total, err = w.Get(ctx, "EMP002", "2024-W09", seed)
	require.NoError(t, err)
	assert.Equal(t, 16.5, total)
	assert.Equal(t, 1, seeded)

	// a cold read scans but leaves seeding to the next Add
	total, err = w.Get(ctx, "EMP002", "2024-W11", constSeed(3))
	require.NoError(t, err)
	assert.Equal(t, 3.0, total)
	total, err = w.Add(ctx, "EMP002", "2024-W11", 3, constSeed(3))
	require.NoError(t, err)
	assert.Equal(t, 3.0, total)

	_, err = w.Get(ctx, "EMP002", "2024-W10", func(context.Context) (float64, error) {
		return 0, errors.New("db down")
	})
	assert.Error(t, err)
}

func TestRedisWeeklyTotals_Add(t *testing.T) {
	ctx := context.Background()
	key := GetWeeklyTotalKey("EMP002", "2024-W09")

	t.Run("cold key is seeded", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		mock.ExpectExists(key).SetVal(0)
		mock.ExpectSetNX(key, "8", weeklyTotalTTL).SetVal(true)

		total, err := NewRedisWeeklyTotals(db).Add(ctx, "EMP002", "2024-W09", 8, constSeed(8))
		require.NoError(t, err)
		assert.Equal(t, 8.0, total)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("warm key is incremented", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		mock.ExpectExists(key).SetVal(1)
		mock.ExpectIncrByFloat(key, 8.5).SetVal(16.5)
		mock.ExpectExpire(key, weeklyTotalTTL).SetVal(true)

		total, err := NewRedisWeeklyTotals(db).Add(ctx, "EMP002", "2024-W09", 8.5, constSeed(0))
		require.NoError(t, err)
		assert.Equal(t, 16.5, total)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("lost seed race drops the key", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		mock.ExpectExists(key).SetVal(0)
		mock.ExpectSetNX(key, "16.5", weeklyTotalTTL).SetVal(false)
		mock.ExpectDel(key).SetVal(1)

		total, err := NewRedisWeeklyTotals(db).Add(ctx, "EMP002", "2024-W09", 8.5, constSeed(16.5))
		require.NoError(t, err)
		assert.Equal(t, 16.5, total)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("failed increment drops the key", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		mock.ExpectExists(key).SetVal(1)
		mock.ExpectIncrByFloat(key, 8.5).SetErr(errors.New("i/o timeout"))
		mock.ExpectDel(key).SetVal(1)

		_, err := NewRedisWeeklyTotals(db).Add(ctx, "EMP002", "2024-W09", 8.5, constSeed(0))
		assert.EqualError(t, err, "i/o timeout")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("redis error", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		mock.ExpectExists(key).SetErr(errors.New("connection refused"))
		mock.ExpectDel(key).SetErr(errors.New("connection refused"))

		_, err := NewRedisWeeklyTotals(db).Add(ctx, "EMP002", "2024-W09", 1, constSeed(0))
		assert.EqualError(t, err, "connection refused")
	})
}

func TestRedisWeeklyTotals_Get(t *testing.T) {
	ctx := context.Background()
	key := GetWeeklyTotalKey("EMP001", "2024-W09")

	db, mock := redismock.NewClientMock()
	mock.ExpectGet(key).SetVal("12.25")

	total, err := NewRedisWeeklyTotals(db).Get(ctx, "EMP001", "2024-W09", constSeed(0))
	require.NoError(t, err)
	assert.Equal(t, 12.25, total)

	// cold keys are scanned, not written
	mock.ExpectGet(key).RedisNil()

	total, err = NewRedisWeeklyTotals(db).Get(ctx, "EMP001", "2024-W09", constSeed(4.5))
	require.NoError(t, err)
	assert.Equal(t, 4.5, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLocalLocker_SerializesSameKey(t *testing.T) {
	l := NewLocalLocker(time.Second)
	ctx := context.Background()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		inside  int
		maxSeen int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := l.Lock(ctx, "attendance:lock:EMP001:2024-03-01")
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			inside++
			if inside > maxSeen {
				maxSeen = inside
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			inside--
			mu.Unlock()
			unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxSeen)
	assert.Equal(t, 0, l.Size())
}

func TestLocalLocker_TimesOut(t *testing.T) {
	l := NewLocalLocker(20 * time.Millisecond)
	ctx := context.Background()

	unlock, err := l.Lock(ctx, "a")
	require.NoError(t, err)

	_, err = l.Lock(ctx, "a")
	assert.ErrorIs(t, err, attendanceerrors.ErrLockTimeout)
	assert.NotErrorIs(t, err, apperror.ErrUpstreamUnavailable)

	other, err := l.Lock(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, 2, l.Size())

	other()
	unlock()
	assert.Equal(t, 0, l.Size())
}

func TestLocalLocker_ContextCancelled(t *testing.T) {
	l := NewLocalLocker(time.Second)
	unlock, err := l.Lock(context.Background(), "a")
	require.NoError(t, err)
	defer unlock()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = l.Lock(ctx, "a")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRedisLocker(t *testing.T) {
	key := GetLockKey("EMP001", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, "attendance:lock:EMP001:2024-03-01", key)

	t.Run("acquires after retry and releases own token", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		l := NewRedisLocker(db, 10*time.Second, time.Second, zap.NewNop())
		l.retry = time.Millisecond
		l.newToken = func() string { return "token-1" }

		mock.ExpectSetNX(key, "token-1", 10*time.Second).SetVal(false)
		mock.ExpectSetNX(key, "token-1", 10*time.Second).SetVal(true)
		mock.ExpectEval(releaseScript, []string{key}, "token-1").SetVal(int64(1))

		unlock, err := l.Lock(context.Background(), key)
		require.NoError(t, err)
		unlock()
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("gives up after wait", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		l := NewRedisLocker(db, 10*time.Second, 0, zap.NewNop())
		l.newToken = func() string { return "token-2" }

		mock.ExpectSetNX(key, "token-2", 10*time.Second).SetVal(false)

		_, err := l.Lock(context.Background(), key)
		assert.ErrorIs(t, err, attendanceerrors.ErrLockTimeout)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("redis unavailable", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		l := NewRedisLocker(db, 10*time.Second, time.Second, zap.NewNop())
		l.newToken = func() string { return "token-3" }

		mock.ExpectSetNX(key, "token-3", 10*time.Second).SetErr(errors.New("connection refused"))

		_, err := l.Lock(context.Background(), key)
		assert.ErrorIs(t, err, attendanceerrors.ErrLockTimeout)
	})
}
