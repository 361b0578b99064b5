package attendance

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	WeeklyTotalKeyPrefix = "attendance:weekly:"
	weeklyTotalTTL       = 9 * 24 * time.Hour
)

func GetWeeklyTotalKey(employeeID, week string) string {
	return WeeklyTotalKeyPrefix + employeeID + ":" + week
}

// SeedFunc recomputes a weekly total from storage. Its result already
// includes every committed clock-out.
type SeedFunc func(ctx context.Context) (float64, error)

// WeeklyTotals keeps a running hours total per employee and ISO week.
// Add must run inside the employee's weekly critical section after the
// clock-out commits; it is the only writer that seeds a cold key. Get
// never writes: a cold key is answered by a storage scan.
type WeeklyTotals interface {
	Add(ctx context.Context, employeeID, week string, delta float64, seed SeedFunc) (float64, error)
	Get(ctx context.Context, employeeID, week string, seed SeedFunc) (float64, error)
}

type memoryWeeklyTotals struct {
	mu     sync.Mutex
	totals map[string]float64
}

func NewMemoryWeeklyTotals() WeeklyTotals {
	return &memoryWeeklyTotals{totals: make(map[string]float64)}
}

func (m *memoryWeeklyTotals) Add(ctx context.Context, employeeID, week string, delta float64, seed SeedFunc) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := GetWeeklyTotalKey(employeeID, week)
	if total, ok := m.totals[key]; ok {
		m.totals[key] = total + delta
		return total + delta, nil
	}
	total, err := seed(ctx)
	if err != nil {
		return 0, err
	}
	m.totals[key] = total
	return total, nil
}

func (m *memoryWeeklyTotals) Get(ctx context.Context, employeeID, week string, seed SeedFunc) (float64, error) {
	m.mu.Lock()
	total, ok := m.totals[GetWeeklyTotalKey(employeeID, week)]
	m.mu.Unlock()
	if ok {
		return total, nil
	}
	return seed(ctx)
}

type redisWeeklyTotals struct {
	rdb *redis.Client
}

func NewRedisWeeklyTotals(rdb *redis.Client) WeeklyTotals {
	return &redisWeeklyTotals{rdb: rdb}
}

// Add increments a warm key or seeds a cold one. Any failure after the
// key may have been touched drops it, so the next Add reseeds from
// storage instead of carrying a wrong total until the TTL expires.
func (r *redisWeeklyTotals) Add(ctx context.Context, employeeID, week string, delta float64, seed SeedFunc) (float64, error) {
	key := GetWeeklyTotalKey(employeeID, week)

	exists, err := r.rdb.Exists(ctx, key).Result()
	if err != nil {
		return 0, r.drop(ctx, key, err)
	}
	if exists == 0 {
		total, err := seed(ctx)
		if err != nil {
			return 0, err
		}
		ok, err := r.rdb.SetNX(ctx, key, strconv.FormatFloat(total, 'f', -1, 64), weeklyTotalTTL).Result()
		if err != nil {
			return 0, r.drop(ctx, key, err)
		}
		if !ok {
			// Someone seeded concurrently; neither scan is known to be
			// the later one.
			return total, r.drop(ctx, key, nil)
		}
		return total, nil
	}

	total, err := r.rdb.IncrByFloat(ctx, key, delta).Result()
	if err != nil {
		return 0, r.drop(ctx, key, err)
	}
	if err := r.rdb.Expire(ctx, key, weeklyTotalTTL).Err(); err != nil {
		return 0, r.drop(ctx, key, err)
	}
	return total, nil
}

// drop deletes key and returns cause, or the delete error when cause is nil.
func (r *redisWeeklyTotals) drop(ctx context.Context, key string, cause error) error {
	delErr := r.rdb.Del(ctx, key).Err()
	if cause != nil {
		return cause
	}
	return delErr
}

func (r *redisWeeklyTotals) Get(ctx context.Context, employeeID, week string, seed SeedFunc) (float64, error) {
	raw, err := r.rdb.Get(ctx, GetWeeklyTotalKey(employeeID, week)).Result()
	if err == nil {
		return strconv.ParseFloat(raw, 64)
	}
	if !errors.Is(err, redis.Nil) {
		return 0, err
	}
	return seed(ctx)
}
