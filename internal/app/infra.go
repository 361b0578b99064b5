package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/Tabintel/attendance/internal/attendance"
	"github.com/Tabintel/attendance/internal/config"
	"github.com/Tabintel/attendance/internal/directory"
	"github.com/Tabintel/attendance/internal/messaging/kafka"
	"github.com/Tabintel/attendance/internal/shared/connection"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"

	LockDriverLocal = "local"
	LockDriverRedis = "redis"

	connectRetries = 5
)

// Infra is the shared infrastructure every binary builds once.
type Infra struct {
	Config    *config.Config
	Location  *time.Location
	DB        *gorm.DB
	Redis     *redis.Client
	Outbox    kafka.OutboxRepository
	Records   attendance.Repository
	Directory directory.Service
	Locker    attendance.Locker
	Weekly    attendance.WeeklyTotals

	logger  *zap.Logger
	closers []func()
}

func NewInfra(ctx context.Context, cfg *config.Config) (*Infra, error) {
	infra := &Infra{Config: cfg, logger: zap.L().Named("app.infra")}

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	infra.Location = loc

	book, err := directory.LoadPolicyBook(cfg.ShiftPolicyFile)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		infra.logger.Warn("shift policy file not found, every clock-in will be unclassified",
			zap.String("path", cfg.ShiftPolicyFile),
		)
		book = nil
	case err != nil:
		return nil, err
	}

	if cfg.RedisAddr != "" {
		rdb, err := connection.ConnectRedisWithRetry(cfg.RedisAddr, connectRetries)
		if err != nil {
			return nil, err
		}
		infra.Redis = rdb
		infra.closers = append(infra.closers, func() { _ = rdb.Close() })
	}

	var dirRepo directory.Repository
	switch cfg.StorageDriver {
	case StorageDriverPostgres:
		db, err := connection.ConnectGORMWithRetry(cfg.DSN(), connectRetries)
		if err != nil {
			infra.Close()
			return nil, err
		}
		infra.DB = db
		if sqlDB, err := db.DB(); err == nil {
			infra.closers = append(infra.closers, func() { _ = sqlDB.Close() })
		}
		if err := migrate(ctx, db); err != nil {
			infra.Close()
			return nil, err
		}
		infra.Outbox = kafka.NewOutboxRepository(db)
		infra.Records = attendance.NewRepository(db, infra.Outbox)
		dirRepo = directory.NewRepository(db)

	case StorageDriverMemory:
		roster, err := directory.LoadRoster(cfg.RosterFile)
		if err != nil {
			infra.Close()
			return nil, err
		}
		infra.Outbox = kafka.NewMemoryOutbox()
		infra.Records = attendance.NewMemoryRepository(infra.Outbox)
		dirRepo = directory.NewMemoryRepository(roster...)
		infra.logger.Warn("using in-memory storage; records are lost on restart", zap.Int("employees", len(roster)))

	default:
		infra.Close()
		return nil, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.StorageDriver)
	}

	switch cfg.LockDriver {
	case LockDriverLocal:
		infra.Locker = attendance.NewLocalLocker(cfg.LockWait)
	case LockDriverRedis:
		if infra.Redis == nil {
			infra.Close()
			return nil, errors.New("LOCK_DRIVER=redis requires REDIS_ADDR")
		}
		infra.Locker = attendance.NewRedisLocker(infra.Redis, cfg.LockTTL, cfg.LockWait)
	default:
		infra.Close()
		return nil, fmt.Errorf("unknown LOCK_DRIVER %q", cfg.LockDriver)
	}

	if infra.Redis != nil {
		infra.Weekly = attendance.NewRedisWeeklyTotals(infra.Redis)
	} else {
		infra.Weekly = attendance.NewMemoryWeeklyTotals()
	}

	infra.Directory = directory.NewService(dirRepo, book, infra.Redis)
	return infra, nil
}

// migrate creates the tables this service owns. The employees table
// belongs to the HR directory and is left alone.
func migrate(ctx context.Context, db *gorm.DB) error {
	if err := db.WithContext(ctx).AutoMigrate(&attendance.AttendanceRecord{}, &attendance.ClockLog{}); err != nil {
		return fmt.Errorf("migrate attendance tables: %w", err)
	}
	if err := kafka.EnsureOutboxSchema(ctx, db); err != nil {
		return fmt.Errorf("migrate outbox table: %w", err)
	}
	return nil
}

func (i *Infra) AttendanceService() attendance.Service {
	return attendance.NewService(i.Records, i.Directory, i.Locker, i.Weekly, attendance.Options{
		Location:     i.Location,
		MultiSession: i.Config.MultiSession,
	})
}

// Close releases connections in reverse order of creation.
func (i *Infra) Close() {
	for j := len(i.closers) - 1; j >= 0; j-- {
		i.closers[j]()
	}
	i.closers = nil
}
