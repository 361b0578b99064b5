package attendance

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// SweepSchedule parses SWEEP_AT. It accepts a wall-clock "HH:MM" for a
// daily sweep or any standard five-field cron spec, evaluated in the
// zone of the time handed to Next.
func SweepSchedule(at string) (cron.Schedule, error) {
	spec := at
	if clock, err := time.Parse("15:04", at); err == nil {
		spec = fmt.Sprintf("%d %d * * *", clock.Minute(), clock.Hour())
	}
	sched, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("invalid sweep schedule %q: %w", at, err)
	}
	return sched, nil
}

// NextSweep returns the first scheduled sweep strictly after now, in loc.
func NextSweep(now time.Time, at string, loc *time.Location) (time.Time, error) {
	sched, err := SweepSchedule(at)
	if err != nil {
		return time.Time{}, err
	}
	return sched.Next(now.In(loc)), nil
}

// MissedSweepDay reports the day a sweep should already have closed when
// the scheduler starts at now: yesterday, once today's first scheduled
// sweep has passed.
func MissedSweepDay(now time.Time, sched cron.Schedule, loc *time.Location) (string, bool) {
	local := now.In(loc)
	midnight := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	first := sched.Next(midnight.Add(-time.Second))
	if first.After(local) {
		return "", false
	}
	return midnight.AddDate(0, 0, -1).Format(DateLayout), true
}

// SweepDone receives the result of each scheduled close-out.
type SweepDone func(ctx context.Context, result CloseOutResult, err error)

// RunSweepScheduler closes out the previous day on every tick of the
// SWEEP_AT schedule until ctx is cancelled. On start it first closes out
// yesterday if today's sweep time has already passed, covering a worker
// that was down at the scheduled moment.
func RunSweepScheduler(
	ctx context.Context,
	svc Service,
	at string,
	loc *time.Location,
	onDone SweepDone,
	logger *zap.Logger,
) error {
	log := logger.Named("attendance.sweep")

	sched, err := SweepSchedule(at)
	if err != nil {
		return err
	}

	sweep := func(day string) {
		result, err := svc.CloseOutDay(ctx, day)
		if err != nil {
			log.Error("scheduled close-out failed", zap.String("work_date", day), zap.Error(err))
		} else {
			log.Info("scheduled close-out finished",
				zap.String("work_date", day),
				zap.Int("absent_created", result.Created),
				zap.Int("still_open", len(result.StillOpen)),
			)
		}
		if onDone != nil {
			onDone(ctx, result, err)
		}
	}

	if day, missed := MissedSweepDay(time.Now(), sched, loc); missed {
		log.Info("catching up close-out", zap.String("work_date", day))
		sweep(day)
	}

	c := cron.New(
		cron.WithLocation(loc),
		cron.WithLogger(cronLogger{log}),
		cron.WithChain(cron.Recover(cronLogger{log}), cron.SkipIfStillRunning(cronLogger{log})),
	)
	c.Schedule(sched, cron.FuncJob(func() {
		sweep(WorkDateOf(time.Now(), loc).AddDate(0, 0, -1).Format(DateLayout))
	}))
	c.Start()
	log.Info("sweep scheduler started", zap.String("schedule", at), zap.Time("next", sched.Next(time.Now().In(loc))))

	<-ctx.Done()
	<-c.Stop().Done()
	log.Info("sweep scheduler stopped")
	return nil
}

// cronLogger routes cron's own logging through zap.
type cronLogger struct {
	log *zap.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Sugar().Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}
