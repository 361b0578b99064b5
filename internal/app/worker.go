package app

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Tabintel/attendance/internal/attendance"
	"github.com/Tabintel/attendance/internal/bootstrap"
	"github.com/Tabintel/attendance/internal/config"
	"github.com/Tabintel/attendance/internal/messaging/kafka/producer"
	"github.com/Tabintel/attendance/internal/shared/connection"
	"github.com/Tabintel/attendance/internal/shared/contextutil"

	"go.uber.org/zap"
)

const (
	outboxPollInterval = 3 * time.Second
	schedulerActor     = "scheduler"
)

// RunWorker relays outbox rows to Kafka and closes out each finished day
// at SWEEP_AT.
func RunWorker(cfg *config.Config) error {
	logger := zap.L().Named("app.worker")

	if cfg.StorageDriver != StorageDriverPostgres {
		return errors.New("worker requires STORAGE_DRIVER=postgres")
	}
	if cfg.KafkaBroker == "" {
		return errors.New("KAFKA_BROKER is required")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	infra, err := NewInfra(ctx, cfg)
	if err != nil {
		return err
	}
	defer infra.Close()

	kafkaWriter, err := connection.ConnectKafkaWithRetry(cfg.KafkaBroker, connectRetries)
	if err != nil {
		return err
	}
	defer kafkaWriter.Close()

	relay := producer.NewRelay(infra.Outbox, kafkaWriter, producer.RelayOptions{
		BatchSize:    cfg.OutboxBatchSize,
		PollInterval: outboxPollInterval,
	}, logger)
	go relay.Run(ctx)

	audit := bootstrap.NewStdoutAuditLogger()
	sweepCtx := contextutil.WithActorID(ctx, schedulerActor)
	go func() {
		err := attendance.RunSweepScheduler(sweepCtx, infra.AttendanceService(), cfg.SweepAt, infra.Location, auditCloseOut(audit), logger)
		if err != nil {
			logger.Error("sweep scheduler exited", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("worker shutting down")
	cancel()

	return nil
}

func auditCloseOut(audit bootstrap.AuditLogger) attendance.SweepDone {
	return func(ctx context.Context, result attendance.CloseOutResult, err error) {
		entry := bootstrap.AuditLog{
			Action:  "DAY_CLOSED_OUT",
			Message: "End-of-day sweep completed",
			Meta: map[string]any{
				"work_date":       result.Date,
				"absent_created":  result.Created,
				"already_present": result.AlreadyPresent,
				"still_open":      result.StillOpen,
			},
		}
		if err != nil {
			entry.Action = "DAY_CLOSE_OUT_FAILED"
			entry.Message = err.Error()
		}
		audit.Log(ctx, entry)
	}
}
