package app

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/Tabintel/attendance/internal/config"
	"github.com/Tabintel/attendance/internal/events"
	"github.com/Tabintel/attendance/internal/messaging/kafka/consumer"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const consumerGroup = "attendance-core"

func newReader(broker, topic string) *kafkago.Reader {
	return kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:        []string{broker},
		Topic:          topic,
		GroupID:        consumerGroup + "." + topic,
		CommitInterval: 0,
		StartOffset:    kafkago.FirstOffset,
	})
}

// RunConsumer applies queued kiosk clock events and keeps the identity
// cache in step with directory changes.
func RunConsumer(cfg *config.Config) error {
	logger := zap.L().Named("app.consumer")

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

	clockReader := newReader(cfg.KafkaBroker, events.ClockSubmittedTopic)
	defer clockReader.Close()
	lifecycleReader := newReader(cfg.KafkaBroker, events.EmployeeLifecycleTopic)
	defer lifecycleReader.Close()

	go consumer.ConsumeClockSubmitted(ctx, clockReader, infra.AttendanceService(), logger)
	go consumer.ConsumeEmployeeLifecycle(ctx, lifecycleReader, infra.Directory, logger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("consumer shutting down")
	cancel()

	return nil
}
