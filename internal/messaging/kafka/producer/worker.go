package producer

import (
	"context"
	"time"

	"github.com/Tabintel/attendance/internal/messaging/kafka"

	"go.uber.org/zap"
)

const (
	defaultBatchSize    = 50
	defaultPollInterval = 3 * time.Second

	// maxDrainRounds bounds one tick so a hot outbox cannot starve shutdown.
	maxDrainRounds = 20
)

// RelayOptions tunes the outbox relay. Zero values take the defaults.
type RelayOptions struct {
	BatchSize    int
	PollInterval time.Duration
}

// Relay publishes pending outbox rows to Kafka and marks them sent or failed.
type Relay struct {
	repo   kafka.OutboxRepository
	writer MessageWriter
	opts   RelayOptions
	log    *zap.Logger
}

func NewRelay(repo kafka.OutboxRepository, writer MessageWriter, opts RelayOptions, logger ...*zap.Logger) *Relay {
	if opts.BatchSize <= 0 {
		opts.BatchSize = defaultBatchSize
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = defaultPollInterval
	}
	l := zap.L().Named("kafka.producer.relay")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("kafka.producer.relay")
	}
	return &Relay{repo: repo, writer: writer, opts: opts, log: l}
}

// Run polls until ctx is cancelled.
func (r *Relay) Run(ctx context.Context) {
	ticker := time.NewTicker(r.opts.PollInterval)
	defer ticker.Stop()

	r.log.Info("outbox relay started",
		zap.Duration("poll_interval", r.opts.PollInterval),
		zap.Int("batch_size", r.opts.BatchSize),
	)

	for {
		select {
		case <-ctx.Done():
			r.log.Info("outbox relay stopped")
			return
		case <-ticker.C:
			if _, err := r.Drain(ctx); err != nil {
				r.log.Error("relay outbox events failed", zap.Error(err))
			}
		}
	}
}

// Drain relays full batches back to back until the outbox runs dry, a
// batch makes no progress, or maxDrainRounds is reached.
func (r *Relay) Drain(ctx context.Context) (int, error) {
	total := 0
	for round := 0; round < maxDrainRounds; round++ {
		fetched, sent, err := r.relayBatch(ctx)
		total += sent
		if err != nil {
			return total, err
		}
		if fetched < r.opts.BatchSize || sent == 0 || ctx.Err() != nil {
			break
		}
	}
	return total, nil
}

func (r *Relay) relayBatch(ctx context.Context) (fetched, sent int, err error) {
	events, err := r.repo.ListPending(ctx, r.opts.BatchSize)
	if err != nil {
		return 0, 0, err
	}
	if len(events) == 0 {
		return 0, 0, nil
	}

	r.log.Debug("relaying pending outbox events", zap.Int("count", len(events)))

	for _, event := range events {
		if err := publishEvent(ctx, r.writer, event); err != nil {
			r.log.Error("publish outbox event failed",
				zap.String("outbox_id", event.ID),
				zap.String("event_type", event.EventType),
				zap.String("topic", event.Topic),
				zap.Error(err),
			)
			if markErr := r.repo.MarkFailed(ctx, event.ID, err.Error()); markErr != nil {
				r.log.Error("mark outbox failed failed", zap.String("outbox_id", event.ID), zap.Error(markErr))
			}
			continue
		}

		if err := r.repo.MarkSent(ctx, event.ID); err != nil {
			// The row stays pending and is published again; downstream
			// readers can dedupe on the outbox_id header.
			r.log.Error("mark outbox sent failed",
				zap.String("outbox_id", event.ID),
				zap.Error(err),
			)
			continue
		}
		sent++
	}

	r.log.Info("outbox batch relayed", zap.Int("fetched", len(events)), zap.Int("sent", sent))
	return len(events), sent, nil
}
