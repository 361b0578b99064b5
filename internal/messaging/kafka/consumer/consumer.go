package consumer

import (
	"context"
	"errors"
	"time"

	"github.com/Tabintel/attendance/internal/shared/apperror"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageReader is the subset of *kafkago.Reader the consumers use.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
}

// handleFunc processes one message and reports whether its offset may be
// committed. Returning false asks for the same message to be handled again.
type handleFunc func(ctx context.Context, msg kafkago.Message) bool

var (
	retryInitialBackoff = 200 * time.Millisecond
	retryMaxBackoff     = 30 * time.Second
)

func run(ctx context.Context, reader MessageReader, log *zap.Logger, handle handleFunc) {
	log.Info("consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("consumer stopped")
				return
			}
			log.Error("fetch message failed", zap.Error(err))
			continue
		}

		if !process(ctx, msg, log, handle) {
			log.Info("consumer stopped with message unhandled",
				zap.Int("partition", msg.Partition),
				zap.Int64("offset", msg.Offset),
			)
			return
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit message failed",
				zap.Int("partition", msg.Partition),
				zap.Int64("offset", msg.Offset),
				zap.Error(err),
			)
		}
	}
}

// process handles msg until it may be committed or ctx ends; it returns
// false only in the latter case. A message that keeps failing holds back
// the rest of its partition, so later events for the same employee are
// never applied ahead of it.
func process(ctx context.Context, msg kafkago.Message, log *zap.Logger, handle handleFunc) bool {
	backoff := retryInitialBackoff
	for attempt := 1; ; attempt++ {
		if handle(ctx, msg) {
			return true
		}
		log.Warn("message not handled, retrying",
			zap.Int("partition", msg.Partition),
			zap.Int64("offset", msg.Offset),
			zap.Int("attempt", attempt),
			zap.Duration("backoff", backoff),
		)

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return false
		case <-timer.C:
		}
		backoff *= 2
		if backoff > retryMaxBackoff {
			backoff = retryMaxBackoff
		}
	}
}

// isRetryable reports whether a failure may succeed on redelivery.
// Rejections by the domain are final; infrastructure failures are not.
func isRetryable(err error) bool {
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		return true
	}
	return appErr.Code == apperror.CodeServiceUnavailable || appErr.Code == apperror.CodeInternalError
}

func headerValue(msg kafkago.Message, key string) string {
	for _, h := range msg.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}
