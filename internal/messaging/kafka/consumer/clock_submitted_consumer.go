package consumer

import (
	"context"
	"encoding/json"

	"github.com/Tabintel/attendance/internal/attendance"
	"github.com/Tabintel/attendance/internal/events"
	"github.com/Tabintel/attendance/internal/shared/contextutil"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// ConsumeClockSubmitted replays clock events buffered by kiosk gateways
// through the same path as the HTTP endpoint.
func ConsumeClockSubmitted(
	ctx context.Context,
	reader MessageReader,
	attendanceService attendance.Service,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.clock_submitted")
	run(ctx, reader, log, func(ctx context.Context, msg kafkago.Message) bool {
		return HandleClockSubmitted(ctx, attendanceService, msg, log)
	})
}

func HandleClockSubmitted(ctx context.Context, svc attendance.Service, msg kafkago.Message, log *zap.Logger) bool {
	var event events.ClockSubmittedEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		log.Error("decode clock submitted event failed", zap.Int64("offset", msg.Offset), zap.Error(err))
		return true
	}

	rid := headerValue(msg, "request_id")
	if rid == "" {
		rid = uuid.NewString()
	}
	ctx = contextutil.WithRequestID(ctx, rid)

	req := attendance.SubmitClockEventRequest{
		IdentityToken: event.IdentityToken,
		Direction:     event.Direction,
		DeviceID:      event.DeviceID,
		Location:      event.Location,
	}
	if !event.Instant.IsZero() {
		instant := event.Instant
		req.Instant = &instant
	}

	resp, err := svc.SubmitClockEvent(ctx, req)
	if err != nil {
		if isRetryable(err) {
			log.Error("clock event not applied, retrying",
				zap.String("request_id", rid),
				zap.String("device_id", event.DeviceID),
				zap.Error(err),
			)
			return false
		}
		log.Warn("clock event rejected",
			zap.String("request_id", rid),
			zap.String("device_id", event.DeviceID),
			zap.Error(err),
		)
		return true
	}

	log.Info("clock event applied from queue",
		zap.String("request_id", rid),
		zap.String("employee_id", resp.Record.EmployeeID),
		zap.String("action", resp.Action),
		zap.String("status", resp.Record.Status),
	)
	return true
}
