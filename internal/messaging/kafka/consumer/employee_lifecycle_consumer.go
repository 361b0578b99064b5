package consumer

import (
	"context"
	"encoding/json"

	"github.com/Tabintel/attendance/internal/directory"
	"github.com/Tabintel/attendance/internal/events"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// ConsumeEmployeeLifecycle keeps the identity cache in step with the HR
// directory.
func ConsumeEmployeeLifecycle(
	ctx context.Context,
	reader MessageReader,
	directoryService directory.Service,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.employee_lifecycle")
	run(ctx, reader, log, func(ctx context.Context, msg kafkago.Message) bool {
		return HandleEmployeeLifecycle(ctx, directoryService, msg, log)
	})
}

func HandleEmployeeLifecycle(ctx context.Context, dir directory.Service, msg kafkago.Message, log *zap.Logger) bool {
	var event events.EmployeeLifecycleEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		log.Error("decode employee lifecycle event failed", zap.Int64("offset", msg.Offset), zap.Error(err))
		return true
	}

	switch event.EventType {
	case events.EmployeeUpdated, events.EmployeeDeactivated:
	default:
		// a new employee has nothing cached yet
		return true
	}

	if err := dir.InvalidateEmployee(ctx, event.EmployeeID, event.FacialID); err != nil {
		log.Error("invalidate employee failed",
			zap.String("employee_id", event.EmployeeID),
			zap.String("event_type", event.EventType),
			zap.Error(err),
		)
		return false
	}

	log.Info("employee identity invalidated",
		zap.String("employee_id", event.EmployeeID),
		zap.String("event_type", event.EventType),
	)
	return true
}
