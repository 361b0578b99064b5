package consumer_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Tabintel/attendance/internal/attendance"
	attendanceerrors "github.com/Tabintel/attendance/internal/attendance/errors"
	attendancemock "github.com/Tabintel/attendance/internal/attendance/mock"
	directorymock "github.com/Tabintel/attendance/internal/directory/mock"
	"github.com/Tabintel/attendance/internal/events"
	"github.com/Tabintel/attendance/internal/messaging/kafka/consumer"
	"github.com/Tabintel/attendance/internal/shared/apperror"
	"github.com/Tabintel/attendance/internal/shared/contextutil"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
)

func clockMessage(t *testing.T, event events.ClockSubmittedEvent) kafkago.Message {
	t.Helper()
	payload, err := json.Marshal(event)
	require.NoError(t, err)
	return kafkago.Message{
		Value:   payload,
		Headers: []kafkago.Header{{Key: "request_id", Value: []byte("req-42")}},
	}
}

func TestHandleClockSubmitted(t *testing.T) {
	instant := time.Date(2024, 3, 1, 8, 10, 0, 0, time.UTC)
	event := events.ClockSubmittedEvent{IdentityToken: "facial-002", Instant: instant, DeviceID: "lobby-1"}

	tests := []struct {
		name       string
		err        error
		wantCommit bool
	}{
		{"applied", nil, true},
		{"state conflict is final", attendanceerrors.ErrSessionAlreadyClosed, true},
		{"out of order is final", attendanceerrors.ErrInstantOutOfOrder, true},
		{"lock timeout is retried", attendanceerrors.ErrLockTimeout, false},
		{"upstream outage is retried", apperror.ErrUpstreamUnavailable, false},
		{"raw storage error is retried", errors.New("connection reset by peer"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			svc := attendancemock.NewMockService(ctrl)
			svc.EXPECT().
				SubmitClockEvent(gomock.Any(), gomock.Any()).
				DoAndReturn(func(ctx context.Context, req attendance.SubmitClockEventRequest) (attendance.ClockEventResponse, error) {
					assert.Equal(t, "req-42", contextutil.GetRequestID(ctx))
					assert.Equal(t, "facial-002", req.IdentityToken)
					require.NotNil(t, req.Instant)
					assert.True(t, instant.Equal(*req.Instant))
					return attendance.ClockEventResponse{Action: attendance.ActionIn}, tt.err
				})

			commit := consumer.HandleClockSubmitted(context.Background(), svc, clockMessage(t, event), zap.NewNop())
			assert.Equal(t, tt.wantCommit, commit)
		})
	}

	t.Run("undecodable payload is dropped", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc := attendancemock.NewMockService(ctrl)

		commit := consumer.HandleClockSubmitted(context.Background(), svc, kafkago.Message{Value: []byte("{")}, zap.NewNop())
		assert.True(t, commit)
	})
}

func TestHandleEmployeeLifecycle(t *testing.T) {
	message := func(eventType string) kafkago.Message {
		payload, _ := json.Marshal(events.EmployeeLifecycleEvent{EventType: eventType, EmployeeID: "EMP002", FacialID: "facial-002"})
		return kafkago.Message{Value: payload}
	}

	t.Run("deactivation invalidates identity", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		dir := directorymock.NewMockService(ctrl)
		dir.EXPECT().InvalidateEmployee(gomock.Any(), "EMP002", "facial-002").Return(nil)

		assert.True(t, consumer.HandleEmployeeLifecycle(context.Background(), dir, message(events.EmployeeDeactivated), zap.NewNop()))
	})

	t.Run("cache failure is retried", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		dir := directorymock.NewMockService(ctrl)
		dir.EXPECT().InvalidateEmployee(gomock.Any(), "EMP002", "facial-002").Return(errors.New("redis down"))

		assert.False(t, consumer.HandleEmployeeLifecycle(context.Background(), dir, message(events.EmployeeUpdated), zap.NewNop()))
	})

	t.Run("creation needs no work", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		dir := directorymock.NewMockService(ctrl)

		assert.True(t, consumer.HandleEmployeeLifecycle(context.Background(), dir, message(events.EmployeeCreated), zap.NewNop()))
	})
}

type fakeReader struct {
	mu        sync.Mutex
	messages  []kafkago.Message
	committed []int64
	drained   chan struct{}
}

func (f *fakeReader) FetchMessage(ctx context.Context) (kafkago.Message, error) {
	f.mu.Lock()
	if len(f.messages) > 0 {
		msg := f.messages[0]
		f.messages = f.messages[1:]
		f.mu.Unlock()
		return msg, nil
	}
	f.mu.Unlock()

	select {
	case f.drained <- struct{}{}:
	default:
	}
	<-ctx.Done()
	return kafkago.Message{}, ctx.Err()
}

func (f *fakeReader) CommitMessages(_ context.Context, msgs ...kafkago.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range msgs {
		f.committed = append(f.committed, m.Offset)
	}
	return nil
}

func TestConsumeEmployeeLifecycle_RetriesBeforeMovingOn(t *testing.T) {
	ok, _ := json.Marshal(events.EmployeeLifecycleEvent{EventType: events.EmployeeUpdated, EmployeeID: "EMP001"})
	fail, _ := json.Marshal(events.EmployeeLifecycleEvent{EventType: events.EmployeeUpdated, EmployeeID: "EMP003"})

	reader := &fakeReader{
		messages: []kafkago.Message{
			{Offset: 1, Value: ok},
			{Offset: 2, Value: fail},
			{Offset: 3, Value: []byte("not json")},
		},
		drained: make(chan struct{}, 1),
	}

	ctrl := gomock.NewController(t)
	dir := directorymock.NewMockService(ctrl)
	gomock.InOrder(
		dir.EXPECT().InvalidateEmployee(gomock.Any(), "EMP001", "").Return(nil),
		dir.EXPECT().InvalidateEmployee(gomock.Any(), "EMP003", "").Return(errors.New("redis down")),
		dir.EXPECT().InvalidateEmployee(gomock.Any(), "EMP003", "").Return(nil),
	)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		consumer.ConsumeEmployeeLifecycle(ctx, reader, dir, zap.NewNop())
		close(done)
	}()

	<-reader.drained
	cancel()
	<-done

	assert.Equal(t, []int64{1, 2, 3}, reader.committed)
}
