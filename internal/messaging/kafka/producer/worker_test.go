package producer

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/Tabintel/attendance/internal/events"
	"github.com/Tabintel/attendance/internal/messaging/kafka"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type fakeWriter struct {
	failTopic string
	written   []kafkago.Message
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	for _, m := range msgs {
		if m.Topic == w.failTopic {
			return errors.New("leader not available")
		}
		w.written = append(w.written, m)
	}
	return nil
}

func TestRelayDrain_MarksSentAndFailed(t *testing.T) {
	ctx := context.Background()
	outbox := kafka.NewMemoryOutbox()

	recorded, err := kafka.NewOutboxEvent("REQ-1", "attendance_record", "rec-1", events.EventClockInRecorded,
		events.AttendanceRecordTopic, events.AttendanceRecordedEvent{RecordID: "rec-1", EmployeeID: "EMP002"})
	assert.NoError(t, err)
	alert, err := kafka.NewOutboxEvent("REQ-2", "attendance_record", "rec-2", events.AlertShiftPolicyMissing,
		events.AttendanceAlertTopic, events.AttendanceAlertEvent{EmployeeID: "EMP005"})
	assert.NoError(t, err)
	assert.NoError(t, outbox.Create(ctx, recorded))
	assert.NoError(t, outbox.Create(ctx, alert))

	writer := &fakeWriter{failTopic: events.AttendanceAlertTopic}
	relay := NewRelay(outbox, writer, RelayOptions{}, zap.NewNop())
	sent, err := relay.Drain(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 1, sent)

	assert.Len(t, writer.written, 1)
	assert.Equal(t, []byte("rec-1"), writer.written[0].Key)
	assert.Equal(t, recorded.ID, headerOf(writer.written[0], "outbox_id"))
	assert.Equal(t, "REQ-1", headerOf(writer.written[0], "request_id"))

	stored := outbox.Events()
	assert.Equal(t, kafka.OutboxStatusSent, stored[0].Status)
	assert.Equal(t, kafka.OutboxStatusFailed, stored[1].Status)
	assert.Equal(t, 1, stored[1].RetryCount)

	// failed event is backing off, nothing left to relay right now
	sent, err = relay.Drain(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 0, sent)
}

func TestRelayDrain_EmptiesBacklogAcrossBatches(t *testing.T) {
	ctx := context.Background()
	outbox := kafka.NewMemoryOutbox()
	for i := 0; i < 7; i++ {
		ev, err := kafka.NewOutboxEvent("", "attendance_record", fmt.Sprintf("rec-%d", i), events.EventClockOutRecorded,
			events.AttendanceRecordTopic, events.AttendanceRecordedEvent{RecordID: fmt.Sprintf("rec-%d", i)})
		assert.NoError(t, err)
		assert.NoError(t, outbox.Create(ctx, ev))
	}

	writer := &fakeWriter{}
	sent, err := NewRelay(outbox, writer, RelayOptions{BatchSize: 3}, zap.NewNop()).Drain(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 7, sent)
	assert.Len(t, writer.written, 7)
	for _, e := range outbox.Events() {
		assert.Equal(t, kafka.OutboxStatusSent, e.Status)
	}
}

type failingOutbox struct {
	*kafka.MemoryOutbox
}

func (failingOutbox) ListPending(context.Context, int) ([]kafka.OutboxEvent, error) {
	return nil, errors.New("connection reset")
}

func TestRelayDrain_ListError(t *testing.T) {
	sent, err := NewRelay(failingOutbox{kafka.NewMemoryOutbox()}, &fakeWriter{}, RelayOptions{}, zap.NewNop()).Drain(context.Background())
	assert.Error(t, err)
	assert.Zero(t, sent)
}

func headerOf(msg kafkago.Message, key string) string {
	for _, h := range msg.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}
