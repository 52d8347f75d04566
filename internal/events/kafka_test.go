package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestKafkaPublisher_Publish(t *testing.T) {
	w := &fakeWriter{}
	fixed := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	p := &KafkaPublisher{writer: w, now: func() time.Time { return fixed }}

	err := p.Publish(context.Background(), Event{
		Type:      TypeOrderConfirmed,
		SessionID: "sess-1",
		OrderID:   "ORD_ABC",
		PaymentID: "PAY_XYZ",
		Total:     decimal.NewFromInt(1500),
		Currency:  "INR",
	})
	require.NoError(t, err)
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, "ORD_ABC", string(msg.Key))
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, "event_type", msg.Headers[0].Key)
	assert.Equal(t, "order.confirmed", string(msg.Headers[0].Value))

	var got Event
	require.NoError(t, json.Unmarshal(msg.Value, &got))
	assert.NotEmpty(t, got.ID)
	assert.Equal(t, fixed, got.OccurredAt)
	assert.Equal(t, "PAY_XYZ", got.PaymentID)
	assert.True(t, got.Total.Equal(decimal.NewFromInt(1500)))
}

func TestKafkaPublisher_KeepsGivenID(t *testing.T) {
	w := &fakeWriter{}
	p := &KafkaPublisher{writer: w, now: time.Now}

	require.NoError(t, p.Publish(context.Background(), Event{ID: "evt-1", Type: TypeOrderNotRecorded, OrderID: "ORD_1"}))

	var got Event
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &got))
	assert.Equal(t, "evt-1", got.ID)
	assert.Equal(t, TypeOrderNotRecorded, got.Type)
}

func TestKafkaPublisher_WriteError(t *testing.T) {
	boom := errors.New("broker down")
	p := &KafkaPublisher{writer: &fakeWriter{err: boom}, now: time.Now}

	err := p.Publish(context.Background(), Event{Type: TypeOrderConfirmed, OrderID: "ORD_1"})
	assert.ErrorIs(t, err, boom)
}

func TestKafkaPublisher_Close(t *testing.T) {
	w := &fakeWriter{}
	p := &KafkaPublisher{writer: w, now: time.Now}
	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}
