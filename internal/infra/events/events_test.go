package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifeio/lifeio/internal/domain"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func TestKafkaPublisher_Publish(t *testing.T) {
	w := &fakeWriter{}
	p := &KafkaPublisher{writer: w}

	start := time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC)
	a := domain.Activity{ID: "a1", UserID: "u1", Category: "Work",
		StartTime: start, EndTime: start.Add(90 * time.Minute), XPEarned: 108}

	require.NoError(t, p.Publish(context.Background(), ActivityRecorded(a, 1)))
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, "u1", string(msg.Key))
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, TypeActivityRecorded, string(msg.Headers[0].Value))

	var got Event
	require.NoError(t, json.Unmarshal(msg.Value, &got))
	assert.Equal(t, "a1", got.ActivityID)
	assert.Equal(t, "Work", got.Category)
	assert.Equal(t, 108.0, got.XPEarned)
	assert.Equal(t, int64(1), got.Replaced)
	require.NotNil(t, got.EndTime)
	assert.True(t, got.EndTime.Equal(start.Add(90*time.Minute)))

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestKafkaPublisher_WriteError(t *testing.T) {
	p := &KafkaPublisher{writer: &fakeWriter{err: errors.New("broker down")}}
	err := p.Publish(context.Background(), ActivityDeleted("u1", "a1"))
	assert.ErrorContains(t, err, "write activity.deleted")
	assert.ErrorContains(t, err, "broker down")
}

func TestNop(t *testing.T) {
	var p Publisher = Nop{}
	assert.NoError(t, p.Publish(context.Background(), ActivityDeleted("u1", "a1")))
	assert.NoError(t, p.Close())
}
