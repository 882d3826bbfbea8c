// Package events publishes activity domain events for downstream consumers.
// Publication is best-effort: the record store stays the source of truth.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/lifeio/lifeio/internal/domain"
)

// Event types.
const (
	TypeActivityRecorded = "activity.recorded"
	TypeActivityDeleted  = "activity.deleted"
)

// Event is the JSON payload written to the topic.
type Event struct {
	Type       string     `json:"type"`
	UserID     string     `json:"user_id"`
	ActivityID string     `json:"activity_id"`
	Category   string     `json:"category,omitempty"`
	StartTime  *time.Time `json:"start_time,omitempty"`
	EndTime    *time.Time `json:"end_time,omitempty"`
	XPEarned   float64    `json:"xp_earned,omitempty"`
	Replaced   int64      `json:"replaced,omitempty"`
	OccurredAt time.Time  `json:"occurred_at"`
}

// ActivityRecorded builds the event for a stored interval that replaced
// `replaced` older ones.
func ActivityRecorded(a domain.Activity, replaced int64) Event {
	start, end := a.StartTime, a.EndTime
	return Event{
		Type:       TypeActivityRecorded,
		UserID:     a.UserID,
		ActivityID: a.ID,
		Category:   a.Category,
		StartTime:  &start,
		EndTime:    &end,
		XPEarned:   a.XPEarned,
		Replaced:   replaced,
		OccurredAt: time.Now().UTC(),
	}
}

// ActivityDeleted builds the event for an explicit delete.
func ActivityDeleted(userID, activityID string) Event {
	return Event{
		Type:       TypeActivityDeleted,
		UserID:     userID,
		ActivityID: activityID,
		OccurredAt: time.Now().UTC(),
	}
}

// Publisher delivers events.
type Publisher interface {
	Publish(ctx context.Context, evt Event) error
	Close() error
}

// Nop discards every event. Used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }

// ─── Kafka ──────────────────────────────────────────────────────────────────

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes events to a single topic, keyed by user id so a
// user's events stay ordered within one partition.
type KafkaPublisher struct {
	writer messageWriter
}

// NewKafkaPublisher creates a synchronous writer for topic.
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{writer: &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		Compression:  kafka.Snappy,
		Async:        false,
	}}
}

// Publish encodes evt and writes it.
func (p *KafkaPublisher) Publish(ctx context.Context, evt Event) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(evt.UserID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(evt.Type)},
		},
		Time: evt.OccurredAt,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write %s: %w", evt.Type, err)
	}
	return nil
}

// Close flushes and releases the writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
