// Package activity reconciles reported time intervals into the activity log.
// It is the only code that mutates stored activities.
package activity

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/lifeio/lifeio/internal/app/engagement"
	"github.com/lifeio/lifeio/internal/domain"
	"github.com/lifeio/lifeio/internal/infra/events"
	"github.com/lifeio/lifeio/internal/infra/metrics"
	"github.com/lifeio/lifeio/internal/infra/userlock"
)

// Service records, lists and deletes activity intervals.
type Service struct {
	store       domain.Store
	multipliers *engagement.MultiplierResolver
	locks       userlock.Locker
	events      events.Publisher
	log         zerolog.Logger
	now         func() time.Time

	// publishTimeout bounds one event publication.
	publishTimeout time.Duration
}

// DefaultPublishTimeout bounds a single event publication.
const DefaultPublishTimeout = 5 * time.Second

// NewService wires a Service. A nil locker or publisher falls back to an
// in-process KeyedMutex and a no-op publisher.
func NewService(store domain.Store, multipliers *engagement.MultiplierResolver, locks userlock.Locker, pub events.Publisher, log zerolog.Logger) *Service {
	if locks == nil {
		locks = userlock.NewKeyedMutex()
	}
	if pub == nil {
		pub = events.Nop{}
	}
	return &Service{
		store:       store,
		multipliers: multipliers,
		locks:       locks,
		events:      pub,
		log:         log.With().Str("component", "activity").Logger(),
		now:         time.Now,

		publishTimeout: DefaultPublishTimeout,
	}
}

// RecordInput is an unparsed activity submission.
type RecordInput struct {
	UserID   string
	Category string
	Start    string
	End      string // optional
}

// Record validates and parses in, then reconciles it.
// A missing end defaults to the day boundary of start.
func (s *Service) Record(ctx context.Context, in RecordInput) (domain.Activity, error) {
	if in.UserID == "" {
		return domain.Activity{}, domain.Invalid("user_id", "is required")
	}
	if strings.TrimSpace(in.Category) == "" {
		return domain.Activity{}, domain.Invalid("category", "is required")
	}
	start, err := ParseTimestamp("start_time", in.Start)
	if err != nil {
		return domain.Activity{}, err
	}

	var end time.Time
	if strings.TrimSpace(in.End) == "" {
		end = DayBoundary(start)
	} else {
		end, err = ParseTimestamp("end_time", in.End)
		if err != nil {
			return domain.Activity{}, err
		}
	}
	return s.Reconcile(ctx, in.UserID, in.Category, start, end)
}

// Reconcile stores [start, end) for userID after clipping end to the day
// boundary of start. Every stored interval of the user that intersects the
// clipped range is removed in the same transaction as the insert.
// Instants are truncated to microseconds, the precision of every store, so
// the returned record equals the stored row.
func (s *Service) Reconcile(ctx context.Context, userID, category string, start, end time.Time) (domain.Activity, error) {
	begin := time.Now()
	defer func() { metrics.ReconcileLatency.Observe(time.Since(begin).Seconds()) }()

	start = start.Truncate(time.Microsecond)
	end = end.Truncate(time.Microsecond)

	clipped := ClipToDayBoundary(start, end)
	if !clipped.Equal(end) {
		metrics.ActivitiesClipped.Inc()
		s.log.Debug().Str("user", userID).Time("end", end).Time("clipped", clipped).Msg("end clipped to day boundary")
	}
	end = clipped
	if !end.After(start) {
		return domain.Activity{}, domain.Invalid("end_time", "must be after start_time")
	}

	a, replaced, err := s.replaceLocked(ctx, userID, category, start, end)
	if err != nil {
		return domain.Activity{}, err
	}

	label := metrics.CategoryLabel(category)
	metrics.ActivitiesRecorded.WithLabelValues(label).Inc()
	metrics.ActivitiesReplaced.Add(float64(replaced))
	metrics.ObserveXP(category, a.XPEarned)

	s.log.Info().
		Str("user", userID).
		Str("id", a.ID).
		Str("category", category).
		Str("interval", describe(start, end)).
		Float64("xp", a.XPEarned).
		Int64("replaced", replaced).
		Msg("activity recorded")

	s.publish(ctx, events.ActivityRecorded(a, replaced))
	return a, nil
}

// replaceLocked resolves the multiplier and swaps the overlapping intervals
// for the new one while holding the user's lock.
func (s *Service) replaceLocked(ctx context.Context, userID, category string, start, end time.Time) (domain.Activity, int64, error) {
	unlock, err := s.locks.Lock(ctx, userID)
	if err != nil {
		return domain.Activity{}, 0, fmt.Errorf("lock user: %w", err)
	}
	defer unlock()

	multiplier, err := s.multipliers.Resolve(ctx, userID, category)
	if err != nil {
		return domain.Activity{}, 0, fmt.Errorf("resolve multiplier: %w", err)
	}

	a := domain.Activity{
		ID:        uuid.NewString(),
		UserID:    userID,
		Category:  category,
		StartTime: start,
		EndTime:   end,
		XPEarned:  engagement.ComputeXP(end.Sub(start).Minutes(), multiplier),
		CreatedAt: s.now().UTC().Truncate(time.Microsecond),
	}

	var replaced int64
	err = s.store.Atomic(ctx, func(tx domain.Store) error {
		n, err := tx.DeleteOverlapping(ctx, userID, start, end)
		if err != nil {
			return fmt.Errorf("purge overlapping: %w", err)
		}
		replaced = n
		if err := tx.InsertActivity(ctx, a); err != nil {
			return fmt.Errorf("insert activity: %w", err)
		}
		return nil
	})
	if err != nil {
		return domain.Activity{}, 0, err
	}
	return a, replaced, nil
}

// Delete removes one interval of userID. A missing id is not an error.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	if err := s.store.DeleteActivity(ctx, userID, id); err != nil {
		return fmt.Errorf("delete activity: %w", err)
	}
	s.publish(ctx, events.ActivityDeleted(userID, id))
	return nil
}

// List returns every interval of userID, most recent start first.
func (s *Service) List(ctx context.Context, userID string) ([]domain.Activity, error) {
	acts, err := s.store.ListActivities(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	return acts, nil
}

// publish is best-effort. It runs outside the user lock, survives request
// cancellation and gives up after publishTimeout.
func (s *Service) publish(ctx context.Context, evt events.Event) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.publishTimeout)
	defer cancel()

	if err := s.events.Publish(ctx, evt); err != nil {
		metrics.EventsPublished.WithLabelValues(evt.Type, "error").Inc()
		s.log.Warn().Err(err).Str("type", evt.Type).Msg("publish event")
		return
	}
	metrics.EventsPublished.WithLabelValues(evt.Type, "ok").Inc()
}
