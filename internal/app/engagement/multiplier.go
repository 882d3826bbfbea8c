package engagement

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/lifeio/lifeio/internal/domain"
	"github.com/lifeio/lifeio/internal/infra/metrics"
)

// MultiplierResolver looks up per-user category multipliers, creating
// them with a default on first use.
type MultiplierResolver struct {
	store    domain.CategoryStore
	elevated domain.CategoryStore // nil when no privileged handle is configured
	log      zerolog.Logger
}

// NewMultiplierResolver creates a resolver. elevated may be nil.
func NewMultiplierResolver(store, elevated domain.CategoryStore, log zerolog.Logger) *MultiplierResolver {
	return &MultiplierResolver{
		store:    store,
		elevated: elevated,
		log:      log.With().Str("component", "multiplier").Logger(),
	}
}

// Resolve returns the multiplier stored for (userID, name).
// An unseen category is created with DefaultMultiplier(name). The value is
// re-read after the insert so racing first uses all return the row that won.
func (r *MultiplierResolver) Resolve(ctx context.Context, userID, name string) (float64, error) {
	c, err := r.store.GetCategory(ctx, userID, name)
	if err != nil {
		return 0, fmt.Errorf("get category: %w", err)
	}
	if c != nil {
		return c.XPMultiplier, nil
	}

	seed := domain.Category{
		UserID:       userID,
		Name:         name,
		XPMultiplier: domain.DefaultMultiplier(name),
	}
	if err := r.create(ctx, seed); err != nil {
		return 0, err
	}

	c, err = r.store.GetCategory(ctx, userID, name)
	if err != nil {
		return 0, fmt.Errorf("reread category: %w", err)
	}
	if c == nil {
		// Row exists but is not visible through the user-scoped handle.
		return seed.XPMultiplier, nil
	}
	return c.XPMultiplier, nil
}

// create writes through the elevated handle when present and falls back to
// the user-scoped handle if that write fails.
func (r *MultiplierResolver) create(ctx context.Context, c domain.Category) error {
	if r.elevated != nil {
		err := r.elevated.CreateCategory(ctx, c)
		if err == nil {
			metrics.CategoriesCreated.WithLabelValues("elevated").Inc()
			return nil
		}
		r.log.Warn().Err(err).Str("category", c.Name).Msg("elevated insert failed, using user store")

		if ferr := r.store.CreateCategory(ctx, c); ferr != nil {
			return fmt.Errorf("create category: %w", errors.Join(err, ferr))
		}
		metrics.CategoriesCreated.WithLabelValues("user").Inc()
		return nil
	}

	if err := r.store.CreateCategory(ctx, c); err != nil {
		return fmt.Errorf("create category: %w", err)
	}
	metrics.CategoriesCreated.WithLabelValues("user").Inc()
	return nil
}
