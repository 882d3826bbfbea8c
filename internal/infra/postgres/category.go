package postgres

import (
	"context"

	"github.com/lifeio/lifeio/internal/domain"
)

// GetCategory returns nil, nil when (userID, name) has no multiplier yet.
func (s *Store) GetCategory(ctx context.Context, userID, name string) (*domain.Category, error) {
	c := domain.Category{UserID: userID, Name: name}
	found := true
	err := s.run(ctx, userID, func(q querier) error {
		err := q.QueryRow(ctx,
			`SELECT xp_multiplier FROM categories WHERE user_id = $1 AND name = $2`, userID, name,
		).Scan(&c.XPMultiplier)
		if isNoRows(err) {
			found = false
			return nil
		}
		return err
	})
	if err != nil || !found {
		return nil, err
	}
	return &c, nil
}

// CreateCategory inserts c; an existing (user, name) row wins.
func (s *Store) CreateCategory(ctx context.Context, c domain.Category) error {
	return s.run(ctx, c.UserID, func(q querier) error {
		_, err := q.Exec(ctx,
			`INSERT INTO categories (user_id, name, xp_multiplier) VALUES ($1, $2, $3)
			 ON CONFLICT (user_id, name) DO NOTHING`,
			c.UserID, c.Name, c.XPMultiplier,
		)
		return err
	})
}
