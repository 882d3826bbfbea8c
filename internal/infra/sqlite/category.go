package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lifeio/lifeio/internal/domain"
)

// ─── Category Repository ────────────────────────────────────────────────────

// GetCategory returns nil, nil when (userID, name) has no multiplier yet.
func (d *DB) GetCategory(ctx context.Context, userID, name string) (*domain.Category, error) {
	c := domain.Category{UserID: userID, Name: name}
	err := d.q.QueryRowContext(ctx,
		`SELECT xp_multiplier FROM categories WHERE user_id = ? AND name = ?`, userID, name,
	).Scan(&c.XPMultiplier)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// CreateCategory inserts c; an existing (user, name) row wins.
func (d *DB) CreateCategory(ctx context.Context, c domain.Category) error {
	_, err := d.q.ExecContext(ctx,
		`INSERT INTO categories (user_id, name, xp_multiplier) VALUES (?, ?, ?)
		 ON CONFLICT(user_id, name) DO NOTHING`,
		c.UserID, c.Name, c.XPMultiplier,
	)
	return err
}
