package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/carbon-footprint-tracker/internal/model"
)

// ActivityRepo is the SQL implementation of ActivityStore.
type ActivityRepo struct{ DB *sql.DB }

func NewActivityRepo(db *sql.DB) *ActivityRepo { return &ActivityRepo{DB: db} }

var _ ActivityStore = (*ActivityRepo)(nil)

// Create inserts the activity. ID is always generated here; a zero
// Timestamp is replaced with the current time.
func (r *ActivityRepo) Create(ctx context.Context, a *model.Activity) error {
	a.ID = uuid.NewString()
	if a.Timestamp.IsZero() {
		a.Timestamp = time.Now()
	}
	a.Timestamp = a.Timestamp.UTC().Truncate(time.Microsecond)

	const q = `INSERT INTO activities (id, user_id, category, quantity, unit, carbon, occurred_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?)`
	if _, err := r.DB.ExecContext(ctx, q, a.ID, a.UserID, a.Type, a.Value, a.Unit, a.Carbon, a.Timestamp); err != nil {
		return fmt.Errorf("insert activity: %w", err)
	}
	return nil
}

// ListByOwner returns all activities of userID ordered by occurred_at.
func (r *ActivityRepo) ListByOwner(ctx context.Context, userID string) ([]*model.Activity, error) {
	const q = `SELECT id, user_id, category, quantity, unit, carbon, occurred_at
	           FROM activities WHERE user_id = ? ORDER BY occurred_at, id`
	rows, err := r.DB.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	defer rows.Close()

	out := make([]*model.Activity, 0)
	for rows.Next() {
		a := new(model.Activity)
		if err := rows.Scan(&a.ID, &a.UserID, &a.Type, &a.Value, &a.Unit, &a.Carbon, &a.Timestamp); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		a.Timestamp = a.Timestamp.UTC()
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	return out, nil
}
