package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kozaktomas/makeup-coach/internal/database"
	"github.com/kozaktomas/makeup-coach/internal/progress"
)

// ProgressRepository stores progression states. The full state lives in a JSONB
// column; the headline counters are duplicated into columns for querying.
type ProgressRepository struct {
	pool *Pool
}

// NewProgressRepository creates a new progress repository
func NewProgressRepository(pool *Pool) *ProgressRepository {
	return &ProgressRepository{pool: pool}
}

// Load retrieves a user's state, returns nil if not found
func (r *ProgressRepository) Load(ctx context.Context, userID string) (*progress.State, error) {
	var raw []byte
	err := r.pool.QueryRow(ctx, "SELECT state FROM user_progress WHERE user_id = $1", userID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query progress: %w", err)
	}

	var state progress.State
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, fmt.Errorf("decode progress of %s: %w", userID, err)
	}
	return &state, nil
}

// Save upserts a user's state
func (r *ProgressRepository) Save(ctx context.Context, userID string, state *progress.State) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode progress: %w", err)
	}

	query := `
		INSERT INTO user_progress (user_id, level, experience, total_points, streak, last_activity, completed_looks, state, updated_at)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, '')::date, $7, $8, NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			level = EXCLUDED.level,
			experience = EXCLUDED.experience,
			total_points = EXCLUDED.total_points,
			streak = EXCLUDED.streak,
			last_activity = EXCLUDED.last_activity,
			completed_looks = EXCLUDED.completed_looks,
			state = EXCLUDED.state,
			updated_at = NOW()
	`
	_, err = r.pool.Exec(ctx, query,
		userID,
		state.Level,
		state.Experience,
		state.TotalPoints,
		state.Streak,
		state.LastActivity,
		state.CompletedLooks,
		raw,
	)
	if err != nil {
		return fmt.Errorf("save progress: %w", err)
	}
	return nil
}

// Delete removes a user's state
func (r *ProgressRepository) Delete(ctx context.Context, userID string) error {
	if _, err := r.pool.Exec(ctx, "DELETE FROM user_progress WHERE user_id = $1", userID); err != nil {
		return fmt.Errorf("delete progress: %w", err)
	}
	return nil
}

var _ database.ProgressWriter = (*ProgressRepository)(nil)
