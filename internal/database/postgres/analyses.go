package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kozaktomas/makeup-coach/internal/database"
)

// AnalysisRepository stores analysis results.
type AnalysisRepository struct {
	pool *Pool
}

// NewAnalysisRepository creates a new analysis repository
func NewAnalysisRepository(pool *Pool) *AnalysisRepository {
	return &AnalysisRepository{pool: pool}
}

// SaveAnalysis stores an analysis, generating its ID when empty
func (r *AnalysisRepository) SaveAnalysis(ctx context.Context, a *database.StoredAnalysis) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	} else if _, err := uuid.Parse(a.ID); err != nil {
		return fmt.Errorf("invalid analysis id %q: %w", a.ID, err)
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}

	raw, err := json.Marshal(a.Result)
	if err != nil {
		return fmt.Errorf("encode analysis result: %w", err)
	}

	query := `
		INSERT INTO analyses (id, user_id, width, height, format, confidence, result, created_at)
		VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6, $7, $8)
	`
	_, err = r.pool.Exec(ctx, query, a.ID, a.UserID, a.Width, a.Height, a.Format, a.Confidence, raw, a.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert analysis: %w", err)
	}
	return nil
}

const analysisColumns = "id, COALESCE(user_id, ''), width, height, format, confidence, result, created_at"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAnalysis(row rowScanner) (*database.StoredAnalysis, error) {
	var a database.StoredAnalysis
	var raw []byte
	if err := row.Scan(&a.ID, &a.UserID, &a.Width, &a.Height, &a.Format, &a.Confidence, &raw, &a.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, &a.Result); err != nil {
		return nil, fmt.Errorf("decode analysis %s: %w", a.ID, err)
	}
	return &a, nil
}

// GetAnalysis retrieves an analysis by ID, returns nil if not found
func (r *AnalysisRepository) GetAnalysis(ctx context.Context, id string) (*database.StoredAnalysis, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}
	a, err := scanAnalysis(r.pool.QueryRow(ctx, "SELECT "+analysisColumns+" FROM analyses WHERE id = $1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query analysis: %w", err)
	}
	return a, nil
}

// ListByUser returns the newest analyses of a user
func (r *AnalysisRepository) ListByUser(ctx context.Context, userID string, limit int) ([]database.StoredAnalysis, error) {
	rows, err := r.pool.Query(ctx,
		"SELECT "+analysisColumns+" FROM analyses WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2",
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query analyses: %w", err)
	}
	defer rows.Close()

	var result []database.StoredAnalysis
	for rows.Next() {
		a, err := scanAnalysis(rows)
		if err != nil {
			return nil, fmt.Errorf("scan analysis: %w", err)
		}
		result = append(result, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate analyses: %w", err)
	}
	return result, nil
}

// Count returns the total number of stored analyses
func (r *AnalysisRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM analyses").Scan(&count); err != nil {
		return 0, fmt.Errorf("count analyses: %w", err)
	}
	return count, nil
}

var _ database.AnalysisWriter = (*AnalysisRepository)(nil)
