package database

import (
	"context"

	"github.com/kozaktomas/makeup-coach/internal/catalog"
	"github.com/kozaktomas/makeup-coach/internal/progress"
)

// ProgressReader provides read-only access to progression states
type ProgressReader interface {
	// Load retrieves a user's state, returns nil if the user has none yet
	Load(ctx context.Context, userID string) (*progress.State, error)
}

// ProgressWriter provides write access to progression states.
// It satisfies progress.Store.
type ProgressWriter interface {
	ProgressReader

	// Save stores the full state, replacing any previous one
	Save(ctx context.Context, userID string, state *progress.State) error

	// Delete removes a user's state
	Delete(ctx context.Context, userID string) error
}

// AnalysisReader provides read-only access to stored analyses
type AnalysisReader interface {
	// GetAnalysis retrieves an analysis by ID, returns nil if not found
	GetAnalysis(ctx context.Context, id string) (*StoredAnalysis, error)
	// ListByUser returns the newest analyses of a user, newest first
	ListByUser(ctx context.Context, userID string, limit int) ([]StoredAnalysis, error)
	// Count returns the total number of stored analyses
	Count(ctx context.Context) (int, error)
}

// AnalysisWriter provides write access to stored analyses
type AnalysisWriter interface {
	AnalysisReader

	// SaveAnalysis stores an analysis; an empty ID is generated and CreatedAt is set
	SaveAnalysis(ctx context.Context, a *StoredAnalysis) error
}

// CatalogReader is a product source backed by a database
type CatalogReader interface {
	catalog.Source

	// Count returns the number of products
	Count(ctx context.Context) (int, error)
}
