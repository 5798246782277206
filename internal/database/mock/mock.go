// Package mock provides mock implementations of database interfaces for testing.
package mock

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kozaktomas/makeup-coach/internal/catalog"
	"github.com/kozaktomas/makeup-coach/internal/database"
	"github.com/kozaktomas/makeup-coach/internal/progress"
)

// MockProgressRepository is a mock implementation of database.ProgressWriter
type MockProgressRepository struct {
	mu     sync.RWMutex
	states map[string]*progress.State

	// Error injection
	LoadError   error
	SaveError   error
	DeleteError error

	SaveCalls int
}

// NewMockProgressRepository creates a new mock progress repository
func NewMockProgressRepository() *MockProgressRepository {
	return &MockProgressRepository{
		states: make(map[string]*progress.State),
	}
}

// Load retrieves a state by user id
func (m *MockProgressRepository) Load(_ context.Context, userID string) (*progress.State, error) {
	if m.LoadError != nil {
		return nil, m.LoadError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.states[userID]
	if !ok {
		return nil, nil
	}
	return s.Clone(), nil
}

// Save stores a state
func (m *MockProgressRepository) Save(_ context.Context, userID string, state *progress.State) error {
	if m.SaveError != nil {
		return m.SaveError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SaveCalls++
	m.states[userID] = state.Clone()
	return nil
}

// Delete removes a state
func (m *MockProgressRepository) Delete(_ context.Context, userID string) error {
	if m.DeleteError != nil {
		return m.DeleteError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.states, userID)
	return nil
}

// MockAnalysisRepository is a mock implementation of database.AnalysisWriter
type MockAnalysisRepository struct {
	mu       sync.RWMutex
	analyses []database.StoredAnalysis

	// Error injection
	GetError   error
	ListError  error
	CountError error
	SaveError  error
}

// NewMockAnalysisRepository creates a new mock analysis repository
func NewMockAnalysisRepository() *MockAnalysisRepository {
	return &MockAnalysisRepository{}
}

// SaveAnalysis stores an analysis, assigning an ID and timestamp when missing
func (m *MockAnalysisRepository) SaveAnalysis(_ context.Context, a *database.StoredAnalysis) error {
	if m.SaveError != nil {
		return m.SaveError
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.analyses = append(m.analyses, *a)
	return nil
}

// GetAnalysis retrieves an analysis by ID
func (m *MockAnalysisRepository) GetAnalysis(_ context.Context, id string) (*database.StoredAnalysis, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, a := range m.analyses {
		if a.ID == id {
			return &a, nil
		}
	}
	return nil, nil
}

// ListByUser returns a user's analyses, newest first
func (m *MockAnalysisRepository) ListByUser(_ context.Context, userID string, limit int) ([]database.StoredAnalysis, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []database.StoredAnalysis
	for _, a := range m.analyses {
		if a.UserID == userID {
			result = append(result, a)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// Count returns the number of stored analyses
func (m *MockAnalysisRepository) Count(_ context.Context) (int, error) {
	if m.CountError != nil {
		return 0, m.CountError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.analyses), nil
}

// MockCatalogRepository is a mock implementation of database.CatalogReader
type MockCatalogRepository struct {
	Static *catalog.Static

	ProductsError error
}

// NewMockCatalogRepository creates a catalog mock over the given products
func NewMockCatalogRepository(products []catalog.Product) *MockCatalogRepository {
	return &MockCatalogRepository{Static: catalog.NewStatic(products)}
}

// Products returns products of a category
func (m *MockCatalogRepository) Products(ctx context.Context, category string) ([]catalog.Product, error) {
	if m.ProductsError != nil {
		return nil, fmt.Errorf("mock catalog: %w", m.ProductsError)
	}
	return m.Static.Products(ctx, category)
}

// Count returns the number of products
func (m *MockCatalogRepository) Count(_ context.Context) (int, error) {
	return len(m.Static.All()), nil
}

var (
	_ database.ProgressWriter = (*MockProgressRepository)(nil)
	_ database.AnalysisWriter = (*MockAnalysisRepository)(nil)
	_ database.CatalogReader  = (*MockCatalogRepository)(nil)
)
