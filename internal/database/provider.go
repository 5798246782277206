package database

import (
	"context"
	"errors"
	"sync"
)

var (
	mu                     sync.RWMutex
	postgresProgressWriter func() ProgressWriter
	postgresAnalysisWriter func() AnalysisWriter
	postgresInitialized    bool
)

// RegisterPostgresBackend registers PostgreSQL repository constructors.
// This is called by the postgres package to avoid import cycles.
func RegisterPostgresBackend(
	progressWriter func() ProgressWriter,
	analysisWriter func() AnalysisWriter,
) {
	mu.Lock()
	defer mu.Unlock()
	postgresProgressWriter = progressWriter
	postgresAnalysisWriter = analysisWriter
	postgresInitialized = true
}

// ResetBackend forgets the registered backend.
func ResetBackend() {
	mu.Lock()
	defer mu.Unlock()
	postgresProgressWriter = nil
	postgresAnalysisWriter = nil
	postgresInitialized = false
}

// IsInitialized returns whether the PostgreSQL backend has been initialized.
func IsInitialized() bool {
	mu.RLock()
	defer mu.RUnlock()
	return postgresInitialized
}

// GetProgressWriter returns a ProgressWriter from the PostgreSQL backend
func GetProgressWriter(_ context.Context) (ProgressWriter, error) {
	mu.RLock()
	defer mu.RUnlock()
	if !postgresInitialized {
		return nil, errors.New("PostgreSQL backend not initialized: DATABASE_URL is required")
	}
	if postgresProgressWriter == nil {
		return nil, errors.New("PostgreSQL progress writer not registered")
	}
	return postgresProgressWriter(), nil
}

// GetAnalysisWriter returns an AnalysisWriter from the PostgreSQL backend
func GetAnalysisWriter(_ context.Context) (AnalysisWriter, error) {
	mu.RLock()
	defer mu.RUnlock()
	if !postgresInitialized {
		return nil, errors.New("PostgreSQL backend not initialized: DATABASE_URL is required")
	}
	if postgresAnalysisWriter == nil {
		return nil, errors.New("PostgreSQL analysis writer not registered")
	}
	return postgresAnalysisWriter(), nil
}

// GetAnalysisReader returns an AnalysisReader from the PostgreSQL backend
func GetAnalysisReader(ctx context.Context) (AnalysisReader, error) {
	return GetAnalysisWriter(ctx)
}
