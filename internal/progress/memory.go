package progress

import (
	"context"
	"sync"
)

// MemoryStore keeps states in process memory. Data is lost on restart.
type MemoryStore struct {
	mu     sync.RWMutex
	states map[string]*State
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{states: make(map[string]*State)}
}

// Load implements Store.
func (m *MemoryStore) Load(_ context.Context, userID string) (*State, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.states[userID]
	if !ok {
		return nil, nil
	}
	return s.Clone(), nil
}

// Save implements Store.
func (m *MemoryStore) Save(_ context.Context, userID string, state *State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[userID] = state.Clone()
	return nil
}
