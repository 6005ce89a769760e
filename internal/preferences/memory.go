// Package preferences provides the backends for per-client prompt overrides.
package preferences

import (
	"context"
	"sync"

	"github.com/davidbz/pressroom/internal/domain"
)

// MemoryStore stores overrides in process memory.
type MemoryStore struct {
	mu    sync.RWMutex
	prefs map[string]domain.PromptOverrides
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		mu:    sync.RWMutex{},
		prefs: make(map[string]domain.PromptOverrides),
	}
}

// Get returns the overrides for clientID, or a zero value.
func (s *MemoryStore) Get(_ context.Context, clientID string) (domain.PromptOverrides, error) {
	if clientID == "" {
		return domain.PromptOverrides{}, domain.NewInputError("client_id", "cannot be empty")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.prefs[clientID], nil
}

// Put replaces the overrides for clientID.
func (s *MemoryStore) Put(_ context.Context, clientID string, overrides domain.PromptOverrides) error {
	if clientID == "" {
		return domain.NewInputError("client_id", "cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if overrides.IsZero() {
		delete(s.prefs, clientID)
		return nil
	}
	s.prefs[clientID] = overrides
	return nil
}

// Delete removes the overrides for clientID.
func (s *MemoryStore) Delete(_ context.Context, clientID string) error {
	if clientID == "" {
		return domain.NewInputError("client_id", "cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.prefs, clientID)
	return nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error {
	return nil
}
