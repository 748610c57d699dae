// Package store provides storage implementations for the ledger.
package store

import (
	"context"
	"sync"

	"stockledger/domain"
)

// InMemoryStore is a single-writer in-memory domain.Store. Updates run on a
// clone which replaces the live state only on success.
type InMemoryStore struct {
	mu    sync.RWMutex
	state *domain.State
}

// NewInMemoryStore constructs an empty InMemoryStore
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{state: domain.NewState()}
}

// NewInMemoryStoreFrom wraps an existing state.
func NewInMemoryStoreFrom(s *domain.State) *InMemoryStore {
	if s == nil {
		s = domain.NewState()
	}
	return &InMemoryStore{state: s}
}

// compile-time assertion that InMemoryStore implements domain.Store
var _ domain.Store = (*InMemoryStore)(nil)

func (s *InMemoryStore) View(ctx context.Context, fn func(*domain.State) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.state)
}

func (s *InMemoryStore) Update(ctx context.Context, fn func(*domain.State) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state.Clone()
	if err := fn(next); err != nil {
		return err
	}
	s.state = next
	return nil
}

// Snapshot returns a copy of the current state.
func (s *InMemoryStore) Snapshot() *domain.State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}
