package store

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory EmbeddingStore. It is the default backend for
// single-process deployments and the reference implementation for tests.
type MemoryStore struct {
	mu         sync.RWMutex
	identities map[string]EnrolledIdentity
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		identities: make(map[string]EnrolledIdentity),
	}
}

// Get retrieves an identity by key, returns nil if not enrolled.
func (s *MemoryStore) Get(_ context.Context, identityKey string) (*EnrolledIdentity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.identities[identityKey]
	if !ok {
		return nil, nil
	}
	// Copy the vector so callers cannot mutate stored state.
	out := id
	out.Embedding = append([]float32(nil), id.Embedding...)
	return &out, nil
}

// Put stores or overwrites the embedding for an identity. The vector is
// copied under the lock so the stored slice is never shared with the caller.
func (s *MemoryStore) Put(_ context.Context, identity EnrolledIdentity) error {
	stored := identity
	stored.Embedding = append([]float32(nil), identity.Embedding...)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.identities[identity.IdentityKey] = stored
	return nil
}

// All returns every enrolled identity.
func (s *MemoryStore) All(_ context.Context) ([]EnrolledIdentity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]EnrolledIdentity, 0, len(s.identities))
	for _, id := range s.identities {
		copied := id
		copied.Embedding = append([]float32(nil), id.Embedding...)
		out = append(out, copied)
	}
	return out, nil
}

// Count returns the number of enrolled identities.
func (s *MemoryStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.identities), nil
}
