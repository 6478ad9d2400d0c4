package token

import (
	"context"
	"sync"
	"time"
)

// MemoryRegistry is an in-memory Registry for single-process deployments.
type MemoryRegistry struct {
	mu     sync.RWMutex
	tokens map[string]GateToken
}

// NewMemoryRegistry creates an empty in-memory registry.
func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{
		tokens: make(map[string]GateToken),
	}
}

// Put stores an issued token keyed by its token ID.
func (r *MemoryRegistry) Put(_ context.Context, t GateToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[t.TokenID] = t
	return nil
}

// Get retrieves a token by ID, returns nil if unknown.
func (r *MemoryRegistry) Get(_ context.Context, tokenID string) (*GateToken, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tokens[tokenID]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

// Consume marks a token used; the first call wins.
func (r *MemoryRegistry) Consume(_ context.Context, tokenID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tokens[tokenID]
	if !ok {
		return nil
	}
	if t.Status == StatusConsumed {
		return ErrAlreadyConsumed
	}
	t.Status = StatusConsumed
	r.tokens[tokenID] = t
	return nil
}

// Sweep removes tokens whose validity window elapsed before now.
func (r *MemoryRegistry) Sweep(_ context.Context, now time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for id, t := range r.tokens {
		if t.ExpiredAt(now) {
			delete(r.tokens, id)
			removed++
		}
	}
	return removed, nil
}

// Len returns the number of tokens currently held, for diagnostics.
func (r *MemoryRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tokens)
}
