// Package store holds enrolled identity embeddings. The match engine is the
// only component that talks to it; everything else goes through the engine.
package store

import (
	"context"
	"time"
)

// EnrolledIdentity is one identity's reference embedding. The embedding is
// L2-normalized at enrollment time and always replaced as a whole, never
// partially updated.
type EnrolledIdentity struct {
	IdentityKey string
	Embedding   []float32
	Model       string
	Dim         int
	EnrolledAt  time.Time
}

// EmbeddingStore provides access to enrolled identity embeddings.
// Implementations must apply writes atomically with respect to concurrent
// reads: a reader never observes a half-written vector. At most one
// embedding is held per identity key; Put overwrites (latest registration
// wins).
type EmbeddingStore interface {
	// Get retrieves an identity by key, returns nil if not enrolled.
	Get(ctx context.Context, identityKey string) (*EnrolledIdentity, error)
	// Put stores or overwrites the embedding for an identity.
	Put(ctx context.Context, identity EnrolledIdentity) error
	// All returns every enrolled identity.
	All(ctx context.Context) ([]EnrolledIdentity, error)
	// Count returns the number of enrolled identities.
	Count(ctx context.Context) (int, error)
}
