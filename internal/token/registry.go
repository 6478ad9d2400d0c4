package token

import (
	"context"
	"errors"
	"time"
)

// ErrAlreadyConsumed is returned by Consume for a token that has already
// been used once.
var ErrAlreadyConsumed = errors.New("token already consumed")

// Registry is the active-token store. The in-memory implementation serves a
// single-process deployment; the redis implementation shares the registry
// across instances behind the same interface.
type Registry interface {
	// Put stores an issued token keyed by its token ID.
	Put(ctx context.Context, t GateToken) error
	// Get retrieves a token by ID, returns nil if unknown.
	Get(ctx context.Context, tokenID string) (*GateToken, error)
	// Consume marks a token used. The first call wins; later calls return
	// ErrAlreadyConsumed. Consuming an unknown token is a no-op success so
	// callers decide unknown-token policy via Get.
	Consume(ctx context.Context, tokenID string) error
	// Sweep removes tokens whose validity window elapsed before now and
	// returns how many were removed. Idempotent, safe to run concurrently
	// with lookups.
	Sweep(ctx context.Context, now time.Time) (int, error)
}
