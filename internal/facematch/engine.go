package facematch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gatewise/gatekeeper/internal/embedding"
	"github.com/gatewise/gatekeeper/internal/store"
)

// ErrEmptyIdentityKey is returned when an identity key normalizes to nothing.
var ErrEmptyIdentityKey = errors.New("identity key is empty")

// Engine owns the enrolled-embedding table and computes match decisions.
// The threshold is a decision-engine parameter injected at construction,
// never duplicated at call sites; recalibration touches only configuration.
//
// Safe for concurrent verification attempts: embedding extraction runs with
// no lock held, only the final store write is exclusive (inside the store).
type Engine struct {
	provider  embedding.Provider
	store     store.EmbeddingStore
	threshold float64
	model     string

	indexMu sync.RWMutex
	index   *Index // nil unless EnableIndex was called
}

// NewEngine creates a match engine. threshold is the cosine-distance
// operating point below which a probe matches.
func NewEngine(provider embedding.Provider, st store.EmbeddingStore, threshold float64, model string) *Engine {
	return &Engine{
		provider:  provider,
		store:     st,
		threshold: threshold,
		model:     model,
	}
}

// Threshold returns the configured match threshold.
func (e *Engine) Threshold() float64 {
	return e.threshold
}

// Enroll extracts an embedding from the image and stores it under the
// identity key, overwriting any previous registration. On extraction failure
// (embedding.ErrNoFace included) the stored embedding is left untouched.
func (e *Engine) Enroll(ctx context.Context, identityKey string, image []byte) error {
	key := NormalizeIdentityKey(identityKey)
	if key == "" {
		return ErrEmptyIdentityKey
	}

	vec, err := e.provider.Extract(ctx, image)
	if err != nil {
		return err
	}
	vec = L2Normalize(vec)

	err = e.store.Put(ctx, store.EnrolledIdentity{
		IdentityKey: key,
		Embedding:   vec,
		Model:       e.model,
		Dim:         len(vec),
		EnrolledAt:  time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("store embedding for %q: %w", key, err)
	}

	e.indexMu.RLock()
	idx := e.index
	e.indexMu.RUnlock()
	if idx != nil {
		idx.Upsert(key, vec)
	}

	return nil
}

// Verify compares a probe image against one named identity. The enrollment
// lookup runs before extraction so an unknown identity never pays for the
// expensive path. Only infrastructure failures are returned as errors.
func (e *Engine) Verify(ctx context.Context, identityKey string, probe []byte) (VerifyResult, error) {
	key := NormalizeIdentityKey(identityKey)

	enrolled, err := e.store.Get(ctx, key)
	if err != nil {
		return VerifyResult{}, fmt.Errorf("lookup identity %q: %w", key, err)
	}
	if enrolled == nil {
		return VerifyResult{Outcome: VerifyUnknownIdentity}, nil
	}

	vec, err := e.provider.Extract(ctx, probe)
	if errors.Is(err, embedding.ErrNoFace) {
		return VerifyResult{Outcome: VerifyNoFace}, nil
	}
	if err != nil {
		return VerifyResult{}, fmt.Errorf("extract probe embedding: %w", err)
	}

	dist := CosineDistance(L2Normalize(vec), enrolled.Embedding)
	if dist < e.threshold {
		return VerifyResult{Outcome: VerifyMatch, Distance: dist}, nil
	}
	return VerifyResult{Outcome: VerifyNoMatch, Distance: dist}, nil
}

// Identify finds the enrolled identity nearest to the probe. The probe
// embedding is computed once; the minimum cosine distance over all enrolled
// identities decides. Equal minimum distances break stable toward the
// lexically smallest identity key. A result below the threshold is required,
// otherwise NO_ENROLLED_MATCH.
func (e *Engine) Identify(ctx context.Context, probe []byte) (IdentifyResult, error) {
	vec, err := e.provider.Extract(ctx, probe)
	if errors.Is(err, embedding.ErrNoFace) {
		return IdentifyResult{Outcome: IdentifyNoFace}, nil
	}
	if err != nil {
		return IdentifyResult{}, fmt.Errorf("extract probe embedding: %w", err)
	}
	vec = L2Normalize(vec)

	e.indexMu.RLock()
	idx := e.index
	e.indexMu.RUnlock()

	var bestKey string
	var bestDist float64
	var found bool

	if idx != nil {
		bestKey, bestDist, found = idx.Nearest(vec)
	} else {
		bestKey, bestDist, found, err = e.scanNearest(ctx, vec)
		if err != nil {
			return IdentifyResult{}, err
		}
	}

	if !found || bestDist >= e.threshold {
		return IdentifyResult{Outcome: IdentifyNoEnrolledMatch}, nil
	}
	return IdentifyResult{Outcome: IdentifyFound, IdentityKey: bestKey, Distance: bestDist}, nil
}

// scanNearest is the exact linear scan over the whole enrollment table.
func (e *Engine) scanNearest(ctx context.Context, probe []float32) (string, float64, bool, error) {
	identities, err := e.store.All(ctx)
	if err != nil {
		return "", 0, false, fmt.Errorf("list enrolled identities: %w", err)
	}

	var bestKey string
	var bestDist float64
	var found bool
	for _, id := range identities {
		dist := CosineDistance(probe, id.Embedding)
		switch {
		case !found, dist < bestDist:
			bestKey, bestDist, found = id.IdentityKey, dist, true
		case dist == bestDist && id.IdentityKey < bestKey:
			bestKey = id.IdentityKey
		}
	}
	return bestKey, bestDist, found, nil
}

// EnableIndex builds the in-memory nearest-neighbor index from the current
// enrollment table. Subsequent enrollments keep the index in sync.
func (e *Engine) EnableIndex(ctx context.Context) error {
	identities, err := e.store.All(ctx)
	if err != nil {
		return fmt.Errorf("list enrolled identities: %w", err)
	}

	idx := NewIndex()
	idx.Build(identities)

	e.indexMu.Lock()
	e.index = idx
	e.indexMu.Unlock()
	return nil
}

// IndexEnabled reports whether identify calls use the nearest-neighbor index.
func (e *Engine) IndexEnabled() bool {
	e.indexMu.RLock()
	defer e.indexMu.RUnlock()
	return e.index != nil
}

// IndexCount returns the number of identities in the index, 0 when disabled.
func (e *Engine) IndexCount() int {
	e.indexMu.RLock()
	idx := e.index
	e.indexMu.RUnlock()
	if idx == nil {
		return 0
	}
	return idx.Count()
}
