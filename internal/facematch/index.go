package facematch

import (
	"sync"

	"github.com/coder/hnsw"

	"github.com/gatewise/gatekeeper/internal/store"
)

// indexMaxNeighbors is the HNSW M parameter.
const indexMaxNeighbors = 16

// indexSearchK is how many graph candidates are re-ranked with exact
// distances. The enrollment table holds one vector per person, so a small
// candidate set is enough.
const indexSearchK = 8

// Index is an in-memory HNSW graph over enrolled embeddings for fast
// nearest-identity search. The vectors map is authoritative: distances are
// recomputed exactly for re-ranking, and lookups filter out stale graph
// nodes after an overwrite.
type Index struct {
	mu      sync.RWMutex
	graph   *hnsw.Graph[string]
	vectors map[string][]float32
}

// NewIndex creates an empty index.
func NewIndex() *Index {
	return &Index{
		vectors: make(map[string][]float32),
	}
}

func newGraph() *hnsw.Graph[string] {
	g := hnsw.NewGraph[string]()
	g.M = indexMaxNeighbors
	g.Ml = 1.0 / float64(indexMaxNeighbors) // Standard HNSW formula
	g.Distance = hnsw.CosineDistance
	return g
}

// Build replaces the index contents with the given enrollment table.
func (ix *Index) Build(identities []store.EnrolledIdentity) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	ix.vectors = make(map[string][]float32, len(identities))
	if len(identities) == 0 {
		ix.graph = nil
		return
	}

	g := newGraph()
	for _, id := range identities {
		if len(id.Embedding) == 0 {
			continue
		}
		g.Add(hnsw.MakeNode(id.IdentityKey, id.Embedding))
		ix.vectors[id.IdentityKey] = id.Embedding
	}
	ix.graph = g
}

// Upsert adds or replaces one identity's vector.
func (ix *Index) Upsert(identityKey string, vec []float32) {
	if len(vec) == 0 {
		return
	}
	ix.mu.Lock()
	defer ix.mu.Unlock()

	if ix.graph == nil {
		ix.graph = newGraph()
	}
	ix.graph.Add(hnsw.MakeNode(identityKey, vec))
	ix.vectors[identityKey] = vec
}

// Nearest returns the identity closest to the query by exact cosine distance
// among the graph's candidates, with ties broken toward the lexically
// smallest key. ok is false when the index is empty.
func (ix *Index) Nearest(query []float32) (key string, dist float64, ok bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if ix.graph == nil || len(ix.vectors) == 0 {
		return "", 0, false
	}

	neighbors := ix.graph.Search(query, indexSearchK)

	var bestKey string
	var bestDist float64
	var found bool
	seen := make(map[string]struct{}, len(neighbors))
	for _, n := range neighbors {
		vec, live := ix.vectors[n.Key]
		if !live {
			continue // stale node left behind by an overwrite
		}
		if _, dup := seen[n.Key]; dup {
			continue
		}
		seen[n.Key] = struct{}{}

		d := CosineDistance(query, vec)
		switch {
		case !found, d < bestDist:
			bestKey, bestDist, found = n.Key, d, true
		case d == bestDist && n.Key < bestKey:
			bestKey = n.Key
		}
	}
	return bestKey, bestDist, found
}

// Count returns the number of identities in the index.
func (ix *Index) Count() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.vectors)
}
