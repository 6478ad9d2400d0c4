package store

import (
	"context"
	"sync"
	"testing"
)

func TestMemoryStore_GetMissing(t *testing.T) {
	s := NewMemoryStore()

	id, err := s.Get(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if id != nil {
		t.Errorf("expected nil for unknown identity, got %+v", id)
	}
}

func TestMemoryStore_PutOverwrites(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	if err := s.Put(ctx, EnrolledIdentity{IdentityKey: "21bce1042", Embedding: []float32{1, 0}}); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := s.Put(ctx, EnrolledIdentity{IdentityKey: "21bce1042", Embedding: []float32{0, 1}}); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	id, err := s.Get(ctx, "21bce1042")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if id == nil {
		t.Fatal("expected identity after Put")
	}
	if id.Embedding[0] != 0 || id.Embedding[1] != 1 {
		t.Errorf("expected latest registration to win, got %v", id.Embedding)
	}

	count, _ := s.Count(ctx)
	if count != 1 {
		t.Errorf("expected 1 identity after overwrite, got %d", count)
	}
}

func TestMemoryStore_GetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	_ = s.Put(ctx, EnrolledIdentity{IdentityKey: "a", Embedding: []float32{1, 2}})

	id, _ := s.Get(ctx, "a")
	id.Embedding[0] = 99

	again, _ := s.Get(ctx, "a")
	if again.Embedding[0] != 1 {
		t.Error("mutating a returned embedding must not affect stored state")
	}
}

func TestMemoryStore_PutCopiesVector(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	vec := []float32{1, 2}
	_ = s.Put(ctx, EnrolledIdentity{IdentityKey: "a", Embedding: vec})
	vec[0] = 99

	id, _ := s.Get(ctx, "a")
	if id.Embedding[0] != 1 {
		t.Error("mutating the caller's slice must not affect stored state")
	}
}

func TestMemoryStore_All(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	_ = s.Put(ctx, EnrolledIdentity{IdentityKey: "a", Embedding: []float32{1}})
	_ = s.Put(ctx, EnrolledIdentity{IdentityKey: "b", Embedding: []float32{2}})

	all, err := s.All(ctx)
	if err != nil {
		t.Fatalf("All failed: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("expected 2 identities, got %d", len(all))
	}
}

func TestMemoryStore_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = s.Put(ctx, EnrolledIdentity{IdentityKey: "shared", Embedding: []float32{1, 2, 3}})
		}()
		go func() {
			defer wg.Done()
			id, err := s.Get(ctx, "shared")
			if err != nil {
				t.Errorf("Get failed: %v", err)
			}
			if id != nil && len(id.Embedding) != 3 {
				t.Errorf("observed partially written embedding: %v", id.Embedding)
			}
		}()
	}
	wg.Wait()
}
