//go:build integration

package postgres

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/gatewise/gatekeeper/internal/config"
	"github.com/gatewise/gatekeeper/internal/store"
)

func setupTestContainer(t *testing.T) (*Pool, func()) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "pgvector/pgvector:pg16",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Skipf("Docker not available or container failed to start, skipping integration test: %v", err)
		return nil, func() {}
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	dbURL := fmt.Sprintf("postgres://test:test@%s:%s/testdb?sslmode=disable", host, port.Port())

	pool, err := NewPool(&config.DatabaseConfig{URL: dbURL, MaxOpenConns: 5, MaxIdleConns: 2})
	if err != nil {
		container.Terminate(ctx)
		t.Fatalf("Failed to create pool: %v", err)
	}

	if err := pool.Migrate(ctx, 4); err != nil {
		pool.Close()
		container.Terminate(ctx)
		t.Fatalf("Failed to run migrations: %v", err)
	}

	return pool, func() {
		pool.Close()
		container.Terminate(ctx)
	}
}

func TestIdentityRepository_RoundTrip(t *testing.T) {
	pool, cleanup := setupTestContainer(t)
	defer cleanup()

	ctx := context.Background()
	repo := NewIdentityRepository(pool)

	if err := repo.Put(ctx, store.EnrolledIdentity{
		IdentityKey: "21bce1042",
		Embedding:   []float32{0.5, 0.5, 0.5, 0.5},
		Model:       "facenet-vggface2",
		Dim:         4,
	}); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	id, err := repo.Get(ctx, "21bce1042")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if id == nil {
		t.Fatal("expected identity after Put")
	}
	if id.Model != "facenet-vggface2" || id.Dim != 4 {
		t.Errorf("metadata did not round-trip: %+v", id)
	}
	for i, v := range []float32{0.5, 0.5, 0.5, 0.5} {
		if id.Embedding[i] != v {
			t.Errorf("embedding[%d] = %f; want %f", i, id.Embedding[i], v)
		}
	}
}

func TestIdentityRepository_GetMissing(t *testing.T) {
	pool, cleanup := setupTestContainer(t)
	defer cleanup()

	id, err := NewIdentityRepository(pool).Get(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if id != nil {
		t.Errorf("expected nil for unknown identity, got %+v", id)
	}
}

func TestIdentityRepository_PutOverwrites(t *testing.T) {
	pool, cleanup := setupTestContainer(t)
	defer cleanup()

	ctx := context.Background()
	repo := NewIdentityRepository(pool)

	_ = repo.Put(ctx, store.EnrolledIdentity{IdentityKey: "a", Embedding: []float32{1, 0, 0, 0}, Model: "m", Dim: 4})
	if err := repo.Put(ctx, store.EnrolledIdentity{IdentityKey: "a", Embedding: []float32{0, 1, 0, 0}, Model: "m", Dim: 4}); err != nil {
		t.Fatalf("second Put failed: %v", err)
	}

	id, _ := repo.Get(ctx, "a")
	if id.Embedding[0] != 0 || id.Embedding[1] != 1 {
		t.Errorf("expected latest registration to win, got %v", id.Embedding)
	}

	count, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 identity after overwrite, got %d", count)
	}
}

func TestIdentityRepository_AllOrdered(t *testing.T) {
	pool, cleanup := setupTestContainer(t)
	defer cleanup()

	ctx := context.Background()
	repo := NewIdentityRepository(pool)
	_ = repo.Put(ctx, store.EnrolledIdentity{IdentityKey: "b", Embedding: []float32{0, 1, 0, 0}, Model: "m", Dim: 4})
	_ = repo.Put(ctx, store.EnrolledIdentity{IdentityKey: "a", Embedding: []float32{1, 0, 0, 0}, Model: "m", Dim: 4})

	all, err := repo.All(ctx)
	if err != nil {
		t.Fatalf("All failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 identities, got %d", len(all))
	}
	if all[0].IdentityKey != "a" || all[1].IdentityKey != "b" {
		t.Errorf("expected key-ordered results, got %s, %s", all[0].IdentityKey, all[1].IdentityKey)
	}
}
