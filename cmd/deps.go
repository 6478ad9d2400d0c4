package cmd

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/gatewise/gatekeeper/internal/config"
	"github.com/gatewise/gatekeeper/internal/embedding"
	"github.com/gatewise/gatekeeper/internal/facematch"
	"github.com/gatewise/gatekeeper/internal/store"
	"github.com/gatewise/gatekeeper/internal/store/postgres"
	"github.com/gatewise/gatekeeper/internal/token"
)

// buildStore selects the enrolled-embedding store: PostgreSQL with pgvector
// when DATABASE_URL is set, in-memory otherwise. The returned cleanup
// closes the connection pool.
func buildStore(ctx context.Context, cfg *config.Config) (store.EmbeddingStore, func(), error) {
	if cfg.Database.URL == "" {
		fmt.Println("Using in-memory embedding store")
		return store.NewMemoryStore(), func() {}, nil
	}

	pool, err := postgres.NewPool(&cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to PostgreSQL: %w", err)
	}
	if err := pool.Migrate(ctx, cfg.Embedding.Dim); err != nil {
		_ = pool.Close()
		return nil, nil, fmt.Errorf("running migrations: %w", err)
	}
	fmt.Println("Using PostgreSQL embedding store")
	return postgres.NewIdentityRepository(pool), func() { _ = pool.Close() }, nil
}

// buildRegistry selects the token registry: redis when REDIS_URL is set,
// in-memory otherwise.
func buildRegistry(cfg *config.Config) (token.Registry, func(), error) {
	if cfg.Redis.URL == "" {
		fmt.Println("Using in-memory token registry")
		return token.NewMemoryRegistry(), func() {}, nil
	}

	opts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("parsing REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)
	fmt.Println("Using redis token registry")
	return token.NewRedisRegistry(client), func() { _ = client.Close() }, nil
}

// buildEngine wires the embedding client and the face match engine.
func buildEngine(cfg *config.Config, st store.EmbeddingStore) *facematch.Engine {
	provider := embedding.NewClient(cfg.Embedding.URL, cfg.Embedding.Model, cfg.Embedding.Dim, cfg.Embedding.MaxEdge)
	return facematch.NewEngine(provider, st, cfg.MatchThreshold(), cfg.Embedding.Model)
}
