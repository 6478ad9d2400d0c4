package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/pgvector/pgvector-go"

	"github.com/gatewise/gatekeeper/internal/store"
)

// IdentityRepository is a PostgreSQL-backed store.EmbeddingStore.
type IdentityRepository struct {
	pool *Pool
}

// NewIdentityRepository creates a new PostgreSQL identity repository.
func NewIdentityRepository(pool *Pool) *IdentityRepository {
	return &IdentityRepository{pool: pool}
}

// Get retrieves an identity by key, returns nil if not enrolled.
func (r *IdentityRepository) Get(ctx context.Context, identityKey string) (*store.EnrolledIdentity, error) {
	query := `
		SELECT identity_key, embedding, model, dim, enrolled_at
		FROM identities
		WHERE identity_key = $1
	`

	var id store.EnrolledIdentity
	var vec pgvector.Vector

	err := r.pool.db.QueryRowContext(ctx, query, identityKey).Scan(
		&id.IdentityKey,
		&vec,
		&id.Model,
		&id.Dim,
		&id.EnrolledAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query identity: %w", err)
	}

	id.Embedding = vec.Slice()
	return &id, nil
}

// Put stores or overwrites the embedding for an identity. A single UPSERT
// keeps the replace-whole-vector write atomic for concurrent readers.
func (r *IdentityRepository) Put(ctx context.Context, identity store.EnrolledIdentity) error {
	query := `
		INSERT INTO identities (identity_key, embedding, model, dim, enrolled_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (identity_key) DO UPDATE SET
			embedding = EXCLUDED.embedding,
			model = EXCLUDED.model,
			dim = EXCLUDED.dim,
			enrolled_at = NOW()
	`

	_, err := r.pool.db.ExecContext(ctx, query,
		identity.IdentityKey,
		pgvector.NewVector(identity.Embedding),
		identity.Model,
		identity.Dim,
	)
	if err != nil {
		return fmt.Errorf("upsert identity: %w", err)
	}
	return nil
}

// All returns every enrolled identity.
func (r *IdentityRepository) All(ctx context.Context) ([]store.EnrolledIdentity, error) {
	query := `
		SELECT identity_key, embedding, model, dim, enrolled_at
		FROM identities
		ORDER BY identity_key
	`

	rows, err := r.pool.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query identities: %w", err)
	}
	defer rows.Close()

	var out []store.EnrolledIdentity
	for rows.Next() {
		var id store.EnrolledIdentity
		var vec pgvector.Vector
		if err := rows.Scan(&id.IdentityKey, &vec, &id.Model, &id.Dim, &id.EnrolledAt); err != nil {
			return nil, fmt.Errorf("scan identity: %w", err)
		}
		id.Embedding = vec.Slice()
		out = append(out, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate identities: %w", err)
	}
	return out, nil
}

// Count returns the number of enrolled identities.
func (r *IdentityRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.pool.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM identities").Scan(&count); err != nil {
		return 0, fmt.Errorf("count identities: %w", err)
	}
	return count, nil
}
