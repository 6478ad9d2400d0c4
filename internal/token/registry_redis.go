package token

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	redisTokenKeyPrefix    = "gatepass:token:"
	redisConsumedKeyPrefix = "gatepass:consumed:"

	// Backstop TTL so abandoned keys cannot accumulate forever even if no
	// sweeper runs against this registry. Expiry semantics are still
	// enforced by Validate and Sweep, not by redis.
	redisBackstopTTL = 24 * time.Hour
)

// RedisRegistry is a redis-backed Registry for multi-instance deployments
// sharing one active-token set.
type RedisRegistry struct {
	client *redis.Client
}

// NewRedisRegistry constructs a registry on an existing redis client.
func NewRedisRegistry(client *redis.Client) *RedisRegistry {
	return &RedisRegistry{client: client}
}

// Put stores an issued token keyed by its token ID.
func (r *RedisRegistry) Put(ctx context.Context, t GateToken) error {
	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("marshal token: %w", err)
	}
	if err := r.client.Set(ctx, redisTokenKeyPrefix+t.TokenID, data, redisBackstopTTL).Err(); err != nil {
		return fmt.Errorf("store token: %w", err)
	}
	return nil
}

// Get retrieves a token by ID, returns nil if unknown.
func (r *RedisRegistry) Get(ctx context.Context, tokenID string) (*GateToken, error) {
	data, err := r.client.Get(ctx, redisTokenKeyPrefix+tokenID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetch token: %w", err)
	}

	var t GateToken
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("unmarshal token: %w", err)
	}

	// The consumed marker is kept separately so consumption is one atomic
	// SETNX rather than a read-modify-write on the token value.
	consumed, err := r.client.Exists(ctx, redisConsumedKeyPrefix+tokenID).Result()
	if err != nil {
		return nil, fmt.Errorf("check consumed marker: %w", err)
	}
	if consumed > 0 {
		t.Status = StatusConsumed
	}
	return &t, nil
}

// Consume marks a token used via an atomic SETNX marker; the first call wins.
func (r *RedisRegistry) Consume(ctx context.Context, tokenID string) error {
	exists, err := r.client.Exists(ctx, redisTokenKeyPrefix+tokenID).Result()
	if err != nil {
		return fmt.Errorf("check token: %w", err)
	}
	if exists == 0 {
		return nil
	}

	set, err := r.client.SetNX(ctx, redisConsumedKeyPrefix+tokenID, "1", redisBackstopTTL).Result()
	if err != nil {
		return fmt.Errorf("set consumed marker: %w", err)
	}
	if !set {
		return ErrAlreadyConsumed
	}
	return nil
}

// Sweep removes tokens whose validity window elapsed before now.
func (r *RedisRegistry) Sweep(ctx context.Context, now time.Time) (int, error) {
	removed := 0
	var cursor uint64
	for {
		keys, next, err := r.client.Scan(ctx, cursor, redisTokenKeyPrefix+"*", 100).Result()
		if err != nil {
			return removed, fmt.Errorf("scan tokens: %w", err)
		}

		for _, key := range keys {
			data, err := r.client.Get(ctx, key).Bytes()
			if errors.Is(err, redis.Nil) {
				continue // already gone, sweep is concurrent-safe
			}
			if err != nil {
				return removed, fmt.Errorf("fetch token %s: %w", key, err)
			}

			var t GateToken
			if err := json.Unmarshal(data, &t); err != nil {
				continue // unreadable entry, leave it to the backstop TTL
			}
			if !t.ExpiredAt(now) {
				continue
			}

			if err := r.client.Del(ctx, key, redisConsumedKeyPrefix+t.TokenID).Err(); err != nil {
				return removed, fmt.Errorf("delete token %s: %w", key, err)
			}
			removed++
		}

		cursor = next
		if cursor == 0 {
			return removed, nil
		}
	}
}
