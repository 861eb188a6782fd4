/*
Package revocation keeps the denylist of tokens invalidated before their natural expiry.

Entries live in Redis under "Token {jti}" and expire together with the token they
describe, so the set never holds more than the currently valid but revoked tokens.
*/
package revocation

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const sentinel = " "

// Store is a Redis backed revocation list.
type Store struct {
	client redis.UniversalClient
	now    func() time.Time
}

// Option customizes a Store.
type Option func(*Store)

// WithClock replaces the wall clock used to compute remaining token lifetime.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// NewStore wraps an existing Redis client.
func NewStore(client redis.UniversalClient, opts ...Option) *Store {
	s := &Store{
		client: client,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Key returns the Redis key for a token id.
func Key(jti string) string {
	return "Token " + jti
}

// Revoke marks jti as revoked until exp (Unix seconds).
// Tokens that are already past exp are ignored. Revoking an already revoked jti
// leaves the existing entry and its TTL untouched.
func (s *Store) Revoke(ctx context.Context, jti string, exp int64) error {
	remaining := exp - s.now().Unix()
	if remaining <= 0 {
		return nil
	}

	if err := s.client.SetNX(ctx, Key(jti), sentinel, time.Duration(remaining)*time.Second).Err(); err != nil {
		return fmt.Errorf("failed to revoke token %s: %w", jti, err)
	}

	return nil
}

// IsRevoked reports whether jti is on the denylist. Unknown ids are not revoked.
func (s *Store) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := s.client.Exists(ctx, Key(jti)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check token %s: %w", jti, err)
	}
	return n > 0, nil
}

// Ping checks connectivity to Redis.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
