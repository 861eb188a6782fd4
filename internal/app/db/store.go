package db

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store runs queries against the pool. Every method takes the caller's context;
// connections are acquired and released by the pool on every exit path.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore wraps an open pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}
