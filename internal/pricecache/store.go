package pricecache

import (
	"context"
	"fmt"
	"time"
)

// Store is a TTL key/value cache for price source responses.
type Store interface {
	// Get returns the cached value and true, or false when the key is missing or expired.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Close() error
}

// Options selects and configures a Store backend.
type Options struct {
	Backend       string // memory, sqlite or redis
	SQLitePath    string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// Open builds the Store named by opts.Backend.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Backend {
	case "", "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		return NewSQLiteStore(opts.SQLitePath)
	case "redis":
		return NewRedisStore(ctx, opts.RedisAddr, opts.RedisPassword, opts.RedisDB)
	}
	return nil, fmt.Errorf("unknown cache backend %q", opts.Backend)
}
