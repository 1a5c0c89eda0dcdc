// Package storage persists the whole application state as a single blob under
// one key, in SQLite or Redis.
package storage

import (
	"context"
	"fmt"
	"strings"
)

// DefaultKey is the key the state blob is stored under.
const DefaultKey = "smart_todo_bootstrap_v2"

// Backend is a key-value blob store with whole-value reads and writes.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte) error
	Close() error
}

const (
	KindSQLite = "sqlite"
	KindRedis  = "redis"
)

// Options selects and configures a backend.
type Options struct {
	Kind     string
	DBPath   string
	RedisURL string
}

// Open returns the backend described by opts.
func Open(opts Options) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Kind)) {
	case "", KindSQLite:
		return OpenSQLite(opts.DBPath)
	case KindRedis:
		return OpenRedis(opts.RedisURL)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", opts.Kind)
	}
}
