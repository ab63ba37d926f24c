// Package store persists FullStats snapshots as flat JSON documents keyed by
// user login.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/naka-gawa/year-in-code/internal/domain"
)

// Supported backends.
const (
	BackendNone     = "none"
	BackendSQLite   = "sqlite"
	BackendMySQL    = "mysql"
	BackendPostgres = "postgres"
)

const tableName = "snapshots"

// ErrNotFound is returned by Load when no snapshot exists for a user.
var ErrNotFound = errors.New("snapshot not found")

// Store saves and loads the latest snapshot per user.
type Store interface {
	Save(ctx context.Context, user string, stats *domain.FullStats) error
	Load(ctx context.Context, user string) (*domain.FullStats, error)
	Close() error
}

// New opens the store for backend. BackendNone returns a nil Store: persistence is disabled.
func New(ctx context.Context, backend, dsn string) (Store, error) {
	switch backend {
	case BackendNone, "":
		return nil, nil
	case BackendSQLite, BackendMySQL:
		s, err := NewSQLStore(ctx, backend, dsn)
		if err != nil {
			return nil, err
		}
		return s, nil
	case BackendPostgres:
		s, err := NewPostgresStore(ctx, dsn)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unsupported store backend %q: must be none, sqlite, mysql or postgres", backend)
	}
}

func encode(stats *domain.FullStats) (string, error) {
	if stats == nil {
		return "", errors.New("stats is nil")
	}
	data, err := json.Marshal(stats)
	if err != nil {
		return "", fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return string(data), nil
}

func decode(body string) (*domain.FullStats, error) {
	var stats domain.FullStats
	if err := json.Unmarshal([]byte(body), &stats); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return &stats, nil
}
