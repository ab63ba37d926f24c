package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/naka-gawa/year-in-code/internal/domain"
)

// DBPool is the subset of pgxpool.Pool the PostgreSQL store uses.
type DBPool interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Close()
}

// PostgresStore keeps snapshots in PostgreSQL through a pgx pool.
type PostgresStore struct {
	pool DBPool
}

var _ Store = (*PostgresStore)(nil)

const (
	createSnapshotsPG = `
	CREATE TABLE IF NOT EXISTS snapshots (
		login TEXT PRIMARY KEY,
		body JSONB NOT NULL,
		updated_at BIGINT NOT NULL
	)`
	upsertSnapshotPG = `
	INSERT INTO snapshots (login, body, updated_at) VALUES ($1, $2, $3)
	ON CONFLICT (login) DO UPDATE
	SET body = EXCLUDED.body,
		updated_at = EXCLUDED.updated_at`
	selectSnapshotPG = `SELECT body FROM snapshots WHERE login = $1`
)

// NewPostgresStore connects to dsn, checks the connection and prepares the schema.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	s, err := newPostgresStore(ctx, pool)
	if err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func newPostgresStore(ctx context.Context, pool DBPool) (*PostgresStore, error) {
	if _, err := pool.Exec(ctx, createSnapshotsPG); err != nil {
		return nil, fmt.Errorf("failed to create table %s: %w", tableName, err)
	}
	return &PostgresStore{pool: pool}, nil
}

// Save replaces the snapshot stored for user.
func (s *PostgresStore) Save(ctx context.Context, user string, stats *domain.FullStats) error {
	body, err := encode(stats)
	if err != nil {
		return err
	}
	if _, err := s.pool.Exec(ctx, upsertSnapshotPG, user, body, time.Now().Unix()); err != nil {
		return fmt.Errorf("upsert snapshots: %w", err)
	}
	return nil
}

// Load returns the snapshot stored for user, or ErrNotFound.
func (s *PostgresStore) Load(ctx context.Context, user string) (*domain.FullStats, error) {
	var body string
	if err := s.pool.QueryRow(ctx, selectSnapshotPG, user).Scan(&body); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select snapshots: %w", err)
	}
	return decode(body)
}

// Close closes the pool.
func (s *PostgresStore) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}
