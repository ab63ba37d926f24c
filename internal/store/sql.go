package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/naka-gawa/year-in-code/internal/domain"
)

// SQLStore keeps snapshots in a database/sql backend (SQLite or MySQL).
type SQLStore struct {
	db      *sql.DB
	backend string
}

var _ Store = (*SQLStore)(nil)

// NewSQLStore opens the database, verifies the connection and creates the
// snapshots table when missing.
func NewSQLStore(ctx context.Context, backend, dsn string) (*SQLStore, error) {
	var driverName string
	switch backend {
	case BackendSQLite:
		driverName = "sqlite"
		if dsn == "" {
			return nil, errors.New("sqlite store needs a database path")
		}
	case BackendMySQL:
		// user:password@tcp(host:port)/dbname
		driverName = "mysql"
		if _, err := mysql.ParseDSN(dsn); err != nil {
			return nil, fmt.Errorf("invalid MySQL DSN: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported SQL backend %q", backend)
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", backend, err)
	}
	if backend == BackendSQLite {
		// One connection avoids "database is locked" and keeps :memory: databases alive.
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to %s store: %w", backend, err)
	}
	if _, err := db.ExecContext(ctx, createTableQuery(backend)); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create table %s: %w", tableName, err)
	}
	return &SQLStore{db: db, backend: backend}, nil
}

func createTableQuery(backend string) string {
	if backend == BackendMySQL {
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				login VARCHAR(39) PRIMARY KEY,
				body LONGTEXT NOT NULL,
				updated_at BIGINT NOT NULL
			);
		`, tableName)
	}
	return fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			login TEXT PRIMARY KEY,
			body TEXT NOT NULL,
			updated_at INTEGER NOT NULL
		);
	`, tableName)
}

func upsertQuery(backend string) string {
	if backend == BackendMySQL {
		return fmt.Sprintf(`INSERT INTO %s (login, body, updated_at) VALUES (?, ?, ?) AS new
			ON DUPLICATE KEY UPDATE body = new.body, updated_at = new.updated_at`, tableName)
	}
	return fmt.Sprintf(`INSERT INTO %s (login, body, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (login) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at`, tableName)
}

// Save replaces the snapshot stored for user.
func (s *SQLStore) Save(ctx context.Context, user string, stats *domain.FullStats) error {
	body, err := encode(stats)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, upsertQuery(s.backend), user, body, time.Now().Unix()); err != nil {
		return fmt.Errorf("failed to save snapshot for %s: %w", user, err)
	}
	return nil
}

// Load returns the snapshot stored for user, or ErrNotFound.
func (s *SQLStore) Load(ctx context.Context, user string) (*domain.FullStats, error) {
	var body string
	query := fmt.Sprintf(`SELECT body FROM %s WHERE login = ?`, tableName)
	if err := s.db.QueryRowContext(ctx, query, user).Scan(&body); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load snapshot for %s: %w", user, err)
	}
	return decode(body)
}

// Close releases the database handle.
func (s *SQLStore) Close() error {
	return s.db.Close()
}
