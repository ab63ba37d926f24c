package store

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naka-gawa/year-in-code/internal/domain"
)

var testCtx = context.Background()

func testSnapshot(t *testing.T) *domain.FullStats {
	t.Helper()
	r := domain.NewReducer(nil, domain.WithClock(func() time.Time {
		return time.Date(2024, 6, 30, 12, 0, 0, 0, time.UTC)
	}))
	repo, err := r.ReduceRepository("octocat/hello", []domain.Commit{{
		SHA: "abc", Additions: 10, Deletions: 2, TotalChanges: 12, FilesChanged: 1,
		Date:             time.Date(2024, 1, 5, 8, 0, 0, 0, time.UTC),
		Message:          "Add feature",
		StatsPerLanguage: map[string]domain.Stats{"Go": {Additions: 10, Deletions: 2}},
	}}, nil, nil)
	require.NoError(t, err)
	stats, err := r.Aggregate([]domain.Repository{repo})
	require.NoError(t, err)
	return stats
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return string(data)
}

func TestNew(t *testing.T) {
	t.Run("none disables persistence", func(t *testing.T) {
		s, err := New(testCtx, BackendNone, "")
		assert.NoError(t, err)
		assert.Nil(t, s)
	})

	t.Run("unknown backend", func(t *testing.T) {
		s, err := New(testCtx, "redis", "localhost:6379")
		assert.Error(t, err)
		assert.Nil(t, s)
	})

	t.Run("invalid mysql dsn", func(t *testing.T) {
		s, err := New(testCtx, BackendMySQL, "not-a-dsn")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "invalid MySQL DSN")
		assert.Nil(t, s)
	})

	t.Run("sqlite file", func(t *testing.T) {
		s, err := New(testCtx, BackendSQLite, filepath.Join(t.TempDir(), "stats.db"))
		require.NoError(t, err)
		require.NotNil(t, s)
		assert.NoError(t, s.Close())
	})
}

func TestSQLStore_SaveLoad(t *testing.T) {
	s, err := NewSQLStore(testCtx, BackendSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	_, err = s.Load(testCtx, "octocat")
	assert.ErrorIs(t, err, ErrNotFound)

	snapshot := testSnapshot(t)
	require.NoError(t, s.Save(testCtx, "octocat", snapshot))

	loaded, err := s.Load(testCtx, "octocat")
	require.NoError(t, err)
	assert.Equal(t, mustJSON(t, snapshot), mustJSON(t, loaded))
	assert.Equal(t, 10, loaded.TotalAdditions)

	snapshot.TotalAdditions = 99
	require.NoError(t, s.Save(testCtx, "octocat", snapshot), "second save overwrites")
	loaded, err = s.Load(testCtx, "octocat")
	require.NoError(t, err)
	assert.Equal(t, 99, loaded.TotalAdditions)

	assert.Error(t, s.Save(testCtx, "octocat", nil))
}

func TestSQLQueries(t *testing.T) {
	assert.Contains(t, upsertQuery(BackendMySQL), "ON DUPLICATE KEY UPDATE")
	assert.Contains(t, upsertQuery(BackendSQLite), "ON CONFLICT (login)")
	assert.Contains(t, createTableQuery(BackendMySQL), "LONGTEXT")
	assert.Contains(t, createTableQuery(BackendSQLite), "TEXT PRIMARY KEY")
}

func newTestPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Fatalf("there were unmet expectations: %v", err)
		}
		mock.Close()
	})

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS snapshots")).
		WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))
	s, err := newPostgresStore(testCtx, mock)
	require.NoError(t, err)
	return s, mock
}

func TestPostgresStore_Schema(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS snapshots")).
		WillReturnError(errors.New("permission denied"))

	_, err = newPostgresStore(testCtx, mock)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create table")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Save(t *testing.T) {
	snapshot := testSnapshot(t)

	t.Run("success", func(t *testing.T) {
		s, mock := newTestPostgresStore(t)
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO snapshots")).
			WithArgs("octocat", mustJSON(t, snapshot), pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		assert.NoError(t, s.Save(testCtx, "octocat", snapshot))
	})

	t.Run("exec error", func(t *testing.T) {
		s, mock := newTestPostgresStore(t)
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO snapshots")).
			WithArgs("octocat", pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnError(errors.New("fail insert"))

		err := s.Save(testCtx, "octocat", snapshot)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "upsert snapshots")
	})
}

func TestPostgresStore_Load(t *testing.T) {
	snapshot := testSnapshot(t)

	t.Run("found", func(t *testing.T) {
		s, mock := newTestPostgresStore(t)
		mock.ExpectQuery(regexp.QuoteMeta("SELECT body FROM snapshots")).
			WithArgs("octocat").
			WillReturnRows(pgxmock.NewRows([]string{"body"}).AddRow(mustJSON(t, snapshot)))

		loaded, err := s.Load(testCtx, "octocat")
		require.NoError(t, err)
		assert.Equal(t, mustJSON(t, snapshot), mustJSON(t, loaded))
	})

	t.Run("not found", func(t *testing.T) {
		s, mock := newTestPostgresStore(t)
		mock.ExpectQuery(regexp.QuoteMeta("SELECT body FROM snapshots")).
			WithArgs("ghost").
			WillReturnError(pgx.ErrNoRows)

		_, err := s.Load(testCtx, "ghost")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("corrupt body", func(t *testing.T) {
		s, mock := newTestPostgresStore(t)
		mock.ExpectQuery(regexp.QuoteMeta("SELECT body FROM snapshots")).
			WithArgs("octocat").
			WillReturnRows(pgxmock.NewRows([]string{"body"}).AddRow("{not json"))

		_, err := s.Load(testCtx, "octocat")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to decode snapshot")
	})
}
