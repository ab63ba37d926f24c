package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naka-gawa/year-in-code/internal/domain"
	"github.com/naka-gawa/year-in-code/internal/store"
)

type fakeLoader struct {
	snapshots map[string]*domain.FullStats
	err       error
}

func (f *fakeLoader) Load(_ context.Context, user string) (*domain.FullStats, error) {
	if f.err != nil {
		return nil, f.err
	}
	stats, ok := f.snapshots[user]
	if !ok {
		return nil, store.ErrNotFound
	}
	return stats, nil
}

func snapshot(t *testing.T) *domain.FullStats {
	t.Helper()
	r := domain.NewReducer(nil, domain.WithClock(func() time.Time {
		return time.Date(2024, 6, 30, 12, 0, 0, 0, time.UTC)
	}))
	repo, err := r.ReduceRepository("octocat/hello", []domain.Commit{{
		SHA: "a1", Additions: 4, Deletions: 1, TotalChanges: 5, FilesChanged: 1,
		Date:             time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
		Message:          "Initial commit",
		StatsPerLanguage: map[string]domain.Stats{"Go": {Additions: 4, Deletions: 1}},
	}}, nil, nil)
	require.NoError(t, err)
	stats, err := r.Aggregate([]domain.Repository{repo})
	require.NoError(t, err)
	return stats
}

func doRequest(t *testing.T, srv *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rr := httptest.NewRecorder()
	srv.router.ServeHTTP(rr, req)
	return rr
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var resp errorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp.Error
}

func TestHealth(t *testing.T) {
	srv := New(":0", &fakeLoader{}, nil)

	rr := doRequest(t, srv, "/health")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
}

func TestHandleStats(t *testing.T) {
	loader := &fakeLoader{snapshots: map[string]*domain.FullStats{"octocat": snapshot(t)}}
	srv := New(":0", loader, nil)

	t.Run("found", func(t *testing.T) {
		rr := doRequest(t, srv, "/stats/octocat")

		require.Equal(t, http.StatusOK, rr.Code)
		var decoded map[string]any
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &decoded))
		assert.Equal(t, float64(1), decoded["totalCommits"])
		assert.Equal(t, "Go", decoded["mostLovedLanguage"])
	})

	t.Run("not found", func(t *testing.T) {
		rr := doRequest(t, srv, "/stats/someone-else")

		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.Equal(t, "NOT_FOUND", decodeError(t, rr).Code)
	})

	t.Run("invalid login", func(t *testing.T) {
		rr := doRequest(t, srv, "/stats/-bad-")

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "INVALID_LOGIN", decodeError(t, rr).Code)
	})
}

func TestHandleDays(t *testing.T) {
	loader := &fakeLoader{snapshots: map[string]*domain.FullStats{"octocat": snapshot(t)}}
	srv := New(":0", loader, nil)

	rr := doRequest(t, srv, "/stats/octocat/days")
	require.Equal(t, http.StatusOK, rr.Code)

	var days []struct {
		Date          string   `json:"date"`
		Commits       int      `json:"commits"`
		ReposWorkedIn []string `json:"reposWorkedIn"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &days))
	require.Len(t, days, domain.WindowDays+1)
	assert.Equal(t, "2023-07-01", days[0].Date)
	assert.Equal(t, "2024-06-30", days[len(days)-1].Date)

	for _, d := range days {
		if d.Date == "2024-03-01" {
			assert.Equal(t, 1, d.Commits)
			assert.Equal(t, []string{"octocat/hello"}, d.ReposWorkedIn)
			return
		}
	}
	t.Fatal("active day missing from timeline")
}

func TestMapStoreError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"not found", store.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"canceled", context.Canceled, http.StatusServiceUnavailable, "UNAVAILABLE"},
		{"unknown", errors.New("connection reset"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := New(":0", &fakeLoader{err: tt.err}, nil)

			rr := doRequest(t, srv, "/stats/octocat")

			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, tt.wantCode, decodeError(t, rr).Code)
		})
	}
}
