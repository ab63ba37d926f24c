package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/naka-gawa/year-in-code/internal/config"
	"github.com/naka-gawa/year-in-code/internal/domain"
)

type dayResponse struct {
	Date string `json:"date"`
	*domain.DayStats
}

// loadSnapshot resolves the {user} parameter and loads its snapshot,
// writing the error response itself when that fails.
func (s *Server) loadSnapshot(w http.ResponseWriter, r *http.Request) (*domain.FullStats, bool) {
	user := chi.URLParam(r, "user")
	if !config.ValidLogin(user) {
		writeError(w, http.StatusBadRequest, "INVALID_LOGIN", "user must be a valid GitHub login")
		return nil, false
	}
	stats, err := s.snapshots.Load(r.Context(), user)
	if err != nil {
		status, code, msg := s.mapStoreError(err)
		writeError(w, status, code, msg)
		return nil, false
	}
	return stats, true
}

// handleStats returns the full snapshot for a user.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, ok := s.loadSnapshot(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// handleDays returns the per-day timeline ordered by date.
func (s *Server) handleDays(w http.ResponseWriter, r *http.Request) {
	stats, ok := s.loadSnapshot(w, r)
	if !ok {
		return
	}
	dates := stats.PerDay.Dates()
	days := make([]dayResponse, 0, len(dates))
	for _, date := range dates {
		days = append(days, dayResponse{Date: date, DayStats: stats.PerDay[date]})
	}
	writeJSON(w, http.StatusOK, days)
}
