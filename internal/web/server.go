// Package web serves stored FullStats snapshots over HTTP.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/naka-gawa/year-in-code/internal/domain"
	"github.com/naka-gawa/year-in-code/internal/store"
)

// SnapshotLoader is the read side of a snapshot store.
type SnapshotLoader interface {
	Load(ctx context.Context, user string) (*domain.FullStats, error)
}

// Server is the read API.
type Server struct {
	Address string
	server  *http.Server

	router    *chi.Mux
	snapshots SnapshotLoader
	logger    *slog.Logger
}

// New builds the chi router and registers all routes.
func New(addr string, snapshots SnapshotLoader, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	mux := chi.NewMux()
	srv := &Server{
		Address:   addr,
		router:    mux,
		snapshots: snapshots,
		logger:    logger,
	}
	srv.server = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	srv.setupRoutes()
	return srv
}

// Start runs the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	s.logger.Info("server starting", "address", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown stops the server, waiting up to five seconds for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

func (s *Server) setupRoutes() {
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)

	s.router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	s.router.Route("/stats/{user}", func(r chi.Router) {
		r.Get("/", s.handleStats)
		r.Get("/days", s.handleDays)
	})
}

// writeJSON serializes v as the response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: errorBody{Code: code, Message: message}})
}

// mapStoreError translates store errors into an HTTP status and error code.
func (s *Server) mapStoreError(err error) (status int, code, msg string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND", err.Error()
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "UNAVAILABLE", err.Error()
	default:
		s.logger.Warn("unmapped store error", "error", err)
		return http.StatusInternalServerError, "INTERNAL_ERROR", "failed to load snapshot"
	}
}
