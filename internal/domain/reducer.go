package domain

import (
	"log/slog"
	"time"
	"unicode/utf8"
)

// WindowDays is the length of the trailing window the report covers.
const WindowDays = 365

// Reducer folds raw activity into commits, repositories and the yearly report.
// It holds no state between calls and is safe for concurrent use.
type Reducer struct {
	logger *slog.Logger
	now    func() time.Time
}

// Option configures a Reducer.
type Option func(*Reducer)

// WithClock anchors the trailing window to the time returned by now.
func WithClock(now func() time.Time) Option {
	return func(r *Reducer) {
		r.now = now
	}
}

// NewReducer creates a Reducer. A nil logger discards all output.
func NewReducer(logger *slog.Logger, opts ...Option) *Reducer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	r := &Reducer{
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// maxBy keeps current unless candidate scores strictly higher.
// A nil current always loses to a concrete candidate.
func maxBy[T any](current, candidate *T, score func(*T) int) *T {
	if candidate == nil {
		return current
	}
	if current == nil || score(candidate) > score(current) {
		return candidate
	}
	return current
}

// minBy keeps current unless candidate scores strictly lower.
func minBy[T any](current, candidate *T, score func(*T) int) *T {
	if candidate == nil {
		return current
	}
	if current == nil || score(candidate) < score(current) {
		return candidate
	}
	return current
}

func messageLength(c *Commit) int { return utf8.RuneCountInString(c.Message) }
func commitChanges(c *Commit) int { return c.TotalChanges }
func filesChanged(c *Commit) int { return c.FilesChanged }
func prChanges(pr *PullRequest) int { return pr.TotalChanges }
func bodyLength(r *PRReview) int { return utf8.RuneCountInString(r.Body) }
