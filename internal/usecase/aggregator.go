// Package usecase contains the business logic of the application.
package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/naka-gawa/year-in-code/internal/domain"
	"github.com/naka-gawa/year-in-code/internal/gateway"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency bounds parallel API calls when no option overrides it.
const DefaultConcurrency = 5

// Aggregator is the use case for building a user's yearly report.
// It orchestrates the fetching of raw activity and hands it to the reducers.
type Aggregator struct {
	fetcher     gateway.Fetcher
	logger      *slog.Logger
	concurrency int
	now         func() time.Time
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithConcurrency bounds the number of in-flight API calls per fan-out.
func WithConcurrency(n int) Option {
	return func(a *Aggregator) {
		if n > 0 {
			a.concurrency = n
		}
	}
}

// WithClock anchors the trailing window to the time returned by now.
func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) {
		a.now = now
	}
}

// NewAggregator creates a new Aggregator instance.
func NewAggregator(fetcher gateway.Fetcher, logger *slog.Logger, opts ...Option) *Aggregator {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	a := &Aggregator{
		fetcher:     fetcher,
		logger:      logger,
		concurrency: DefaultConcurrency,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// repoActivity is everything fetched for one repository.
type repoActivity struct {
	repo         domain.RawRepository
	commits      []domain.RawCommit
	pullRequests []domain.RawPullRequest
	comments     []domain.RawComment
}

// Aggregate fetches the trailing year of activity for user and reduces it
// into a FullStats report. An empty user resolves to the token owner.
func (a *Aggregator) Aggregate(ctx context.Context, user string) (*domain.FullStats, error) {
	if user == "" {
		login, err := a.fetcher.FetchViewerLogin(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve current user: %w", err)
		}
		user = login
	}
	now := a.now()
	since := now.AddDate(0, 0, -domain.WindowDays)
	a.logger.Info("starting aggregation", "user", user, "since", since.Format(time.DateOnly))

	repos, err := a.fetcher.FetchActiveRepositories(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch active repositories: %w", err)
	}
	a.logger.Info("found active repositories", "count", len(repos))

	activities := make([]repoActivity, len(repos))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(a.concurrency)
	for i, repo := range repos {
		eg.Go(func() error {
			act, err := a.collect(egCtx, repo, user, since)
			if err != nil {
				return err
			}
			activities[i] = act
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	a.logger.Info("all data fetched")

	reducer := domain.NewReducer(a.logger, domain.WithClock(func() time.Time { return now }))
	reduced := make([]domain.Repository, 0, len(activities))
	for _, act := range activities {
		repo, err := reduceActivity(reducer, act, user)
		if err != nil {
			return nil, err
		}
		reduced = append(reduced, repo)
	}

	stats, err := reducer.Aggregate(reduced)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate repositories: %w", err)
	}
	a.logger.Info("aggregation complete", "repos", len(stats.AllReposWorkedIn), "commits", stats.TotalCommits)
	return stats, nil
}

func reduceActivity(reducer *domain.Reducer, act repoActivity, user string) (domain.Repository, error) {
	commits := make([]domain.Commit, 0, len(act.commits))
	for _, raw := range act.commits {
		commits = append(commits, reducer.ReduceCommit(raw))
	}
	prs := make([]domain.PullRequest, 0, len(act.pullRequests))
	for _, raw := range act.pullRequests {
		prs = append(prs, reducer.ReducePullRequest(raw, user))
	}
	comments := reducer.ReduceComments(act.comments, user)

	repo, err := reducer.ReduceRepository(act.repo.FullName(), commits, prs, comments)
	if err != nil {
		return domain.Repository{}, fmt.Errorf("failed to reduce repository %q: %w", act.repo.FullName(), err)
	}
	return repo, nil
}

// collect fetches one repository. Listing failures abort; failures on a
// single commit, PR or the comment list are logged and degrade the result.
func (a *Aggregator) collect(ctx context.Context, repo domain.RawRepository, user string, since time.Time) (repoActivity, error) {
	name := repo.FullName()
	act := repoActivity{repo: repo}

	shas, err := a.fetcher.FetchCommitSHAs(ctx, repo, user, since)
	if err != nil {
		return act, fmt.Errorf("failed to fetch commits for %s: %w", name, err)
	}
	prs, err := a.fetcher.FetchPullRequests(ctx, repo, since)
	if err != nil {
		return act, fmt.Errorf("failed to fetch pull requests for %s: %w", name, err)
	}

	commits := make([]*domain.RawCommit, len(shas))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(a.concurrency)
	for i, sha := range shas {
		eg.Go(func() error {
			c, err := a.fetcher.FetchCommit(egCtx, repo, sha)
			if err != nil {
				a.logger.Warn("skipping commit", "repo", name, "sha", sha, "error", err)
				return nil
			}
			commits[i] = &c
			return nil
		})
	}
	for i := range prs {
		eg.Go(func() error {
			a.completePullRequest(egCtx, repo, &prs[i])
			return nil
		})
	}
	eg.Go(func() error {
		comments, err := a.fetcher.FetchComments(egCtx, repo, since)
		if err != nil {
			a.logger.Warn("could not fetch comments", "repo", name, "error", err)
			return nil
		}
		act.comments = comments
		return nil
	})
	if err := eg.Wait(); err != nil {
		return act, err
	}

	for _, c := range commits {
		if c != nil {
			act.commits = append(act.commits, *c)
		}
	}
	// Oldest first, so first-occurrence tie-breaks favour earlier work.
	slices.Reverse(act.commits)
	act.pullRequests = prs
	a.logger.Debug("collected repository", "repo", name, "commits", len(act.commits), "prs", len(prs))
	return act, nil
}

// completePullRequest attaches the merge commit and reviews to pr, flagging
// whichever part could not be fetched.
func (a *Aggregator) completePullRequest(ctx context.Context, repo domain.RawRepository, pr *domain.RawPullRequest) {
	if pr.MergeCommitSHA != "" {
		c, err := a.fetcher.FetchCommit(ctx, repo, pr.MergeCommitSHA)
		if err != nil {
			a.logger.Warn("could not fetch merge commit", "repo", repo.FullName(), "pr", pr.Number, "error", err)
			pr.MergeCommitMissing = true
		} else {
			pr.MergeCommit = &c
		}
	}
	reviews, err := a.fetcher.FetchReviews(ctx, repo, pr.Number)
	if err != nil {
		a.logger.Warn("could not fetch reviews", "repo", repo.FullName(), "pr", pr.Number, "error", err)
		pr.ReviewsMissing = true
		return
	}
	pr.Reviews = reviews
}
