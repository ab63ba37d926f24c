// Package gateway provides a gateway to the GitHub API,
// abstracting away the underlying REST and GraphQL clients.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/codeGROOVE-dev/retry"
	"github.com/google/go-github/v62/github"
	"github.com/shurcooL/githubv4"
	"golang.org/x/oauth2"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"

	"github.com/naka-gawa/year-in-code/internal/domain"
)

const (
	perPage           = 100
	maxRetryAttempts  = 4
	initialRetryDelay = 500 * time.Millisecond
	maxRetryDelay     = 10 * time.Second
)

// Fetcher defines the behavior of a gateway for fetching information from GitHub.
type Fetcher interface {
	FetchViewerLogin(ctx context.Context) (string, error)
	FetchActiveRepositories(ctx context.Context, since time.Time) ([]domain.RawRepository, error)
	FetchCommitSHAs(ctx context.Context, repo domain.RawRepository, author string, since time.Time) ([]string, error)
	FetchCommit(ctx context.Context, repo domain.RawRepository, sha string) (domain.RawCommit, error)
	FetchPullRequests(ctx context.Context, repo domain.RawRepository, since time.Time) ([]domain.RawPullRequest, error)
	FetchReviews(ctx context.Context, repo domain.RawRepository, number int) ([]domain.RawReview, error)
	FetchComments(ctx context.Context, repo domain.RawRepository, since time.Time) ([]domain.RawComment, error)
}

// GitHubGateway is the concrete implementation of the Fetcher interface.
type GitHubGateway struct {
	restClient    *github.Client
	graphqlClient *githubv4.Client
	logger        *slog.Logger
	retryAttempts uint
	retryDelay    time.Duration
}

// viewerQuery resolves the login of the token owner.
type viewerQuery struct {
	Viewer struct {
		Login githubv4.String
	}
}

// NewGitHubGateway is a constructor that creates a new instance of GitHubGateway.
func NewGitHubGateway(token string, logger *slog.Logger) (Fetcher, error) {
	rateLimitWaiter, err := github_ratelimit.NewRateLimitWaiter(nil, github_ratelimit.WithSingleSleepLimit(1*time.Hour, nil))
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limit waiter: %w", err)
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	httpClient := &http.Client{
		Transport: &oauth2.Transport{
			Base:   rateLimitWaiter,
			Source: ts,
		},
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &GitHubGateway{
		restClient:    github.NewClient(httpClient),
		graphqlClient: githubv4.NewClient(httpClient),
		logger:        logger,
		retryAttempts: maxRetryAttempts,
		retryDelay:    initialRetryDelay,
	}, nil
}

// FetchViewerLogin returns the login of the authenticated user.
func (g *GitHubGateway) FetchViewerLogin(ctx context.Context) (string, error) {
	var q viewerQuery
	if err := g.graphqlClient.Query(ctx, &q, nil); err != nil {
		return "", fmt.Errorf("failed to execute GraphQL query for viewer: %w", err)
	}
	return string(q.Viewer.Login), nil
}

// FetchActiveRepositories lists the repositories the authenticated user can
// access that were pushed to at or after since.
func (g *GitHubGateway) FetchActiveRepositories(ctx context.Context, since time.Time) ([]domain.RawRepository, error) {
	g.logger.Debug("fetching active repositories", "since", since)
	opts := &github.RepositoryListByAuthenticatedUserOptions{
		Affiliation: "owner,collaborator,organization_member",
		Sort:        "pushed",
		Direction:   "desc",
		ListOptions: github.ListOptions{PerPage: perPage},
	}
	var repos []domain.RawRepository
	for {
		page, resp, err := g.restClient.Repositories.ListByAuthenticatedUser(ctx, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list repositories: %w", err)
		}
		for _, r := range page {
			// Sorted by push time, so everything after this is older.
			if r.GetPushedAt().Time.Before(since) {
				return repos, nil
			}
			repos = append(repos, domain.RawRepository{
				Name:  r.GetName(),
				Owner: r.GetOwner().GetLogin(),
				ID:    r.GetID(),
			})
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return repos, nil
}

// FetchCommitSHAs lists the SHAs of commits authored by author since the given time.
func (g *GitHubGateway) FetchCommitSHAs(ctx context.Context, repo domain.RawRepository, author string, since time.Time) ([]string, error) {
	opts := &github.CommitsListOptions{
		Author:      author,
		Since:       since,
		ListOptions: github.ListOptions{PerPage: perPage},
	}
	var shas []string
	for {
		commits, resp, err := g.restClient.Repositories.ListCommits(ctx, repo.Owner, repo.Name, opts)
		if err != nil {
			// GitHub answers 409 for repositories without any commits.
			if statusCode(err) == http.StatusConflict {
				return nil, nil
			}
			return nil, fmt.Errorf("failed to list commits for %s: %w", repo.FullName(), err)
		}
		for _, c := range commits {
			shas = append(shas, c.GetSHA())
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	g.logger.Debug("listed commits", "repo", repo.FullName(), "count", len(shas))
	return shas, nil
}

// FetchCommit fetches the detail of one commit, retrying transient failures.
func (g *GitHubGateway) FetchCommit(ctx context.Context, repo domain.RawRepository, sha string) (domain.RawCommit, error) {
	var rc *github.RepositoryCommit
	err := g.withRetry(ctx, "get commit "+sha, func() error {
		var err error
		rc, _, err = g.restClient.Repositories.GetCommit(ctx, repo.Owner, repo.Name, sha, nil)
		return err
	})
	if err != nil {
		return domain.RawCommit{}, fmt.Errorf("failed to get commit %s in %s: %w", sha, repo.FullName(), err)
	}
	return toRawCommit(rc), nil
}

// FetchPullRequests lists pull requests created after since, newest first.
func (g *GitHubGateway) FetchPullRequests(ctx context.Context, repo domain.RawRepository, since time.Time) ([]domain.RawPullRequest, error) {
	opts := &github.PullRequestListOptions{
		State:       "all",
		Sort:        "created",
		Direction:   "desc",
		ListOptions: github.ListOptions{PerPage: perPage},
	}
	var prs []domain.RawPullRequest
	for {
		page, resp, err := g.restClient.PullRequests.List(ctx, repo.Owner, repo.Name, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list pull requests for %s: %w", repo.FullName(), err)
		}
		for _, pr := range page {
			if !pr.GetCreatedAt().Time.After(since) {
				return prs, nil
			}
			prs = append(prs, toRawPullRequest(pr))
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return prs, nil
}

// FetchReviews lists every review left on a pull request.
func (g *GitHubGateway) FetchReviews(ctx context.Context, repo domain.RawRepository, number int) ([]domain.RawReview, error) {
	opts := &github.ListOptions{PerPage: perPage}
	var reviews []domain.RawReview
	for {
		page, resp, err := g.restClient.PullRequests.ListReviews(ctx, repo.Owner, repo.Name, number, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list reviews for %s#%d: %w", repo.FullName(), number, err)
		}
		for _, r := range page {
			reviews = append(reviews, domain.RawReview{
				AuthorLogin: r.GetUser().GetLogin(),
				State:       r.GetState(),
				URL:         r.GetHTMLURL(),
				Body:        r.GetBody(),
				SubmittedAt: r.GetSubmittedAt().Time,
			})
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return reviews, nil
}

// FetchComments lists issue and pull request comments in a repository updated since the given time.
func (g *GitHubGateway) FetchComments(ctx context.Context, repo domain.RawRepository, since time.Time) ([]domain.RawComment, error) {
	opts := &github.IssueListCommentsOptions{
		Since:       &since,
		ListOptions: github.ListOptions{PerPage: perPage},
	}
	var comments []domain.RawComment
	for {
		page, resp, err := g.restClient.Issues.ListComments(ctx, repo.Owner, repo.Name, 0, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list comments for %s: %w", repo.FullName(), err)
		}
		for _, c := range page {
			created := c.GetCreatedAt().Time
			if created.Before(since) {
				continue
			}
			comments = append(comments, domain.RawComment{
				AuthorLogin: c.GetUser().GetLogin(),
				CreatedAt:   created,
				URL:         c.GetHTMLURL(),
			})
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return comments, nil
}

func (g *GitHubGateway) withRetry(ctx context.Context, operation string, fn func() error) error {
	return retry.Do(
		fn,
		retry.Context(ctx),
		retry.Attempts(g.retryAttempts),
		retry.DelayType(retry.BackOffDelay),
		retry.Delay(g.retryDelay),
		retry.MaxDelay(maxRetryDelay),
		retry.RetryIf(retryable),
		retry.OnRetry(func(n uint, err error) {
			g.logger.Warn("retrying GitHub request", "operation", operation, "attempt", n+1, "error", err)
		}),
		retry.LastErrorOnly(true),
	)
}

// retryable reports whether err is worth another attempt: server errors and
// transport failures are, client errors are not.
func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	code := statusCode(err)
	return code == 0 || code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func statusCode(err error) int {
	var errResp *github.ErrorResponse
	if errors.As(err, &errResp) && errResp.Response != nil {
		return errResp.Response.StatusCode
	}
	return 0
}

func toRawCommit(rc *github.RepositoryCommit) domain.RawCommit {
	files := make([]domain.RawFile, 0, len(rc.Files))
	for _, f := range rc.Files {
		files = append(files, domain.RawFile{
			Filename:  f.GetFilename(),
			Additions: f.GetAdditions(),
			Deletions: f.GetDeletions(),
		})
	}
	return domain.RawCommit{
		SHA:       rc.GetSHA(),
		Additions: rc.GetStats().GetAdditions(),
		Deletions: rc.GetStats().GetDeletions(),
		Date:      rc.GetCommit().GetAuthor().GetDate().Time,
		Message:   rc.GetCommit().GetMessage(),
		Files:     files,
		HTMLURL:   rc.GetHTMLURL(),
	}
}

func toRawPullRequest(pr *github.PullRequest) domain.RawPullRequest {
	raw := domain.RawPullRequest{
		Number:      pr.GetNumber(),
		State:       pr.GetState(),
		CreatedAt:   pr.GetCreatedAt().Time,
		URL:         pr.GetHTMLURL(),
		AuthorLogin: pr.GetUser().GetLogin(),
	}
	if pr.ClosedAt != nil {
		closed := pr.GetClosedAt().Time
		raw.ClosedAt = &closed
	}
	// Unmerged PRs still report a test merge commit; only merged ones count.
	if pr.MergedAt != nil {
		raw.MergeCommitSHA = pr.GetMergeCommitSHA()
	}
	return raw
}
