// Package domain contains the core data structures and domain logic for the application:
// the reducers that fold raw GitHub activity into a yearly FullStats report.
package domain

import (
	"slices"
	"time"
)

// Stats is the atomic unit of change volume. Commits is only set where
// touching commits are counted, such as per-language totals.
type Stats struct {
	Additions int `json:"additions"`
	Deletions int `json:"deletions"`
	Commits   int `json:"commits,omitempty"`
}

// Total returns additions plus deletions.
func (s Stats) Total() int {
	return s.Additions + s.Deletions
}

func (s Stats) plus(o Stats) Stats {
	return Stats{
		Additions: s.Additions + o.Additions,
		Deletions: s.Deletions + o.Deletions,
		Commits:   s.Commits + o.Commits,
	}
}

// Commit is a single reduced commit. It is never mutated after ReduceCommit returns it.
type Commit struct {
	SHA              string           `json:"sha"`
	Additions        int              `json:"additions"`
	Deletions        int              `json:"deletions"`
	TotalChanges     int              `json:"totalChanges"`
	FilesChanged     int              `json:"filesChanged"`
	Date             time.Time        `json:"date"`
	Message          string           `json:"message"`
	URL              string           `json:"sourceURL"`
	StatsPerLanguage map[string]Stats `json:"statsPerLanguage"`

	// Languages lists the keys of StatsPerLanguage in the order their files
	// appear in the commit.
	Languages []string `json:"-"`
}

func (c *Commit) languageOrder() []string {
	return inOrder(c.Languages, c.StatsPerLanguage)
}

// inOrder returns the keys of m that appear in order, in that order, followed
// by the remaining keys in name order.
func inOrder(order []string, m map[string]Stats) []string {
	keys := make([]string, 0, len(m))
	listed := make(map[string]bool, len(order))
	for _, key := range order {
		if _, ok := m[key]; ok && !listed[key] {
			listed[key] = true
			keys = append(keys, key)
		}
	}
	var rest []string
	for key := range m {
		if !listed[key] {
			rest = append(rest, key)
		}
	}
	slices.Sort(rest)
	return append(keys, rest...)
}

// ReviewState is the state GitHub reports for a pull request review.
type ReviewState string

const (
	ReviewApproved         ReviewState = "APPROVED"
	ReviewChangesRequested ReviewState = "CHANGES_REQUESTED"
	ReviewCommented        ReviewState = "COMMENTED"
	ReviewDismissed        ReviewState = "DISMISSED"
)

// Valid reports whether s is one of the submitted review states.
func (s ReviewState) Valid() bool {
	switch s {
	case ReviewApproved, ReviewChangesRequested, ReviewCommented, ReviewDismissed:
		return true
	}
	return false
}

// PRReview is a submitted review on a pull request.
type PRReview struct {
	ByCurrentUser bool        `json:"byCurrentUser"`
	State         ReviewState `json:"state"`
	URL           string      `json:"URL"`
	Body          string      `json:"body"`
	SubmittedAt   time.Time   `json:"submittedAt"`
}

// PRState is the lifecycle state of a pull request.
type PRState string

const (
	PROpen   PRState = "open"
	PRClosed PRState = "closed"
)

// PullRequest is a reduced pull request together with its reviews.
type PullRequest struct {
	Number               int        `json:"number"`
	State                PRState    `json:"state"`
	CreatedAt            time.Time  `json:"createdAt"`
	ClosedAt             *time.Time `json:"closedAt,omitempty"`
	MergeCommitSHA       string     `json:"mergeCommitSHA,omitempty"`
	MergeCommit          *Commit    `json:"mergeCommit,omitempty"`
	URL                  string     `json:"URL"`
	CreatedByCurrentUser bool       `json:"createdByCurrentUser"`
	Reviews              []PRReview `json:"reviews"`
	TotalChanges         int        `json:"totalChanges"`
	Approved             bool       `json:"approved"`

	// Set by the fetch layer when part of the PR could not be retrieved.
	ReviewsMissing     bool `json:"reviewsMissing,omitempty"`
	MergeCommitMissing bool `json:"mergeCommitMissing,omitempty"`
}

// Comment is an issue or pull request comment written by the current user.
type Comment struct {
	URL       string    `json:"URL"`
	CreatedAt time.Time `json:"createdAt"`
}

// Repository is the reduction of everything the user did in one repository.
type Repository struct {
	Name string `json:"name"`

	TotalCommits                          int              `json:"totalCommits"`
	TotalAdditions                        int              `json:"totalAdditions"`
	TotalDeletions                        int              `json:"totalDeletions"`
	TotalAdditionsAndDeletionsPerLanguage map[string]Stats `json:"totalAdditionsAndDeletionsPerLanguage"`
	StatsPerDate                          Timeline         `json:"statsPerDate"`

	// Days with at least one commit, ascending.
	ActiveDates   []string `json:"activeDates"`
	// Languages in the order they first appear in the commits.
	LanguageOrder []string `json:"-"`

	CommitWithLongestMessage   *Commit `json:"commitWithLongestMessage,omitempty"`
	CommitWithShortestMessage  *Commit `json:"commitWithShortestMessage,omitempty"`
	LargestCommit              *Commit `json:"largestCommit,omitempty"`
	SmallestCommit             *Commit `json:"smallestCommit,omitempty"`
	CommitWithMostFilesChanged *Commit `json:"commitWithMostFilesChanged,omitempty"`

	PullRequests           []PullRequest `json:"PRs"`
	TotalPRsOpened         int           `json:"totalPRsOpened"`
	TotalPRsMerged         int           `json:"totalPRsMerged"`
	TotalPRsReviewed       int           `json:"totalPRsReviewed"`
	TotalMergedPRChanges   int           `json:"totalMergedPRChanges"`
	TotalReviewedPRChanges int           `json:"totalReviewedPRChanges"`
	PRsApproved            int           `json:"PRsApproved"`
	TotalCommentsWritten   int           `json:"totalCommentsWritten"`

	LargestPROpened      *PullRequest `json:"largestPROpened,omitempty"`
	SmallestPROpened     *PullRequest `json:"smallestPROpened,omitempty"`
	LargestPRMerged      *PullRequest `json:"largestPRMerged,omitempty"`
	SmallestPRMerged     *PullRequest `json:"smallestPRMerged,omitempty"`
	LargestPRReviewed    *PullRequest `json:"largestPRReviewed,omitempty"`
	SmallestPRReviewed   *PullRequest `json:"smallestPRReviewed,omitempty"`
	PRWithLongestReview  *PullRequest `json:"PRWithLongestReview,omitempty"`
	LongestReviewLeft    *PRReview    `json:"longestReviewLeft,omitempty"`
	PRWithShortestReview *PullRequest `json:"PRWithShortestReview,omitempty"`
	ShortestReviewLeft   *PRReview    `json:"shortestReviewLeft,omitempty"`

	// Hours between creation and close of every merged PR the user opened.
	MergedPRLeadTimeHours []float64 `json:"mergedPRLeadTimeHours,omitempty"`
}

// ActivitySummary describes how change volume is spread over active days.
// Pointer fields are nil when there is not enough data to compute them.
type ActivitySummary struct {
	ActiveDays                int      `json:"activeDays"`
	MeanChangesPerActiveDay   *float64 `json:"meanChangesPerActiveDay,omitempty"`
	MedianChangesPerActiveDay *float64 `json:"medianChangesPerActiveDay,omitempty"`
	P90ChangesPerActiveDay    *float64 `json:"p90ChangesPerActiveDay,omitempty"`
	MedianPRLeadTimeHours     *float64 `json:"medianPRLeadTimeHours,omitempty"`
}

// FullStats is the yearly report for a single user.
type FullStats struct {
	TotalCommits           int `json:"totalCommits"`
	TotalAdditions         int `json:"totalAdditions"`
	TotalDeletions         int `json:"totalDeletions"`
	TotalPRsOpened         int `json:"totalPRsOpened"`
	TotalPRsMerged         int `json:"totalPRsMerged"`
	TotalPRChanges         int `json:"totalPRChanges"`
	TotalPRsReviewed       int `json:"totalPRsReviewed"`
	TotalPRChangesReviewed int `json:"totalPRChangesReviewed"`
	PRsApproved            int `json:"PRsApproved"`
	TotalCommentsWritten   int `json:"totalCommentsWritten"`

	NumberOfLanguagesUsed                 int                         `json:"numberOfLanguagesUsed"`
	MostLovedLanguage                     string                      `json:"mostLovedLanguage,omitempty"`
	MostLovedLanguageStats                *Stats                      `json:"mostLovedLanguageStats,omitempty"`
	LeastLovedLanguage                    string                      `json:"leastLovedLanguage,omitempty"`
	LeastLovedLanguageStats               *Stats                      `json:"leastLovedLanguageStats,omitempty"`
	TotalAdditionsAndDeletionsPerLanguage map[string]Stats            `json:"totalAdditionsAndDeletionsPerLanguage"`
	AllReposWorkedIn                      []string                    `json:"allReposWorkedIn"`
	LanguageStatsPerRepo                  map[string]map[string]Stats `json:"languageStatsPerRepo"`

	CommitWithLongestMessage   *Commit `json:"commitWithLongestMessage,omitempty"`
	CommitWithShortestMessage  *Commit `json:"commitWithShortestMessage,omitempty"`
	LargestCommit              *Commit `json:"largestCommit,omitempty"`
	SmallestCommit             *Commit `json:"smallestCommit,omitempty"`
	CommitWithMostFilesChanged *Commit `json:"commitWithMostFilesChanged,omitempty"`

	MostAdditionsInDay    int    `json:"mostAdditionsInDay"`
	MostDeletionsInDay    int    `json:"mostDeletionsInDay"`
	MostCommitsInDay      int    `json:"mostCommitsInDay"`
	DateWithMostAdditions string `json:"dateWithMostAdditions,omitempty"`
	DateWithMostDeletions string `json:"dateWithMostDeletions,omitempty"`
	DateWithMostCommits   string `json:"dateWithMostCommits,omitempty"`

	LargestPROpened      *PullRequest `json:"largestPROpened,omitempty"`
	SmallestPROpened     *PullRequest `json:"smallestPROpened,omitempty"`
	LargestPRMerged      *PullRequest `json:"largestPRMerged,omitempty"`
	SmallestPRMerged     *PullRequest `json:"smallestPRMerged,omitempty"`
	LargestPRReviewed    *PullRequest `json:"largestPRReviewed,omitempty"`
	SmallestPRReviewed   *PullRequest `json:"smallestPRReviewed,omitempty"`
	PRWithLongestReview  *PullRequest `json:"PRWithLongestReview,omitempty"`
	LongestReviewLeft    *PRReview    `json:"longestReviewLeft,omitempty"`
	PRWithShortestReview *PullRequest `json:"PRWithShortestReview,omitempty"`
	ShortestReviewLeft   *PRReview    `json:"shortestReviewLeft,omitempty"`

	// Percentages rounded to two decimals; nil when no PRs were opened.
	PRApprovalRatio *float64 `json:"PRApprovalRatio,omitempty"`
	PRMergeRatio    *float64 `json:"PRMergeRatio,omitempty"`

	Activity ActivitySummary `json:"activity"`

	PerDay             Timeline            `json:"perDay"`
	DatesRepoWasActive map[string][]string `json:"datesRepoWasActive"`
}
