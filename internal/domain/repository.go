package domain

import (
	"fmt"
	"slices"
	"strings"
)

const squashMarker = "Squashed commit"

// ReduceRepository folds one repository's commits, pull requests and comments
// into its totals, day buckets and superlatives. The inputs are not modified.
func (r *Reducer) ReduceRepository(name string, commits []Commit, pullRequests []PullRequest, comments []Comment) (Repository, error) {
	if name == "" {
		return Repository{}, fmt.Errorf("%w: repository has no name", ErrInvalidRepository)
	}

	repo := Repository{
		Name:                                  name,
		TotalAdditionsAndDeletionsPerLanguage: map[string]Stats{},
		StatsPerDate:                          Timeline{},
		ActiveDates:                           []string{},
		PullRequests:                          make([]PullRequest, 0, len(pullRequests)),
	}
	day := func(key string) *DayStats {
		d := repo.StatsPerDate.Day(key)
		d.addRepo(name)
		return d
	}
	commitDays := map[string]bool{}

	for i := range commits {
		c := commits[i]

		repo.TotalCommits++
		repo.TotalAdditions += c.Additions
		repo.TotalDeletions += c.Deletions

		key := DayKey(c.Date)
		if !commitDays[key] {
			commitDays[key] = true
			repo.ActiveDates = append(repo.ActiveDates, key)
		}
		d := day(key)
		d.Commits++
		d.Additions += c.Additions
		d.Deletions += c.Deletions
		for _, lang := range c.languageOrder() {
			s := c.StatsPerLanguage[lang]
			d.addLanguage(lang, Stats{Additions: s.Additions, Deletions: s.Deletions})
			if _, ok := repo.TotalAdditionsAndDeletionsPerLanguage[lang]; !ok {
				repo.LanguageOrder = append(repo.LanguageOrder, lang)
			}
			repo.TotalAdditionsAndDeletionsPerLanguage[lang] = repo.TotalAdditionsAndDeletionsPerLanguage[lang].plus(
				Stats{Additions: s.Additions, Deletions: s.Deletions, Commits: 1},
			)
		}

		if !strings.Contains(c.Message, squashMarker) {
			repo.CommitWithLongestMessage = maxBy(repo.CommitWithLongestMessage, &c, messageLength)
			repo.CommitWithShortestMessage = minBy(repo.CommitWithShortestMessage, &c, messageLength)
		}
		repo.LargestCommit = maxBy(repo.LargestCommit, &c, commitChanges)
		repo.SmallestCommit = minBy(repo.SmallestCommit, &c, commitChanges)
		repo.CommitWithMostFilesChanged = maxBy(repo.CommitWithMostFilesChanged, &c, filesChanged)
	}

	for i := range pullRequests {
		pr := pullRequests[i]
		r.reducePullRequestInto(&repo, &pr, day)
		repo.PullRequests = append(repo.PullRequests, pr)
	}

	for _, c := range comments {
		repo.TotalCommentsWritten++
		day(DayKey(c.CreatedAt)).CommentsWritten++
	}

	slices.Sort(repo.ActiveDates)
	return repo, nil
}

func (r *Reducer) reducePullRequestInto(repo *Repository, pr *PullRequest, day func(string) *DayStats) {
	if pr.MergeCommitMissing {
		r.logger.Warn("merge commit missing, excluding PR from change totals", "repo", repo.Name, "pr", pr.Number)
	}
	if pr.ReviewsMissing {
		r.logger.Warn("reviews missing, excluding PR from review stats", "repo", repo.Name, "pr", pr.Number)
	}
	sized := !pr.MergeCommitMissing
	closed := pr.State == PRClosed

	created := day(DayKey(pr.CreatedAt))
	var closedDay *DayStats
	if closed && pr.ClosedAt != nil {
		closedDay = day(DayKey(*pr.ClosedAt))
	}

	if !pr.ReviewsMissing {
		for _, rv := range pr.Reviews {
			if !rv.ByCurrentUser && rv.State == ReviewApproved {
				pr.Approved = true
				repo.PRsApproved++
			}
		}
	}

	if pr.CreatedByCurrentUser {
		repo.TotalPRsOpened++
		created.PRsCreated++
		if sized {
			repo.LargestPROpened = maxBy(repo.LargestPROpened, pr, prChanges)
			repo.SmallestPROpened = minBy(repo.SmallestPROpened, pr, prChanges)
		}

		if closed {
			repo.TotalPRsMerged++
			if closedDay != nil {
				closedDay.PRsMerged++
				repo.MergedPRLeadTimeHours = append(repo.MergedPRLeadTimeHours, pr.ClosedAt.Sub(pr.CreatedAt).Hours())
			}
			if sized {
				repo.TotalMergedPRChanges += pr.TotalChanges
				repo.LargestPRMerged = maxBy(repo.LargestPRMerged, pr, prChanges)
				repo.SmallestPRMerged = minBy(repo.SmallestPRMerged, pr, prChanges)
			}
		}
	}

	if pr.ReviewsMissing {
		return
	}
	for j := range pr.Reviews {
		rv := pr.Reviews[j]
		if !rv.ByCurrentUser {
			continue
		}
		repo.TotalPRsReviewed++
		if !rv.SubmittedAt.IsZero() {
			day(DayKey(rv.SubmittedAt)).PRsReviewed++
		}
		if sized {
			repo.TotalReviewedPRChanges += pr.TotalChanges
			repo.LargestPRReviewed = maxBy(repo.LargestPRReviewed, pr, prChanges)
			repo.SmallestPRReviewed = minBy(repo.SmallestPRReviewed, pr, prChanges)
		}
		if longest := maxBy(repo.LongestReviewLeft, &rv, bodyLength); longest != repo.LongestReviewLeft {
			repo.LongestReviewLeft, repo.PRWithLongestReview = longest, pr
		}
		if shortest := minBy(repo.ShortestReviewLeft, &rv, bodyLength); shortest != repo.ShortestReviewLeft {
			repo.ShortestReviewLeft, repo.PRWithShortestReview = shortest, pr
		}
	}
}
