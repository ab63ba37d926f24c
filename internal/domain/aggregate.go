package domain

import (
	"fmt"
	"maps"
	"slices"
)

// Aggregate folds reduced repositories into the yearly report. It must run
// after every repository has been reduced; repos is read, never modified.
func (r *Reducer) Aggregate(repos []Repository) (*FullStats, error) {
	for i, repo := range repos {
		if repo.Name == "" {
			return nil, fmt.Errorf("%w: repository at index %d has no name", ErrInvalidRepository, i)
		}
	}

	fs := &FullStats{
		TotalAdditionsAndDeletionsPerLanguage: map[string]Stats{},
		AllReposWorkedIn:                      []string{},
		LanguageStatsPerRepo:                  map[string]map[string]Stats{},
		PerDay:                                Timeline{},
		DatesRepoWasActive:                    map[string][]string{},
	}

	now := r.now().UTC()
	for i := 0; i <= WindowDays; i++ {
		fs.PerDay.Day(DayKey(now.AddDate(0, 0, -i)))
	}

	var leadTimes []float64
	var langOrder []string
	seen := map[string]bool{}
	for _, repo := range repos {
		fs.TotalCommits += repo.TotalCommits
		fs.TotalAdditions += repo.TotalAdditions
		fs.TotalDeletions += repo.TotalDeletions
		fs.TotalPRsOpened += repo.TotalPRsOpened
		fs.TotalPRsMerged += repo.TotalPRsMerged
		fs.TotalPRChanges += repo.TotalMergedPRChanges
		fs.TotalPRsReviewed += repo.TotalPRsReviewed
		fs.TotalPRChangesReviewed += repo.TotalReviewedPRChanges
		fs.PRsApproved += repo.PRsApproved
		fs.TotalCommentsWritten += repo.TotalCommentsWritten
		leadTimes = append(leadTimes, repo.MergedPRLeadTimeHours...)

		fs.DatesRepoWasActive[repo.Name] = slices.Clone(repo.ActiveDates)
		fs.LanguageStatsPerRepo[repo.Name] = maps.Clone(repo.TotalAdditionsAndDeletionsPerLanguage)
		if len(repo.StatsPerDate) > 0 && !seen[repo.Name] {
			seen[repo.Name] = true
			fs.AllReposWorkedIn = append(fs.AllReposWorkedIn, repo.Name)
		}

		promoteSuperlatives(fs, &repo)

		for _, lang := range inOrder(repo.LanguageOrder, repo.TotalAdditionsAndDeletionsPerLanguage) {
			total, ok := fs.TotalAdditionsAndDeletionsPerLanguage[lang]
			if !ok {
				langOrder = append(langOrder, lang)
			}
			fs.TotalAdditionsAndDeletionsPerLanguage[lang] = total.plus(repo.TotalAdditionsAndDeletionsPerLanguage[lang])
		}
		// Days outside the window stay in the totals but get no bucket.
		for key, d := range repo.StatsPerDate {
			if bucket, ok := fs.PerDay[key]; ok {
				bucket.merge(d)
			} else {
				r.logger.Debug("activity outside the window", "repo", repo.Name, "date", key)
			}
		}
	}

	fs.findBusiestDays()

	fs.NumberOfLanguagesUsed = len(fs.TotalAdditionsAndDeletionsPerLanguage)
	fs.rankLanguages(langOrder)

	fs.PRApprovalRatio = percentage(fs.PRsApproved, fs.TotalPRsOpened)
	fs.PRMergeRatio = percentage(fs.TotalPRsMerged, fs.TotalPRsOpened)

	fs.Activity = summarizeActivity(fs.PerDay, leadTimes)
	return fs, nil
}

func promoteSuperlatives(fs *FullStats, repo *Repository) {
	fs.CommitWithLongestMessage = maxBy(fs.CommitWithLongestMessage, repo.CommitWithLongestMessage, messageLength)
	fs.CommitWithShortestMessage = minBy(fs.CommitWithShortestMessage, repo.CommitWithShortestMessage, messageLength)
	fs.LargestCommit = maxBy(fs.LargestCommit, repo.LargestCommit, commitChanges)
	fs.SmallestCommit = minBy(fs.SmallestCommit, repo.SmallestCommit, commitChanges)
	fs.CommitWithMostFilesChanged = maxBy(fs.CommitWithMostFilesChanged, repo.CommitWithMostFilesChanged, filesChanged)

	fs.LargestPROpened = maxBy(fs.LargestPROpened, repo.LargestPROpened, prChanges)
	fs.SmallestPROpened = minBy(fs.SmallestPROpened, repo.SmallestPROpened, prChanges)
	fs.LargestPRMerged = maxBy(fs.LargestPRMerged, repo.LargestPRMerged, prChanges)
	fs.SmallestPRMerged = minBy(fs.SmallestPRMerged, repo.SmallestPRMerged, prChanges)
	fs.LargestPRReviewed = maxBy(fs.LargestPRReviewed, repo.LargestPRReviewed, prChanges)
	fs.SmallestPRReviewed = minBy(fs.SmallestPRReviewed, repo.SmallestPRReviewed, prChanges)

	if longest := maxBy(fs.LongestReviewLeft, repo.LongestReviewLeft, bodyLength); longest != fs.LongestReviewLeft {
		fs.LongestReviewLeft, fs.PRWithLongestReview = longest, repo.PRWithLongestReview
	}
	if shortest := minBy(fs.ShortestReviewLeft, repo.ShortestReviewLeft, bodyLength); shortest != fs.ShortestReviewLeft {
		fs.ShortestReviewLeft, fs.PRWithShortestReview = shortest, repo.PRWithShortestReview
	}
}

// findBusiestDays scans from the most recent day backwards; the first day
// reaching a new maximum keeps it.
func (fs *FullStats) findBusiestDays() {
	dates := fs.PerDay.Dates()
	for i := len(dates) - 1; i >= 0; i-- {
		key := dates[i]
		d := fs.PerDay[key]
		if d.Additions > fs.MostAdditionsInDay {
			fs.MostAdditionsInDay, fs.DateWithMostAdditions = d.Additions, key
		}
		if d.Deletions > fs.MostDeletionsInDay {
			fs.MostDeletionsInDay, fs.DateWithMostDeletions = d.Deletions, key
		}
		if d.Commits > fs.MostCommitsInDay {
			fs.MostCommitsInDay, fs.DateWithMostCommits = d.Commits, key
		}
	}
}

// rankLanguages visits languages in first-seen order; on a tie the earlier
// language keeps its place.
func (fs *FullStats) rankLanguages(order []string) {
	var most, least *Stats
	for _, lang := range order {
		s := fs.TotalAdditionsAndDeletionsPerLanguage[lang]
		if most == nil || s.Total() > most.Total() {
			most = &s
			fs.MostLovedLanguage = lang
		}
		if least == nil || s.Total() < least.Total() {
			least = &s
			fs.LeastLovedLanguage = lang
		}
	}
	fs.MostLovedLanguageStats = most
	fs.LeastLovedLanguageStats = least
}

// percentage returns 100*part/whole rounded to two decimals, or nil when
// whole is zero.
func percentage(part, whole int) *float64 {
	if whole == 0 {
		return nil
	}
	v := round2(100 * float64(part) / float64(whole))
	return &v
}
