package domain

import (
	"maps"
	"slices"
	"sort"
	"time"
)

// DayStats is the activity recorded on one calendar day.
type DayStats struct {
	Commits         int              `json:"commits"`
	Additions       int              `json:"additions"`
	Deletions       int              `json:"deletions"`
	PerLanguage     map[string]Stats `json:"perLanguage"`
	ReposWorkedIn   []string         `json:"reposWorkedIn"`
	PRsCreated      int              `json:"PRsCreated"`
	PRsMerged       int              `json:"PRsMerged"`
	PRsReviewed     int              `json:"PRsReviewed"`
	CommentsWritten int              `json:"commentsWritten"`
}

func newDayStats() *DayStats {
	return &DayStats{
		PerLanguage:   map[string]Stats{},
		ReposWorkedIn: []string{},
	}
}

// addRepo inserts name into the sorted ReposWorkedIn set.
func (d *DayStats) addRepo(name string) {
	i, found := slices.BinarySearch(d.ReposWorkedIn, name)
	if found {
		return
	}
	d.ReposWorkedIn = slices.Insert(d.ReposWorkedIn, i, name)
}

func (d *DayStats) addLanguage(lang string, s Stats) {
	d.PerLanguage[lang] = d.PerLanguage[lang].plus(s)
}

// merge folds o into d. Scalars sum, repositories union, languages add up.
func (d *DayStats) merge(o *DayStats) {
	d.Commits += o.Commits
	d.Additions += o.Additions
	d.Deletions += o.Deletions
	d.PRsCreated += o.PRsCreated
	d.PRsMerged += o.PRsMerged
	d.PRsReviewed += o.PRsReviewed
	d.CommentsWritten += o.CommentsWritten
	for _, repo := range o.ReposWorkedIn {
		d.addRepo(repo)
	}
	for lang, s := range o.PerLanguage {
		d.addLanguage(lang, s)
	}
}

// Timeline holds day buckets keyed by ISO date (YYYY-MM-DD).
type Timeline map[string]*DayStats

// Day returns the bucket for key, creating a zeroed one on first use.
// Every component that touches a timeline goes through here.
func (t Timeline) Day(key string) *DayStats {
	if d, ok := t[key]; ok {
		return d
	}
	d := newDayStats()
	t[key] = d
	return d
}

// Dates returns the timeline keys in ascending order.
func (t Timeline) Dates() []string {
	keys := slices.Collect(maps.Keys(t))
	sort.Strings(keys)
	return keys
}

// DayKey truncates ts to its UTC calendar day.
func DayKey(ts time.Time) string {
	return ts.UTC().Format(time.DateOnly)
}
