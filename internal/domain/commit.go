package domain

import (
	"strings"

	"github.com/naka-gawa/year-in-code/internal/language"
)

// ReduceCommit attributes a commit's file changes to languages.
// Files that cannot be attributed are left out of StatsPerLanguage but still
// count towards TotalChanges and FilesChanged.
func (r *Reducer) ReduceCommit(raw RawCommit) Commit {
	perLanguage := make(map[string]Stats)
	var languages []string
	for _, f := range raw.Files {
		if f.Additions == 0 && f.Deletions == 0 {
			continue
		}
		if f.Filename == "" {
			r.logger.Debug("skipping file without a name", "sha", raw.SHA)
			continue
		}
		ext, ok := language.Extension(f.Filename)
		if !ok {
			continue
		}
		if language.IsExcluded(ext) {
			continue
		}
		lang, ok := language.Classify(ext)
		if !ok {
			r.logger.Debug("skipping file with unmapped extension", "sha", raw.SHA, "ext", ext)
			continue
		}
		if _, seen := perLanguage[lang]; !seen {
			languages = append(languages, lang)
		}
		perLanguage[lang] = perLanguage[lang].plus(Stats{Additions: f.Additions, Deletions: f.Deletions})
	}

	return Commit{
		SHA:              raw.SHA,
		Additions:        raw.Additions,
		Deletions:        raw.Deletions,
		TotalChanges:     raw.Additions + raw.Deletions,
		FilesChanged:     len(raw.Files),
		Date:             raw.Date,
		Message:          raw.Message,
		URL:              raw.HTMLURL,
		StatsPerLanguage: perLanguage,
		Languages:        languages,
	}
}

// ReducePullRequest resolves authorship flags against currentUser, reduces the
// merge commit and decides whether someone else approved the PR.
func (r *Reducer) ReducePullRequest(raw RawPullRequest, currentUser string) PullRequest {
	pr := PullRequest{
		Number:               raw.Number,
		State:                PRState(strings.ToLower(raw.State)),
		CreatedAt:            raw.CreatedAt,
		ClosedAt:             raw.ClosedAt,
		MergeCommitSHA:       raw.MergeCommitSHA,
		URL:                  raw.URL,
		CreatedByCurrentUser: raw.AuthorLogin == currentUser,
		Reviews:              []PRReview{},
		ReviewsMissing:       raw.ReviewsMissing,
		MergeCommitMissing:   raw.MergeCommitMissing,
	}

	if raw.MergeCommit != nil {
		c := r.ReduceCommit(*raw.MergeCommit)
		pr.MergeCommit = &c
		pr.TotalChanges = c.TotalChanges
	}

	if raw.ReviewsMissing {
		return pr
	}
	for _, rv := range raw.Reviews {
		state := ReviewState(strings.ToUpper(rv.State))
		if !state.Valid() {
			// Pending reviews have no submission and are not activity yet.
			continue
		}
		review := PRReview{
			ByCurrentUser: rv.AuthorLogin == currentUser,
			State:         state,
			URL:           rv.URL,
			Body:          rv.Body,
			SubmittedAt:   rv.SubmittedAt,
		}
		if !review.ByCurrentUser && review.State == ReviewApproved {
			pr.Approved = true
		}
		pr.Reviews = append(pr.Reviews, review)
	}
	return pr
}

// ReduceComments keeps the comments written by currentUser.
func (r *Reducer) ReduceComments(raw []RawComment, currentUser string) []Comment {
	comments := make([]Comment, 0, len(raw))
	for _, c := range raw {
		if c.AuthorLogin != currentUser {
			continue
		}
		comments = append(comments, Comment{URL: c.URL, CreatedAt: c.CreatedAt})
	}
	return comments
}
