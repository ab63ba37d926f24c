package domain

import "time"

// Raw records are what the fetch layer hands to the reducers. They mirror the
// GitHub API payloads closely and carry no derived fields.

// RawRepository identifies a repository the user was active in.
type RawRepository struct {
	Name  string
	Owner string
	ID    int64
}

// FullName returns "owner/name".
func (r RawRepository) FullName() string {
	return r.Owner + "/" + r.Name
}

// RawFile is one changed file inside a commit.
type RawFile struct {
	Filename  string
	Additions int
	Deletions int
}

// RawCommit is a commit detail record.
type RawCommit struct {
	SHA       string
	Additions int
	Deletions int
	Date      time.Time
	Message   string
	Files     []RawFile
	HTMLURL   string
}

// RawReview is a review as listed on a pull request.
type RawReview struct {
	AuthorLogin string
	State       string
	URL         string
	Body        string
	SubmittedAt time.Time
}

// RawPullRequest is a pull request plus whatever detail could be fetched for it.
type RawPullRequest struct {
	Number         int
	State          string
	CreatedAt      time.Time
	ClosedAt       *time.Time
	MergeCommitSHA string
	URL            string
	AuthorLogin    string

	MergeCommit        *RawCommit
	MergeCommitMissing bool
	Reviews            []RawReview
	ReviewsMissing     bool
}

// RawComment is an issue or pull request comment.
type RawComment struct {
	AuthorLogin string
	CreatedAt   time.Time
	URL         string
}
