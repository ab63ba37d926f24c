package outwriter

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"golang.org/x/term"

	"github.com/naka-gawa/year-in-code/internal/domain"
)

const notApplicable = "n/a"

// WriteTable prints a human-readable summary: totals, highlights and languages.
func WriteTable(w io.Writer, stats *domain.FullStats) error {
	title := color.New(color.FgCyan, color.Bold).SprintFunc()

	fmt.Fprintln(w, title("Totals"))
	if err := renderTable(w, []string{"Metric", "Value"}, totalsRows(stats), tw.AlignRight); err != nil {
		return err
	}

	fmt.Fprintln(w, title("Highlights"))
	if err := renderTable(w, []string{"Highlight", "Value", "Where"}, highlightRows(stats), tw.AlignLeft); err != nil {
		return err
	}

	fmt.Fprintln(w, title("Languages"))
	return renderTable(w, []string{"Language", "Additions", "Deletions", "Commits"}, languageRows(stats), tw.AlignRight)
}

func renderTable(w io.Writer, headers []string, data [][]string, align tw.Align) error {
	table := tablewriter.NewWriter(w)
	defer func() { _ = table.Close() }()

	table.Header(headers)
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = align
	})
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

func totalsRows(stats *domain.FullStats) [][]string {
	return [][]string{
		{"Commits", strconv.Itoa(stats.TotalCommits)},
		{"Additions", strconv.Itoa(stats.TotalAdditions)},
		{"Deletions", strconv.Itoa(stats.TotalDeletions)},
		{"PRs opened", strconv.Itoa(stats.TotalPRsOpened)},
		{"PRs merged", strconv.Itoa(stats.TotalPRsMerged)},
		{"PRs reviewed", strconv.Itoa(stats.TotalPRsReviewed)},
		{"Comments written", strconv.Itoa(stats.TotalCommentsWritten)},
		{"Approval ratio", formatPercent(stats.PRApprovalRatio)},
		{"Merge ratio", formatPercent(stats.PRMergeRatio)},
		{"Repositories", strconv.Itoa(len(stats.AllReposWorkedIn))},
		{"Languages", strconv.Itoa(stats.NumberOfLanguagesUsed)},
		{"Active days", strconv.Itoa(stats.Activity.ActiveDays)},
		{"Median changes per active day", formatFloat(stats.Activity.MedianChangesPerActiveDay)},
		{"Median PR lead time (h)", formatFloat(stats.Activity.MedianPRLeadTimeHours)},
	}
}

func highlightRows(stats *domain.FullStats) [][]string {
	width := maxMessageWidth()
	green := color.New(color.FgGreen).SprintFunc()

	var rows [][]string
	commit := func(label string, c *domain.Commit, value string) {
		if c == nil {
			return
		}
		rows = append(rows, []string{label, value, truncate(firstLine(c.Message), width)})
	}
	commit("Longest commit message", stats.CommitWithLongestMessage, strconv.Itoa(len([]rune(messageOf(stats.CommitWithLongestMessage)))))
	commit("Largest commit", stats.LargestCommit, changesOf(stats.LargestCommit))
	commit("Most files changed", stats.CommitWithMostFilesChanged, filesOf(stats.CommitWithMostFilesChanged))

	pr := func(label string, p *domain.PullRequest) {
		if p == nil {
			return
		}
		rows = append(rows, []string{label, strconv.Itoa(p.TotalChanges), p.URL})
	}
	pr("Largest PR opened", stats.LargestPROpened)
	pr("Largest PR merged", stats.LargestPRMerged)
	pr("Largest PR reviewed", stats.LargestPRReviewed)

	if stats.DateWithMostCommits != "" {
		rows = append(rows, []string{"Busiest day", strconv.Itoa(stats.MostCommitsInDay) + " commits", stats.DateWithMostCommits})
	}
	if stats.MostLovedLanguage != "" {
		rows = append(rows, []string{"Most loved language", green(stats.MostLovedLanguage), totalOf(stats.MostLovedLanguageStats)})
	}
	if stats.LeastLovedLanguage != "" {
		rows = append(rows, []string{"Least loved language", stats.LeastLovedLanguage, totalOf(stats.LeastLovedLanguageStats)})
	}
	return rows
}

// languageRows lists languages by change volume, largest first.
func languageRows(stats *domain.FullStats) [][]string {
	langs := make([]string, 0, len(stats.TotalAdditionsAndDeletionsPerLanguage))
	for lang := range stats.TotalAdditionsAndDeletionsPerLanguage {
		langs = append(langs, lang)
	}
	sort.Slice(langs, func(i, j int) bool {
		a := stats.TotalAdditionsAndDeletionsPerLanguage[langs[i]].Total()
		b := stats.TotalAdditionsAndDeletionsPerLanguage[langs[j]].Total()
		if a != b {
			return a > b
		}
		return langs[i] < langs[j]
	})

	rows := make([][]string, 0, len(langs))
	for _, lang := range langs {
		s := stats.TotalAdditionsAndDeletionsPerLanguage[lang]
		rows = append(rows, []string{lang, strconv.Itoa(s.Additions), strconv.Itoa(s.Deletions), strconv.Itoa(s.Commits)})
	}
	return rows
}

// maxMessageWidth sizes the free-text column to the terminal.
func maxMessageWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		width = 80
	}
	// Highlight and Value columns plus borders.
	if w := width - 45; w > 20 {
		return w
	}
	return 20
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width-3]) + "..."
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func messageOf(c *domain.Commit) string {
	if c == nil {
		return ""
	}
	return c.Message
}

func changesOf(c *domain.Commit) string {
	if c == nil {
		return ""
	}
	return fmt.Sprintf("+%d/-%d", c.Additions, c.Deletions)
}

func filesOf(c *domain.Commit) string {
	if c == nil {
		return ""
	}
	return strconv.Itoa(c.FilesChanged)
}

func totalOf(s *domain.Stats) string {
	if s == nil {
		return ""
	}
	return strconv.Itoa(s.Total()) + " lines"
}

func formatPercent(v *float64) string {
	if v == nil {
		return notApplicable
	}
	return strconv.FormatFloat(*v, 'f', 2, 64) + "%"
}

func formatFloat(v *float64) string {
	if v == nil {
		return notApplicable
	}
	return strconv.FormatFloat(*v, 'f', 2, 64)
}
