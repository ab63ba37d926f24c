package outwriter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"io"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naka-gawa/year-in-code/internal/domain"
)

func testStats(t *testing.T) *domain.FullStats {
	t.Helper()
	r := domain.NewReducer(nil, domain.WithClock(func() time.Time {
		return time.Date(2024, 6, 30, 12, 0, 0, 0, time.UTC)
	}))
	date := time.Date(2024, 1, 5, 8, 0, 0, 0, time.UTC)
	repo, err := r.ReduceRepository("octocat/hello", []domain.Commit{
		{
			SHA: "a1", Additions: 10, Deletions: 2, TotalChanges: 12, FilesChanged: 2, Date: date,
			Message:          "Add the greeting endpoint\n\nLonger body here.",
			StatsPerLanguage: map[string]domain.Stats{"Go": {Additions: 10, Deletions: 2}},
		},
		{
			SHA: "a2", Additions: 3, Deletions: 1, TotalChanges: 4, FilesChanged: 1, Date: date,
			Message:          "Fix typo",
			StatsPerLanguage: map[string]domain.Stats{"Markdown": {Additions: 3, Deletions: 1}},
		},
	}, nil, nil)
	require.NoError(t, err)
	stats, err := r.Aggregate([]domain.Repository{repo})
	require.NoError(t, err)
	return stats
}

func TestWriteJSON(t *testing.T) {
	stats := testStats(t)
	var buf bytes.Buffer

	require.NoError(t, WriteJSON(&buf, stats))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, float64(2), decoded["totalCommits"])
	assert.Equal(t, "Go", decoded["mostLovedLanguage"])
	assert.NotContains(t, decoded, "PRApprovalRatio")
	assert.Contains(t, buf.String(), "\n  \"totalCommits\"")
}

func TestWriteTable(t *testing.T) {
	color.NoColor = true
	stats := testStats(t)
	var buf bytes.Buffer

	require.NoError(t, WriteTable(&buf, stats))

	out := buf.String()
	for _, want := range []string{"Totals", "Highlights", "Languages", "Add the greeting endpoint", "Markdown", "2024-01-05", notApplicable} {
		assert.Contains(t, out, want)
	}
	assert.NotContains(t, out, "Longer body here.")
}

func TestWriteCSV(t *testing.T) {
	stats := testStats(t)
	var buf bytes.Buffer

	require.NoError(t, WriteCSV(&buf, stats))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, domain.WindowDays+2)
	assert.Equal(t, csvHeader, records[0])
	assert.Equal(t, "2023-07-01", records[1][0])
	assert.Equal(t, "2024-06-30", records[len(records)-1][0])

	var found bool
	for _, rec := range records[1:] {
		if rec[0] == "2024-01-05" {
			found = true
			assert.Equal(t, []string{"2024-01-05", "2", "13", "3", "0", "0", "0", "0", "octocat/hello"}, rec)
		}
	}
	assert.True(t, found)
}

func TestDayRows_LargeCounts(t *testing.T) {
	stats := &domain.FullStats{PerDay: domain.Timeline{
		"2024-01-05": {Additions: math.MaxInt32 + 10, Commits: 1, ReposWorkedIn: []string{"a", "b"}},
	}}

	rows := DayRows(stats)

	require.Len(t, rows, 1)
	assert.Equal(t, int64(math.MaxInt32)+10, rows[0].Additions)
	assert.Equal(t, "a;b", rows[0].Repos)
}

func TestWriteParquet(t *testing.T) {
	stats := testStats(t)
	outputPath := filepath.Join(t.TempDir(), "days.parquet")

	require.NoError(t, WriteParquet(outputPath, stats))

	file, err := os.Open(outputPath)
	require.NoError(t, err)
	defer file.Close()

	reader := parquet.NewGenericReader[DayRow](file)
	defer reader.Close()

	rows := make([]DayRow, reader.NumRows())
	n, err := reader.Read(rows)
	if err != nil && err != io.EOF {
		require.NoError(t, err)
	}
	assert.Equal(t, domain.WindowDays+1, n)
	assert.Equal(t, DayRows(stats), rows)
}

func TestWrite(t *testing.T) {
	stats := testStats(t)

	t.Run("unsupported format", func(t *testing.T) {
		err := Write("xml", "", stats)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported output format")
	})

	t.Run("writes to file", func(t *testing.T) {
		outputFile := filepath.Join(t.TempDir(), "stats.json")
		require.NoError(t, Write(FormatJSON, outputFile, stats))

		data, err := os.ReadFile(outputFile)
		require.NoError(t, err)
		var decoded domain.FullStats
		require.NoError(t, json.Unmarshal(data, &decoded))
		assert.Equal(t, stats.TotalAdditions, decoded.TotalAdditions)
	})

	t.Run("unwritable path", func(t *testing.T) {
		err := Write(FormatCSV, filepath.Join(t.TempDir(), "missing", "out.csv"), stats)
		assert.Error(t, err)
	})
}

func TestDefaultFormat(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "out")
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, FormatJSON, DefaultFormat(f))
}
