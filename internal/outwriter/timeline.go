package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/parquet-go/parquet-go"

	"github.com/naka-gawa/year-in-code/internal/domain"
)

// DayRow is one day of the per-day timeline in flat form.
type DayRow struct {
	Date            string `parquet:"date,snappy"`
	Commits         int64  `parquet:"commits,snappy"`
	Additions       int64  `parquet:"additions,snappy"`
	Deletions       int64  `parquet:"deletions,snappy"`
	PRsCreated      int64  `parquet:"prs_created,snappy"`
	PRsMerged       int64  `parquet:"prs_merged,snappy"`
	PRsReviewed     int64  `parquet:"prs_reviewed,snappy"`
	CommentsWritten int64  `parquet:"comments_written,snappy"`
	Repos           string `parquet:"repos,snappy"`
}

var csvHeader = []string{
	"date", "commits", "additions", "deletions",
	"prs_created", "prs_merged", "prs_reviewed", "comments_written", "repos",
}

// DayRows flattens the per-day timeline, oldest day first.
func DayRows(stats *domain.FullStats) []DayRow {
	dates := stats.PerDay.Dates()
	rows := make([]DayRow, 0, len(dates))
	for _, date := range dates {
		d := stats.PerDay[date]
		rows = append(rows, DayRow{
			Date:            date,
			Commits:         int64(d.Commits),
			Additions:       int64(d.Additions),
			Deletions:       int64(d.Deletions),
			PRsCreated:      int64(d.PRsCreated),
			PRsMerged:       int64(d.PRsMerged),
			PRsReviewed:     int64(d.PRsReviewed),
			CommentsWritten: int64(d.CommentsWritten),
			Repos:           strings.Join(d.ReposWorkedIn, ";"),
		})
	}
	return rows
}

// WriteCSV writes the per-day timeline as CSV.
func WriteCSV(w io.Writer, stats *domain.FullStats) error {
	csvWriter := csv.NewWriter(w)
	if err := csvWriter.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, r := range DayRows(stats) {
		record := []string{
			r.Date,
			strconv.FormatInt(r.Commits, 10),
			strconv.FormatInt(r.Additions, 10),
			strconv.FormatInt(r.Deletions, 10),
			strconv.FormatInt(r.PRsCreated, 10),
			strconv.FormatInt(r.PRsMerged, 10),
			strconv.FormatInt(r.PRsReviewed, 10),
			strconv.FormatInt(r.CommentsWritten, 10),
			r.Repos,
		}
		if err := csvWriter.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	csvWriter.Flush()
	return csvWriter.Error()
}

// WriteParquet writes the per-day timeline to a Parquet file at outputPath.
func WriteParquet(outputPath string, stats *domain.FullStats) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[DayRow](file)
	if _, err := writer.Write(DayRows(stats)); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}
