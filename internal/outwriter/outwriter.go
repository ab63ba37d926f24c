// Package outwriter renders a FullStats report as JSON, a terminal table, CSV
// or Parquet.
package outwriter

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/naka-gawa/year-in-code/internal/domain"
)

// Output formats accepted by Write.
const (
	FormatJSON  = "json"
	FormatTable = "table"
	FormatCSV   = "csv"
)

// DefaultFormat picks a table for interactive terminals and JSON otherwise.
func DefaultFormat(f *os.File) string {
	if term.IsTerminal(int(f.Fd())) {
		return FormatTable
	}
	return FormatJSON
}

// Write renders stats in format to outputFile, or to stdout when outputFile is empty.
func Write(format, outputFile string, stats *domain.FullStats) error {
	var render func(io.Writer, *domain.FullStats) error
	switch format {
	case FormatJSON:
		render = WriteJSON
	case FormatTable:
		render = WriteTable
	case FormatCSV:
		render = WriteCSV
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
	return writeWithFile(outputFile, func(w io.Writer) error {
		return render(w, stats)
	}, "Wrote "+format+" report")
}

// WriteJSON writes stats as indented JSON.
func WriteJSON(w io.Writer, stats *domain.FullStats) error {
	return writeJSON(w, stats)
}

// writeWithFile opens outputFile (stdout when empty), runs writer on it and
// closes it again.
func writeWithFile(outputFile string, writer func(io.Writer) error, successMsg string) error {
	if outputFile == "" {
		return writer(os.Stdout)
	}
	file, err := os.Create(outputFile)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	if err := writer(file); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "💾 %s to %s\n", successMsg, outputFile)
	return nil
}

// writeJSON is a generic JSON encoder that handles indentation consistently.
func writeJSON(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}
