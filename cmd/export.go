package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/naka-gawa/year-in-code/internal/outwriter"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Re-renders a saved summary without calling GitHub",
	Long: `Loads the summary saved for --user from the snapshot store and writes it in
the requested format, optionally with the daily timeline as Parquet.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if cfg.User == "" {
			return errors.New("--user is required for export")
		}
		logger := newLogger()

		st, err := openStore(ctx, cfg, logger)
		if err != nil {
			return err
		}
		if st == nil {
			return errNoStore
		}
		defer func() { _ = st.Close() }()

		stats, err := st.Load(ctx, cfg.User)
		if err != nil {
			return fmt.Errorf("failed to load snapshot for %s: %w", cfg.User, err)
		}

		format := cfg.Output
		if format == "" {
			format = outwriter.DefaultFormat(os.Stdout)
		}
		if err := outwriter.Write(format, cfg.OutputFile, stats); err != nil {
			return err
		}
		if cfg.ParquetFile != "" {
			if err := outwriter.WriteParquet(cfg.ParquetFile, stats); err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "Wrote daily timeline to %s\n", cfg.ParquetFile)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringP("user", "u", "", "GitHub user whose snapshot to export (required)")
	exportCmd.Flags().StringP("output", "o", "", "Output format: json, table or csv")
	exportCmd.Flags().String("output-file", "", "Write the report to this file instead of stdout")
	exportCmd.Flags().String("parquet-file", "", "Also write the daily timeline as Parquet to this file")
}
