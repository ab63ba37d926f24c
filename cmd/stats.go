package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/naka-gawa/year-in-code/internal/gateway"
	"github.com/naka-gawa/year-in-code/internal/outwriter"
	"github.com/naka-gawa/year-in-code/internal/usecase"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Builds the yearly activity summary for a GitHub user",
	Long: `Fetches the trailing 365 days of activity for a GitHub user and prints the
summary. Output is a table on a terminal and JSON otherwise; --output overrides.
When a snapshot store is configured the summary is saved for the serve command.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if err := cfg.RequireToken(); err != nil {
			return err
		}
		logger := newLogger()

		st, err := openStore(ctx, cfg, logger)
		if err != nil {
			return err
		}
		if st != nil {
			defer func() { _ = st.Close() }()
		}

		fetcher, err := gateway.NewGitHubGateway(cfg.Token, logger)
		if err != nil {
			return fmt.Errorf("failed to create GitHub gateway: %w", err)
		}

		user := cfg.User
		if user == "" {
			if user, err = fetcher.FetchViewerLogin(ctx); err != nil {
				return fmt.Errorf("failed to resolve current user: %w", err)
			}
		}

		aggregator := usecase.NewAggregator(fetcher, logger, usecase.WithConcurrency(cfg.Concurrency))
		stats, err := aggregator.Aggregate(ctx, user)
		if err != nil {
			return fmt.Errorf("failed to aggregate stats: %w", err)
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

		if st == nil {
			return nil
		}
		if err := st.Save(ctx, user, stats); err != nil {
			return err
		}
		logger.Info("snapshot saved", "user", user)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().StringP("user", "u", "", "Target GitHub user name (default is the token owner)")
	statsCmd.Flags().String("token", "", "GitHub token (default is $GITHUB_TOKEN)")
	statsCmd.Flags().IntP("concurrency", "c", 0, "Repositories fetched in parallel")
	statsCmd.Flags().StringP("output", "o", "", "Output format: json, table or csv")
	statsCmd.Flags().String("output-file", "", "Write the report to this file instead of stdout")
	statsCmd.Flags().String("parquet-file", "", "Also write the daily timeline as Parquet to this file")
}
