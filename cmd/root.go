// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/naka-gawa/year-in-code/internal/config"
	"github.com/naka-gawa/year-in-code/internal/store"
)

var (
	configFile string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "year-in-code",
	Short: "Summarize a year of GitHub coding activity.",
	Long: `year-in-code collects a user's commits, pull requests, reviews and comments
from the trailing 365 days across every repository they pushed to, and reduces
them into a single yearly summary: totals, per-language breakdowns, busiest days
and superlatives such as the biggest commit or the longest review.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		_, _ = color.New(color.FgRed).Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is .year-in-code.yaml in . or $HOME)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose/debug logging")
	rootCmd.PersistentFlags().String("store-backend", "", "Snapshot store backend: none, sqlite, mysql or postgres")
	rootCmd.PersistentFlags().String("store-dsn", "", "Snapshot store connection string")
}

// newLogger logs to stderr at debug level when verbose, and discards otherwise.
func newLogger() *slog.Logger {
	if !verbose {
		return slog.New(slog.DiscardHandler)
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// flagKeys maps flag names to config keys where they differ.
var flagKeys = map[string]string{
	"store-backend": "store.backend",
	"store-dsn":     "store.dsn",
	"addr":          "serve.addr",
}

// loadConfig merges defaults, config file, environment and the command's flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	v := config.New(configFile)
	if err := bindFlags(v, cmd.Flags()); err != nil {
		return nil, err
	}
	if err := bindFlags(v, cmd.InheritedFlags()); err != nil {
		return nil, err
	}
	return config.Load(v)
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	var bindErr error
	flags.VisitAll(func(f *pflag.Flag) {
		if bindErr != nil || f.Name == "config" || f.Name == "verbose" {
			return
		}
		key := f.Name
		if mapped, ok := flagKeys[key]; ok {
			key = mapped
		}
		if err := v.BindPFlag(key, f); err != nil {
			bindErr = fmt.Errorf("failed to bind flag %q: %w", f.Name, err)
		}
	})
	return bindErr
}

// openStore opens the configured snapshot store; it is nil for the none backend.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (store.Store, error) {
	st, err := store.New(ctx, cfg.Store.Backend, cfg.Store.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot store: %w", err)
	}
	if st != nil {
		logger.Debug("snapshot store opened", "backend", cfg.Store.Backend)
	}
	return st, nil
}
