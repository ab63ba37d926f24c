package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/naka-gawa/year-in-code/internal/web"
)

var errNoStore = errors.New("a snapshot store is required (set --store-backend and --store-dsn)")

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves saved summaries over HTTP",
	Long: `Starts a read-only HTTP API over the snapshot store:

  GET /health
  GET /stats/{user}        full summary
  GET /stats/{user}/days   daily timeline, oldest first`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
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

		server := web.New(cfg.Serve.Addr, st, logger)
		errCh := make(chan error, 1)
		go func() {
			if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			if err != nil {
				return fmt.Errorf("server failed: %w", err)
			}
			return nil
		case <-ctx.Done():
		}

		logger.Info("shutting down server")
		// ctx is already canceled here.
		if err := server.Shutdown(context.WithoutCancel(ctx)); err != nil {
			return fmt.Errorf("failed to shut down server: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "Listen address (default :8080)")
}
