package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/me/dispatchsim/internal/config"
	"github.com/me/dispatchsim/internal/feature"
	"github.com/me/dispatchsim/internal/oracle"
)

func newOracleCmd() *cobra.Command {
	cfg := config.DefaultOracleConfig()

	cmd := &cobra.Command{
		Use:   "oracle",
		Short: "Serve the reference first-fit oracle over HTTP",
		Long: `Starts an HTTP server exposing the built-in first-fit policy on the
decide/reward/retrain endpoints, for running the simulator against a
remote oracle without an external learner.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serveOracle(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&cfg.Addr, "addr", cfg.Addr, "Listen address")
	cmd.Flags().IntVar(&cfg.MaxReadyTasks, "max-ready-tasks", cfg.MaxReadyTasks, "Task slots in the state vector (must match the simulator)")

	return cmd
}

func serveOracle(ctx context.Context, cfg config.OracleConfig) error {
	h := oracle.NewHeuristic(feature.NewEncoder(cfg.MaxReadyTasks), logger)
	srv := oracle.NewServer(h, logger)

	httpServer := &http.Server{
		Addr:    cfg.Addr,
		Handler: srv,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("oracle serving", "addr", cfg.Addr, "max_ready_tasks", cfg.MaxReadyTasks)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("oracle server: %w", err)
	case <-ctx.Done():
	}
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
