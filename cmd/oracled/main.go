package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/me/dispatchsim/internal/config"
	"github.com/me/dispatchsim/internal/feature"
	"github.com/me/dispatchsim/internal/logging"
	"github.com/me/dispatchsim/internal/oracle"
)

func main() {
	cfg := config.DefaultOracleConfig()

	flag.StringVar(&cfg.Addr, "addr", cfg.Addr, "Listen address")
	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	flag.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format (text, json)")
	flag.IntVar(&cfg.MaxReadyTasks, "max-ready-tasks", cfg.MaxReadyTasks, "Task slots in the state vector (must match the simulator)")
	debug := flag.Bool("debug", false, "Shorthand for --log-level=debug")

	flag.Parse()

	if *debug {
		cfg.LogLevel = "debug"
	}

	logger := logging.New(logging.ParseLevel(cfg.LogLevel), cfg.LogFormat)

	h := oracle.NewHeuristic(feature.NewEncoder(cfg.MaxReadyTasks), logger)
	srv := oracle.NewServer(h, logger)

	httpServer := &http.Server{
		Addr:    cfg.Addr,
		Handler: srv,
	}

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("oracle serving", "addr", cfg.Addr, "max_ready_tasks", cfg.MaxReadyTasks)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		fmt.Fprintf(os.Stderr, "shutdown error: %v\n", err)
		os.Exit(1)
	}

	decides, rewards, retrains := h.Calls()
	logger.Info("oracle stopped",
		"decides", decides, "rewards", rewards, "retrains", retrains,
		"total_reward", h.TotalReward())
}
