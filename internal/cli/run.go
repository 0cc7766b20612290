package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/me/dispatchsim/internal/config"
	"github.com/me/dispatchsim/internal/feature"
	"github.com/me/dispatchsim/internal/oracle"
	"github.com/me/dispatchsim/internal/parser"
	"github.com/me/dispatchsim/internal/reward"
	"github.com/me/dispatchsim/internal/simengine"
	"github.com/me/dispatchsim/internal/store"
	"github.com/me/dispatchsim/pkg/model"
)

func newRunCmd() *cobra.Command {
	cfg := config.DefaultSimConfig()

	cmd := &cobra.Command{
		Use:   "run <workload-file>",
		Short: "Simulate a workload and report makespan and reward",
		Long: `Loads a YAML workload, registers its job constraints, and drives the
simulation to completion. Placement decisions come from the oracle at
--oracle, or from the built-in first-fit heuristic when no URL is given.

With --db, the run, its dispatch decisions, and final task timings are
persisted for later inspection via 'dispatchsim results'.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulation(cmd.Context(), args[0], cfg)
		},
	}

	cmd.Flags().StringVar(&cfg.OracleURL, "oracle", "", "Oracle base URL (default: built-in heuristic)")
	cmd.Flags().StringVar(&cfg.DBPath, "db", "", "SQLite database path for run persistence")
	cmd.Flags().IntVar(&cfg.MaxReadyTasks, "max-ready-tasks", cfg.MaxReadyTasks, "Task slots in the oracle state vector")
	cmd.Flags().StringVar(&cfg.RewardExpr, "reward-expr", "", "JS reward expression (bindings: task, resource, now)")

	return cmd
}

func runSimulation(ctx context.Context, workloadPath string, cfg config.SimConfig) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	w, err := parser.New(logger).Load(workloadPath)
	if err != nil {
		return err
	}

	opts := simengine.Options{MaxReadyTasks: cfg.MaxReadyTasks}

	if cfg.RewardExpr != "" {
		expr, err := reward.NewExpr(cfg.RewardExpr, logger)
		if err != nil {
			return err
		}
		opts.Reward = expr
	}

	var o oracle.Oracle
	oracleName := "heuristic"
	if cfg.OracleURL != "" {
		o = oracle.NewClient(cfg.OracleURL, logger)
		oracleName = cfg.OracleURL
	} else {
		o = oracle.NewHeuristic(feature.NewEncoder(cfg.MaxReadyTasks), logger)
	}

	var st store.Store
	runID := "run_" + uuid.New().String()
	if cfg.DBPath != "" {
		sqlStore, err := store.NewSQLiteStore(cfg.DBPath, logger)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer sqlStore.Close()
		if err := sqlStore.Migrate(ctx); err != nil {
			return fmt.Errorf("migrate database: %w", err)
		}
		st = sqlStore

		run := &model.Run{
			ID:        runID,
			Workload:  workloadPath,
			Oracle:    oracleName,
			StartedAt: time.Now().UTC(),
		}
		if err := st.CreateRun(ctx, run); err != nil {
			return fmt.Errorf("create run: %w", err)
		}
		opts.Recorder = store.NewRunRecorder(st, runID)
	}

	eng, err := simengine.New(w, o, opts, logger)
	if err != nil {
		return err
	}

	report, err := eng.Run(ctx)
	if err != nil {
		return err
	}
	report.RunID = runID

	if st != nil {
		for _, tr := range report.Tasks {
			if err := st.SaveTaskResult(ctx, runID, tr); err != nil {
				return fmt.Errorf("save task result: %w", err)
			}
		}
		if err := st.FinishRun(ctx, runID, report.Makespan, report.TotalReward); err != nil {
			return fmt.Errorf("finish run: %w", err)
		}
	}

	printReport(report)
	return nil
}

func printReport(r *simengine.Report) {
	fmt.Printf("run:          %s\n", r.RunID)
	fmt.Printf("tasks:        %d\n", len(r.Tasks))
	fmt.Printf("makespan:     %.3f\n", r.Makespan)
	fmt.Printf("total reward: %.3f\n", r.TotalReward)
	fmt.Println()
	fmt.Printf("%-8s %-8s %-10s %10s %10s %10s\n",
		"TASK", "JOB", "RESOURCE", "SUBMIT", "START", "FINISH")
	for _, t := range r.Tasks {
		fmt.Printf("%-8d %-8d %-10d %10.3f %10.3f %10.3f\n",
			t.TaskID, t.JobID, t.ResourceID, t.SubmitTime, t.StartTime, t.FinishTime)
	}
}
