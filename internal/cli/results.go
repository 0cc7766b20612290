package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/me/dispatchsim/internal/store"
)

func newResultsCmd() *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "results [run-id]",
		Short: "List persisted runs, or show one run in detail",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := store.NewSQLiteStore(dbPath, logger)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer st.Close()
			if err := st.Migrate(cmd.Context()); err != nil {
				return fmt.Errorf("migrate database: %w", err)
			}

			if len(args) == 0 {
				return listRuns(cmd, st)
			}
			return showRun(cmd, st, args[0])
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "dispatchsim.db", "SQLite database path")
	cmd.MarkFlagRequired("db") //nolint:errcheck

	return cmd
}

func listRuns(cmd *cobra.Command, st store.Store) error {
	runs, err := st.ListRuns(cmd.Context())
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs recorded")
		return nil
	}

	fmt.Printf("%-42s %-20s %-12s %10s %12s\n",
		"RUN", "ORACLE", "STATE", "MAKESPAN", "REWARD")
	for _, r := range runs {
		state := "running"
		if r.CompletedAt != nil {
			state = "completed"
		}
		fmt.Printf("%-42s %-20s %-12s %10.3f %12.3f\n",
			r.ID, r.Oracle, state, r.Makespan, r.TotalReward)
	}
	return nil
}

func showRun(cmd *cobra.Command, st store.Store, runID string) error {
	ctx := cmd.Context()

	run, err := st.GetRun(ctx, runID)
	if err != nil {
		return err
	}
	if run == nil {
		return fmt.Errorf("run %s not found", runID)
	}

	fmt.Printf("run:          %s\n", run.ID)
	fmt.Printf("workload:     %s\n", run.Workload)
	fmt.Printf("oracle:       %s\n", run.Oracle)
	fmt.Printf("makespan:     %.3f\n", run.Makespan)
	fmt.Printf("total reward: %.3f\n", run.TotalReward)

	decisions, err := st.ListDecisions(ctx, runID)
	if err != nil {
		return err
	}
	if len(decisions) > 0 {
		fmt.Printf("\n%-6s %10s %-8s %-8s %-10s %-8s %12s\n",
			"SEQ", "TIME", "TASK", "JOB", "RESOURCE", "ACTION", "REWARD")
		for _, d := range decisions {
			fmt.Printf("%-6d %10.3f %-8d %-8d %-10d %-8d %12.3f\n",
				d.Seq, d.SimTime, d.TaskID, d.JobID, d.ResourceID, d.Action, d.Reward)
		}
	}

	results, err := st.ListTaskResults(ctx, runID)
	if err != nil {
		return err
	}
	if len(results) > 0 {
		fmt.Printf("\n%-8s %-8s %-10s %10s %10s %10s\n",
			"TASK", "JOB", "RESOURCE", "SUBMIT", "START", "FINISH")
		for _, t := range results {
			fmt.Printf("%-8d %-8d %-10d %10.3f %10.3f %10.3f\n",
				t.TaskID, t.JobID, t.ResourceID, t.SubmitTime, t.StartTime, t.FinishTime)
		}
	}
	return nil
}
