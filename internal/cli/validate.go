package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/me/dispatchsim/internal/ledger"
	"github.com/me/dispatchsim/internal/parser"
	"github.com/me/dispatchsim/pkg/model"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <workload-file>",
		Short: "Check a workload file without running it",
		Long: `Parses the workload, reports every structural defect, and registers each
job's constraints to catch malformed constraint text before a run.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := parser.New(logger).Load(args[0])
			if err != nil {
				var ve *model.ValidationError
				if errors.As(err, &ve) {
					for _, d := range ve.Details {
						fmt.Printf("  %s: %s\n", d.Field, d.Message)
					}
				}
				return err
			}

			ld := ledger.New(logger)
			for _, j := range w.Jobs {
				if err := ld.CreateJob(j.ID, j.MaxParallel, j.ParallelGroups); err != nil {
					return err
				}
			}

			tasks := 0
			for _, j := range w.Jobs {
				tasks += len(j.Tasks)
			}
			fmt.Printf("%s: %d resources, %d jobs, %d tasks — OK\n",
				args[0], len(w.Resources), len(w.Jobs), tasks)
			return nil
		},
	}
}
