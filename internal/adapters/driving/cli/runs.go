package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/geomosaic-labs/geomosaic-cli/internal/core/domain"
)

var runsLimit int

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recent pipeline runs",
	RunE:  runRuns,
}

func init() {
	runsCmd.Flags().IntVarP(&runsLimit, "limit", "n", 10, "maximum number of runs to show")
	rootCmd.AddCommand(runsCmd)
}

func runRuns(cmd *cobra.Command, _ []string) error {
	if runStore == nil {
		return errors.New("run history not available")
	}

	runs, err := runStore.List(context.Background(), runsLimit)
	if err != nil {
		return fmt.Errorf("listing runs: %w", err)
	}
	if len(runs) == 0 {
		cmd.Println("No runs recorded yet.")
		return nil
	}

	for _, run := range runs {
		cmd.Printf("%s  %s  z%d-%d  %s\n",
			run.StartedAt.Format(time.DateTime),
			runStatus(run),
			run.MinZoom, run.MaxZoom,
			run.SourcePath)
		if run.Error != "" {
			cmd.Printf("    %s\n", run.Error)
		}
	}
	return nil
}

// runStatus renders one run's terminal state for the listing.
func runStatus(run domain.PipelineRun) string {
	switch {
	case run.EndedAt.IsZero():
		return "running"
	case run.Success:
		return "ok     "
	default:
		return "failed "
	}
}
