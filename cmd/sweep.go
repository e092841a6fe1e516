package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/spiffcs/shepherd/internal/ghclient"
	"github.com/spiffcs/shepherd/internal/output"
	"github.com/spiffcs/shepherd/internal/stale"
)

// NewCmdSweep creates the sweep command, the scheduled staleness pass.
func NewCmdSweep(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Classify assigned issues and reclaim stale assignments",
		Long: `Iterates open assigned issues, classifies each assignment by age and
linked pull request activity, and executes reminders and reclamations.
Failures on individual issues are logged and skipped; the sweep always
completes the batch.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSweep(cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Classify only, take no actions")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "Max issues to examine (default 100)")

	return cmd
}

func runSweep(cmd *cobra.Command, opts *Options) error {
	ctx := cmd.Context()

	cfg, client, err := setup(ctx, opts)
	if err != nil {
		return err
	}

	detector := stale.NewDetector(cfg, client)
	actuator := stale.NewActuator(cfg, client)
	actuator.DryRun = opts.DryRun

	sweeper := stale.NewSweeper(detector, actuator, client, opts.Limit)
	results, err := sweeper.Sweep(ctx)
	if err != nil {
		if errors.Is(err, ghclient.ErrRateLimited) {
			_, _, resetAt, _ := ghclient.GetRateLimitStatus()
			return fmt.Errorf("rate limited, try again after %s", resetAt.Format(time.Kitchen))
		}
		return fmt.Errorf("sweep failed: %w", err)
	}

	output.NewReporter(os.Stdout).SweepTable(results)
	return nil
}
