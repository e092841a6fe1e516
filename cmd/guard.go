package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spiffcs/shepherd/internal/guard"
	"github.com/spiffcs/shepherd/internal/model"
	"github.com/spiffcs/shepherd/internal/policy"
)

// NewCmdGuard creates the guard command. It is intended to run from an
// assignment-event workflow: it evaluates the new assignee and, on denial,
// unassigns and posts one rejection comment.
func NewCmdGuard(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "guard",
		Short: "Enforce assignment eligibility for one issue",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGuard(cmd, opts)
		},
	}

	cmd.Flags().IntVar(&opts.Issue, "issue", 0, "Issue number (required)")
	cmd.Flags().StringVar(&opts.Assignee, "assignee", "", "Assignee login to evaluate (required)")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Report the decision without unassigning or commenting")
	_ = cmd.MarkFlagRequired("issue")
	_ = cmd.MarkFlagRequired("assignee")

	return cmd
}

func runGuard(cmd *cobra.Command, opts *Options) error {
	ctx := cmd.Context()

	cfg, client, err := setup(ctx, opts)
	if err != nil {
		return err
	}

	g := guard.New(cfg, client,
		policy.NewEvaluator(cfg, client),
		policy.NewLimiter(cfg, client))
	g.DryRun = opts.DryRun

	action, err := g.Guard(ctx, opts.Issue, opts.Assignee)
	if err != nil {
		return fmt.Errorf("guard failed: %w", err)
	}

	switch action.Kind {
	case model.ActionDeny:
		fmt.Printf("denied: %s (required %s, have %d, need %d)\n",
			action.Reason, action.RequiredTier, action.Have, action.Need)
	default:
		fmt.Println("ok: no action required")
	}
	return nil
}
