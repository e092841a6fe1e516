package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spiffcs/shepherd/internal/guard"
	"github.com/spiffcs/shepherd/internal/model"
	"github.com/spiffcs/shepherd/internal/policy"
)

// NewCmdAssign creates the assign command, the entry point for /assign
// comment workflows: it evaluates the contributor before assigning, so an
// ineligible request never becomes an assignment at all.
func NewCmdAssign(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "assign",
		Short: "Assign an issue to a contributor if they are eligible",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAssign(cmd, opts)
		},
	}

	cmd.Flags().IntVar(&opts.Issue, "issue", 0, "Issue number (required)")
	cmd.Flags().StringVar(&opts.Assignee, "user", "", "Contributor login (required)")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Report the decision without assigning")
	_ = cmd.MarkFlagRequired("issue")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

func runAssign(cmd *cobra.Command, opts *Options) error {
	ctx := cmd.Context()

	cfg, client, err := setup(ctx, opts)
	if err != nil {
		return err
	}

	g := guard.New(cfg, client,
		policy.NewEvaluator(cfg, client),
		policy.NewLimiter(cfg, client))

	action, err := g.Check(ctx, opts.Issue, opts.Assignee)
	if err != nil {
		return fmt.Errorf("assign check failed: %w", err)
	}
	if action.Kind == model.ActionDeny {
		fmt.Printf("not assigned: %s (required %s, have %d, need %d)\n",
			action.Reason, action.RequiredTier, action.Have, action.Need)
		return nil
	}

	if opts.DryRun {
		fmt.Printf("dry-run: would assign @%s to #%d\n", opts.Assignee, opts.Issue)
		return nil
	}

	if err := client.AddAssignees(ctx, opts.Issue, []string{opts.Assignee}); err != nil {
		return err
	}
	fmt.Printf("assigned @%s to #%d\n", opts.Assignee, opts.Issue)
	return nil
}
