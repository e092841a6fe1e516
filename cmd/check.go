package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/spiffcs/shepherd/internal/model"
	"github.com/spiffcs/shepherd/internal/policy"
)

// NewCmdCheck creates the check command: a read-only evaluation report for
// one contributor against one issue. Nothing is mutated.
func NewCmdCheck(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Explain whether a contributor may hold an issue",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, opts)
		},
	}

	cmd.Flags().IntVar(&opts.Issue, "issue", 0, "Issue number (required)")
	cmd.Flags().StringVar(&opts.Assignee, "user", "", "Contributor login (required)")
	_ = cmd.MarkFlagRequired("issue")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

func runCheck(cmd *cobra.Command, opts *Options) error {
	ctx := cmd.Context()

	cfg, client, err := setup(ctx, opts)
	if err != nil {
		return err
	}

	issue, err := client.GetIssue(ctx, opts.Issue)
	if err != nil {
		return err
	}

	allow := color.New(color.FgGreen).SprintFunc()
	deny := color.New(color.FgRed).SprintFunc()

	fmt.Printf("issue:    #%d %s\n", issue.Number, issue.Title)

	tier := cfg.ResolveTier(issue.Labels)
	if tier == model.TierNone {
		fmt.Printf("tier:     none (no recognized tier label, guard would not apply)\n")
		return nil
	}
	fmt.Printf("tier:     %s\n", tier)

	role, err := client.CollaboratorPermission(ctx, opts.Assignee)
	if err != nil {
		return fmt.Errorf("failed to resolve role: %w", err)
	}
	fmt.Printf("role:     %s\n", role)
	if cfg.IsExemptRole(role) {
		fmt.Printf("verdict:  %s (role is exempt from all checks)\n", allow("allowed"))
		return nil
	}

	limiter := policy.NewLimiter(cfg, client)
	if limits := limiter.CheckLimits(ctx, opts.Assignee, role, tier); !limits.OK {
		fmt.Printf("limits:   %s (%s, %d open of max %d)\n",
			deny("violated"), limits.Violation, limits.Have, limits.Max)
		fmt.Printf("verdict:  %s\n", deny("denied"))
		return nil
	}
	fmt.Printf("limits:   ok\n")

	eval := policy.NewEvaluator(cfg, client)
	result := eval.Evaluate(ctx, opts.Assignee, role, tier)
	switch result.Outcome {
	case policy.Allowed:
		if result.Need > 0 {
			fmt.Printf("history:  %d closed %s issue(s), need %d\n",
				result.Have, result.RequiredTier, result.Need)
		}
		fmt.Printf("verdict:  %s\n", allow("allowed"))
	case policy.Unknown:
		fmt.Printf("verdict:  unknown (platform query failed; enforcement would be skipped)\n")
	default:
		fmt.Printf("history:  %d closed %s issue(s), need %d\n",
			result.Have, result.RequiredTier, result.Need)
		fmt.Printf("verdict:  %s\n", deny("denied"))
	}
	return nil
}
