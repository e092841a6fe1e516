package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// NewCmdRateLimit creates the ratelimit command. The bot's sweep and search
// calls consume quota quickly on large repositories; this shows how much
// headroom is left before scheduling another run.
func NewCmdRateLimit(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "ratelimit",
		Short: "Show GitHub API rate limit status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRateLimit(cmd, opts)
		},
	}
}

func runRateLimit(cmd *cobra.Command, opts *Options) error {
	ctx := cmd.Context()

	_, client, err := setup(ctx, opts)
	if err != nil {
		return err
	}

	login, err := client.AuthenticatedUser(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("authenticated as %s\n\n", login)

	limits, err := client.RateLimits(ctx)
	if err != nil {
		return err
	}

	if limits.Core != nil {
		resetIn := time.Until(limits.Core.Reset.Time).Round(time.Second)
		if resetIn < 0 {
			resetIn = 0
		}
		fmt.Printf("Core API:   %d/%d remaining (resets in %s)\n",
			limits.Core.Remaining, limits.Core.Limit, resetIn)
	}

	if limits.Search != nil {
		resetIn := time.Until(limits.Search.Reset.Time).Round(time.Second)
		if resetIn < 0 {
			resetIn = 0
		}
		fmt.Printf("Search API: %d/%d remaining (resets in %s)\n",
			limits.Search.Remaining, limits.Search.Limit, resetIn)
	}

	return nil
}
