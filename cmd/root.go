package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/spiffcs/shepherd/internal/log"
)

// New creates the root command with all subcommands registered.
func New() *cobra.Command {
	opts := &Options{}

	rootCmd := &cobra.Command{
		Use:   "shepherd",
		Short: "Contributor lifecycle bot for issue assignments",
		Long: `A bot that guards issue assignments by difficulty tier, nudges
inactive contributors, and reclaims stale assignments. It is designed to run
from webhook-triggered workflows and scheduled sweeps; all of its effects are
idempotent against duplicate deliveries.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			log.Initialize(opts.Verbosity, os.Stderr)
		},
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.Repo, "repo", "", "Repository to operate on (owner/name, overrides config)")
	rootCmd.PersistentFlags().CountVarP(&opts.Verbosity, "verbose", "v", "Increase verbosity (-v, -vv, -vvv)")

	rootCmd.AddCommand(NewCmdGuard(opts))
	rootCmd.AddCommand(NewCmdAssign(opts))
	rootCmd.AddCommand(NewCmdSweep(opts))
	rootCmd.AddCommand(NewCmdCheck(opts))
	rootCmd.AddCommand(NewCmdRateLimit(opts))
	rootCmd.AddCommand(NewCmdConfig())
	rootCmd.AddCommand(NewCmdVersion())

	return rootCmd
}
