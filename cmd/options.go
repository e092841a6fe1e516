package cmd

import (
	"context"
	"fmt"

	"github.com/spiffcs/shepherd/config"
	"github.com/spiffcs/shepherd/internal/ghclient"
)

// Options holds the shared command-line options for the shepherd CLI.
type Options struct {
	Repo      string
	Verbosity int

	// Per-command flags
	Issue    int
	Assignee string
	DryRun   bool
	Limit    int
}

// setup loads the config and builds an authenticated client scoped to the
// target repository. The --repo flag overrides the configured repo.
func setup(ctx context.Context, opts *Options) (*config.Config, *ghclient.Client, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	repo := cfg.Repo
	if opts.Repo != "" {
		repo = opts.Repo
	}
	if repo == "" {
		return nil, nil, fmt.Errorf("no repository specified. Use --repo owner/name or set repo in the config file")
	}
	owner, name, err := config.SplitRepo(repo)
	if err != nil {
		return nil, nil, err
	}

	client, err := ghclient.NewClient(ctx, cfg.GetGitHubToken(), owner, name)
	if err != nil {
		return nil, nil, err
	}
	return cfg, client, nil
}
