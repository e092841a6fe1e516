// Package ghclient is the typed facade over the GitHub API. It supplies
// every read/write operation the engine needs, with hard pagination caps,
// bounded retries for transient failures, and rate limit tracking.
package ghclient

import (
	"context"
	"fmt"
	"os"

	gh "github.com/google/go-github/v57/github"
	"golang.org/x/oauth2"

	"github.com/spiffcs/shepherd/internal/log"
)

// Client wraps the GitHub API client, scoped to a single repository.
type Client struct {
	client *gh.Client
	owner  string
	repo   string
	// token is intentionally unexported. NEVER add String(), MarshalJSON(),
	// or any method that could expose this value in logs or serialized output.
	token string
}

// NewClient creates a new GitHub client scoped to owner/repo.
//
// Authentication resolves in order: an explicit personal access token (or
// GITHUB_TOKEN), then GitHub App credentials (GITHUB_APP_ID plus a private
// key) exchanged for an installation token.
func NewClient(ctx context.Context, token, owner, repo string) (*Client, error) {
	if owner == "" || repo == "" {
		return nil, fmt.Errorf("repository owner and name are required")
	}

	if token == "" {
		token = os.Getenv("GITHUB_TOKEN")
	}
	if token == "" && os.Getenv("GITHUB_APP_ID") != "" {
		appToken, err := appInstallationToken(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to authenticate as GitHub App: %w", err)
		}
		log.Info("authenticated as GitHub App installation")
		token = appToken
	}
	if token == "" {
		return nil, fmt.Errorf("GitHub token not provided. Set the GITHUB_TOKEN environment variable or configure GitHub App credentials")
	}

	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(ctx, ts)

	// Wrap transport with rate limit handling
	tc.Transport = &rateLimitTransport{
		base: tc.Transport,
	}

	return &Client{
		client: gh.NewClient(tc),
		owner:  owner,
		repo:   repo,
		token:  token,
	}, nil
}

// Owner returns the repository owner the client is scoped to.
func (c *Client) Owner() string { return c.owner }

// Repo returns the repository name the client is scoped to.
func (c *Client) Repo() string { return c.repo }

// RepoFullName returns owner/name.
func (c *Client) RepoFullName() string { return c.owner + "/" + c.repo }

// AuthenticatedUser returns the authenticated user's login.
func (c *Client) AuthenticatedUser(ctx context.Context) (string, error) {
	var login string
	err := withRetry(ctx, "get authenticated user", func() error {
		user, _, err := c.client.Users.Get(ctx, "")
		if err != nil {
			return err
		}
		login = user.GetLogin()
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to get authenticated user: %w", err)
	}
	return login, nil
}

// RateLimits fetches the current GitHub API rate limit status.
func (c *Client) RateLimits(ctx context.Context) (*gh.RateLimits, error) {
	limits, _, err := c.client.RateLimit.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get rate limits: %w", err)
	}
	return limits, nil
}
