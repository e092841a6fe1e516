package ghclient

import (
	"context"
	"fmt"
	"time"

	gh "github.com/google/go-github/v57/github"

	"github.com/spiffcs/shepherd/internal/constants"
	"github.com/spiffcs/shepherd/internal/model"
)

// GetPullRequest fetches one pull request.
func (c *Client) GetPullRequest(ctx context.Context, number int) (*model.PullRequest, error) {
	var pr *gh.PullRequest
	err := withRetry(ctx, "get pull request", func() error {
		got, _, err := c.client.PullRequests.Get(ctx, c.owner, c.repo, number)
		if err != nil {
			return err
		}
		pr = got
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get PR #%d: %w", number, err)
	}

	return &model.PullRequest{
		Number:    pr.GetNumber(),
		State:     pr.GetState(),
		Draft:     pr.GetDraft(),
		HTMLURL:   pr.GetHTMLURL(),
		UserLogin: pr.GetUser().GetLogin(),
	}, nil
}

// ClosePullRequest closes a pull request. Closing an already-closed PR
// succeeds at the platform layer, so the call is safe to repeat.
func (c *Client) ClosePullRequest(ctx context.Context, number int) error {
	err := withRetry(ctx, "close pull request", func() error {
		_, _, err := c.client.PullRequests.Edit(ctx, c.owner, c.repo, number, &gh.PullRequest{
			State: gh.String("closed"),
		})
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to close PR #%d: %w", number, err)
	}
	return nil
}

// LatestCommitTime returns the committer timestamp of the newest commit on a
// pull request. The commit listing is paged oldest-first, so the scan walks
// to the last page within the global caps.
func (c *Client) LatestCommitTime(ctx context.Context, prNumber int) (time.Time, error) {
	opts := &gh.ListOptions{PerPage: constants.PerPage}

	var latest time.Time
	for page := 1; page <= constants.MaxPages; page++ {
		var batch []*gh.RepositoryCommit
		var resp *gh.Response
		err := withRetry(ctx, "list pull request commits", func() error {
			got, r, err := c.client.PullRequests.ListCommits(ctx, c.owner, c.repo, prNumber, opts)
			if err != nil {
				return err
			}
			batch, resp = got, r
			return nil
		})
		if err != nil {
			return time.Time{}, fmt.Errorf("failed to list commits for PR #%d: %w", prNumber, err)
		}

		for _, commit := range batch {
			if t := commit.GetCommit().GetCommitter().GetDate().Time; t.After(latest) {
				latest = t
			}
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	if latest.IsZero() {
		return time.Time{}, fmt.Errorf("PR #%d has no commits", prNumber)
	}
	return latest, nil
}
