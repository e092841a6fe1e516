package ghclient

import (
	"context"
	"fmt"
	"strings"

	gh "github.com/google/go-github/v57/github"

	"github.com/spiffcs/shepherd/internal/constants"
	"github.com/spiffcs/shepherd/internal/model"
)

// validateLogin rejects logins that would corrupt a search query before any
// API call is made.
func validateLogin(login string) error {
	if login == "" {
		return fmt.Errorf("empty login")
	}
	if strings.ContainsAny(login, " \t\n\"'") {
		return fmt.Errorf("invalid login %q", login)
	}
	return nil
}

// CountClosedAssignedIssues counts closed issues in the repository that were
// assigned to login and carry the given label. This is the completion count
// used by tier prerequisite checks.
func (c *Client) CountClosedAssignedIssues(ctx context.Context, login, label string) (int, error) {
	if err := validateLogin(login); err != nil {
		return 0, err
	}
	query := fmt.Sprintf("repo:%s/%s is:issue is:closed assignee:%s label:%q",
		c.owner, c.repo, login, label)
	return c.searchCount(ctx, query)
}

// CountOpenAssignedIssues counts open issues in the repository currently
// assigned to login.
func (c *Client) CountOpenAssignedIssues(ctx context.Context, login string) (int, error) {
	if err := validateLogin(login); err != nil {
		return 0, err
	}
	query := fmt.Sprintf("repo:%s/%s is:issue is:open assignee:%s",
		c.owner, c.repo, login)
	return c.searchCount(ctx, query)
}

// searchCount returns the total hit count for a search query without
// paginating through results.
func (c *Client) searchCount(ctx context.Context, query string) (int, error) {
	opts := &gh.SearchOptions{
		ListOptions: gh.ListOptions{PerPage: 1},
	}

	var total int
	err := withRetry(ctx, "search count", func() error {
		result, _, err := c.client.Search.Issues(ctx, query, opts)
		if err != nil {
			return err
		}
		total = result.GetTotal()
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to search %q: %w", query, err)
	}
	return total, nil
}

// ListOpenAssignedIssues fetches open issues that have at least one
// assignee, for the staleness sweep. Results are capped at limit and by the
// global pagination caps.
func (c *Client) ListOpenAssignedIssues(ctx context.Context, limit int) ([]*model.Issue, error) {
	if limit <= 0 || limit > constants.MaxItems {
		limit = constants.MaxItems
	}

	opts := &gh.IssueListByRepoOptions{
		State:    "open",
		Assignee: "*",
		ListOptions: gh.ListOptions{
			PerPage: constants.PerPage,
		},
	}

	var issues []*model.Issue
	for page := 1; page <= constants.MaxPages; page++ {
		var batch []*gh.Issue
		var resp *gh.Response
		err := withRetry(ctx, "list assigned issues", func() error {
			got, r, err := c.client.Issues.ListByRepo(ctx, c.owner, c.repo, opts)
			if err != nil {
				return err
			}
			batch, resp = got, r
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list assigned issues: %w", err)
		}

		for _, issue := range batch {
			// The issues endpoint also returns PRs; skip them here.
			if issue.IsPullRequest() {
				continue
			}
			issues = append(issues, issueToModel(issue))
			if len(issues) >= limit {
				return issues, nil
			}
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return issues, nil
}
