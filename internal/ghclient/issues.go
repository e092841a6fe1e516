package ghclient

import (
	"context"
	"fmt"
	"strings"

	gh "github.com/google/go-github/v57/github"

	"github.com/spiffcs/shepherd/internal/constants"
	"github.com/spiffcs/shepherd/internal/log"
	"github.com/spiffcs/shepherd/internal/model"
)

// GetIssue fetches one issue.
func (c *Client) GetIssue(ctx context.Context, number int) (*model.Issue, error) {
	var issue *gh.Issue
	err := withRetry(ctx, "get issue", func() error {
		got, _, err := c.client.Issues.Get(ctx, c.owner, c.repo, number)
		if err != nil {
			return err
		}
		issue = got
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get issue #%d: %w", number, err)
	}
	return issueToModel(issue), nil
}

// issueToModel converts a GitHub issue to the engine's issue type.
func issueToModel(issue *gh.Issue) *model.Issue {
	var labels []string
	for _, label := range issue.Labels {
		labels = append(labels, label.GetName())
	}

	var assignees []string
	for _, assignee := range issue.Assignees {
		assignees = append(assignees, assignee.GetLogin())
	}

	return &model.Issue{
		Number:    issue.GetNumber(),
		Title:     issue.GetTitle(),
		State:     issue.GetState(),
		Labels:    labels,
		Assignees: assignees,
		CreatedAt: issue.GetCreatedAt().Time,
		HTMLURL:   issue.GetHTMLURL(),
	}
}

// ListComments fetches an issue's comments, oldest first, capped at
// MaxItems/MaxPages.
func (c *Client) ListComments(ctx context.Context, number int) ([]model.Comment, error) {
	opts := &gh.IssueListCommentsOptions{
		ListOptions: gh.ListOptions{PerPage: constants.PerPage},
	}

	var comments []model.Comment
	for page := 1; page <= constants.MaxPages; page++ {
		var batch []*gh.IssueComment
		var resp *gh.Response
		err := withRetry(ctx, "list comments", func() error {
			got, r, err := c.client.Issues.ListComments(ctx, c.owner, c.repo, number, opts)
			if err != nil {
				return err
			}
			batch, resp = got, r
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list comments for #%d: %w", number, err)
		}

		for _, comment := range batch {
			comments = append(comments, model.Comment{
				ID:        comment.GetID(),
				Body:      comment.GetBody(),
				UserLogin: comment.GetUser().GetLogin(),
				UserType:  comment.GetUser().GetType(),
				CreatedAt: comment.GetCreatedAt().Time,
			})
			if len(comments) >= constants.MaxItems {
				log.Debug("comment scan hit item cap", "issue", number, "cap", constants.MaxItems)
				return comments, nil
			}
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return comments, nil
}

// ListTimelineEvents fetches an issue's timeline, capped at MaxItems/MaxPages.
func (c *Client) ListTimelineEvents(ctx context.Context, number int) ([]model.TimelineEvent, error) {
	opts := &gh.ListOptions{PerPage: constants.PerPage}

	var events []model.TimelineEvent
	for page := 1; page <= constants.MaxPages; page++ {
		var batch []*gh.Timeline
		var resp *gh.Response
		err := withRetry(ctx, "list timeline", func() error {
			got, r, err := c.client.Issues.ListIssueTimeline(ctx, c.owner, c.repo, number, opts)
			if err != nil {
				return err
			}
			batch, resp = got, r
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list timeline for #%d: %w", number, err)
		}

		for _, event := range batch {
			events = append(events, timelineToModel(event))
			if len(events) >= constants.MaxItems {
				log.Debug("timeline scan hit item cap", "issue", number, "cap", constants.MaxItems)
				return events, nil
			}
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return events, nil
}

// timelineToModel converts a GitHub timeline entry to the engine's type.
func timelineToModel(event *gh.Timeline) model.TimelineEvent {
	e := model.TimelineEvent{
		Event:     event.GetEvent(),
		CreatedAt: event.GetCreatedAt().Time,
		Assignee:  event.GetAssignee().GetLogin(),
	}
	if source := event.GetSource(); source != nil && source.GetIssue() != nil {
		issue := source.GetIssue()
		e.SourceIsPR = issue.IsPullRequest()
		e.SourceNumber = issue.GetNumber()
		e.SourceRepo = issue.GetRepository().GetFullName()
	}
	return e
}

// AddAssignees assigns logins to an issue.
func (c *Client) AddAssignees(ctx context.Context, number int, logins []string) error {
	err := withRetry(ctx, "add assignees", func() error {
		_, _, err := c.client.Issues.AddAssignees(ctx, c.owner, c.repo, number, logins)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to add assignees to #%d: %w", number, err)
	}
	return nil
}

// RemoveAssignees removes logins from an issue. Removing an absent assignee
// is a platform no-op, so the call is safe to repeat.
func (c *Client) RemoveAssignees(ctx context.Context, number int, logins []string) error {
	err := withRetry(ctx, "remove assignees", func() error {
		_, _, err := c.client.Issues.RemoveAssignees(ctx, c.owner, c.repo, number, logins)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to remove assignees from #%d: %w", number, err)
	}
	return nil
}

// CreateComment posts a comment on an issue or pull request.
func (c *Client) CreateComment(ctx context.Context, number int, body string) error {
	err := withRetry(ctx, "create comment", func() error {
		_, _, err := c.client.Issues.CreateComment(ctx, c.owner, c.repo, number, &gh.IssueComment{
			Body: gh.String(body),
		})
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to comment on #%d: %w", number, err)
	}
	return nil
}

// CollaboratorPermission returns the repository role for a login.
// A 404 means the login is not a collaborator and maps to RoleNone.
func (c *Client) CollaboratorPermission(ctx context.Context, login string) (model.Role, error) {
	if strings.TrimSpace(login) == "" {
		return model.RoleNone, fmt.Errorf("empty login")
	}

	var level *gh.RepositoryPermissionLevel
	err := withRetry(ctx, "get collaborator permission", func() error {
		got, _, err := c.client.Repositories.GetPermissionLevel(ctx, c.owner, c.repo, login)
		if err != nil {
			return err
		}
		level = got
		return nil
	})
	if err != nil {
		if IsNotFound(err) {
			return model.RoleNone, nil
		}
		return model.RoleNone, fmt.Errorf("failed to get permission for %s: %w", login, err)
	}

	// role_name carries triage/maintain; permission collapses them.
	if role := level.GetUser().GetRoleName(); role != "" {
		return model.ParseRole(role), nil
	}
	return model.ParseRole(level.GetPermission()), nil
}
