// Package guard enforces assignment eligibility at assignment time.
package guard

import (
	"context"
	"fmt"

	"github.com/spiffcs/shepherd/config"
	"github.com/spiffcs/shepherd/internal/log"
	"github.com/spiffcs/shepherd/internal/marker"
	"github.com/spiffcs/shepherd/internal/model"
	"github.com/spiffcs/shepherd/internal/policy"
)

// Platform is the subset of the client facade the guard needs.
type Platform interface {
	GetIssue(ctx context.Context, number int) (*model.Issue, error)
	ListComments(ctx context.Context, number int) ([]model.Comment, error)
	RemoveAssignees(ctx context.Context, number int, logins []string) error
	CreateComment(ctx context.Context, number int, body string) error
	CollaboratorPermission(ctx context.Context, login string) (model.Role, error)
}

// Guard orchestrates eligibility and spam checks for one assignment event.
type Guard struct {
	cfg      *config.Config
	platform Platform
	eval     *policy.Evaluator
	limiter  *policy.Limiter

	// DryRun logs the actions that would be taken without mutating.
	DryRun bool
}

// New creates an assignment guard.
func New(cfg *config.Config, platform Platform, eval *policy.Evaluator, limiter *policy.Limiter) *Guard {
	return &Guard{
		cfg:      cfg,
		platform: platform,
		eval:     eval,
		limiter:  limiter,
	}
}

// Check evaluates an assignment without side effects and returns the action
// that would be taken.
func (g *Guard) Check(ctx context.Context, issueNumber int, assignee string) (model.Action, error) {
	issue, err := g.platform.GetIssue(ctx, issueNumber)
	if err != nil {
		return model.NoOp, err
	}
	return g.decide(ctx, issue, assignee)
}

// Guard evaluates an assignment and executes the denial consequence when
// warranted. The returned action reports what was decided.
func (g *Guard) Guard(ctx context.Context, issueNumber int, assignee string) (model.Action, error) {
	issue, err := g.platform.GetIssue(ctx, issueNumber)
	if err != nil {
		return model.NoOp, err
	}

	action, err := g.decide(ctx, issue, assignee)
	if err != nil || action.Kind != model.ActionDeny {
		return action, err
	}

	if g.DryRun {
		log.Info("dry-run: would deny assignment",
			"issue", issueNumber, "assignee", assignee, "reason", action.Reason)
		return action, nil
	}

	g.executeDeny(ctx, issue, assignee, action)
	return action, nil
}

// decide runs the policy pipeline and maps the result to an action.
func (g *Guard) decide(ctx context.Context, issue *model.Issue, assignee string) (model.Action, error) {
	tier := g.cfg.ResolveTier(issue.Labels)
	if tier == model.TierNone {
		log.Debug("issue carries no tier label", "issue", issue.Number)
		return model.NoOp, nil
	}

	role, err := g.platform.CollaboratorPermission(ctx, assignee)
	if err != nil {
		// Indeterminate role: skip enforcement rather than risk blocking
		// a collaborator whose lookup failed.
		log.Warn("role lookup failed, skipping guard",
			"issue", issue.Number, "assignee", assignee, "error", err)
		return model.NoOp, nil
	}
	if g.cfg.IsExemptRole(role) {
		log.Debug("assignee role is exempt", "assignee", assignee, "role", role)
		return model.NoOp, nil
	}

	if limits := g.limiter.CheckLimits(ctx, assignee, role, tier); !limits.OK {
		reason := model.DenyLimitExceeded
		if limits.Violation == policy.ViolationDenylistTier {
			reason = model.DenyDenylistTier
		}
		return model.Deny(reason, tier, limits.Have, limits.Max), nil
	}

	result := g.eval.Evaluate(ctx, assignee, role, tier)
	switch result.Outcome {
	case policy.Allowed:
		return model.NoOp, nil
	case policy.Unknown:
		log.Info("eligibility unknown, skipping enforcement",
			"issue", issue.Number, "assignee", assignee)
		return model.NoOp, nil
	default:
		return model.Deny(model.DenyMissingPrerequisite, result.RequiredTier, result.Have, result.Need), nil
	}
}

// executeDeny removes the assignee and posts one marker-deduplicated
// rejection comment. Unassignment is the higher-priority safety action: it
// always runs first, and a comment failure never rolls it back.
func (g *Guard) executeDeny(ctx context.Context, issue *model.Issue, assignee string, action model.Action) {
	if err := g.platform.RemoveAssignees(ctx, issue.Number, []string{assignee}); err != nil {
		// Best effort: the contributor may have unassigned themselves
		// while we were evaluating.
		log.Warn("failed to remove assignee",
			"issue", issue.Number, "assignee", assignee, "error", err)
	}

	markerAction := marker.ActionGuardDeny
	if action.Reason != model.DenyMissingPrerequisite {
		markerAction = marker.ActionLimitDeny
	}

	// Re-check the ledger immediately before posting, not from state read
	// at invocation start: overlapping deliveries of the same event must
	// still produce exactly one comment.
	comments, err := g.platform.ListComments(ctx, issue.Number)
	if err != nil {
		log.Warn("failed to list comments, skipping rejection comment",
			"issue", issue.Number, "error", err)
		return
	}
	if marker.Seen(comments, g.cfg.BotName, markerAction, assignee) {
		log.Info("rejection already posted", "issue", issue.Number, "assignee", assignee)
		return
	}

	body := denyMessage(g.cfg, assignee, action)
	body = marker.Append(body, marker.For(g.cfg.BotName, markerAction, assignee))
	if err := g.platform.CreateComment(ctx, issue.Number, body); err != nil {
		log.Warn("failed to post rejection comment",
			"issue", issue.Number, "assignee", assignee, "error", err)
		return
	}
	log.Info("denied assignment",
		"issue", issue.Number, "assignee", assignee, "reason", action.Reason)
}

// denyMessage renders the user-facing rejection for a denial. Each message
// names the missing requirement and the contributor's current count.
func denyMessage(cfg *config.Config, assignee string, action model.Action) string {
	switch action.Reason {
	case model.DenyDenylistTier:
		return fmt.Sprintf(
			"Hi @%s! Your account is currently limited to issues labeled `%s`. "+
				"Please pick up a %s issue instead, we'd love your help there.",
			assignee, cfg.Label(model.TierGoodFirstIssue), cfg.Label(model.TierGoodFirstIssue))
	case model.DenyLimitExceeded:
		return fmt.Sprintf(
			"Hi @%s! You currently have %d open assigned issues, and the limit is %d. "+
				"Please finish or release one of your current issues before picking up another.",
			assignee, action.Have, action.Need)
	default:
		return fmt.Sprintf(
			"Hi @%s! This issue requires at least %d completed `%s` issue(s) before it can be assigned to you. "+
				"You currently have %d. Completing a `%s` issue first will unlock this tier.",
			assignee, action.Need, cfg.Label(action.RequiredTier), action.Have, cfg.Label(action.RequiredTier))
	}
}
