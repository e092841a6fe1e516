package stale

import (
	"context"
	"fmt"

	"github.com/spiffcs/shepherd/config"
	"github.com/spiffcs/shepherd/internal/log"
	"github.com/spiffcs/shepherd/internal/marker"
	"github.com/spiffcs/shepherd/internal/model"
)

// ActuatorPlatform is the subset of the client facade the actuator needs.
type ActuatorPlatform interface {
	ListComments(ctx context.Context, number int) ([]model.Comment, error)
	CreateComment(ctx context.Context, number int, body string) error
	RemoveAssignees(ctx context.Context, number int, logins []string) error
	ClosePullRequest(ctx context.Context, number int) error
}

// Actuator executes the consequence of a staleness classification. Every
// mutating step is guarded by the marker ledger, checked immediately before
// acting, so overlapping invocations take at most one action per episode.
type Actuator struct {
	cfg      *config.Config
	platform ActuatorPlatform

	// DryRun logs the actions that would be taken without mutating.
	DryRun bool
}

// NewActuator creates a reclamation actuator.
func NewActuator(cfg *config.Config, platform ActuatorPlatform) *Actuator {
	return &Actuator{cfg: cfg, platform: platform}
}

// Reclaim executes the consequence of cls. It reports whether any action
// was taken. Failures are logged, not propagated: one entity never aborts
// the rest of a sweep.
func (a *Actuator) Reclaim(ctx context.Context, cls Classification) bool {
	switch cls.State {
	case ReminderDue:
		return a.remind(ctx, cls)
	case StaleNoPR:
		return a.reclaimNoPR(ctx, cls)
	case StalePRInactive:
		return a.reclaimInactivePR(ctx, cls)
	default:
		return false
	}
}

// remind posts one nudge comment on the issue.
func (a *Actuator) remind(ctx context.Context, cls Classification) bool {
	body := fmt.Sprintf(
		"Hi @%s! This issue was assigned to you %d days ago and there is no linked pull request yet. "+
			"Are you still working on it? If you no longer have time, please unassign yourself so someone else can pick it up. "+
			"Without activity, the assignment will be released after %d days.",
		cls.Login, cls.AgeDays, a.cfg.ReclaimDays)
	return a.commentOnce(ctx, cls.Issue.Number, marker.ActionReminder, cls.Login, body)
}

// reclaimNoPR posts the reclamation comment and removes the assignee.
func (a *Actuator) reclaimNoPR(ctx context.Context, cls Classification) bool {
	body := fmt.Sprintf(
		"Hi @%s! This issue was assigned to you %d days ago with no linked pull request, "+
			"so the assignment is being released to give others a chance to contribute. "+
			"Feel free to pick it up again when you have time.",
		cls.Login, cls.AgeDays)
	if !a.commentOnce(ctx, cls.Issue.Number, marker.ActionReclaim, cls.Login, body) {
		return false
	}
	a.unassign(ctx, cls.Issue.Number, cls.Login)
	return true
}

// reclaimInactivePR comments on the stale PR, closes it, and removes the
// assignee from the issue.
func (a *Actuator) reclaimInactivePR(ctx context.Context, cls Classification) bool {
	body := fmt.Sprintf(
		"Hi @%s! This pull request has had no new commits for %d days or more, "+
			"so it is being closed and issue #%d is being released. "+
			"You are welcome to reopen the work when you can return to it.",
		cls.Login, a.cfg.ReclaimDays, cls.Issue.Number)
	if !a.commentOnce(ctx, cls.PR.Number, marker.ActionPRInactive, cls.Login, body) {
		return false
	}

	if a.DryRun {
		return true
	}
	if err := a.platform.ClosePullRequest(ctx, cls.PR.Number); err != nil {
		log.Warn("failed to close stale PR", "pr", cls.PR.Number, "error", err)
	}
	a.unassign(ctx, cls.Issue.Number, cls.Login)
	return true
}

// commentOnce posts body on the entity if and only if the marker ledger has
// no record for (action, login) there. Returns true when this invocation
// owns the episode (marker was absent).
func (a *Actuator) commentOnce(ctx context.Context, number int, action, login, body string) bool {
	comments, err := a.platform.ListComments(ctx, number)
	if err != nil {
		log.Warn("failed to list comments, skipping action",
			"number", number, "action", action, "error", err)
		return false
	}
	if marker.Seen(comments, a.cfg.BotName, action, login) {
		log.Debug("action already recorded", "number", number, "action", action, "login", login)
		return false
	}

	if a.DryRun {
		log.Info("dry-run: would comment", "number", number, "action", action, "login", login)
		return true
	}

	body = marker.Append(body, marker.For(a.cfg.BotName, action, login))
	if err := a.platform.CreateComment(ctx, number, body); err != nil {
		log.Warn("failed to post comment",
			"number", number, "action", action, "error", err)
		return false
	}
	log.Info("posted comment", "number", number, "action", action, "login", login)
	return true
}

// unassign removes login from the issue, tolerating concurrent human
// unassignment.
func (a *Actuator) unassign(ctx context.Context, number int, login string) {
	if a.DryRun {
		log.Info("dry-run: would unassign", "issue", number, "assignee", login)
		return
	}
	if err := a.platform.RemoveAssignees(ctx, number, []string{login}); err != nil {
		log.Warn("failed to remove assignee", "issue", number, "assignee", login, "error", err)
		return
	}
	log.Info("removed assignee", "issue", number, "assignee", login)
}

// ReclaimKind maps a staleness state to the reclaim kind it triggers, or ""
// for states with no consequence.
func (c Classification) ReclaimKind() model.ReclaimKind {
	switch c.State {
	case ReminderDue:
		return model.ReclaimReminder
	case StaleNoPR:
		return model.ReclaimNoPR
	case StalePRInactive:
		return model.ReclaimInactivePR
	default:
		return ""
	}
}
