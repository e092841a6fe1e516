// Package policy holds the pure decision logic of the engine: tier
// eligibility and spam limits. Both consult the platform only through small
// interfaces so they can be exercised with fakes.
package policy

import (
	"context"

	"github.com/spiffcs/shepherd/config"
	"github.com/spiffcs/shepherd/internal/log"
	"github.com/spiffcs/shepherd/internal/model"
)

// Counter supplies the derived contributor counters. Implemented by
// ghclient.Client; counts are queried fresh for every evaluation.
type Counter interface {
	CountClosedAssignedIssues(ctx context.Context, login, label string) (int, error)
	CountOpenAssignedIssues(ctx context.Context, login string) (int, error)
}

// Outcome is the three-valued result of an eligibility evaluation.
type Outcome string

const (
	Allowed Outcome = "allowed"

	Denied Outcome = "denied"

	// Unknown means the platform query failed and no determination could
	// be made. Callers must skip enforcement for this cycle; wrongly
	// blocking a legitimate contributor is worse than a missed cycle.
	Unknown Outcome = "unknown"
)

// Result carries the evaluation outcome together with the counts that
// produced it, for use in user-facing messages.
type Result struct {
	Outcome      Outcome
	RequiredTier model.Tier
	Have         int
	Need         int
}

// Evaluator applies the tier prerequisite table to a contributor.
type Evaluator struct {
	cfg     *config.Config
	counter Counter
}

// NewEvaluator creates an eligibility evaluator.
func NewEvaluator(cfg *config.Config, counter Counter) *Evaluator {
	return &Evaluator{cfg: cfg, counter: counter}
}

// Evaluate decides whether a contributor may hold an issue of the given
// tier. Exempt roles are allowed without any counting, avoiding the API
// calls entirely.
func (e *Evaluator) Evaluate(ctx context.Context, login string, role model.Role, tier model.Tier) Result {
	if e.cfg.IsExemptRole(role) {
		return Result{Outcome: Allowed}
	}

	prereqTier, need, ok := e.cfg.Prereq(tier)
	if !ok {
		// No prerequisite for this tier (good-first-issue).
		return Result{Outcome: Allowed}
	}

	label := e.cfg.Label(prereqTier)
	have, err := e.counter.CountClosedAssignedIssues(ctx, login, label)
	if err != nil {
		log.Warn("eligibility query failed, skipping enforcement",
			"login", login, "tier", tier, "error", err)
		return Result{Outcome: Unknown, RequiredTier: prereqTier, Need: need}
	}

	result := Result{RequiredTier: prereqTier, Have: have, Need: need}
	if have >= need {
		result.Outcome = Allowed
	} else {
		result.Outcome = Denied
	}
	return result
}
