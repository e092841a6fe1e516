package policy

import (
	"context"

	"github.com/spiffcs/shepherd/config"
	"github.com/spiffcs/shepherd/internal/log"
	"github.com/spiffcs/shepherd/internal/model"
)

// Violation identifies which spam limit was breached.
type Violation string

const (
	ViolationNone Violation = ""

	// ViolationDenylistTier: a denylisted account asked for an issue
	// outside the good-first-issue tier.
	ViolationDenylistTier Violation = "denylist_tier"

	// ViolationLimitExceeded: too many concurrent open assignments.
	ViolationLimitExceeded Violation = "limit_exceeded"
)

// LimitResult is the outcome of a spam limit check.
type LimitResult struct {
	OK        bool
	Violation Violation
	Have      int
	Max       int
}

// Limiter enforces the auxiliary spam constraints feeding the guard.
type Limiter struct {
	cfg     *config.Config
	counter Counter
}

// NewLimiter creates a spam limiter.
func NewLimiter(cfg *config.Config, counter Counter) *Limiter {
	return &Limiter{cfg: cfg, counter: counter}
}

// CheckLimits validates a contributor's open-assignment footprint at
// assignment time. The open count includes the issue under guard, so a
// contributor is in violation when the count exceeds their cap.
//
// Exempt roles are never limited. A failed platform query fails open.
func (l *Limiter) CheckLimits(ctx context.Context, login string, role model.Role, tier model.Tier) LimitResult {
	if l.cfg.IsExemptRole(role) {
		return LimitResult{OK: true}
	}

	denylisted := l.cfg.IsDenylisted(login)
	if denylisted && tier != model.TierGoodFirstIssue {
		return LimitResult{
			OK:        false,
			Violation: ViolationDenylistTier,
			Max:       config.DenylistMaxOpenAssignments,
		}
	}

	maxOpen := l.cfg.MaxOpenAssignments
	if denylisted {
		maxOpen = config.DenylistMaxOpenAssignments
	}

	have, err := l.counter.CountOpenAssignedIssues(ctx, login)
	if err != nil {
		log.Warn("open-assignment query failed, skipping limit enforcement",
			"login", login, "error", err)
		return LimitResult{OK: true}
	}

	if have > maxOpen {
		return LimitResult{
			OK:        false,
			Violation: ViolationLimitExceeded,
			Have:      have,
			Max:       maxOpen,
		}
	}
	return LimitResult{OK: true, Have: have, Max: maxOpen}
}
