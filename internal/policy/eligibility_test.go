package policy

import (
	"context"
	"errors"
	"testing"

	"github.com/spiffcs/shepherd/config"
	"github.com/spiffcs/shepherd/internal/model"
)

// fakeCounter implements Counter with canned answers per (login, label).
type fakeCounter struct {
	closedByLabel map[string]int // label -> count
	openCount     int
	err           error
	closedCalls   int
	openCalls     int
}

func (f *fakeCounter) CountClosedAssignedIssues(_ context.Context, _, label string) (int, error) {
	f.closedCalls++
	if f.err != nil {
		return 0, f.err
	}
	return f.closedByLabel[label], nil
}

func (f *fakeCounter) CountOpenAssignedIssues(_ context.Context, _ string) (int, error) {
	f.openCalls++
	if f.err != nil {
		return 0, f.err
	}
	return f.openCount, nil
}

func TestEvaluateExemptRoles(t *testing.T) {
	cfg := config.DefaultConfig()
	counter := &fakeCounter{}
	eval := NewEvaluator(cfg, counter)

	for _, role := range []model.Role{model.RoleAdmin, model.RoleMaintain, model.RoleWrite, model.RoleTriage} {
		t.Run(string(role), func(t *testing.T) {
			result := eval.Evaluate(context.Background(), "maintainer", role, model.TierAdvanced)
			if result.Outcome != Allowed {
				t.Errorf("exempt role %q should be allowed, got %q", role, result.Outcome)
			}
		})
	}

	// Exemption must short-circuit before any counting happens.
	if counter.closedCalls != 0 {
		t.Errorf("expected no count queries for exempt roles, got %d", counter.closedCalls)
	}
}

func TestEvaluatePrerequisites(t *testing.T) {
	cfg := config.DefaultConfig()

	tests := []struct {
		name     string
		tier     model.Tier
		closed   map[string]int
		want     Outcome
		wantTier model.Tier
		wantHave int
	}{
		{
			name:     "no beginner history blocks intermediate",
			tier:     model.TierIntermediate,
			closed:   map[string]int{},
			want:     Denied,
			wantTier: model.TierBeginner,
			wantHave: 0,
		},
		{
			name:     "one beginner issue unlocks intermediate",
			tier:     model.TierIntermediate,
			closed:   map[string]int{"beginner": 1},
			want:     Allowed,
			wantTier: model.TierBeginner,
			wantHave: 1,
		},
		{
			name:     "surplus history allowed",
			tier:     model.TierAdvanced,
			closed:   map[string]int{"intermediate": 5},
			want:     Allowed,
			wantTier: model.TierIntermediate,
			wantHave: 5,
		},
		{
			name:   "good-first-issue has no prerequisite",
			tier:   model.TierGoodFirstIssue,
			closed: map[string]int{},
			want:   Allowed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			counter := &fakeCounter{closedByLabel: tt.closed}
			eval := NewEvaluator(cfg, counter)

			result := eval.Evaluate(context.Background(), "newbie", model.RoleNone, tt.tier)
			if result.Outcome != tt.want {
				t.Fatalf("outcome = %q, want %q", result.Outcome, tt.want)
			}
			if result.RequiredTier != tt.wantTier {
				t.Errorf("required tier = %q, want %q", result.RequiredTier, tt.wantTier)
			}
			if result.Have != tt.wantHave {
				t.Errorf("have = %d, want %d", result.Have, tt.wantHave)
			}
		})
	}
}

func TestEvaluateHaveNeedEquivalence(t *testing.T) {
	// allowed=true exactly when haveCount >= need.
	cfg := config.DefaultConfig()
	cfg.Prerequisites[string(model.TierAdvanced)] = config.Prerequisite{
		Tier: string(model.TierIntermediate),
		Need: 3,
	}

	for have := 0; have <= 5; have++ {
		counter := &fakeCounter{closedByLabel: map[string]int{"intermediate": have}}
		eval := NewEvaluator(cfg, counter)

		result := eval.Evaluate(context.Background(), "user", model.RoleNone, model.TierAdvanced)
		wantAllowed := have >= 3
		if (result.Outcome == Allowed) != wantAllowed {
			t.Errorf("have=%d: outcome = %q, want allowed=%v", have, result.Outcome, wantAllowed)
		}
	}
}

func TestEvaluateFailsOpen(t *testing.T) {
	cfg := config.DefaultConfig()
	counter := &fakeCounter{err: errors.New("api down")}
	eval := NewEvaluator(cfg, counter)

	result := eval.Evaluate(context.Background(), "user", model.RoleNone, model.TierIntermediate)
	if result.Outcome != Unknown {
		t.Errorf("platform failure should yield Unknown, got %q", result.Outcome)
	}
}
