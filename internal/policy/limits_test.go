package policy

import (
	"context"
	"errors"
	"testing"

	"github.com/spiffcs/shepherd/config"
	"github.com/spiffcs/shepherd/internal/model"
)

func TestCheckLimitsDenylistTier(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Denylist = []string{"spammer"}

	limiter := NewLimiter(cfg, &fakeCounter{})

	// Denied on any non-good-first-issue tier, even with zero open issues.
	result := limiter.CheckLimits(context.Background(), "spammer", model.RoleNone, model.TierBeginner)
	if result.OK {
		t.Fatal("denylisted account on beginner tier should be a violation")
	}
	if result.Violation != ViolationDenylistTier {
		t.Errorf("violation = %q, want %q", result.Violation, ViolationDenylistTier)
	}
}

func TestCheckLimitsDenylistGoodFirstIssue(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Denylist = []string{"spammer"}

	tests := []struct {
		name string
		open int
		ok   bool
	}{
		{"first assignment allowed", 1, true},
		{"second assignment blocked", 2, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			limiter := NewLimiter(cfg, &fakeCounter{openCount: tt.open})
			result := limiter.CheckLimits(context.Background(), "spammer", model.RoleNone, model.TierGoodFirstIssue)
			if result.OK != tt.ok {
				t.Errorf("OK = %v, want %v", result.OK, tt.ok)
			}
		})
	}
}

func TestCheckLimitsOpenAssignmentCap(t *testing.T) {
	cfg := config.DefaultConfig() // max 2

	tests := []struct {
		name string
		open int
		ok   bool
	}{
		{"under the cap", 1, true},
		{"at the cap", 2, true},
		{"over the cap", 3, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			limiter := NewLimiter(cfg, &fakeCounter{openCount: tt.open})
			result := limiter.CheckLimits(context.Background(), "user", model.RoleNone, model.TierBeginner)
			if result.OK != tt.ok {
				t.Errorf("OK = %v, want %v (open=%d)", result.OK, tt.ok, tt.open)
			}
			if !tt.ok && result.Violation != ViolationLimitExceeded {
				t.Errorf("violation = %q, want %q", result.Violation, ViolationLimitExceeded)
			}
		})
	}
}

func TestCheckLimitsExemptRole(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Denylist = []string{"maintainer"}
	counter := &fakeCounter{openCount: 50}
	limiter := NewLimiter(cfg, counter)

	result := limiter.CheckLimits(context.Background(), "maintainer", model.RoleAdmin, model.TierAdvanced)
	if !result.OK {
		t.Error("exempt role should never be limited")
	}
	if counter.openCalls != 0 {
		t.Errorf("expected no count queries for exempt roles, got %d", counter.openCalls)
	}
}

func TestCheckLimitsFailsOpen(t *testing.T) {
	cfg := config.DefaultConfig()
	limiter := NewLimiter(cfg, &fakeCounter{err: errors.New("api down")})

	result := limiter.CheckLimits(context.Background(), "user", model.RoleNone, model.TierBeginner)
	if !result.OK {
		t.Error("platform failure should fail open")
	}
}
