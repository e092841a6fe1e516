package guard

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/spiffcs/shepherd/config"
	"github.com/spiffcs/shepherd/internal/model"
	"github.com/spiffcs/shepherd/internal/policy"
)

// fakePlatform implements Platform backed by in-memory state.
type fakePlatform struct {
	issue    *model.Issue
	comments []model.Comment
	role     model.Role
	roleErr  error

	commentErr error

	removeCalls  int
	commentCalls int

	// counters for the policy fakes
	closedByLabel map[string]int
	openCount     int
	countErr      error
}

func (f *fakePlatform) GetIssue(_ context.Context, _ int) (*model.Issue, error) {
	return f.issue, nil
}

func (f *fakePlatform) ListComments(_ context.Context, _ int) ([]model.Comment, error) {
	return f.comments, nil
}

func (f *fakePlatform) RemoveAssignees(_ context.Context, _ int, logins []string) error {
	f.removeCalls++
	var remaining []string
	for _, a := range f.issue.Assignees {
		removed := false
		for _, l := range logins {
			if a == l {
				removed = true
			}
		}
		if !removed {
			remaining = append(remaining, a)
		}
	}
	f.issue.Assignees = remaining
	return nil
}

func (f *fakePlatform) CreateComment(_ context.Context, _ int, body string) error {
	if f.commentErr != nil {
		return f.commentErr
	}
	f.commentCalls++
	f.comments = append(f.comments, model.Comment{Body: body, UserType: "Bot"})
	return nil
}

func (f *fakePlatform) CollaboratorPermission(_ context.Context, _ string) (model.Role, error) {
	return f.role, f.roleErr
}

func (f *fakePlatform) CountClosedAssignedIssues(_ context.Context, _, label string) (int, error) {
	if f.countErr != nil {
		return 0, f.countErr
	}
	return f.closedByLabel[label], nil
}

func (f *fakePlatform) CountOpenAssignedIssues(_ context.Context, _ string) (int, error) {
	if f.countErr != nil {
		return 0, f.countErr
	}
	return f.openCount, nil
}

func newTestGuard(cfg *config.Config, platform *fakePlatform) *Guard {
	return New(cfg, platform,
		policy.NewEvaluator(cfg, platform),
		policy.NewLimiter(cfg, platform))
}

func intermediateIssue(assignees ...string) *model.Issue {
	return &model.Issue{
		Number:    42,
		Title:     "Implement the frobnicator",
		State:     "open",
		Labels:    []string{"intermediate"},
		Assignees: assignees,
	}
}

func TestGuardDeniesMissingPrerequisite(t *testing.T) {
	// A contributor with no role and zero closed beginner issues attempts
	// an intermediate issue.
	cfg := config.DefaultConfig()
	platform := &fakePlatform{
		issue:         intermediateIssue("newbie"),
		role:          model.RoleNone,
		closedByLabel: map[string]int{},
	}
	g := newTestGuard(cfg, platform)

	action, err := g.Guard(context.Background(), 42, "newbie")
	if err != nil {
		t.Fatalf("Guard() error: %v", err)
	}

	if action.Kind != model.ActionDeny || action.Reason != model.DenyMissingPrerequisite {
		t.Fatalf("action = %+v, want deny/missing_prerequisite", action)
	}
	if action.RequiredTier != model.TierBeginner || action.Have != 0 {
		t.Errorf("deny payload = required %q have %d, want beginner/0", action.RequiredTier, action.Have)
	}

	if platform.removeCalls != 1 {
		t.Errorf("expected 1 unassignment, got %d", platform.removeCalls)
	}
	if platform.commentCalls != 1 {
		t.Fatalf("expected 1 rejection comment, got %d", platform.commentCalls)
	}
	body := platform.comments[len(platform.comments)-1].Body
	if !strings.Contains(body, "beginner") {
		t.Errorf("rejection comment should name the missing tier, got %q", body)
	}
	if !strings.Contains(body, "@newbie") {
		t.Errorf("rejection comment should mention the contributor, got %q", body)
	}
}

func TestGuardIdempotent(t *testing.T) {
	// Running the guard twice on the same denial scenario posts exactly
	// one rejection comment; the second run finds the marker.
	cfg := config.DefaultConfig()
	platform := &fakePlatform{
		issue:         intermediateIssue("newbie"),
		role:          model.RoleNone,
		closedByLabel: map[string]int{},
	}
	g := newTestGuard(cfg, platform)

	for i := 0; i < 2; i++ {
		platform.issue.Assignees = []string{"newbie"} // re-assigned between runs
		if _, err := g.Guard(context.Background(), 42, "newbie"); err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
	}

	if platform.commentCalls != 1 {
		t.Errorf("expected exactly 1 rejection comment across 2 runs, got %d", platform.commentCalls)
	}
}

func TestGuardNoTierLabel(t *testing.T) {
	cfg := config.DefaultConfig()
	platform := &fakePlatform{
		issue: &model.Issue{Number: 7, State: "open", Labels: []string{"bug"}, Assignees: []string{"anyone"}},
		role:  model.RoleNone,
	}
	g := newTestGuard(cfg, platform)

	action, err := g.Guard(context.Background(), 7, "anyone")
	if err != nil {
		t.Fatalf("Guard() error: %v", err)
	}
	if action.Kind != model.ActionNoOp {
		t.Errorf("untier-labeled issue should be a no-op, got %+v", action)
	}
	if platform.removeCalls != 0 || platform.commentCalls != 0 {
		t.Error("no-op must not mutate")
	}
}

func TestGuardExemptRole(t *testing.T) {
	cfg := config.DefaultConfig()
	platform := &fakePlatform{
		issue: intermediateIssue("maintainer"),
		role:  model.RoleMaintain,
	}
	g := newTestGuard(cfg, platform)

	action, err := g.Guard(context.Background(), 42, "maintainer")
	if err != nil {
		t.Fatalf("Guard() error: %v", err)
	}
	if action.Kind != model.ActionNoOp {
		t.Errorf("exempt role should be a no-op, got %+v", action)
	}
}

func TestGuardFailsOpenOnUnknown(t *testing.T) {
	cfg := config.DefaultConfig()
	platform := &fakePlatform{
		issue:    intermediateIssue("newbie"),
		role:     model.RoleNone,
		countErr: errors.New("api down"),
	}
	g := newTestGuard(cfg, platform)

	action, err := g.Guard(context.Background(), 42, "newbie")
	if err != nil {
		t.Fatalf("Guard() error: %v", err)
	}
	if action.Kind != model.ActionNoOp {
		t.Errorf("indeterminate eligibility must not deny, got %+v", action)
	}
	if platform.removeCalls != 0 {
		t.Error("fail-open must not unassign")
	}
}

func TestGuardDenylistedAccount(t *testing.T) {
	// Denylisted account on a non-good-first-issue tier is denied with the
	// denylist message even when tier prerequisites are satisfied.
	cfg := config.DefaultConfig()
	cfg.Denylist = []string{"flagged"}
	platform := &fakePlatform{
		issue:         intermediateIssue("flagged"),
		role:          model.RoleNone,
		closedByLabel: map[string]int{"beginner": 10},
	}
	g := newTestGuard(cfg, platform)

	action, err := g.Guard(context.Background(), 42, "flagged")
	if err != nil {
		t.Fatalf("Guard() error: %v", err)
	}
	if action.Kind != model.ActionDeny || action.Reason != model.DenyDenylistTier {
		t.Fatalf("action = %+v, want deny/denylist_tier", action)
	}
	body := platform.comments[len(platform.comments)-1].Body
	if !strings.Contains(body, "good first issue") {
		t.Errorf("denylist message should point at good first issues, got %q", body)
	}
}

func TestGuardUnassignsEvenWhenCommentFails(t *testing.T) {
	// Removal is the higher-priority safety action; a comment failure must
	// not roll it back.
	cfg := config.DefaultConfig()
	platform := &fakePlatform{
		issue:         intermediateIssue("newbie"),
		role:          model.RoleNone,
		closedByLabel: map[string]int{},
		commentErr:    errors.New("503"),
	}
	g := newTestGuard(cfg, platform)

	if _, err := g.Guard(context.Background(), 42, "newbie"); err != nil {
		t.Fatalf("Guard() error: %v", err)
	}
	if platform.removeCalls != 1 {
		t.Errorf("expected unassignment despite comment failure, got %d calls", platform.removeCalls)
	}
	if platform.issue.HasAssignee("newbie") {
		t.Error("assignee should have been removed")
	}
}

func TestGuardDryRun(t *testing.T) {
	cfg := config.DefaultConfig()
	platform := &fakePlatform{
		issue:         intermediateIssue("newbie"),
		role:          model.RoleNone,
		closedByLabel: map[string]int{},
	}
	g := newTestGuard(cfg, platform)
	g.DryRun = true

	action, err := g.Guard(context.Background(), 42, "newbie")
	if err != nil {
		t.Fatalf("Guard() error: %v", err)
	}
	if action.Kind != model.ActionDeny {
		t.Fatalf("dry-run should still report the decision, got %+v", action)
	}
	if platform.removeCalls != 0 || platform.commentCalls != 0 {
		t.Error("dry-run must not mutate")
	}
}
