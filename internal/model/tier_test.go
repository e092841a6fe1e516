package model

import "testing"

func TestParseTier(t *testing.T) {
	tests := []struct {
		in   string
		want Tier
		ok   bool
	}{
		{"beginner", TierBeginner, true},
		{"Beginner", TierBeginner, true},
		{"good-first-issue", TierGoodFirstIssue, true},
		{"good first issue", TierGoodFirstIssue, true},
		{"Good First Issue", TierGoodFirstIssue, true},
		{"ADVANCED", TierAdvanced, true},
		{"intermediate", TierIntermediate, true},
		{"bug", TierNone, false},
		{"", TierNone, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseTier(tt.in)
			if got != tt.want || ok != tt.ok {
				t.Errorf("ParseTier(%q) = (%q, %v), want (%q, %v)", tt.in, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestParseRole(t *testing.T) {
	tests := []struct {
		in   string
		want Role
	}{
		{"admin", RoleAdmin},
		{"maintain", RoleMaintain},
		{"write", RoleWrite},
		{"triage", RoleTriage},
		{"read", RoleNone},
		{"none", RoleNone},
		{"", RoleNone},
		{"nonsense", RoleNone},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseRole(tt.in); got != tt.want {
				t.Errorf("ParseRole(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestHasAssignee(t *testing.T) {
	issue := &Issue{Assignees: []string{"alice", "bob"}}

	if !issue.HasAssignee("alice") {
		t.Error("expected alice to be an assignee")
	}
	if issue.HasAssignee("carol") {
		t.Error("carol should not be an assignee")
	}
}
