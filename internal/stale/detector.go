// Package stale classifies assignments by age and linked PR activity, and
// executes the reclamation consequences of a stale classification.
package stale

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spiffcs/shepherd/config"
	"github.com/spiffcs/shepherd/internal/log"
	"github.com/spiffcs/shepherd/internal/model"
)

// ErrNoAssignmentEvent marks an assignment whose "assigned" timeline event
// could not be found. It is a terminal skip, never acted upon: falling back
// to issue-creation time would misclassify long-lived issues as instantly
// stale.
var ErrNoAssignmentEvent = errors.New("no assignment event found")

// Platform is the subset of the client facade the detector needs.
type Platform interface {
	ListTimelineEvents(ctx context.Context, number int) ([]model.TimelineEvent, error)
	GetPullRequest(ctx context.Context, number int) (*model.PullRequest, error)
	LatestCommitTime(ctx context.Context, prNumber int) (time.Time, error)
	RepoFullName() string
}

// State classifies one (issue, assignee) pair.
type State string

const (
	// Fresh: the assignment is younger than the reminder threshold.
	Fresh State = "fresh"

	// NoAssignmentEvent: terminal skip, logged and never acted upon.
	NoAssignmentEvent State = "no_assignment_event"

	// ReminderDue: past the reminder threshold with no linked PR, not yet
	// past the reclaim threshold.
	ReminderDue State = "reminder_due"

	// StaleNoPR: past the reclaim threshold with no linked PR.
	StaleNoPR State = "stale_no_pr"

	// StalePRInactive: an open linked PR exists but its latest commit is
	// past the reclaim threshold.
	StalePRInactive State = "stale_pr_inactive"

	// ActivePR: an open linked PR has recent commits. Overrides issue
	// assignment age entirely.
	ActivePR State = "active_pr"
)

// Classification is the detector's verdict for one (issue, assignee) pair.
type Classification struct {
	Issue      *model.Issue
	Login      string
	State      State
	AssignedAt time.Time
	AgeDays    int
	PR         *model.LinkedPullRequest
}

// Detector computes staleness classifications.
type Detector struct {
	cfg      *config.Config
	platform Platform
}

// NewDetector creates a staleness detector.
func NewDetector(cfg *config.Config, platform Platform) *Detector {
	return &Detector{cfg: cfg, platform: platform}
}

// Classify determines the staleness state of one assignment at time now.
func (d *Detector) Classify(ctx context.Context, issue *model.Issue, login string, now time.Time) (Classification, error) {
	cls := Classification{Issue: issue, Login: login}

	events, err := d.platform.ListTimelineEvents(ctx, issue.Number)
	if err != nil {
		return cls, err
	}

	assignedAt, ok := lastAssignedAt(events, login)
	if !ok {
		log.Info("no assignment event, skipping",
			"issue", issue.Number, "assignee", login)
		cls.State = NoAssignmentEvent
		return cls, nil
	}
	cls.AssignedAt = assignedAt
	cls.AgeDays = daysBetween(assignedAt, now)

	pr, err := d.linkedOpenPR(ctx, events, login)
	if err != nil {
		// A failed PR lookup could hide countervailing activity; skip the
		// entity rather than risk a false reclamation.
		return cls, err
	}

	if pr != nil {
		cls.PR = pr
		if daysBetween(pr.LastCommitAt, now) >= d.cfg.ReclaimDays {
			cls.State = StalePRInactive
		} else {
			cls.State = ActivePR
		}
		return cls, nil
	}

	switch {
	case cls.AgeDays >= d.cfg.ReclaimDays:
		cls.State = StaleNoPR
	case cls.AgeDays >= d.cfg.ReminderDays:
		cls.State = ReminderDue
	default:
		cls.State = Fresh
	}
	return cls, nil
}

// lastAssignedAt finds the most recent "assigned" timeline event for login.
func lastAssignedAt(events []model.TimelineEvent, login string) (time.Time, bool) {
	var at time.Time
	found := false
	for _, event := range events {
		if event.Event == "assigned" && event.Assignee == login && event.CreatedAt.After(at) {
			at = event.CreatedAt
			found = true
		}
	}
	return at, found
}

// linkedOpenPR discovers the assignee's open PR linked to the issue via
// cross-reference events restricted to the same repository, and returns it
// with its newest commit time. When multiple open PRs are linked the one
// with the most recent commit wins.
func (d *Detector) linkedOpenPR(ctx context.Context, events []model.TimelineEvent, login string) (*model.LinkedPullRequest, error) {
	seen := make(map[int]bool)
	var best *model.LinkedPullRequest

	for _, event := range events {
		if event.Event != "cross-referenced" || !event.SourceIsPR {
			continue
		}
		if event.SourceRepo != d.platform.RepoFullName() {
			continue
		}
		if seen[event.SourceNumber] {
			continue
		}
		seen[event.SourceNumber] = true

		pr, err := d.platform.GetPullRequest(ctx, event.SourceNumber)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve linked PR #%d: %w", event.SourceNumber, err)
		}
		if pr.State != "open" || pr.UserLogin != login {
			continue
		}

		lastCommit, err := d.platform.LatestCommitTime(ctx, pr.Number)
		if err != nil {
			return nil, fmt.Errorf("failed to get latest commit for PR #%d: %w", pr.Number, err)
		}

		if best == nil || lastCommit.After(best.LastCommitAt) {
			best = &model.LinkedPullRequest{
				Number:       pr.Number,
				Open:         true,
				LastCommitAt: lastCommit,
			}
		}
	}

	return best, nil
}

// daysBetween returns the whole days from a to b.
func daysBetween(a, b time.Time) int {
	if b.Before(a) {
		return 0
	}
	return int(b.Sub(a).Hours() / 24)
}
