package model

import "time"

// Issue is the subset of a platform issue the engine acts on.
type Issue struct {
	Number    int
	Title     string
	State     string // open, closed
	Labels    []string
	Assignees []string
	CreatedAt time.Time
	HTMLURL   string
}

// HasAssignee reports whether login appears in the issue's assignee list.
func (i *Issue) HasAssignee(login string) bool {
	for _, a := range i.Assignees {
		if a == login {
			return true
		}
	}
	return false
}

// Comment is a platform issue comment.
type Comment struct {
	ID        int64
	Body      string
	UserLogin string
	UserType  string // User, Bot
	CreatedAt time.Time
}

// TimelineEvent is a platform issue timeline entry. Only the fields the
// engine consumes are modeled.
type TimelineEvent struct {
	Event     string // assigned, unassigned, cross-referenced, ...
	CreatedAt time.Time
	Assignee  string // login, for assigned/unassigned events

	// Cross-reference source, for cross-referenced events.
	SourceIsPR   bool
	SourceNumber int
	SourceRepo   string // owner/name of the referencing item
}

// PullRequest is the subset of a platform pull request the engine acts on.
type PullRequest struct {
	Number    int
	State     string // open, closed
	Draft     bool
	HTMLURL   string
	UserLogin string
}

// LinkedPullRequest is a same-repository PR discovered via cross-reference
// timeline events on an issue.
type LinkedPullRequest struct {
	Number       int
	Open         bool
	LastCommitAt time.Time
}
