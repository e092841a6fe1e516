package model

// ActionKind discriminates the outcome of a guard or staleness evaluation.
type ActionKind string

const (
	ActionNoOp    ActionKind = "noop"
	ActionDeny    ActionKind = "deny"
	ActionReclaim ActionKind = "reclaim"
)

// DenyReason identifies why an assignment was denied.
type DenyReason string

const (
	DenyMissingPrerequisite DenyReason = "missing_prerequisite"
	DenyDenylistTier        DenyReason = "denylist_tier"
	DenyLimitExceeded       DenyReason = "limit_exceeded"
)

// ReclaimKind identifies the staleness consequence being executed.
type ReclaimKind string

const (
	ReclaimReminder   ReclaimKind = "reminder"
	ReclaimNoPR       ReclaimKind = "no_pr"
	ReclaimInactivePR ReclaimKind = "inactive_pr"
)

// Action is the tagged-variant result consumed by the actuators. Exactly one
// of the Deny/Reclaim payloads is meaningful, selected by Kind.
type Action struct {
	Kind ActionKind

	// Deny payload
	Reason       DenyReason
	RequiredTier Tier
	Have         int
	Need         int

	// Reclaim payload
	Reclaim  ReclaimKind
	PRNumber int
}

// NoOp is the do-nothing action.
var NoOp = Action{Kind: ActionNoOp}

// Deny builds a denial action.
func Deny(reason DenyReason, required Tier, have, need int) Action {
	return Action{
		Kind:         ActionDeny,
		Reason:       reason,
		RequiredTier: required,
		Have:         have,
		Need:         need,
	}
}
