// Package model contains domain types for the shepherd engine.
// These types are independent of any external GitHub library.
package model

import "strings"

// Tier represents an issue difficulty tier, ordered from easiest to hardest.
type Tier string

const (
	TierGoodFirstIssue Tier = "good-first-issue"
	TierBeginner       Tier = "beginner"
	TierIntermediate   Tier = "intermediate"
	TierAdvanced       Tier = "advanced"

	// TierNone is the zero value for issues carrying no recognized tier label.
	TierNone Tier = ""
)

// AllTiers contains all valid tiers in ascending difficulty order.
// This is the single source of truth for valid tier values.
var AllTiers = []Tier{
	TierGoodFirstIssue,
	TierBeginner,
	TierIntermediate,
	TierAdvanced,
}

// ParseTier maps a string to a Tier, tolerating case and hyphen/space
// variations ("Good First Issue" parses as TierGoodFirstIssue).
func ParseTier(s string) (Tier, bool) {
	norm := NormalizeLabel(s)
	for _, t := range AllTiers {
		if norm == NormalizeLabel(string(t)) {
			return t, true
		}
	}
	return TierNone, false
}

// NormalizeLabel converts a label to a normalized form for comparison
// by lowercasing and treating hyphens and spaces as equivalent.
func NormalizeLabel(s string) string {
	return strings.ToLower(strings.ReplaceAll(s, "-", " "))
}

// LabelMatches reports whether a label matches a target label name under
// normalized comparison.
func LabelMatches(label, target string) bool {
	return NormalizeLabel(label) == NormalizeLabel(target)
}
