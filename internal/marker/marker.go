// Package marker implements content-based deduplication for bot comments.
//
// Every bot-authored comment embeds an invisible HTML-comment marker unique
// to the (bot, semantic action, contributor) triple. Whether an action has
// already happened is answered by scanning existing comments for the marker,
// never by state held outside the platform. Detection is a substring search
// so minor edits to the surrounding template do not defeat it.
package marker

import (
	"fmt"
	"strings"

	"github.com/spiffcs/shepherd/internal/model"
)

// Semantic actions recorded by markers.
const (
	ActionGuardDeny  = "guard-deny"
	ActionLimitDeny  = "limit-deny"
	ActionReminder   = "stale-reminder"
	ActionReclaim    = "stale-reclaim"
	ActionPRInactive = "pr-inactive"
)

// For builds the marker string for a bot, action, and contributor login.
// Logins are folded to lower case so the marker survives the platform's
// case-insensitive handling of usernames.
func For(bot, action, login string) string {
	return fmt.Sprintf("<!-- %s:%s:%s -->", bot, action, strings.ToLower(login))
}

// Contains reports whether body carries the marker.
func Contains(body, mark string) bool {
	return strings.Contains(body, mark)
}

// Seen reports whether any existing comment carries the marker for a bot,
// action, and login. This is the idempotency check performed immediately
// before any mutating action.
func Seen(comments []model.Comment, bot, action, login string) bool {
	mark := For(bot, action, login)
	for _, comment := range comments {
		if Contains(comment.Body, mark) {
			return true
		}
	}
	return false
}

// Append attaches the marker to the end of a comment body.
func Append(body, mark string) string {
	return body + "\n\n" + mark
}
