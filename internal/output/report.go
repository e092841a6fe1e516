// Package output renders human-readable reports for sweep and check runs.
package output

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/spiffcs/shepherd/internal/format"
	"github.com/spiffcs/shepherd/internal/stale"
)

const (
	issueColWidth = 7
	loginColWidth = 18
	stateColWidth = 18
	ageColWidth   = 5
	titleColWidth = 48
)

// stateColors maps staleness states to display colors.
var stateColors = map[stale.State]*color.Color{
	stale.Fresh:             color.New(color.FgGreen),
	stale.ActivePR:          color.New(color.FgGreen),
	stale.ReminderDue:       color.New(color.FgYellow),
	stale.StaleNoPR:         color.New(color.FgRed),
	stale.StalePRInactive:   color.New(color.FgRed),
	stale.NoAssignmentEvent: color.New(color.Faint),
}

// NewReporter creates a reporter writing to w. Color is disabled when
// stdout is not a terminal.
func NewReporter(w io.Writer) *Reporter {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		color.NoColor = true
	}
	return &Reporter{w: w}
}

// Reporter renders sweep results as an aligned table.
type Reporter struct {
	w io.Writer
}

// SweepTable renders one row per (issue, assignee) pair, with a trailing
// summary of actions taken.
func (r *Reporter) SweepTable(results []stale.SweepResult) {
	if len(results) == 0 {
		fmt.Fprintln(r.w, "No assigned open issues found.")
		return
	}

	header := fmt.Sprintf("%s %s %s %s %s",
		format.PadToWidth("ISSUE", issueColWidth),
		format.PadToWidth("ASSIGNEE", loginColWidth),
		format.PadToWidth("STATE", stateColWidth),
		format.PadToWidth("AGE", ageColWidth),
		"TITLE")
	fmt.Fprintln(r.w, header)

	acted := 0
	skipped := 0
	for _, result := range results {
		state := string(result.State)
		if result.Skipped {
			state = "skipped"
			skipped++
		}
		if result.Acted {
			acted++
		}

		stateCell := format.PadToWidth(state, stateColWidth)
		if c, ok := stateColors[result.State]; ok && !result.Skipped {
			stateCell = c.Sprint(stateCell)
		}

		age := ""
		if result.State != stale.NoAssignmentEvent && !result.Skipped {
			age = format.Age(time.Duration(result.AgeDays) * 24 * time.Hour)
		}

		fmt.Fprintf(r.w, "%s %s %s %s %s\n",
			format.PadToWidth(fmt.Sprintf("#%d", result.IssueNumber), issueColWidth),
			format.PadToWidth(format.TruncateToWidth(result.Login, loginColWidth), loginColWidth),
			stateCell,
			format.PadToWidth(age, ageColWidth),
			format.TruncateToWidth(result.Title, titleColWidth))
	}

	fmt.Fprintf(r.w, "\n%d pairs examined, %d actions taken, %d skipped\n",
		len(results), acted, skipped)
}
