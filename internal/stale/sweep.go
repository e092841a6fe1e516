package stale

import (
	"context"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/spiffcs/shepherd/internal/constants"
	"github.com/spiffcs/shepherd/internal/log"
	"github.com/spiffcs/shepherd/internal/model"
)

// SweepPlatform adds the issue listing the sweep iterates over.
type SweepPlatform interface {
	Platform
	ActuatorPlatform
	ListOpenAssignedIssues(ctx context.Context, limit int) ([]*model.Issue, error)
}

// SweepResult records the verdict for one (issue, assignee) pair.
type SweepResult struct {
	IssueNumber int
	Title       string
	Login       string
	State       State
	AgeDays     int
	PRNumber    int
	Acted       bool
	Skipped     bool // classification failed, entity skipped
}

// Sweeper runs the scheduled staleness pass over a repository.
type Sweeper struct {
	detector *Detector
	actuator *Actuator
	platform SweepPlatform
	limit    int
}

// NewSweeper creates a sweeper. limit caps how many issues one sweep
// examines; zero means the default.
func NewSweeper(detector *Detector, actuator *Actuator, platform SweepPlatform, limit int) *Sweeper {
	if limit <= 0 {
		limit = constants.DefaultSweepLimit
	}
	return &Sweeper{
		detector: detector,
		actuator: actuator,
		platform: platform,
		limit:    limit,
	}
}

// Sweep classifies every (open issue, assignee) pair and executes the
// warranted reclamations. A failure on one entity never aborts the rest of
// the batch; failed entities appear in the results as skipped.
func (s *Sweeper) Sweep(ctx context.Context) ([]SweepResult, error) {
	issues, err := s.platform.ListOpenAssignedIssues(ctx, s.limit)
	if err != nil {
		return nil, err
	}
	log.Info("sweeping assigned issues", "count", len(issues))

	now := time.Now()

	var mu sync.Mutex
	var results []SweepResult

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(constants.SweepWorkers)

	for _, issue := range issues {
		for _, login := range issue.Assignees {
			issue, login := issue, login
			g.Go(func() error {
				result := s.sweepOne(gctx, issue, login, now)
				mu.Lock()
				results = append(results, result)
				mu.Unlock()
				return nil
			})
		}
	}

	// Workers never return errors; the group exists for bounded concurrency
	// and context propagation.
	_ = g.Wait()

	sort.Slice(results, func(i, j int) bool {
		if results[i].IssueNumber != results[j].IssueNumber {
			return results[i].IssueNumber < results[j].IssueNumber
		}
		return results[i].Login < results[j].Login
	})
	return results, nil
}

// sweepOne classifies and acts on a single (issue, assignee) pair.
func (s *Sweeper) sweepOne(ctx context.Context, issue *model.Issue, login string, now time.Time) SweepResult {
	result := SweepResult{
		IssueNumber: issue.Number,
		Title:       issue.Title,
		Login:       login,
	}

	cls, err := s.detector.Classify(ctx, issue, login, now)
	if err != nil {
		log.Warn("classification failed, skipping entity",
			"issue", issue.Number, "assignee", login, "error", err)
		result.Skipped = true
		return result
	}

	result.State = cls.State
	result.AgeDays = cls.AgeDays
	if cls.PR != nil {
		result.PRNumber = cls.PR.Number
	}
	result.Acted = s.actuator.Reclaim(ctx, cls)
	return result
}
