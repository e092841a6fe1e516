package ghclient

import (
	"context"
	"errors"
	"net/http"

	"github.com/cenkalti/backoff/v4"
	gh "github.com/google/go-github/v57/github"

	"github.com/spiffcs/shepherd/internal/constants"
	"github.com/spiffcs/shepherd/internal/log"
)

// IsNotFound reports whether err is a 404 from the GitHub API. A 404 is a
// meaningful negative for several operations (not a collaborator, PR gone)
// and must not be treated as a transient failure.
func IsNotFound(err error) bool {
	var ghErr *gh.ErrorResponse
	if errors.As(err, &ghErr) {
		return ghErr.Response != nil && ghErr.Response.StatusCode == http.StatusNotFound
	}
	return false
}

// isTransient reports whether err is worth retrying: network failures and
// 5xx responses. Rate limiting is not transient on the retry timescale.
func isTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrRateLimited) {
		return false
	}
	var ghErr *gh.ErrorResponse
	if errors.As(err, &ghErr) {
		if ghErr.Response == nil {
			return true
		}
		code := ghErr.Response.StatusCode
		return code >= http.StatusInternalServerError
	}
	// Transport-level errors (connection reset, DNS) arrive unwrapped.
	var rateErr *gh.RateLimitError
	if errors.As(err, &rateErr) {
		return false
	}
	return true
}

// withRetry runs fn with bounded exponential backoff. Non-transient errors
// (404s, rate limiting, context cancellation) abort immediately; exhausted
// retries return the last error for callers to downgrade to an
// indeterminate outcome.
func withRetry(ctx context.Context, operation string, fn func() error) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = constants.InitialRetryDelay
	bo.MaxInterval = constants.MaxRetryDelay

	attempt := 0
	wrapped := func() error {
		err := fn()
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return backoff.Permanent(ctx.Err())
		}
		if !isTransient(err) {
			return backoff.Permanent(err)
		}
		attempt++
		log.Debug("retrying after transient error",
			"operation", operation, "attempt", attempt, "error", err)
		return err
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(bo, constants.MaxRetryAttempts), ctx)
	return backoff.Retry(wrapped, policy)
}
