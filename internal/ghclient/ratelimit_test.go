package ghclient

import (
	"errors"
	"net/http"
	"strconv"
	"testing"
	"time"

	gh "github.com/google/go-github/v57/github"
)

func respWithHeaders(h map[string]string) *http.Response {
	resp := &http.Response{Header: http.Header{}}
	for k, v := range h {
		resp.Header.Set(k, v)
	}
	return resp
}

func TestParseRateLimitHeaders(t *testing.T) {
	reset := time.Now().Add(time.Hour).Unix()

	tests := []struct {
		name          string
		headers       map[string]string
		wantRemaining int
		wantLimit     int
		wantReset     bool
	}{
		{
			name: "all present",
			headers: map[string]string{
				"X-RateLimit-Remaining": "42",
				"X-RateLimit-Limit":     "5000",
				"X-RateLimit-Reset":     strconv.FormatInt(reset, 10),
			},
			wantRemaining: 42,
			wantLimit:     5000,
			wantReset:     true,
		},
		{
			name:          "missing headers",
			headers:       map[string]string{},
			wantRemaining: -1,
			wantLimit:     -1,
		},
		{
			name: "malformed values",
			headers: map[string]string{
				"X-RateLimit-Remaining": "abc",
				"X-RateLimit-Limit":     "",
				"X-RateLimit-Reset":     "not-a-timestamp",
			},
			wantRemaining: -1,
			wantLimit:     -1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			remaining, limit, resetAt := parseRateLimitHeaders(respWithHeaders(tt.headers))
			if remaining != tt.wantRemaining {
				t.Errorf("remaining = %d, want %d", remaining, tt.wantRemaining)
			}
			if limit != tt.wantLimit {
				t.Errorf("limit = %d, want %d", limit, tt.wantLimit)
			}
			if tt.wantReset && resetAt.Unix() != reset {
				t.Errorf("resetAt = %v, want unix %d", resetAt, reset)
			}
			if !tt.wantReset && !resetAt.IsZero() {
				t.Errorf("resetAt = %v, want zero", resetAt)
			}
		})
	}
}

func TestRateLimitState(t *testing.T) {
	state := &RateLimitState{}

	if state.IsLimited() {
		t.Error("fresh state should not be limited")
	}

	state.SetLimited(true, time.Now().Add(time.Hour))
	if !state.IsLimited() {
		t.Error("should be limited until reset")
	}

	state.SetLimited(true, time.Now().Add(-time.Minute))
	if state.IsLimited() {
		t.Error("past reset time should clear the limit")
	}
}

func TestRateLimitStateUpdate(t *testing.T) {
	state := &RateLimitState{}
	reset := time.Now().Add(time.Hour)

	state.Update(100, 5000, reset)
	remaining, limit, _, limited := state.GetStatus()
	if remaining != 100 || limit != 5000 || limited {
		t.Errorf("status = %d/%d limited=%v, want 100/5000 unlimited", remaining, limit, limited)
	}

	state.Update(0, 5000, reset)
	if !state.IsLimited() {
		t.Error("zero remaining should mark the state limited")
	}
}

func TestValidateLogin(t *testing.T) {
	tests := []struct {
		name    string
		login   string
		wantErr bool
	}{
		{name: "plain", login: "octocat"},
		{name: "hyphenated", login: "some-user"},
		{name: "empty", login: "", wantErr: true},
		{name: "embedded space", login: "a b", wantErr: true},
		{name: "quote injection", login: `x" label:advanced`, wantErr: true},
		{name: "newline", login: "a\nb", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateLogin(tt.login)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateLogin(%q) error = %v, wantErr %v", tt.login, err, tt.wantErr)
			}
		})
	}
}

func TestIsTransient(t *testing.T) {
	serverErr := &gh.ErrorResponse{Response: &http.Response{StatusCode: http.StatusBadGateway}}
	notFound := &gh.ErrorResponse{Response: &http.Response{StatusCode: http.StatusNotFound}}

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "rate limited", err: ErrRateLimited, want: false},
		{name: "5xx", err: serverErr, want: true},
		{name: "404", err: notFound, want: false},
		{name: "transport failure", err: errors.New("connection reset"), want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isTransient(tt.err); got != tt.want {
				t.Errorf("isTransient(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestIsNotFound(t *testing.T) {
	notFound := &gh.ErrorResponse{Response: &http.Response{StatusCode: http.StatusNotFound}}
	if !IsNotFound(notFound) {
		t.Error("404 ErrorResponse should be not-found")
	}
	if IsNotFound(errors.New("boom")) {
		t.Error("plain error should not be not-found")
	}
	if IsNotFound(nil) {
		t.Error("nil should not be not-found")
	}
}
