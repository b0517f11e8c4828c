// Package ratelimit counts requests per client in fixed windows. A window
// opens with the first request for a key and closes Window later; hits
// inside it never extend it.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/planora-events/server/internal/config"
)

const (
	PolicyLogin = "login"
	PolicyAPI   = "api"
	PolicyWrite = "write"
)

// Policy is one independent cap. A Limit of zero or less disables it.
type Policy struct {
	Name    string
	Limit   int
	Window  time.Duration
	Message string
}

// Policies holds the three caps applied by the API.
type Policies struct {
	Login Policy
	API   Policy
	Write Policy
}

func NewPolicies(cfg config.RateLimitConfig) Policies {
	minutes := int(cfg.Window / time.Minute)
	return Policies{
		Login: Policy{
			Name:    PolicyLogin,
			Limit:   cfg.LoginPerWindow,
			Window:  cfg.Window,
			Message: fmt.Sprintf("Too many login attempts from this IP, please try again after %d minutes", minutes),
		},
		API: Policy{
			Name:    PolicyAPI,
			Limit:   cfg.APIPerWindow,
			Window:  cfg.Window,
			Message: "Too many requests from this IP, please try again later",
		},
		Write: Policy{
			Name:    PolicyWrite,
			Limit:   cfg.WritePerWindow,
			Window:  cfg.Window,
			Message: "Too many write requests, please slow down",
		},
	}
}

// Count is the state of a key's current window after an increment.
type Count struct {
	Hits    int64
	ResetAt time.Time
}

// Counter atomically increments key, opening a new window of the given
// length when none is active.
type Counter interface {
	Increment(ctx context.Context, key string, window time.Duration) (Count, error)
}

type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

type Limiter struct {
	counter Counter
}

func NewLimiter(counter Counter) *Limiter {
	return &Limiter{counter: counter}
}

// Allow records one hit for client under policy.
func (l *Limiter) Allow(ctx context.Context, policy Policy, client string) (Decision, error) {
	if policy.Limit <= 0 {
		return Decision{Allowed: true}, nil
	}
	count, err := l.counter.Increment(ctx, policy.Name+":"+client, policy.Window)
	if err != nil {
		return Decision{}, fmt.Errorf("increment %s counter: %w", policy.Name, err)
	}
	remaining := int64(policy.Limit) - count.Hits
	if remaining < 0 {
		remaining = 0
	}
	return Decision{
		Allowed:   count.Hits <= int64(policy.Limit),
		Limit:     policy.Limit,
		Remaining: int(remaining),
		ResetAt:   count.ResetAt,
	}, nil
}
