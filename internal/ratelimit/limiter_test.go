package ratelimit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/planora-events/server/internal/config"
)

func newTestCounter(t *testing.T, now *time.Time) *MemoryCounter {
	t.Helper()
	counter := NewMemoryCounter(time.Hour).WithClock(func() time.Time { return *now })
	t.Cleanup(func() { _ = counter.Close() })
	return counter
}

func TestNewPoliciesDefaults(t *testing.T) {
	p := NewPolicies(config.Defaults().RateLimit)

	require.Equal(t, 5, p.Login.Limit)
	require.Equal(t, 100, p.API.Limit)
	require.Equal(t, 50, p.Write.Limit)
	require.Equal(t, 15*time.Minute, p.Login.Window)
	require.Equal(t, "Too many login attempts from this IP, please try again after 15 minutes", p.Login.Message)
	require.Equal(t, "Too many requests from this IP, please try again later", p.API.Message)
	require.Equal(t, "Too many write requests, please slow down", p.Write.Message)
}

func TestLimiterFixedWindow(t *testing.T) {
	start := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	now := start
	limiter := NewLimiter(newTestCounter(t, &now))
	policy := Policy{Name: PolicyLogin, Limit: 5, Window: 15 * time.Minute}
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		decision, err := limiter.Allow(ctx, policy, "10.0.0.1")
		require.NoError(t, err)
		require.True(t, decision.Allowed, "attempt %d", i)
		require.Equal(t, 5-i, decision.Remaining)
		require.Equal(t, start.Add(15*time.Minute), decision.ResetAt)
		now = now.Add(time.Minute)
	}

	decision, err := limiter.Allow(ctx, policy, "10.0.0.1")
	require.NoError(t, err)
	require.False(t, decision.Allowed)
	require.Equal(t, 0, decision.Remaining)

	// Hits late in the window do not push the reset out.
	now = start.Add(15*time.Minute - time.Second)
	decision, err = limiter.Allow(ctx, policy, "10.0.0.1")
	require.NoError(t, err)
	require.False(t, decision.Allowed)
	require.Equal(t, start.Add(15*time.Minute), decision.ResetAt)

	now = start.Add(15 * time.Minute)
	decision, err = limiter.Allow(ctx, policy, "10.0.0.1")
	require.NoError(t, err)
	require.True(t, decision.Allowed)
	require.Equal(t, 4, decision.Remaining)
	require.Equal(t, now.Add(15*time.Minute), decision.ResetAt)
}

func TestLimiterPoliciesAreIndependent(t *testing.T) {
	now := time.Now()
	limiter := NewLimiter(newTestCounter(t, &now))
	ctx := context.Background()
	login := Policy{Name: PolicyLogin, Limit: 1, Window: time.Minute}
	api := Policy{Name: PolicyAPI, Limit: 1, Window: time.Minute}

	d, _ := limiter.Allow(ctx, login, "a")
	require.True(t, d.Allowed)
	d, _ = limiter.Allow(ctx, login, "a")
	require.False(t, d.Allowed)

	d, _ = limiter.Allow(ctx, api, "a")
	require.True(t, d.Allowed)
	d, _ = limiter.Allow(ctx, login, "b")
	require.True(t, d.Allowed)
}

func TestLimiterDisabledPolicy(t *testing.T) {
	now := time.Now()
	counter := newTestCounter(t, &now)
	limiter := NewLimiter(counter)

	for i := 0; i < 10; i++ {
		d, err := limiter.Allow(context.Background(), Policy{Name: PolicyWrite, Limit: 0, Window: time.Minute}, "a")
		require.NoError(t, err)
		require.True(t, d.Allowed)
	}
	require.Equal(t, 0, counter.Len())
}

type brokenCounter struct{}

func (brokenCounter) Increment(context.Context, string, time.Duration) (Count, error) {
	return Count{}, errors.New("unreachable")
}

func TestLimiterCounterError(t *testing.T) {
	_, err := NewLimiter(brokenCounter{}).Allow(context.Background(), Policy{Name: PolicyAPI, Limit: 1, Window: time.Minute}, "a")
	require.Error(t, err)
}

func TestMemoryCounterConcurrent(t *testing.T) {
	now := time.Now()
	counter := newTestCounter(t, &now)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = counter.Increment(context.Background(), "k", time.Minute)
		}()
	}
	wg.Wait()

	count, err := counter.Increment(context.Background(), "k", time.Minute)
	require.NoError(t, err)
	require.Equal(t, int64(51), count.Hits)
}

func TestMemoryCounterCleanup(t *testing.T) {
	now := time.Now()
	counter := newTestCounter(t, &now)
	ctx := context.Background()

	_, _ = counter.Increment(ctx, "short", time.Minute)
	_, _ = counter.Increment(ctx, "long", time.Hour)
	require.Equal(t, 2, counter.Len())

	now = now.Add(2 * time.Minute)
	counter.cleanup()
	require.Equal(t, 1, counter.Len())
}

func TestMemoryCounterCloseStopsLoop(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	counter := NewMemoryCounter(time.Millisecond)
	_, err := counter.Increment(context.Background(), "k", time.Minute)
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)

	require.NoError(t, counter.Close())
	require.NoError(t, counter.Close())
}
