package middleware

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/planora-events/server/internal/ratelimit"
)

// RateLimitRecorder observes rejected requests per policy.
type RateLimitRecorder interface {
	RecordRateLimited(policy string)
}

// RateLimiter builds one Stage per policy over a shared limiter.
type RateLimiter struct {
	limiter        *ratelimit.Limiter
	trustedProxies []*net.IPNet
	recorder       RateLimitRecorder
	logger         zerolog.Logger
	sample         rate.Sometimes
	now            func() time.Time
}

func NewRateLimiter(limiter *ratelimit.Limiter, trustedProxyCIDRs []string, recorder RateLimitRecorder, logger zerolog.Logger) *RateLimiter {
	return &RateLimiter{
		limiter:        limiter,
		trustedProxies: parseCIDRs(trustedProxyCIDRs),
		recorder:       recorder,
		logger:         logger.With().Str("component", "ratelimit").Logger(),
		sample:         rate.Sometimes{First: 10, Interval: 10 * time.Second},
		now:            time.Now,
	}
}

// Stage counts the request against policy and rejects it with 429 once the
// window's cap is exceeded. Counter failures let the request through.
func (l *RateLimiter) Stage(policy ratelimit.Policy) Stage {
	return func(r *http.Request) (*http.Request, error) {
		if policy.Limit <= 0 {
			return r, nil
		}
		client := clientKey(r, l.trustedProxies)

		decision, err := l.limiter.Allow(r.Context(), policy, client)
		if err != nil {
			zerolog.Ctx(r.Context()).Warn().Err(err).Str("policy", policy.Name).Msg("rate limit counter unavailable")
			return r, nil
		}

		reset := l.secondsUntil(decision.ResetAt)
		r = AddResponseHeader(r, "RateLimit-Limit", strconv.Itoa(decision.Limit))
		r = AddResponseHeader(r, "RateLimit-Remaining", strconv.Itoa(decision.Remaining))
		r = AddResponseHeader(r, "RateLimit-Reset", strconv.Itoa(reset))

		if decision.Allowed {
			return r, nil
		}

		if l.recorder != nil {
			l.recorder.RecordRateLimited(policy.Name)
		}
		l.sample.Do(func() {
			l.logger.Warn().
				Str("policy", policy.Name).
				Str("client", client).
				Str("path", r.URL.Path).
				Msg("rate limit exceeded")
		})

		header := make(http.Header)
		header.Set("Retry-After", strconv.Itoa(reset))
		return r, &Rejection{Status: http.StatusTooManyRequests, Message: policy.Message, Header: header}
	}
}

func (l *RateLimiter) secondsUntil(t time.Time) int {
	seconds := math.Ceil(t.Sub(l.now()).Seconds())
	if seconds < 0 {
		return 0
	}
	return int(seconds)
}

// clientKey returns the client address, honouring X-Forwarded-For and
// X-Real-IP only when the connection comes from a trusted proxy.
func clientKey(r *http.Request, trusted []*net.IPNet) string {
	remoteIP := r.RemoteAddr
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		remoteIP = host
	}

	if isTrustedProxy(remoteIP, trusted) {
		if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
			first, _, _ := strings.Cut(forwarded, ",")
			if first = strings.TrimSpace(first); first != "" {
				return first
			}
		}
		if realIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); realIP != "" {
			return realIP
		}
	}
	return remoteIP
}

func isTrustedProxy(ip string, trusted []*net.IPNet) bool {
	if len(trusted) == 0 {
		return false
	}
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return false
	}
	for _, cidr := range trusted {
		if cidr.Contains(parsed) {
			return true
		}
	}
	return false
}

func parseCIDRs(values []string) []*net.IPNet {
	out := make([]*net.IPNet, 0, len(values))
	for _, value := range values {
		_, cidr, err := net.ParseCIDR(strings.TrimSpace(value))
		if err != nil {
			continue
		}
		out = append(out, cidr)
	}
	return out
}
