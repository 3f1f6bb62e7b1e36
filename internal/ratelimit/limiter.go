package ratelimit

import (
	"context"
	"time"

	"farescout-service/pkg/logger"
)

// Store is the shared counter backend. Incr must be a single atomic
// round-trip that applies ttl when it creates the key; Get returns 0 for a
// key that does not exist.
type Store interface {
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)
	Get(ctx context.Context, key string) (int64, error)
}

// Limit is one source's call budget.
type Limit struct {
	MaxRequests int64
	Window      Window
}

// Status describes a source's budget in the current window.
type Status struct {
	Source      string
	Window      Window
	MaxRequests int64
	Count       int64
	Remaining   int64
	Exceeded    bool
}

// Limiter tracks per-source call budgets in a shared TTL store, so the
// counters hold across processes. When the store is unreachable it fails
// open: batch availability wins over strict enforcement.
type Limiter struct {
	store  Store
	limits map[string]Limit
	logger logger.Logger
	now    func() time.Time
}

// NewLimiter creates a limiter over the given per-source budgets. Sources
// without a configured limit are never throttled.
func NewLimiter(store Store, limits map[string]Limit, log logger.Logger) *Limiter {
	return &Limiter{
		store:  store,
		limits: limits,
		logger: log,
		now:    time.Now,
	}
}

// Allowed reports whether the source may make a call right now. It must be
// consulted immediately before every outbound call. Admission and recording
// are separate round trips, so concurrent callers near the boundary may all
// be admitted and the budget can overshoot by the in-flight concurrency; the
// counter itself stays exact because Record increments atomically.
func (l *Limiter) Allowed(ctx context.Context, source string) bool {
	limit, ok := l.limits[source]
	if !ok {
		return true
	}

	key := BucketKey(source, limit.Window, l.now())
	count, err := l.store.Get(ctx, key)
	if err != nil {
		l.logger.Warn("Rate limit store unreachable, allowing call", "source", source, "error", err)
		return true
	}

	if count >= limit.MaxRequests {
		l.logger.Warn("Rate limit exceeded",
			"source", source,
			"window", limit.Window,
			"count", count,
			"max", limit.MaxRequests)
		return false
	}
	return true
}

// Record counts one call against the source's budget and returns the new
// count. The increment is atomic; two concurrent callers can never both
// observe the pre-increment count.
func (l *Limiter) Record(ctx context.Context, source string) (int64, error) {
	limit, ok := l.limits[source]
	if !ok {
		return 0, nil
	}

	now := l.now()
	key := BucketKey(source, limit.Window, now)
	count, err := l.store.Incr(ctx, key, WindowTTL(limit.Window, now))
	if err != nil {
		l.logger.Warn("Failed to record rate limit usage", "source", source, "error", err)
		return 0, err
	}

	l.logger.Debug("Recorded source call",
		"source", source,
		"window", limit.Window,
		"count", count,
		"max", limit.MaxRequests)
	return count, nil
}

// Status returns the source's budget state in the current window.
func (l *Limiter) Status(ctx context.Context, source string) (Status, error) {
	limit, ok := l.limits[source]
	if !ok {
		return Status{Source: source}, nil
	}

	key := BucketKey(source, limit.Window, l.now())
	count, err := l.store.Get(ctx, key)
	if err != nil {
		return Status{Source: source, Window: limit.Window, MaxRequests: limit.MaxRequests}, err
	}

	remaining := limit.MaxRequests - count
	if remaining < 0 {
		remaining = 0
	}
	return Status{
		Source:      source,
		Window:      limit.Window,
		MaxRequests: limit.MaxRequests,
		Count:       count,
		Remaining:   remaining,
		Exceeded:    count >= limit.MaxRequests,
	}, nil
}
