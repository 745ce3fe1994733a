package geocode

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Throttled wraps a Provider behind the same call signature, blocking each
// call until at least the configured delay has passed since the previous one.
// The gate is process-wide across rows, not per call site, and is safe for
// concurrent use.
type Throttled struct {
	inner   Provider
	limiter *rate.Limiter
}

// Throttle wraps p with a minimum gap between calls. A zero or negative delay
// keeps the gate in place but never waits, so the wrapped provider's timing
// contract is uniform regardless of configuration.
func Throttle(p Provider, minDelay time.Duration) *Throttled {
	limit := rate.Inf
	if minDelay > 0 {
		limit = rate.Every(minDelay)
	}
	return &Throttled{
		inner:   p,
		limiter: rate.NewLimiter(limit, 1),
	}
}

// Name reports the identity of the wrapped provider.
func (t *Throttled) Name() string { return t.inner.Name() }

// Geocode waits out the remaining delay, then delegates. Failures from the
// wrapped provider pass through unmodified.
func (t *Throttled) Geocode(ctx context.Context, query string, opts QueryOptions) (*Result, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return t.inner.Geocode(ctx, query, opts)
}
