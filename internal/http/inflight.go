package http

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/kjstillabower/weather-history-service/internal/observability"
)

// InFlightTracker counts requests currently being served so shutdown can wait for them.
// The zero value is ready to use.
type InFlightTracker struct {
	count atomic.Int64
}

func (t *InFlightTracker) begin() {
	t.count.Add(1)
	observability.HTTPRequestsInFlight.Inc()
}

func (t *InFlightTracker) end() {
	t.count.Add(-1)
	observability.HTTPRequestsInFlight.Dec()
}

// Count returns the current in-flight count.
func (t *InFlightTracker) Count() int64 {
	return t.count.Load()
}

// Middleware tracks every request passing through it.
func (t *InFlightTracker) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.begin()
		defer t.end()
		next.ServeHTTP(w, r)
	})
}

// WaitForZero blocks until the in-flight count reaches zero or ctx is cancelled,
// re-checking every checkInterval.
func (t *InFlightTracker) WaitForZero(ctx context.Context, checkInterval time.Duration) error {
	if checkInterval <= 0 {
		checkInterval = 100 * time.Millisecond
	}
	ticker := time.NewTicker(checkInterval)
	defer ticker.Stop()
	for {
		if t.Count() == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
