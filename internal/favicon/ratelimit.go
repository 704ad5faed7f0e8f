package favicon

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// Per-host politeness limit for page and candidate fetches.
const hostRequestsPerSecond = 4

// hostLimiter holds one rate.Limiter per remote host, created on first use.
type hostLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

func newHostLimiter() *hostLimiter {
	return &hostLimiter{limiters: make(map[string]*rate.Limiter)}
}

// wait blocks until the limiter for host allows a request or ctx is
// canceled.
func (h *hostLimiter) wait(ctx context.Context, host string) error {
	h.mu.Lock()
	limiter, ok := h.limiters[host]
	if !ok {
		limiter = rate.NewLimiter(hostRequestsPerSecond, hostRequestsPerSecond)
		h.limiters[host] = limiter
	}
	h.mu.Unlock()

	return limiter.Wait(ctx)
}
