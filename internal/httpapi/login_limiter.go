package httpapi

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const loginWindow = 5 * time.Minute

// loginLimiter keeps one token bucket per key. A bucket refills max tokens
// per window, and idle buckets are dropped once they are full again.
type loginLimiter struct {
	mu      sync.Mutex
	limit   rate.Limit
	burst   int
	entries map[string]*limiterEntry
}

type limiterEntry struct {
	lim  *rate.Limiter
	seen time.Time
}

func newLoginLimiter(max int) *loginLimiter {
	if max <= 0 {
		max = 10
	}
	return &loginLimiter{
		limit:   rate.Limit(float64(max) / loginWindow.Seconds()),
		burst:   max,
		entries: make(map[string]*limiterEntry),
	}
}

func (l *loginLimiter) Allow(key string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	for k, e := range l.entries {
		if now.Sub(e.seen) > loginWindow {
			delete(l.entries, k)
		}
	}

	e, ok := l.entries[key]
	if !ok {
		e = &limiterEntry{lim: rate.NewLimiter(l.limit, l.burst)}
		l.entries[key] = e
	}
	e.seen = now
	return e.lim.AllowN(now, 1)
}
