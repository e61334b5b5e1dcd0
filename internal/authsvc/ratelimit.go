package authsvc

import (
	"sync"

	"golang.org/x/time/rate"
)

// identifierLimiter grants each identifier its own token-bucket limiter
// for challenge creation, so a single noisy prover can't mint unbounded
// pending-challenge entries in the store (which has no eviction of its
// own beyond the optional reaper).
type identifierLimiter struct {
	mu                sync.Mutex
	limiters          map[string]*rate.Limiter
	requestsPerSecond float64
	burst             int
}

func newIdentifierLimiter(requestsPerSecond float64, burst int) *identifierLimiter {
	return &identifierLimiter{
		limiters:          make(map[string]*rate.Limiter),
		requestsPerSecond: requestsPerSecond,
		burst:             burst,
	}
}

func (l *identifierLimiter) allow(identifier string) bool {
	l.mu.Lock()
	limiter, ok := l.limiters[identifier]
	if !ok {
		limiter = rate.NewLimiter(rate.Limit(l.requestsPerSecond), l.burst)
		l.limiters[identifier] = limiter
	}
	l.mu.Unlock()

	return limiter.Allow()
}
