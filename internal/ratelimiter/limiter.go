package ratelimiter

import (
	"sync"

	"golang.org/x/time/rate"
)

// UserLimiters holds one token bucket per annotator, created on first use.
// Each bucket refills at ratePerSec and allows burst submissions at once.
type UserLimiters struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

// New creates a UserLimiters. A ratePerSec <= 0 disables limiting.
func New(ratePerSec float64, burst int) *UserLimiters {
	limit := rate.Limit(ratePerSec)
	if ratePerSec <= 0 {
		limit = rate.Inf
	}
	if burst < 1 {
		burst = 1
	}
	return &UserLimiters{
		limiters: make(map[string]*rate.Limiter),
		limit:    limit,
		burst:    burst,
	}
}

// Allow reports whether the user may submit now, consuming a token if so.
// It never blocks: a rejected submission is reported to the caller instead.
func (ul *UserLimiters) Allow(userID string) bool {
	return ul.limiter(userID).Allow()
}

func (ul *UserLimiters) limiter(userID string) *rate.Limiter {
	ul.mu.Lock()
	defer ul.mu.Unlock()
	l, ok := ul.limiters[userID]
	if !ok {
		l = rate.NewLimiter(ul.limit, ul.burst)
		ul.limiters[userID] = l
	}
	return l
}
