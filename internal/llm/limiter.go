package llm

import (
	"sync"
	"time"
)

// RateLimiter spaces requests out to at most rps per second.
type RateLimiter struct {
	mu       sync.Mutex
	interval time.Duration
	last     time.Time
}

func NewRateLimiter(rps int) *RateLimiter {
	if rps <= 0 {
		rps = 1
	}
	return &RateLimiter{interval: time.Second / time.Duration(rps)}
}

func (r *RateLimiter) WaitTurn() {
	r.mu.Lock()
	now := time.Now()
	next := r.last.Add(r.interval)
	if next.After(now) {
		r.mu.Unlock()
		time.Sleep(next.Sub(now))
		r.mu.Lock()
		now = time.Now()
	}
	r.last = now
	r.mu.Unlock()
}
