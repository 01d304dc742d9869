// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// =============================================================================
// PER-CALLER RATE LIMITING
// =============================================================================

const (
	limiterIdleTTL    = 10 * time.Minute
	limiterSweepEvery = time.Minute
)

// callerLimiter keeps one token bucket per caller id.
type callerLimiter struct {
	limit rate.Limit
	burst int

	mu        sync.Mutex
	limiters  map[string]*rate.Limiter
	lastSeen  map[string]time.Time
	lastSweep time.Time
}

func newCallerLimiter(perSecond float64, burst int) *callerLimiter {
	if burst < 1 {
		burst = 1
	}
	return &callerLimiter{
		limit:    rate.Limit(perSecond),
		burst:    burst,
		limiters: make(map[string]*rate.Limiter),
		lastSeen: make(map[string]time.Time),
	}
}

// allow spends one token of id's bucket.
func (l *callerLimiter) allow(id string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) >= limiterSweepEvery {
		l.sweep(now)
	}

	limiter, ok := l.limiters[id]
	if !ok {
		limiter = rate.NewLimiter(l.limit, l.burst)
		l.limiters[id] = limiter
	}
	l.lastSeen[id] = now
	return limiter.AllowN(now, 1)
}

// sweep drops buckets of callers idle for longer than limiterIdleTTL.
func (l *callerLimiter) sweep(now time.Time) {
	for id, seen := range l.lastSeen {
		if now.Sub(seen) > limiterIdleTTL {
			delete(l.limiters, id)
			delete(l.lastSeen, id)
		}
	}
	l.lastSweep = now
}

// tracked returns the number of callers with a live bucket.
func (l *callerLimiter) tracked() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limiters)
}
