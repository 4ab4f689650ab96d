// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package worker

import (
	"sync/atomic"
	"time"
)

// DefaultTasksPerWindow is the number of rate-limited tasks accepted per window.
const DefaultTasksPerWindow = 20

// DefaultWindow is the rate limiter window.
const DefaultWindow = time.Second

// RateLimiter admits at most a fixed number of events per rolling window.
//
// The window restarts on the first Allow call made more than one window
// after the previous restart. The counter is compared before it is
// incremented, so exactly ceiling calls succeed per window.
//
// Thread safety: RateLimiter is safe for concurrent use.
type RateLimiter struct {
	ceiling int64
	window  time.Duration
	now     func() time.Time

	lastReset atomic.Int64 // unix nanoseconds
	count     atomic.Int64
}

// NewRateLimiter creates a limiter admitting ceiling events per window.
// Non-positive arguments select the defaults; a nil now uses time.Now.
func NewRateLimiter(ceiling int, window time.Duration, now func() time.Time) *RateLimiter {
	if ceiling <= 0 {
		ceiling = DefaultTasksPerWindow
	}
	if window <= 0 {
		window = DefaultWindow
	}
	if now == nil {
		now = time.Now
	}
	r := &RateLimiter{
		ceiling: int64(ceiling),
		window:  window,
		now:     now,
	}
	r.lastReset.Store(now().UnixNano())
	return r
}

// Allow reports whether one more event fits in the current window and
// records it.
func (r *RateLimiter) Allow() bool {
	now := r.now().UnixNano()
	last := r.lastReset.Load()
	if now-last > int64(r.window) && r.lastReset.CompareAndSwap(last, now) {
		r.count.Store(0)
	}
	return r.count.Add(1)-1 < r.ceiling
}

// Ceiling returns the number of events admitted per window.
func (r *RateLimiter) Ceiling() int {
	return int(r.ceiling)
}
