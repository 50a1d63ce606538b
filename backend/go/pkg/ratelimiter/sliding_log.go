package ratelimiter

import (
	"sync"
	"time"
)

// SlidingLog remembers the timestamp of every accepted request and allows a
// new one only if fewer than limit fall inside the trailing window.
type SlidingLog struct {
	limit  int
	window time.Duration
	stamps []time.Time // ascending
	now    func() time.Time
	mu     sync.Mutex
}

// NewSlidingLog creates a SlidingLog limiter.
func NewSlidingLog(limit int, window time.Duration) *SlidingLog {
	return &SlidingLog{limit: limit, window: window, now: time.Now}
}

// Allow drops expired timestamps and records the request if under the limit.
func (sl *SlidingLog) Allow() bool {
	sl.mu.Lock()
	defer sl.mu.Unlock()

	now := sl.now()
	boundary := now.Add(-sl.window)
	i := 0
	for i < len(sl.stamps) && !sl.stamps[i].After(boundary) {
		i++
	}
	sl.stamps = sl.stamps[i:]

	if len(sl.stamps) >= sl.limit {
		return false
	}
	sl.stamps = append(sl.stamps, now)
	return true
}
