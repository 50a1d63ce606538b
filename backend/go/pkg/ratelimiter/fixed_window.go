package ratelimiter

import (
	"sync"
	"time"
)

// FixedWindow allows limit requests per window; the count resets when a new
// window starts.
type FixedWindow struct {
	limit  int
	window time.Duration
	count  int
	start  time.Time
	now    func() time.Time
	mu     sync.Mutex
}

// NewFixedWindow creates a FixedWindow limiter.
func NewFixedWindow(limit int, window time.Duration) *FixedWindow {
	fw := &FixedWindow{limit: limit, window: window, now: time.Now}
	fw.start = fw.now()
	return fw
}

// Allow counts the request against the current window.
func (fw *FixedWindow) Allow() bool {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	now := fw.now()
	if now.Sub(fw.start) >= fw.window {
		fw.start = now
		fw.count = 0
	}
	if fw.count >= fw.limit {
		return false
	}
	fw.count++
	return true
}
