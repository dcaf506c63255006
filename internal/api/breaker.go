package api

import (
	"sync"
	"time"
)

// breaker guards the outbound connection to the admin API. Consecutive
// transport failures trip it open; while open, requests fail fast instead
// of waiting out the full timeout against a dead backend. One probe request
// is let through per cooldown window, and a probe that reaches the server
// closes the circuit again.
//
// Only transport failures count. Any HTTP response, including 4xx/5xx,
// proves the backend is reachable and resets the failure streak.
type breaker struct {
	mu        sync.Mutex
	threshold int
	cooldown  time.Duration
	now       func() time.Time

	open      bool
	failures  int
	nextProbe time.Time
}

func newBreaker(threshold int, cooldown time.Duration) *breaker {
	return &breaker{
		threshold: threshold,
		cooldown:  cooldown,
		now:       time.Now,
	}
}

// allow reports whether a request may go out. While open it admits one
// probe per cooldown window and holds everything else back.
func (b *breaker) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.open {
		return true
	}
	if now := b.now(); !now.Before(b.nextProbe) {
		b.nextProbe = now.Add(b.cooldown)
		return true
	}
	return false
}

// recordSuccess closes the circuit. Returns true on the open-to-closed
// transition so the caller can log it once.
func (b *breaker) recordSuccess() (closed bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	closed = b.open
	b.open = false
	b.failures = 0
	return closed
}

// recordFailure counts a transport failure. Returns true on the
// closed-to-open transition.
func (b *breaker) recordFailure() (opened bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failures++
	if b.open {
		return false
	}
	if b.failures >= b.threshold {
		b.open = true
		b.nextProbe = b.now().Add(b.cooldown)
		return true
	}
	return false
}

func (b *breaker) isOpen() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.open
}
