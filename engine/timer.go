package engine

import (
	"sync"
	"time"
)

// Timer is the level countdown
// Frozen and paused intervals are not charged; a new freeze replaces the previous one
type Timer struct {
	mu sync.Mutex

	clock     TimeProvider
	limit     time.Duration
	remaining time.Duration
	last      time.Time

	running bool
	paused  bool
	expired bool

	frozenUntil time.Time
	token       uint64
}

// NewTimer creates a stopped countdown, limit 0 is untimed
func NewTimer(clock TimeProvider, limit time.Duration) *Timer {
	if limit < 0 {
		limit = 0
	}
	return &Timer{clock: clock, limit: limit, remaining: limit}
}

// Start begins counting from now
func (t *Timer) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.last = t.clock.Now()
	t.running = true
}

// advance charges the time since the last reading, minus any frozen part
// Caller holds mu
func (t *Timer) advance(now time.Time) {
	prev := t.last
	t.last = now
	if !t.running || t.paused || t.expired || t.limit == 0 || !now.After(prev) {
		return
	}

	elapsed := now.Sub(prev)
	if t.frozenUntil.After(prev) {
		end := t.frozenUntil
		if now.Before(end) {
			end = now
		}
		elapsed -= end.Sub(prev)
	}

	t.remaining -= elapsed
	if t.remaining <= 0 {
		t.remaining = 0
		t.expired = true
	}
}

// Tick updates the countdown, true exactly once when time runs out
func (t *Timer) Tick() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	was := t.expired
	t.advance(t.clock.Now())
	return t.expired && !was
}

// Freeze stops the countdown for d from now, superseding any active freeze
func (t *Timer) Freeze(d time.Duration) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.clock.Now()
	t.advance(now)
	t.token++
	t.frozenUntil = now.Add(d)
	return t.token
}

// Cancel ends the freeze identified by token, false if it was superseded or already over
func (t *Timer) Cancel(token uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.clock.Now()
	if token != t.token || !now.Before(t.frozenUntil) {
		return false
	}
	t.advance(now)
	t.frozenUntil = now
	return true
}

// IsFrozen reports an active freeze
func (t *Timer) IsFrozen() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.clock.Now().Before(t.frozenUntil)
}

// FrozenFor returns the freeze time left
func (t *Timer) FrozenFor() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	if d := t.frozenUntil.Sub(t.clock.Now()); d > 0 {
		return d
	}
	return 0
}

// Pause stops charging time until Resume
func (t *Timer) Pause() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.advance(t.clock.Now())
	t.paused = true
}

// Resume continues the countdown
func (t *Timer) Resume() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.last = t.clock.Now()
	t.paused = false
}

// Remaining returns the time left as of the last reading
func (t *Timer) Remaining() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.remaining
}

// Limit returns the configured limit, zero means untimed
func (t *Timer) Limit() time.Duration {
	return t.limit
}

// Expired reports that the countdown reached zero
func (t *Timer) Expired() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.expired
}

// IsPaused reports the pause state
func (t *Timer) IsPaused() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.paused
}
