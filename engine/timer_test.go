package engine

import (
	"testing"
	"time"
)

var epoch = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func TestMockTimeProvider(t *testing.T) {
	mock := NewMockTimeProvider(epoch)
	if !mock.Now().Equal(epoch) {
		t.Errorf("Expected %v, got %v", epoch, mock.Now())
	}
	mock.Advance(90 * time.Second)
	if got := mock.Now().Sub(epoch); got != 90*time.Second {
		t.Errorf("Expected 90s advance, got %v", got)
	}
}

func TestMonotonicTimeProvider(t *testing.T) {
	p := NewMonotonicTimeProvider()
	t1 := p.Now()
	time.Sleep(5 * time.Millisecond)
	if !p.Now().After(t1) {
		t.Error("Expected time to advance")
	}
}

func TestTimerCountsDownAndExpiresOnce(t *testing.T) {
	clock := NewMockTimeProvider(epoch)
	tm := NewTimer(clock, 10*time.Second)
	tm.Start()

	clock.Advance(4 * time.Second)
	if tm.Tick() {
		t.Fatal("Expected no expiry after 4s")
	}
	if tm.Remaining() != 6*time.Second {
		t.Errorf("Expected 6s remaining, got %v", tm.Remaining())
	}

	clock.Advance(7 * time.Second)
	if !tm.Tick() {
		t.Fatal("Expected expiry")
	}
	if tm.Remaining() != 0 || !tm.Expired() {
		t.Errorf("Expected clamped zero, got %v", tm.Remaining())
	}
	clock.Advance(time.Second)
	if tm.Tick() {
		t.Error("Expected expiry reported once")
	}
}

func TestTimerFreezeSkipsFrozenTime(t *testing.T) {
	clock := NewMockTimeProvider(epoch)
	tm := NewTimer(clock, 60*time.Second)
	tm.Start()

	clock.Advance(5 * time.Second)
	tm.Freeze(10 * time.Second)
	if !tm.IsFrozen() {
		t.Fatal("Expected frozen")
	}

	// 3s frozen, then 3s more frozen and 4s live in one reading
	clock.Advance(3 * time.Second)
	tm.Tick()
	if tm.Remaining() != 55*time.Second {
		t.Errorf("Expected 55s while frozen, got %v", tm.Remaining())
	}
	clock.Advance(11 * time.Second)
	tm.Tick()
	if tm.Remaining() != 51*time.Second {
		t.Errorf("Expected 51s after freeze ended, got %v", tm.Remaining())
	}
	if tm.IsFrozen() || tm.FrozenFor() != 0 {
		t.Error("Expected freeze over")
	}
}

func TestTimerFreezeSupersedes(t *testing.T) {
	clock := NewMockTimeProvider(epoch)
	tm := NewTimer(clock, 60*time.Second)
	tm.Start()

	first := tm.Freeze(10 * time.Second)
	clock.Advance(8 * time.Second)
	second := tm.Freeze(10 * time.Second)
	if second == first {
		t.Fatal("Expected a new token")
	}
	if tm.Cancel(first) {
		t.Error("Expected superseded token to be ignored")
	}

	// The second freeze restarts the full duration
	clock.Advance(9 * time.Second)
	if !tm.IsFrozen() {
		t.Error("Expected second freeze still active")
	}
	tm.Tick()
	if tm.Remaining() != 60*time.Second {
		t.Errorf("Expected no time charged, got %v", tm.Remaining())
	}

	if !tm.Cancel(second) {
		t.Fatal("Expected cancel of the active token")
	}
	if tm.IsFrozen() || tm.Cancel(second) {
		t.Error("Expected freeze cancelled once")
	}
	clock.Advance(2 * time.Second)
	tm.Tick()
	if tm.Remaining() != 58*time.Second {
		t.Errorf("Expected 58s after cancel, got %v", tm.Remaining())
	}
}

func TestTimerPause(t *testing.T) {
	clock := NewMockTimeProvider(epoch)
	tm := NewTimer(clock, 30*time.Second)
	tm.Start()

	clock.Advance(5 * time.Second)
	tm.Pause()
	if !tm.IsPaused() {
		t.Fatal("Expected paused")
	}
	clock.Advance(100 * time.Second)
	if tm.Tick() {
		t.Fatal("Expected no expiry while paused")
	}
	tm.Resume()
	clock.Advance(5 * time.Second)
	tm.Tick()
	if tm.Remaining() != 20*time.Second {
		t.Errorf("Expected 20s, got %v", tm.Remaining())
	}
}

func TestTimerUntimed(t *testing.T) {
	clock := NewMockTimeProvider(epoch)
	tm := NewTimer(clock, 0)
	tm.Start()
	clock.Advance(time.Hour)
	if tm.Tick() || tm.Expired() {
		t.Error("Expected untimed level never to expire")
	}
}
