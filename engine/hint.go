package engine

import (
	"time"

	"github.com/lixenwraith/sushi-merge/board"
	"github.com/lixenwraith/sushi-merge/event"
)

// DefaultHintDelay is the idle time before a hint is offered
const DefaultHintDelay = 5 * time.Second

// HintTracker offers one mergeable set after the player has been idle for the delay
type HintTracker struct {
	clock TimeProvider
	delay time.Duration
	last  time.Time
	shown bool
}

// NewHintTracker creates a tracker, delay <= 0 uses DefaultHintDelay
func NewHintTracker(clock TimeProvider, delay time.Duration) *HintTracker {
	if delay <= 0 {
		delay = DefaultHintDelay
	}
	return &HintTracker{clock: clock, delay: delay, last: clock.Now()}
}

// Touch records player activity and clears the shown hint
func (h *HintTracker) Touch() {
	h.last = h.clock.Now()
	h.shown = false
}

// Shown reports whether a hint is on screen
func (h *HintTracker) Shown() bool {
	return h.shown
}

// Poll returns a hint once per idle period when the board has a reachable set
func (h *HintTracker) Poll(b *board.Board, rng board.Rand) (*event.HintPayload, bool) {
	if h.shown || h.clock.Now().Sub(h.last) < h.delay {
		return nil, false
	}
	t, hs := b.FindMergeableSet(rng)
	if len(hs) == 0 {
		return nil, false
	}
	h.shown = true

	items := make([]uint32, len(hs))
	for i, id := range hs {
		items[i] = uint32(id)
	}
	return &event.HintPayload{Type: t, Items: items}, true
}
