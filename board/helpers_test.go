package board

import (
	"testing"

	"github.com/lixenwraith/sushi-merge/catalog"
	"github.com/lixenwraith/sushi-merge/event"
)

const (
	tA catalog.TypeID = iota + 1
	tB
	tC
	tD
)

func mustLayer(t *testing.T, types []catalog.TypeID, slots []int, locks []int) Layer {
	t.Helper()
	l, err := NewLayer(types, slots, locks)
	if err != nil {
		t.Fatalf("NewLayer(%v, %v): %v", types, slots, err)
	}
	return l
}

func active(types ...catalog.TypeID) [SlotCount]Slot {
	var out [SlotCount]Slot
	for i, ty := range types {
		out[i] = Slot{Type: ty}
	}
	return out
}

func newTestBoard(t *testing.T, states []PlateState) (*Board, *event.EventQueue) {
	t.Helper()
	q := event.NewEventQueue()
	b := New(states, Options{Queue: q})
	assertInvariants(t, b)
	return b, q
}

func assertInvariants(t *testing.T, b *Board, inFlight ...Handle) {
	t.Helper()
	for _, v := range b.CheckInvariants(inFlight) {
		t.Errorf("Invariant violated: %s", v)
	}
}

func countEvents(events []event.GameEvent, et event.EventType) int {
	n := 0
	for _, ev := range events {
		if ev.Type == et {
			n++
		}
	}
	return n
}

func handleAt(b *Board, p PlateID, slot int) Handle {
	return b.Active(p)[slot]
}
