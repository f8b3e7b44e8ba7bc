package event

import "testing"

type recorder struct {
	types []EventType
	seen  []EventType
}

func (r *recorder) EventTypes() []EventType { return r.types }

func (r *recorder) HandleEvent(_ *int, ev GameEvent) { r.seen = append(r.seen, ev.Type) }

func TestRouterDispatchesByType(t *testing.T) {
	q := NewEventQueue()
	r := NewRouter[*int](q)
	merges := &recorder{types: []EventType{EventMerge}}
	both := &recorder{types: []EventType{EventMerge, EventRefill}}
	r.Register(merges)
	r.Register(both)

	if r.HandlerCount(EventMerge) != 2 || r.HandlerCount(EventHint) != 0 {
		t.Fatal("Unexpected handler counts")
	}

	q.Emit(EventRefill, nil)
	q.Emit(EventMerge, nil)
	q.Emit(EventHint, nil)
	var ctx int
	all := r.DispatchAll(&ctx)

	if len(all) != 3 {
		t.Errorf("Expected 3 dispatched events, got %d", len(all))
	}
	if len(merges.seen) != 1 || merges.seen[0] != EventMerge {
		t.Errorf("Expected one merge, got %v", merges.seen)
	}
	if len(both.seen) != 2 || both.seen[0] != EventRefill {
		t.Errorf("Expected refill then merge, got %v", both.seen)
	}
}

func TestRouterDrainsFollowUpEvents(t *testing.T) {
	q := NewEventQueue()
	r := NewRouter[*int](q)
	r.Register(HandlerFunc[*int]{
		Types: []EventType{EventMerge},
		Fn: func(n *int, _ GameEvent) {
			*n++
			q.Emit(EventBoardEmpty, nil)
		},
	})

	q.Emit(EventMerge, nil)
	var n int
	all := r.DispatchAll(&n)
	if n != 1 || len(all) != 2 || all[1].Type != EventBoardEmpty {
		t.Errorf("Expected follow-up event in the same dispatch, got %d handled and %v", n, all)
	}
}

func TestRouterBoundsRounds(t *testing.T) {
	q := NewEventQueue()
	r := NewRouter[*int](q)
	r.Register(HandlerFunc[*int]{
		Types: []EventType{EventHint},
		Fn:    func(_ *int, _ GameEvent) { q.Emit(EventHint, nil) },
	})

	q.Emit(EventHint, nil)
	var n int
	if all := r.DispatchAll(&n); len(all) != maxDispatchRounds {
		t.Errorf("Expected %d rounds, got %d events", maxDispatchRounds, len(all))
	}
	if q.Len() != 1 {
		t.Errorf("Expected the last emission left pending, got %d", q.Len())
	}
}
