package event

import (
	"sync"
	"testing"
)

func TestEventQueueBasic(t *testing.T) {
	eq := NewEventQueue()

	eq.Emit(EventMerge, &MergePayload{Plate: 1, Type: 2})
	eq.Emit(EventRefill, &RefillPayload{Plate: 1, Count: 3})
	eq.Emit(EventBoardEmpty, nil)

	events := eq.Consume()
	if len(events) != 3 {
		t.Fatalf("Expected 3 events, got %d", len(events))
	}
	if events[0].Type != EventMerge || events[1].Type != EventRefill || events[2].Type != EventBoardEmpty {
		t.Errorf("Expected FIFO order, got %v %v %v", events[0].Type, events[1].Type, events[2].Type)
	}
	if p := events[0].Payload.(*MergePayload); p.Plate != 1 || p.Type != 2 {
		t.Errorf("Payload mismatch: %+v", p)
	}
	if events[2].Seq != 2 {
		t.Errorf("Expected seq 2, got %d", events[2].Seq)
	}

	if again := eq.Consume(); len(again) != 0 {
		t.Errorf("Expected 0 events on second consume, got %d", len(again))
	}
}

func TestEventQueueOverflowKeepsNewest(t *testing.T) {
	eq := NewEventQueue()
	for i := 0; i < QueueSize+10; i++ {
		eq.Emit(EventRefill, &RefillPayload{Plate: i})
	}

	if eq.Len() != QueueSize {
		t.Errorf("Expected len %d, got %d", QueueSize, eq.Len())
	}
	events := eq.Consume()
	if len(events) != QueueSize {
		t.Fatalf("Expected %d events, got %d", QueueSize, len(events))
	}
	if first := events[0].Payload.(*RefillPayload).Plate; first != 10 {
		t.Errorf("Expected oldest surviving plate 10, got %d", first)
	}
}

func TestEventQueueConcurrent(t *testing.T) {
	eq := NewEventQueue()
	const producers, perProducer = 8, 16

	var wg sync.WaitGroup
	wg.Add(producers)
	for i := 0; i < producers; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < perProducer; j++ {
				eq.Emit(EventHint, nil)
			}
		}()
	}
	wg.Wait()

	if got := len(eq.Consume()); got != producers*perProducer {
		t.Errorf("Expected %d events, got %d", producers*perProducer, got)
	}
}

type countingHandler struct {
	seen []EventType
}

func (h *countingHandler) HandleEvent(ctx *int, ev GameEvent) {
	*ctx++
	h.seen = append(h.seen, ev.Type)
}

func (h *countingHandler) EventTypes() []EventType {
	return []EventType{EventMerge, EventBoardEmpty}
}

func TestRouterDispatch(t *testing.T) {
	eq := NewEventQueue()
	r := NewRouter[*int](eq)
	h := &countingHandler{}
	r.Register(h)

	// Chained emission: a merge handler that emits BoardEmpty
	r.Register(HandlerFunc[*int]{
		Types: []EventType{EventMerge},
		Fn: func(_ *int, _ GameEvent) {
			eq.Emit(EventBoardEmpty, nil)
		},
	})

	eq.Emit(EventMerge, &MergePayload{})
	eq.Emit(EventRefill, &RefillPayload{})

	calls := 0
	dispatched := r.DispatchAll(&calls)

	if len(dispatched) != 3 {
		t.Errorf("Expected 3 dispatched events, got %d", len(dispatched))
	}
	if calls != 2 {
		t.Errorf("Expected 2 handler calls, got %d", calls)
	}
	if len(h.seen) != 2 || h.seen[1] != EventBoardEmpty {
		t.Errorf("Expected chained BoardEmpty, got %v", h.seen)
	}
	if r.HandlerCount(EventMerge) != 2 {
		t.Errorf("Expected 2 merge handlers, got %d", r.HandlerCount(EventMerge))
	}
}

func TestEventTypeString(t *testing.T) {
	if EventMerge.String() != "Merge" {
		t.Errorf("Expected Merge, got %s", EventMerge.String())
	}
	if EventType(999).String() != "Unknown" {
		t.Error("Expected Unknown for unregistered type")
	}
}
