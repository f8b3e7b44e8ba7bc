package board

import (
	"math/rand/v2"
	"testing"

	"github.com/lixenwraith/sushi-merge/catalog"
	"github.com/lixenwraith/sushi-merge/event"
)

func TestNewPlacesActiveItems(t *testing.T) {
	states := []PlateState{
		{Active: active(tA, tB, tC)},
		{Active: active(tA, tB, tC)},
		{Active: active(tA, tB, tC)},
	}
	b, _ := newTestBoard(t, states)

	if b.Len() != 3 {
		t.Fatalf("Expected 3 plates, got %d", b.Len())
	}
	for p := PlateID(0); p < 3; p++ {
		if b.ActiveCount(p) != 3 {
			t.Errorf("Plate %d: expected 3 active, got %d", p, b.ActiveCount(p))
		}
		it, ok := b.Item(handleAt(b, p, 1))
		if !ok || it.Type != tB || it.Plate != p {
			t.Errorf("Plate %d slot 1: got %+v", p, it)
		}
	}
}

func TestMergeOnAddAndRefillFromLayer(t *testing.T) {
	states := []PlateState{
		{Active: active(tA, tA), Reserve: []Layer{mustLayer(t, []catalog.TypeID{tB, tC}, []int{2, 0}, nil)}},
		{Active: active(tA, tB, tC)},
		{Active: active(tB, tC)},
	}
	b, q := newTestBoard(t, states)
	q.Consume()

	h := handleAt(b, 1, 0)
	if !b.MoveItem(1, 0, h, 2) {
		t.Fatal("Expected move to succeed")
	}
	assertInvariants(t, b)

	events := q.Consume()
	if countEvents(events, event.EventMerge) != 1 {
		t.Fatalf("Expected 1 merge, got %d", countEvents(events, event.EventMerge))
	}
	if countEvents(events, event.EventRefill) != 1 {
		t.Errorf("Expected exactly 1 refill, got %d", countEvents(events, event.EventRefill))
	}
	mp := events[0].Payload.(*event.MergePayload)
	if mp.Plate != 0 || mp.Type != tA {
		t.Errorf("Expected merge of type %d on plate 0, got %+v", tA, mp)
	}

	// Refilled layer lands at its stored permutation
	if it, _ := b.Item(handleAt(b, 0, 2)); it.Type != tB {
		t.Errorf("Expected type %d at slot 2, got %d", tB, it.Type)
	}
	if it, _ := b.Item(handleAt(b, 0, 0)); it.Type != tC {
		t.Errorf("Expected type %d at slot 0, got %d", tC, it.Type)
	}
	if handleAt(b, 0, 1) != NoItem {
		t.Error("Expected slot 1 empty after a 2-item refill")
	}
	if b.ActiveCount(0) != 2 || b.ReserveLen(0) != 0 {
		t.Errorf("Expected 2 active and empty reserve, got %d/%d", b.ActiveCount(0), b.ReserveLen(0))
	}
}

func TestRemoveFromLastItemTriggersSingleRefill(t *testing.T) {
	layer := mustLayer(t, []catalog.TypeID{tB, tC, tD}, []int{2, 0, 1}, nil)
	states := []PlateState{
		{Active: active(tA), Reserve: []Layer{layer, mustLayer(t, []catalog.TypeID{tA}, []int{0}, nil)}},
		{Active: active(tA, tB, tC)},
		{Active: active(tD, tB, tC)},
		{Active: active(tD)},
	}
	b, q := newTestBoard(t, states)
	q.Consume()

	h := handleAt(b, 0, 0)
	if !b.RemoveItem(0, h, false) {
		t.Fatal("Expected remove to succeed")
	}
	assertInvariants(t, b, h)

	events := q.Consume()
	if countEvents(events, event.EventRefill) != 1 {
		t.Fatalf("Expected exactly 1 refill, got %d", countEvents(events, event.EventRefill))
	}
	want := map[int]catalog.TypeID{2: tB, 0: tC, 1: tD}
	for slot, ty := range want {
		it, ok := b.Item(handleAt(b, 0, slot))
		if !ok || it.Type != ty {
			t.Errorf("Slot %d: expected type %d, got %+v", slot, ty, it)
		}
	}
	if b.ReserveLen(0) != 1 {
		t.Errorf("Expected 1 layer left, got %d", b.ReserveLen(0))
	}

	// Put it back on plate 3 which has room
	if !b.AddItem(3, h, -1) {
		t.Fatal("Expected add to plate 3 to succeed")
	}
	assertInvariants(t, b)
}

func TestAddItemRejections(t *testing.T) {
	states := []PlateState{
		{Active: active(tA, tB, tC)},
		{Active: active(tA), Class: LockedByAd},
		{Active: active(tA, tB)},
		{Active: active(tB, tC, tC)},
	}
	b, _ := newTestBoard(t, states)

	loose := b.pool.Get(tC)
	if b.AddItem(0, loose, 0) {
		t.Error("Expected add to full plate to fail")
	}
	if b.AddItem(1, loose, 1) {
		t.Error("Expected add to locked plate to fail")
	}
	if b.AddItem(2, handleAt(b, 2, 0), 2) {
		t.Error("Expected add of an item already on the plate to fail")
	}
	if b.AddItem(2, handleAt(b, 0, 0), 2) {
		t.Error("Expected add of an item owned by another plate to fail")
	}
	if b.AddItem(99, loose, 0) {
		t.Error("Expected add to unknown plate to fail")
	}
	if !b.AddItem(2, loose, 0) {
		t.Error("Expected occupied preferred slot to fall back to first empty")
	}
	if it, _ := b.Item(loose); it.Plate != 2 || handleAt(b, 2, 2) != loose {
		t.Errorf("Expected item in plate 2 slot 2, got %+v", it)
	}
}

func TestMoveRejections(t *testing.T) {
	states := []PlateState{
		{Active: [SlotCount]Slot{{Type: tA, Lock: 2}, {Type: tB}}},
		{Active: active(tA, tB, tC)},
		{Class: LockedByAd},
		{Active: active(tC), Class: LockedBySushi, Required: tB},
		{Active: active(tA, tB, tC)},
	}
	b, q := newTestBoard(t, states)
	q.Consume()

	cases := []struct {
		name     string
		from, to PlateID
		h        Handle
	}{
		{"locked item", 0, 4, handleAt(b, 0, 0)},
		{"full destination", 0, 1, handleAt(b, 0, 1)},
		{"ad-locked destination", 0, 2, handleAt(b, 0, 1)},
		{"sushi-locked source", 3, 0, handleAt(b, 3, 0)},
		{"same plate", 0, 0, handleAt(b, 0, 1)},
		{"item not on source", 1, 0, handleAt(b, 0, 1)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			before := b.Snapshot()
			if b.MoveItem(tc.from, tc.to, tc.h, -1) {
				t.Fatal("Expected move to be rejected")
			}
			after := b.Snapshot()
			for i := range before {
				if before[i].Active != after[i].Active {
					t.Errorf("Plate %d changed on rejected move", i)
				}
			}
			assertInvariants(t, b)
		})
	}

	if got := countEvents(q.Consume(), event.EventMoveRejected); got != len(cases) {
		t.Errorf("Expected %d rejections, got %d", len(cases), got)
	}
}

func TestRemoveLockedRequiresForce(t *testing.T) {
	states := []PlateState{
		{Active: [SlotCount]Slot{{Type: tA, Lock: 3}, {Type: tA}, {Type: tA}}},
	}
	b, _ := newTestBoard(t, states)
	h := handleAt(b, 0, 0)

	if b.RemoveItem(0, h, false) {
		t.Fatal("Expected remove of locked item to fail")
	}
	if !b.RemoveItem(0, h, true) {
		t.Fatal("Expected forced remove to succeed")
	}
	if it, _ := b.Item(h); it.Plate != NoPlate {
		t.Errorf("Expected detached item, got plate %d", it.Plate)
	}
}

// lockBoard has a stage-3 locked B triple that opens after three A merges on plate 0
func lockBoard(t *testing.T) []PlateState {
	return []PlateState{
		{Active: active(tA, tA), Reserve: []Layer{
			mustLayer(t, []catalog.TypeID{tA, tA}, []int{0, 1}, nil),
			mustLayer(t, []catalog.TypeID{tA, tA}, []int{0, 1}, nil),
		}},
		{Active: active(tA)},
		{Active: active(tA)},
		{Active: active(tA)},
		{Active: [SlotCount]Slot{{Type: tB, Lock: 3}, {Type: tB}, {Type: tB}}},
	}
}

func TestLockedItemOpensAfterExactlyThreeMerges(t *testing.T) {
	b, q := newTestBoard(t, lockBoard(t))
	q.Consume()
	locked := handleAt(b, 4, 0)

	for merge := 1; merge <= 3; merge++ {
		src := PlateID(merge)
		if !b.MoveItem(src, 0, handleAt(b, src, 0), 2) {
			t.Fatalf("Merge %d: move failed", merge)
		}
		assertInvariants(t, b)

		it, _ := b.Item(locked)
		if it.Lock != 3-merge {
			t.Errorf("After %d merges: expected stage %d, got %d", merge, 3-merge, it.Lock)
		}
		events := q.Consume()
		unlocks := countEvents(events, event.EventItemUnlocked)
		if merge < 3 {
			if unlocks != 0 {
				t.Errorf("Merge %d: unexpected unlock", merge)
			}
			if b.MoveItem(4, 1, locked, 0) {
				t.Errorf("Merge %d: locked item moved", merge)
			}
			q.Consume()
		} else if unlocks != 1 {
			t.Errorf("Expected unlock on third merge, got %d", unlocks)
		}
	}
	if b.Locks().MergeCount() != 3 {
		t.Errorf("Expected 3 merges counted, got %d", b.Locks().MergeCount())
	}

	// Unlocking does not merge by itself
	if b.ActiveCount(4) != 3 {
		t.Fatalf("Expected plate 4 untouched, got %d active", b.ActiveCount(4))
	}

	// Move the Bs one at a time onto plate 0 to clear the board
	for i := 0; i < 3; i++ {
		var h Handle
		for _, a := range b.Active(4) {
			if a != NoItem {
				h = a
				break
			}
		}
		if !b.MoveItem(4, 0, h, -1) {
			t.Fatalf("Move %d of B failed", i)
		}
		assertInvariants(t, b)
	}
	if !b.AllEmpty() {
		t.Error("Expected board to be empty")
	}
}

func TestPlateUnlocks(t *testing.T) {
	states := []PlateState{
		{Active: active(tA, tA)},
		{Active: active(tA, tB, tC)},
		{Active: active(tB, tC), Class: LockedBySushi, Required: tA},
		{Active: active(tB, tC), Class: LockedBySushi, Required: tD},
		{Class: LockedByAd},
		{Active: active(tD)},
		{Active: active(tD, tD)},
	}
	b, q := newTestBoard(t, states)
	q.Consume()

	if b.UnlockAdPlate(2) {
		t.Error("Expected ad unlock of sushi plate to fail")
	}
	if !b.MoveItem(1, 0, handleAt(b, 1, 0), -1) {
		t.Fatal("Expected move to succeed")
	}

	events := q.Consume()
	if countEvents(events, event.EventPlateUnlocked) != 1 {
		t.Fatalf("Expected 1 plate unlock, got %d", countEvents(events, event.EventPlateUnlocked))
	}
	if c, _ := b.Class(2); c != Normal {
		t.Errorf("Expected plate 2 normal, got %s", c)
	}
	if c, req := b.Class(3); c != LockedBySushi || req != tD {
		t.Errorf("Expected plate 3 still waiting for %d, got %s/%d", tD, c, req)
	}
	if c, _ := b.Class(4); c != LockedByAd {
		t.Errorf("Expected ad plate to stay locked on merges, got %s", c)
	}

	if !b.UnlockAdPlate(4) {
		t.Fatal("Expected ad unlock to succeed")
	}
	if b.UnlockAdPlate(4) {
		t.Error("Expected a plate to unlock only once")
	}
	if c, _ := b.Class(4); c != Normal {
		t.Errorf("Expected plate 4 normal, got %s", c)
	}
	assertInvariants(t, b)
}

func TestLockedPlateNeverMerges(t *testing.T) {
	states := []PlateState{
		{Active: active(tA, tA, tA), Class: LockedBySushi, Required: tB},
		{Active: active(tB, tB)},
		{Active: active(tB)},
	}
	b, _ := newTestBoard(t, states)

	if b.RecheckMerge(0) {
		t.Error("Expected locked plate to be exempt from merging")
	}
}

func TestDetachAndReserveRemoval(t *testing.T) {
	states := []PlateState{
		{Active: active(tA, tB), Reserve: []Layer{
			mustLayer(t, []catalog.TypeID{tA}, []int{1}, nil),
			mustLayer(t, []catalog.TypeID{tC, tA}, []int{0, 2}, []int{0, 3}),
		}},
		{Active: active(tB, tB, tC)},
		{Active: active(tC)},
	}
	b, _ := newTestBoard(t, states)

	h := handleAt(b, 0, 0)
	if p, ok := b.Detach(h); !ok || p != 0 {
		t.Fatalf("Expected detach from plate 0, got %d/%v", p, ok)
	}
	if b.ActiveCount(0) != 1 || b.ReserveLen(0) != 2 {
		t.Error("Expected detach to skip refill")
	}
	assertInvariants(t, b, h)

	r1, ok := b.DetachReserve(0, 0, 0)
	if it, _ := b.Item(r1); !ok || it.Type != tA || it.Plate != NoPlate {
		t.Fatalf("Expected detached type %d from reserve, got %+v/%v", tA, it, ok)
	}
	if b.ReserveLen(0) != 1 {
		t.Fatalf("Expected emptied layer dropped, got %d layers", b.ReserveLen(0))
	}
	r2, ok := b.DetachReserve(0, 0, 1)
	if it, _ := b.Item(r2); !ok || it.Type != tA {
		t.Fatalf("Expected type %d, got %+v/%v", tA, it, ok)
	}
	rest := b.Reserve(0)[0]
	if rest.Len() != 1 || rest.Type(0) != tC || rest.Slot(0) != 0 || rest.Lock(0) != 0 {
		t.Errorf("Unexpected remaining layer: types=%v slot=%d lock=%d", rest.Types(), rest.Slot(0), rest.Lock(0))
	}
	if _, ok := b.DetachReserve(0, 5, 0); ok {
		t.Error("Expected out-of-range layer to fail")
	}
	assertInvariants(t, b, h, r1, r2)

	b.Release(r1)
	b.Release(r2)
	if !b.Release(h) {
		t.Error("Expected release of detached item")
	}
	if b.Release(handleAt(b, 1, 0)) {
		t.Error("Expected release of an owned item to fail")
	}
	assertInvariants(t, b)
}

func TestReassignKeepsLocksAndSlots(t *testing.T) {
	states := []PlateState{
		{Active: [SlotCount]Slot{{Type: tA, Lock: 2}, {Type: tB}}, Reserve: []Layer{
			mustLayer(t, []catalog.TypeID{tC, tA}, []int{2, 0}, []int{1, 0}),
		}},
		{Active: active(tB, tC, tA)},
		{Active: active(tB, tC)},
	}
	b, _ := newTestBoard(t, states)

	refs, types := b.TypeSlots(false)
	if len(refs) != 9 {
		t.Fatalf("Expected 9 typed positions, got %d", len(refs))
	}
	if !refs[0].IsActive() || refs[2].IsActive() {
		t.Errorf("Expected active refs before reserve refs: %+v", refs[:3])
	}
	if types[2] != tC || types[3] != tA {
		t.Errorf("Expected reserve types [C A], got %v", types[2:4])
	}

	rev := make([]catalog.TypeID, len(types))
	for i := range types {
		rev[len(types)-1-i] = types[i]
	}
	if !b.Reassign(refs, rev) {
		t.Fatal("Expected reassign to succeed")
	}
	_, got := b.TypeSlots(false)
	for i := range got {
		if got[i] != rev[i] {
			t.Fatalf("Position %d: expected %d, got %d", i, rev[i], got[i])
		}
	}

	it, _ := b.Item(handleAt(b, 0, 0))
	if it.Lock != 2 {
		t.Errorf("Expected active lock kept, got %d", it.Lock)
	}
	l := b.Reserve(0)[0]
	if l.Slot(0) != 2 || l.Lock(0) != 1 {
		t.Errorf("Expected layer slot/lock kept, got %d/%d", l.Slot(0), l.Lock(0))
	}
	if b.Reassign(refs, rev[:3]) {
		t.Error("Expected length mismatch to fail")
	}
	assertInvariants(t, b)
}

func TestFindMergeableSet(t *testing.T) {
	states := []PlateState{
		{Active: [SlotCount]Slot{{Type: tB}, {Type: tA, Lock: 1}}},
		{Active: active(tA, tB)},
		{Active: active(tA, tB, tC)},
		{Active: active(tA, tC), Class: LockedBySushi, Required: tC},
		{Active: active(tC), Reserve: []Layer{mustLayer(t, []catalog.TypeID{tA, tA}, []int{0, 1}, nil)}},
	}
	b, _ := newTestBoard(t, states)
	rng := rand.New(rand.NewPCG(1, 2))

	ty, hs := b.FindMergeableSet(rng)
	if ty != tB || len(hs) != 3 {
		t.Fatalf("Expected B triple, got type %d with %d items", ty, len(hs))
	}
	for _, h := range hs {
		if it, _ := b.Item(h); it.Type != tB {
			t.Errorf("Hint item %d has type %d", h, it.Type)
		}
	}
}

func TestMergeDoesNotCascadeAfterRefill(t *testing.T) {
	// A refill that leaves a full triple is not merged until the next add
	l := Layer{types: []catalog.TypeID{tB, tB, tB}, slots: []int{0, 1, 2}, locks: []int{0, 0, 0}}
	states := []PlateState{
		{Active: active(tA, tA), Reserve: []Layer{l}},
		{Active: active(tA)},
	}
	b, q := newTestBoard(t, states)
	q.Consume()

	if !b.MoveItem(1, 0, handleAt(b, 1, 0), -1) {
		t.Fatal("Expected move to succeed")
	}
	if got := countEvents(q.Consume(), event.EventMerge); got != 1 {
		t.Errorf("Expected 1 merge, got %d", got)
	}
	if b.ActiveCount(0) != 3 {
		t.Errorf("Expected refilled triple to stay, got %d active", b.ActiveCount(0))
	}
	if !b.RecheckMerge(0) {
		t.Error("Expected explicit recheck to merge")
	}
}
