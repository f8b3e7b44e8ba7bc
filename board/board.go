package board

import (
	"io"
	"log"
	"sync/atomic"

	"github.com/lixenwraith/sushi-merge/catalog"
	"github.com/lixenwraith/sushi-merge/event"
	"github.com/lixenwraith/sushi-merge/status"
)

// plate is the live form of a PlateState
type plate struct {
	id       PlateID
	active   [SlotCount]Handle
	reserve  []Layer
	class    Class
	required catalog.TypeID
}

func (p *plate) activeCount() int {
	n := 0
	for _, h := range p.active {
		if h != NoItem {
			n++
		}
	}
	return n
}

func (p *plate) indexOf(h Handle) int {
	for i, a := range p.active {
		if a == h {
			return i
		}
	}
	return -1
}

func (p *plate) firstEmpty() int {
	return p.indexOf(NoItem)
}

// Options wires the board's collaborators
type Options struct {
	Queue  *event.EventQueue // Required
	Status *status.Registry  // nil creates a private registry
	Logger *log.Logger       // nil discards
}

// Board owns the live plates, the item arena and the lock coordinator
// All methods run to completion on the caller's goroutine
type Board struct {
	plates []*plate
	pool   *Pool
	locks  *LockCoordinator
	queue  *event.EventQueue
	log    *log.Logger

	statMerges   *atomic.Int64
	statRefills  *atomic.Int64
	statMoves    *atomic.Int64
	statRejected *atomic.Int64
	statItemsOff *atomic.Int64
	statPlateOff *atomic.Int64
}

// New builds a live board from generated plate states
func New(states []PlateState, opts Options) *Board {
	reg := opts.Status
	if reg == nil {
		reg = status.NewRegistry()
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	queue := opts.Queue
	if queue == nil {
		queue = event.NewEventQueue()
	}

	capacity := 0
	for i := range states {
		capacity += states[i].ItemCount()
	}
	pool := NewPool(capacity)

	b := &Board{
		plates:       make([]*plate, len(states)),
		pool:         pool,
		locks:        NewLockCoordinator(pool),
		queue:        queue,
		log:          logger,
		statMerges:   reg.Counter(status.Merges),
		statRefills:  reg.Counter(status.Refills),
		statMoves:    reg.Counter(status.Moves),
		statRejected: reg.Counter(status.MovesRejected),
		statItemsOff: reg.Counter(status.ItemsUnlocked),
		statPlateOff: reg.Counter(status.PlatesUnlocked),
	}

	for i := range states {
		s := &states[i]
		p := &plate{
			id:      PlateID(i),
			reserve: append([]Layer(nil), s.Reserve...),
			class:   s.Class,
		}
		for slot, def := range s.Active {
			if !def.Filled() {
				continue
			}
			h := pool.Get(def.Type)
			it := pool.Item(h)
			it.Lock = clampStage(def.Lock)
			it.Plate = p.id
			p.active[slot] = h
			b.locks.RegisterItem(h)
		}
		switch s.Class {
		case LockedBySushi:
			p.required = s.Required
			b.locks.RegisterSushiPlate(p.id, s.Required)
		case LockedByAd:
			b.locks.RegisterAdPlate(p.id)
		}
		b.plates[i] = p
	}
	return b
}

func (b *Board) plate(id PlateID) *plate {
	if id < 0 || int(id) >= len(b.plates) {
		return nil
	}
	return b.plates[id]
}

// AddItem places a detached item on a plate
// Fails if the plate is full, locked, already holds h, or h belongs to another plate
// Uses preferred when empty, otherwise the first empty slot, then checks for a merge
func (b *Board) AddItem(id PlateID, h Handle, preferred int) bool {
	p := b.plate(id)
	it := b.pool.Item(h)
	if p == nil || it == nil || p.class != Normal {
		return false
	}
	if p.indexOf(h) >= 0 || it.Plate != NoPlate {
		return false
	}

	slot := p.firstEmpty()
	if preferred >= 0 && preferred < SlotCount && p.active[preferred] == NoItem {
		slot = preferred
	}
	if slot < 0 {
		return false
	}

	p.active[slot] = h
	it.Plate = p.id
	b.checkMerge(p)
	return true
}

// RemoveItem clears h from a plate and leaves it detached in the caller's hand
// Fails on a locked plate or locked item unless force is set
// An emptied plate with reserve layers refills immediately
func (b *Board) RemoveItem(id PlateID, h Handle, force bool) bool {
	p := b.plate(id)
	it := b.pool.Item(h)
	if p == nil || it == nil {
		return false
	}
	idx := p.indexOf(h)
	if idx < 0 {
		return false
	}
	if !force && (p.class != Normal || it.Locked()) {
		return false
	}

	p.active[idx] = NoItem
	it.Plate = NoPlate
	if p.activeCount() == 0 && len(p.reserve) > 0 {
		b.refill(p)
	}
	return true
}

// CanMove reports whether MoveItem would accept the move, without side effects
func (b *Board) CanMove(from, to PlateID, h Handle) bool {
	src, dst := b.plate(from), b.plate(to)
	it := b.pool.Item(h)
	switch {
	case src == nil || dst == nil || it == nil || src == dst:
		return false
	case src.class != Normal || dst.class != Normal:
		return false
	case src.indexOf(h) < 0 || it.Locked():
		return false
	case dst.firstEmpty() < 0:
		return false
	}
	return true
}

// MoveItem moves h between two different plates
// A rejected move leaves the board untouched and emits EventMoveRejected so the caller can snap back
func (b *Board) MoveItem(from, to PlateID, h Handle, preferred int) bool {
	if !b.CanMove(from, to, h) {
		b.statRejected.Add(1)
		b.queue.Emit(event.EventMoveRejected, &event.MoveRejectedPayload{From: int(from), To: int(to), Item: uint32(h)})
		return false
	}
	b.RemoveItem(from, h, false)
	if !b.AddItem(to, h, preferred) {
		// Unreachable while CanMove holds
		b.log.Printf("[board] move %d -> %d lost item %d, returning to source", from, to, h)
		b.forcePlace(b.plate(from), h)
		return false
	}
	b.statMoves.Add(1)
	return true
}

// forcePlace puts h back in any empty slot of p, releasing it if none
func (b *Board) forcePlace(p *plate, h Handle) {
	if slot := p.firstEmpty(); slot >= 0 {
		p.active[slot] = h
		b.pool.Item(h).Plate = p.id
		return
	}
	b.Release(h)
}

// RecheckMerge runs the merge check on one plate
func (b *Board) RecheckMerge(id PlateID) bool {
	p := b.plate(id)
	if p == nil {
		return false
	}
	return b.checkMerge(p)
}

// checkMerge merges when all three slots hold unlocked items of one type on a Normal plate
func (b *Board) checkMerge(p *plate) bool {
	if p.class != Normal {
		return false
	}
	var t catalog.TypeID
	for i, h := range p.active {
		it := b.pool.Item(h)
		if it == nil || it.Locked() {
			return false
		}
		if i == 0 {
			t = it.Type
		} else if it.Type != t {
			return false
		}
	}
	b.executeMerge(p, t)
	return true
}

// executeMerge clears the plate, ticks locks and refills once
// The refill is not merge-checked; merges never cascade inside one plate
func (b *Board) executeMerge(p *plate, t catalog.TypeID) {
	for i, h := range p.active {
		b.locks.ForgetItem(h)
		b.pool.Release(h)
		p.active[i] = NoItem
	}
	b.statMerges.Add(1)
	b.queue.Emit(event.EventMerge, &event.MergePayload{Plate: int(p.id), Type: t})

	items, plates := b.locks.OnMerge(t)
	for _, h := range items {
		owner := NoPlate
		if it := b.pool.Item(h); it != nil {
			owner = it.Plate
		}
		b.statItemsOff.Add(1)
		b.queue.Emit(event.EventItemUnlocked, &event.ItemUnlockedPayload{Item: uint32(h), Plate: int(owner)})
	}
	for _, id := range plates {
		b.unlockPlate(b.plate(id), event.UnlockByMerge)
	}

	if len(p.reserve) > 0 {
		b.refill(p)
	}
}

// refill dequeues the next layer into its stored slots
func (b *Board) refill(p *plate) bool {
	if len(p.reserve) == 0 {
		return false
	}
	layer := p.reserve[0]
	p.reserve = p.reserve[1:]

	placed := 0
	for i := 0; i < layer.Len(); i++ {
		slot := layer.Slot(i)
		if p.active[slot] != NoItem {
			slot = p.firstEmpty()
			if slot < 0 {
				b.log.Printf("[board] plate %d has no room for layer entry %d (type %d), dropping", p.id, i, layer.Type(i))
				continue
			}
		}
		h := b.pool.Get(layer.Type(i))
		it := b.pool.Item(h)
		it.Lock = layer.Lock(i)
		it.Plate = p.id
		p.active[slot] = h
		b.locks.RegisterItem(h)
		placed++
	}

	b.statRefills.Add(1)
	b.queue.Emit(event.EventRefill, &event.RefillPayload{Plate: int(p.id), Count: placed, Remaining: len(p.reserve)})
	return true
}

// RefillIfEmpty refills a plate with no active items, true if a layer was dequeued
func (b *Board) RefillIfEmpty(id PlateID) bool {
	p := b.plate(id)
	if p == nil || p.activeCount() != 0 {
		return false
	}
	return b.refill(p)
}

func (b *Board) unlockPlate(p *plate, reason event.UnlockReason) {
	if p == nil || p.class == Normal {
		return
	}
	p.class = Normal
	p.required = catalog.NoType
	b.statPlateOff.Add(1)
	b.queue.Emit(event.EventPlateUnlocked, &event.PlateUnlockedPayload{Plate: int(p.id), Reason: reason})
}

// UnlockAdPlate opens an ad-locked plate after the external ad completion signal
func (b *Board) UnlockAdPlate(id PlateID) bool {
	p := b.plate(id)
	if p == nil || p.class != LockedByAd || !b.locks.UnlockAd(id) {
		return false
	}
	b.unlockPlate(p, event.UnlockByAd)
	return true
}

// Detach takes an item off its plate for a power-up without refilling
// The item stays live until Release
func (b *Board) Detach(h Handle) (PlateID, bool) {
	it := b.pool.Item(h)
	if it == nil || it.Plate == NoPlate {
		return NoPlate, false
	}
	p := b.plate(it.Plate)
	idx := p.indexOf(h)
	if idx < 0 {
		b.log.Printf("[board] item %d claims plate %d but is not in its slots", h, it.Plate)
		return NoPlate, false
	}
	p.active[idx] = NoItem
	it.Plate = NoPlate
	b.locks.ForgetItem(h)
	return p.id, true
}

// DetachReserve takes one reserve entry out as a detached item, dropping the layer if it becomes empty
// The returned handle stays live until Release so counts in flight keep their type
func (b *Board) DetachReserve(id PlateID, layer, entry int) (Handle, bool) {
	p := b.plate(id)
	if p == nil || layer < 0 || layer >= len(p.reserve) {
		return NoItem, false
	}
	l := p.reserve[layer]
	if entry < 0 || entry >= l.Len() {
		return NoItem, false
	}
	h := b.pool.Get(l.Type(entry))
	if rest, ok := l.WithoutEntry(entry); ok {
		p.reserve[layer] = rest
	} else {
		p.reserve = append(p.reserve[:layer:layer], p.reserve[layer+1:]...)
	}
	return h, true
}

// Release returns a detached item to the pool
func (b *Board) Release(h Handle) bool {
	it := b.pool.Item(h)
	if it == nil || it.Plate != NoPlate {
		return false
	}
	b.locks.ForgetItem(h)
	return b.pool.Release(h)
}
