package board

import (
	"sort"

	"github.com/lixenwraith/sushi-merge/catalog"
)

// Len returns the number of plates
func (b *Board) Len() int {
	return len(b.plates)
}

// Locks returns the lock coordinator
func (b *Board) Locks() *LockCoordinator {
	return b.locks
}

// Item returns a copy of the live item for h
func (b *Board) Item(h Handle) (Item, bool) {
	it := b.pool.Item(h)
	if it == nil {
		return Item{}, false
	}
	return *it, true
}

// Active returns the handles in a plate's slots
func (b *Board) Active(id PlateID) [SlotCount]Handle {
	if p := b.plate(id); p != nil {
		return p.active
	}
	return [SlotCount]Handle{}
}

// ActiveCount returns the number of occupied slots on a plate
func (b *Board) ActiveCount(id PlateID) int {
	if p := b.plate(id); p != nil {
		return p.activeCount()
	}
	return 0
}

// ReserveLen returns the number of queued layers on a plate
func (b *Board) ReserveLen(id PlateID) int {
	if p := b.plate(id); p != nil {
		return len(p.reserve)
	}
	return 0
}

// Reserve returns a copy of a plate's reserve queue
func (b *Board) Reserve(id PlateID) []Layer {
	if p := b.plate(id); p != nil {
		return append([]Layer(nil), p.reserve...)
	}
	return nil
}

// Class returns a plate's classification and the type it waits for
func (b *Board) Class(id PlateID) (Class, catalog.TypeID) {
	if p := b.plate(id); p != nil {
		return p.class, p.required
	}
	return Normal, catalog.NoType
}

// AllEmpty reports whether no plate holds active or reserve items
func (b *Board) AllEmpty() bool {
	for _, p := range b.plates {
		if p.activeCount() > 0 || len(p.reserve) > 0 {
			return false
		}
	}
	return true
}

// Snapshot returns the board as plate states
func (b *Board) Snapshot() []PlateState {
	out := make([]PlateState, len(b.plates))
	for i, p := range b.plates {
		s := &out[i]
		s.Class = p.class
		s.Required = p.required
		s.Reserve = append([]Layer(nil), p.reserve...)
		for slot, h := range p.active {
			if it := b.pool.Item(h); it != nil {
				s.Active[slot] = Slot{Type: it.Type, Lock: it.Lock}
			}
		}
	}
	return out
}

// CountTypes counts active and reserve items per type, optionally skipping ad-locked plates
func (b *Board) CountTypes(excludeAd bool) map[catalog.TypeID]int {
	counts := make(map[catalog.TypeID]int)
	for _, p := range b.plates {
		if excludeAd && p.class == LockedByAd {
			continue
		}
		for _, h := range p.active {
			if it := b.pool.Item(h); it != nil {
				counts[it.Type]++
			}
		}
		for _, l := range p.reserve {
			for i := 0; i < l.Len(); i++ {
				counts[l.Type(i)]++
			}
		}
	}
	return counts
}

// SlotRef addresses one typed position: an active slot (Layer -1) or a reserve entry
type SlotRef struct {
	Plate PlateID
	Layer int
	Index int
}

// IsActive reports whether the ref names an active slot
func (r SlotRef) IsActive() bool {
	return r.Layer < 0
}

// TypeSlots lists every typed position in plate order: active slots first, then reserve entries
func (b *Board) TypeSlots(excludeAd bool) ([]SlotRef, []catalog.TypeID) {
	var refs []SlotRef
	var types []catalog.TypeID
	for _, p := range b.plates {
		if excludeAd && p.class == LockedByAd {
			continue
		}
		for slot, h := range p.active {
			if it := b.pool.Item(h); it != nil {
				refs = append(refs, SlotRef{Plate: p.id, Layer: -1, Index: slot})
				types = append(types, it.Type)
			}
		}
		for li, l := range p.reserve {
			for e := 0; e < l.Len(); e++ {
				refs = append(refs, SlotRef{Plate: p.id, Layer: li, Index: e})
				types = append(types, l.Type(e))
			}
		}
	}
	return refs, types
}

// Reassign writes types back to positions from TypeSlots, lock stages stay with the position
func (b *Board) Reassign(refs []SlotRef, types []catalog.TypeID) bool {
	if len(refs) != len(types) {
		return false
	}

	type layerKey struct {
		plate PlateID
		layer int
	}
	pending := make(map[layerKey][]catalog.TypeID)
	var order []layerKey

	for i, ref := range refs {
		p := b.plate(ref.Plate)
		if p == nil {
			return false
		}
		if ref.IsActive() {
			it := b.pool.Item(p.active[ref.Index])
			if it == nil {
				return false
			}
			it.Type = types[i]
			continue
		}
		if ref.Layer >= len(p.reserve) || ref.Index >= p.reserve[ref.Layer].Len() {
			return false
		}
		key := layerKey{ref.Plate, ref.Layer}
		cur, ok := pending[key]
		if !ok {
			cur = p.reserve[ref.Layer].Types()
			order = append(order, key)
		}
		cur[ref.Index] = types[i]
		pending[key] = cur
	}

	for _, key := range order {
		p := b.plates[key.plate]
		p.reserve[key.layer] = p.reserve[key.layer].WithTypes(pending[key])
	}
	return true
}

// FindMergeableSet returns three unlocked active items of one type on Normal plates
// Types are scanned in ascending order; the three items are picked at random among candidates
func (b *Board) FindMergeableSet(rng Rand) (catalog.TypeID, []Handle) {
	byType := make(map[catalog.TypeID][]Handle)
	for _, p := range b.plates {
		if p.class != Normal {
			continue
		}
		for _, h := range p.active {
			if it := b.pool.Item(h); it != nil && !it.Locked() {
				byType[it.Type] = append(byType[it.Type], h)
			}
		}
	}

	types := make([]catalog.TypeID, 0, len(byType))
	for t, hs := range byType {
		if len(hs) >= 3 {
			types = append(types, t)
		}
	}
	if len(types) == 0 {
		return catalog.NoType, nil
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })

	t := types[0]
	hs := byType[t]
	rng.Shuffle(len(hs), func(i, j int) { hs[i], hs[j] = hs[j], hs[i] })
	return t, hs[:3]
}
