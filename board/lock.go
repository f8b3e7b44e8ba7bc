package board

import (
	"sort"

	"github.com/zyedidia/generic/mapset"

	"github.com/lixenwraith/sushi-merge/catalog"
)

// LockCoordinator tracks locked items and locked plates
// Item locks tick down once per merge anywhere on the board
// Sushi-locked plates open on a merge of their required type, ad-locked plates only on UnlockAd
type LockCoordinator struct {
	pool   *Pool
	items  mapset.Set[Handle]
	sushi  map[PlateID]catalog.TypeID
	ad     mapset.Set[PlateID]
	merges int
}

// NewLockCoordinator creates a coordinator reading item state from pool
func NewLockCoordinator(pool *Pool) *LockCoordinator {
	return &LockCoordinator{
		pool:  pool,
		items: mapset.New[Handle](),
		sushi: make(map[PlateID]catalog.TypeID),
		ad:    mapset.New[PlateID](),
	}
}

// RegisterItem starts tracking h if it is locked
func (lc *LockCoordinator) RegisterItem(h Handle) {
	if it := lc.pool.Item(h); it != nil && it.Locked() {
		lc.items.Put(h)
	}
}

// ForgetItem stops tracking h, used when an item leaves the board
func (lc *LockCoordinator) ForgetItem(h Handle) {
	lc.items.Remove(h)
}

// RegisterSushiPlate records a plate that opens on a merge of required
func (lc *LockCoordinator) RegisterSushiPlate(p PlateID, required catalog.TypeID) {
	lc.sushi[p] = required
}

// RegisterAdPlate records a plate that opens on an ad completion signal
func (lc *LockCoordinator) RegisterAdPlate(p PlateID) {
	lc.ad.Put(p)
}

// OnMerge applies the global merge tick
// Returns items whose lock reached zero and sushi plates requiring t, both in ascending order
func (lc *LockCoordinator) OnMerge(t catalog.TypeID) (items []Handle, plates []PlateID) {
	lc.merges++

	lc.items.Each(func(h Handle) {
		it := lc.pool.Item(h)
		if it == nil {
			items = append(items, h) // Stale, swept below without an unlock report
			return
		}
		it.Lock--
		if it.Lock <= 0 {
			it.Lock = 0
			items = append(items, h)
		}
	})

	unlocked := items[:0]
	for _, h := range items {
		lc.items.Remove(h)
		if lc.pool.Item(h) != nil {
			unlocked = append(unlocked, h)
		}
	}
	items = unlocked
	sort.Slice(items, func(i, j int) bool { return items[i] < items[j] })

	for p, required := range lc.sushi {
		if required == t {
			plates = append(plates, p)
		}
	}
	for _, p := range plates {
		delete(lc.sushi, p)
	}
	sort.Slice(plates, func(i, j int) bool { return plates[i] < plates[j] })
	return items, plates
}

// UnlockAd consumes the ad lock of p, false if p is not ad-locked
func (lc *LockCoordinator) UnlockAd(p PlateID) bool {
	if !lc.ad.Has(p) {
		return false
	}
	lc.ad.Remove(p)
	return true
}

// LockedItems returns tracked handles in ascending order
func (lc *LockCoordinator) LockedItems() []Handle {
	out := make([]Handle, 0, lc.items.Size())
	lc.items.Each(func(h Handle) { out = append(out, h) })
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// IsTracked reports whether h is in the locked set
func (lc *LockCoordinator) IsTracked(h Handle) bool {
	return lc.items.Has(h)
}

// Required returns the type a sushi-locked plate waits for
func (lc *LockCoordinator) Required(p PlateID) (catalog.TypeID, bool) {
	t, ok := lc.sushi[p]
	return t, ok
}

// MergeCount returns the number of merges observed
func (lc *LockCoordinator) MergeCount() int {
	return lc.merges
}
