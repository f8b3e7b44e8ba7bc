package board

import (
	"fmt"

	"github.com/lixenwraith/sushi-merge/catalog"
)

// SlotCount is the number of active slots on every plate
const SlotCount = 3

// MaxLockStage is the stage newly locked items start at
const MaxLockStage = 3

// Rand is the subset of math/rand/v2 Rand the board packages draw from
type Rand interface {
	IntN(n int) int
	Shuffle(n int, swap func(i, j int))
}

// Layer is one reserve batch: up to three types, each with a fixed target slot and lock stage
// Layers are values; edits return a new Layer
type Layer struct {
	types []catalog.TypeID
	slots []int
	locks []int
}

// NewLayer validates and copies a layer definition, locks may be nil
func NewLayer(types []catalog.TypeID, slots []int, locks []int) (Layer, error) {
	n := len(types)
	if n == 0 || n > SlotCount {
		return Layer{}, fmt.Errorf("layer size %d out of range 1..%d", n, SlotCount)
	}
	if len(slots) != n {
		return Layer{}, fmt.Errorf("layer has %d types but %d slots", n, len(slots))
	}
	if locks != nil && len(locks) != n {
		return Layer{}, fmt.Errorf("layer has %d types but %d lock stages", n, len(locks))
	}

	var used [SlotCount]bool
	for _, s := range slots {
		if s < 0 || s >= SlotCount || used[s] {
			return Layer{}, fmt.Errorf("layer slot assignment %v is not a partial permutation", slots)
		}
		used[s] = true
	}
	for _, t := range types {
		if t <= catalog.NoType {
			return Layer{}, fmt.Errorf("layer contains invalid type %d", t)
		}
	}

	l := Layer{
		types: append([]catalog.TypeID(nil), types...),
		slots: append([]int(nil), slots...),
		locks: make([]int, n),
	}
	for i := range locks {
		l.locks[i] = clampStage(locks[i])
	}
	return l, nil
}

// RandomLayer builds a layer with a random slot permutation and no locks
func RandomLayer(types []catalog.TypeID, rng Rand) (Layer, error) {
	perm := []int{0, 1, 2}
	rng.Shuffle(len(perm), func(i, j int) { perm[i], perm[j] = perm[j], perm[i] })
	if len(types) <= SlotCount {
		perm = perm[:len(types)]
	}
	return NewLayer(types, perm, nil)
}

// Len returns the number of entries
func (l Layer) Len() int { return len(l.types) }

// Type returns the type of entry i
func (l Layer) Type(i int) catalog.TypeID { return l.types[i] }

// Slot returns the active slot entry i refills into
func (l Layer) Slot(i int) int { return l.slots[i] }

// Lock returns the lock stage entry i is restored with
func (l Layer) Lock(i int) int { return l.locks[i] }

// Types returns a copy of the entry types
func (l Layer) Types() []catalog.TypeID {
	return append([]catalog.TypeID(nil), l.types...)
}

// IsTrivialTriple reports a full layer of one type
func (l Layer) IsTrivialTriple() bool {
	return len(l.types) == SlotCount && l.types[0] == l.types[1] && l.types[1] == l.types[2]
}

// WithoutEntry returns the layer minus entry i, ok false if the result would be empty
func (l Layer) WithoutEntry(i int) (Layer, bool) {
	if i < 0 || i >= len(l.types) || len(l.types) == 1 {
		return Layer{}, false
	}
	out := Layer{
		types: make([]catalog.TypeID, 0, len(l.types)-1),
		slots: make([]int, 0, len(l.types)-1),
		locks: make([]int, 0, len(l.types)-1),
	}
	for j := range l.types {
		if j == i {
			continue
		}
		out.types = append(out.types, l.types[j])
		out.slots = append(out.slots, l.slots[j])
		out.locks = append(out.locks, l.locks[j])
	}
	return out, true
}

// WithTypes returns the layer with the same slots and locks but new types
func (l Layer) WithTypes(types []catalog.TypeID) Layer {
	out := l.clone()
	copy(out.types, types)
	return out
}

// WithLock returns the layer with entry i set to stage
func (l Layer) WithLock(i, stage int) Layer {
	out := l.clone()
	if i >= 0 && i < len(out.locks) {
		out.locks[i] = clampStage(stage)
	}
	return out
}

func (l Layer) clone() Layer {
	return Layer{
		types: append([]catalog.TypeID(nil), l.types...),
		slots: append([]int(nil), l.slots...),
		locks: append([]int(nil), l.locks...),
	}
}

func clampStage(s int) int {
	if s < 0 {
		return 0
	}
	if s > MaxLockStage {
		return MaxLockStage
	}
	return s
}
