package board

import "github.com/lixenwraith/sushi-merge/catalog"

// Class is a plate's lock classification
type Class int

const (
	Normal Class = iota
	LockedByAd
	LockedBySushi
)

func (c Class) String() string {
	switch c {
	case Normal:
		return "normal"
	case LockedByAd:
		return "locked-ad"
	case LockedBySushi:
		return "locked-sushi"
	default:
		return "unknown"
	}
}

// Slot is one active position in a PlateState, Type NoType means empty
type Slot struct {
	Type catalog.TypeID
	Lock int
}

// Filled reports whether the slot holds an item
func (s Slot) Filled() bool {
	return s.Type != catalog.NoType
}

// PlateState is a value description of one plate
// The generator produces these, Board consumes them and can snapshot back to them
type PlateState struct {
	Active   [SlotCount]Slot
	Reserve  []Layer
	Class    Class
	Required catalog.TypeID // Only for LockedBySushi
}

// ActiveCount returns the number of filled active slots
func (s *PlateState) ActiveCount() int {
	n := 0
	for _, slot := range s.Active {
		if slot.Filled() {
			n++
		}
	}
	return n
}

// ItemCount returns active plus reserve items
func (s *PlateState) ItemCount() int {
	n := s.ActiveCount()
	for _, l := range s.Reserve {
		n += l.Len()
	}
	return n
}

// Locked reports a Locked* classification
func (s *PlateState) Locked() bool {
	return s.Class != Normal
}

// CountTypes adds every active and reserve type on the given plates into a count map
func CountTypes(states []PlateState) map[catalog.TypeID]int {
	counts := make(map[catalog.TypeID]int)
	for i := range states {
		for _, slot := range states[i].Active {
			if slot.Filled() {
				counts[slot.Type]++
			}
		}
		for _, l := range states[i].Reserve {
			for j := 0; j < l.Len(); j++ {
				counts[l.Type(j)]++
			}
		}
	}
	return counts
}
