package board

import (
	"fmt"
	"sort"

	"github.com/lixenwraith/sushi-merge/catalog"
)

// ViolationKind classifies an invariant failure
type ViolationKind int

const (
	TotalNotMultiple ViolationKind = iota
	TypeNotMultiple
	ActiveTriple
	LayerTriple
	OwnerMismatch
	LockMismatch
)

var violationNames = [...]string{"total-not-multiple", "type-not-multiple", "active-triple", "layer-triple", "owner-mismatch", "lock-mismatch"}

func (k ViolationKind) String() string {
	if int(k) < len(violationNames) {
		return violationNames[k]
	}
	return "unknown"
}

// Violation describes one broken invariant
type Violation struct {
	Kind   ViolationKind
	Plate  PlateID
	Detail string
}

func (v Violation) String() string {
	if v.Plate == NoPlate {
		return fmt.Sprintf("%s: %s", v.Kind, v.Detail)
	}
	return fmt.Sprintf("%s: plate %d: %s", v.Kind, v.Plate, v.Detail)
}

// VerifyCounts checks the total and every per-type count are multiples of three
func VerifyCounts(counts map[catalog.TypeID]int) []Violation {
	var out []Violation
	types := make([]catalog.TypeID, 0, len(counts))
	total := 0
	for t, n := range counts {
		types = append(types, t)
		total += n
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })

	if total%3 != 0 {
		out = append(out, Violation{Kind: TotalNotMultiple, Plate: NoPlate, Detail: fmt.Sprintf("total %d", total)})
	}
	for _, t := range types {
		if counts[t]%3 != 0 {
			out = append(out, Violation{Kind: TypeNotMultiple, Plate: NoPlate, Detail: fmt.Sprintf("type %d count %d", t, counts[t])})
		}
	}
	return out
}

// VerifyTriples finds full active sets and full layers of a single type
func VerifyTriples(states []PlateState) []Violation {
	var out []Violation
	for i := range states {
		s := &states[i]
		a := s.Active
		if a[0].Filled() && a[0].Type == a[1].Type && a[1].Type == a[2].Type {
			out = append(out, Violation{Kind: ActiveTriple, Plate: PlateID(i), Detail: fmt.Sprintf("type %d", a[0].Type)})
		}
		for li, l := range s.Reserve {
			if l.IsTrivialTriple() {
				out = append(out, Violation{Kind: LayerTriple, Plate: PlateID(i), Detail: fmt.Sprintf("layer %d type %d", li, l.Type(0))})
			}
		}
	}
	return out
}

// VerifyStates runs the count and triple checks on generated states
func VerifyStates(states []PlateState) []Violation {
	out := VerifyCounts(CountTypes(states))
	return append(out, VerifyTriples(states)...)
}

// CheckInvariants verifies the live board
// Every live handle must sit in exactly one slot of the plate it names, or be listed in inFlight
// Per-type counts over active, reserve and inFlight items must be multiples of three
// Tracked locks must match item lock stages
func (b *Board) CheckInvariants(inFlight []Handle) []Violation {
	var out []Violation
	seen := make(map[Handle]PlateID)

	for _, p := range b.plates {
		for slot, h := range p.active {
			if h == NoItem {
				continue
			}
			it := b.pool.Item(h)
			if it == nil {
				out = append(out, Violation{Kind: OwnerMismatch, Plate: p.id, Detail: fmt.Sprintf("slot %d holds released handle %d", slot, h)})
				continue
			}
			if prev, dup := seen[h]; dup {
				out = append(out, Violation{Kind: OwnerMismatch, Plate: p.id, Detail: fmt.Sprintf("handle %d also in plate %d", h, prev)})
			}
			seen[h] = p.id
			if it.Plate != p.id {
				out = append(out, Violation{Kind: OwnerMismatch, Plate: p.id, Detail: fmt.Sprintf("handle %d names plate %d", h, it.Plate)})
			}
			if it.Locked() != b.locks.IsTracked(h) {
				out = append(out, Violation{Kind: LockMismatch, Plate: p.id, Detail: fmt.Sprintf("handle %d stage %d tracked=%v", h, it.Lock, b.locks.IsTracked(h))})
			}
		}
	}

	counts := b.CountTypes(false)
	for _, h := range inFlight {
		it := b.pool.Item(h)
		if it == nil {
			out = append(out, Violation{Kind: OwnerMismatch, Plate: NoPlate, Detail: fmt.Sprintf("in-flight handle %d released", h)})
			continue
		}
		if it.Plate != NoPlate {
			out = append(out, Violation{Kind: OwnerMismatch, Plate: it.Plate, Detail: fmt.Sprintf("in-flight handle %d still on a plate", h)})
		}
		if _, dup := seen[h]; dup {
			out = append(out, Violation{Kind: OwnerMismatch, Plate: NoPlate, Detail: fmt.Sprintf("in-flight handle %d also in a slot", h)})
		}
		seen[h] = NoPlate
		counts[it.Type]++
	}

	if len(seen) != b.pool.Live() {
		out = append(out, Violation{Kind: OwnerMismatch, Plate: NoPlate, Detail: fmt.Sprintf("%d live items, %d accounted for", b.pool.Live(), len(seen))})
	}
	return append(out, VerifyCounts(counts)...)
}
