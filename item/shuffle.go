package item

import (
	"github.com/lixenwraith/sushi-merge/board"
	"github.com/lixenwraith/sushi-merge/catalog"
	"github.com/lixenwraith/sushi-merge/event"
)

// MaxShuffleAttempts bounds random permutations before the deterministic repair
const MaxShuffleAttempts = 100

// UseShuffler permutes every active and reserve type outside ad-locked plates
// Positions keep their slots and lock stages, only types move
func (e *Engine) UseShuffler() bool {
	if !e.accept(event.EffectShuffler) {
		return false
	}
	refs, types := e.board.TypeSlots(true)
	if len(refs) < 2 {
		return false
	}
	groups := groupRefs(refs)

	perm := make([]catalog.TypeID, len(types))
	valid := false
	attempt := 0
	for attempt < MaxShuffleAttempts {
		attempt++
		copy(perm, types)
		e.rng.Shuffle(len(perm), func(i, j int) { perm[i], perm[j] = perm[j], perm[i] })
		if len(offending(groups, perm)) == 0 {
			valid = true
			break
		}
	}
	e.statRetries.Add(int64(attempt - 1))

	if !valid {
		e.log.Printf("[item] shuffler exhausted %d attempts, repairing", MaxShuffleAttempts)
		if left := repairTriples(groups, perm); left > 0 {
			e.log.Printf("[item] shuffler left %d unavoidable triples", left)
		}
	}

	if !e.board.Reassign(refs, perm) {
		e.log.Printf("[item] shuffler reassign failed")
		return false
	}

	touched := make([]board.PlateID, 0, e.board.Len())
	seen := make(map[board.PlateID]bool)
	for _, r := range refs {
		if !seen[r.Plate] {
			seen[r.Plate] = true
			touched = append(touched, r.Plate)
		}
	}
	e.begin(event.EffectShuffler, catalog.NoType, nil, touched)
	return true
}

// groupRefs returns index groups that must not be a same-type triple: each plate's actives and each layer
func groupRefs(refs []board.SlotRef) [][]int {
	type key struct {
		plate board.PlateID
		layer int
	}
	at := make(map[key]int)
	var groups [][]int
	for i, r := range refs {
		layer := r.Layer
		if r.IsActive() {
			layer = -1
		}
		k := key{r.Plate, layer}
		g, ok := at[k]
		if !ok {
			g = len(groups)
			at[k] = g
			groups = append(groups, nil)
		}
		groups[g] = append(groups[g], i)
	}
	return groups
}

func isTriple(g []int, types []catalog.TypeID) bool {
	return len(g) == board.SlotCount && types[g[0]] == types[g[1]] && types[g[1]] == types[g[2]]
}

// offending returns the indices of groups holding a same-type triple
func offending(groups [][]int, types []catalog.TypeID) []int {
	var out []int
	for gi, g := range groups {
		if isTriple(g, types) {
			out = append(out, gi)
		}
	}
	return out
}

// repairTriples swaps the last position of each triple with the first differing position elsewhere
// whose group stays valid after the swap, returns the number of triples it could not break
func repairTriples(groups [][]int, types []catalog.TypeID) int {
	owner := make([]int, len(types))
	for gi, g := range groups {
		for _, i := range g {
			owner[i] = gi
		}
	}

	left := 0
	for _, gi := range offending(groups, types) {
		g := groups[gi]
		if !isTriple(g, types) {
			continue
		}
		a := g[len(g)-1]
		fixed := false
		for b := range types {
			if owner[b] == gi || types[b] == types[a] {
				continue
			}
			types[a], types[b] = types[b], types[a]
			if !isTriple(groups[owner[b]], types) {
				fixed = true
				break
			}
			types[a], types[b] = types[b], types[a]
		}
		if !fixed {
			left++
		}
	}
	return left
}
