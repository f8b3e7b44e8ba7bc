package level

import (
	"fmt"
	"io"
	"log"

	"github.com/lixenwraith/sushi-merge/board"
	"github.com/lixenwraith/sushi-merge/catalog"
)

// seedPatterns splits a guaranteed set of three across plates
var seedPatterns = [][]int{{1, 2}, {2, 1}, {1, 1, 1}}

// Seed is one guaranteed merge set: Counts[i] units of Type sit in the active slots of Plates[i]
type Seed struct {
	Type   catalog.TypeID
	Plates []int
	Counts []int
}

// Result is a generated board with its diagnostics
type Result struct {
	Plates       []board.PlateState
	Types        []catalog.TypeID // Drawn types in selection order
	Concentrated []catalog.TypeID
	Seeds        []Seed
	Effective    Spec // Spec after clamping
	Warnings     []string
	Violations   []board.Violation
}

// Generator builds level boards from a Spec
// A Generator holds no per-level state, concurrent calls need separate Rand values
type Generator struct {
	log *log.Logger
}

// NewGenerator creates a generator logging to logger, nil discards
func NewGenerator(logger *log.Logger) *Generator {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Generator{log: logger}
}

// build carries the state of one Generate call
type build struct {
	spec   Spec
	rng    board.Rand
	log    *log.Logger
	res    *Result
	plates []board.PlateState
	seed   []bool
	draw   *drawer
}

// Generate produces a board for spec, deterministic for a given rng state
// Infeasible settings are clamped with a warning; invariant failures are logged and reported, never fatal
func (g *Generator) Generate(spec Spec, rng board.Rand, cat catalog.Catalog) Result {
	res := Result{}
	b := &build{rng: rng, log: g.log, res: &res}

	available := cat.Types()
	b.spec = spec.clamp(len(available), b.warnf)
	b.plates = make([]board.PlateState, b.spec.PlateCount)
	b.seed = make([]bool, b.spec.PlateCount)

	if len(available) == 0 {
		if b.spec.TotalItemCount > 0 {
			b.warnf("catalog is empty, generating %d empty plates", b.spec.PlateCount)
			b.spec.TotalItemCount = 0
		}
		b.finish()
		return res
	}

	res.Types = b.selectTypes(available)
	counts := b.buildPool(res.Types)
	b.extractSeeds(res.Types, counts)
	sushi := b.chooseLockedPlates()
	b.draw = b.newDrawer(res.Types, counts)

	b.fillActives()
	b.fillLayers()
	b.sweep()

	b.assignRequired(sushi)
	b.lockItems()
	b.finish()
	return res
}

func (b *build) warnf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	b.log.Printf("[generator] warning: %s", msg)
	b.res.Warnings = append(b.res.Warnings, msg)
}

func (b *build) errorf(format string, args ...any) {
	b.log.Printf("[generator] error: "+format, args...)
}

func (b *build) shuffleInts(s []int) {
	b.rng.Shuffle(len(s), func(i, j int) { s[i], s[j] = s[j], s[i] })
}

func (b *build) shuffleTypes(s []catalog.TypeID) {
	b.rng.Shuffle(len(s), func(i, j int) { s[i], s[j] = s[j], s[i] })
}

// selectTypes draws TypeCount distinct types
func (b *build) selectTypes(available []catalog.TypeID) []catalog.TypeID {
	types := append([]catalog.TypeID(nil), available...)
	b.shuffleTypes(types)
	return types[:b.spec.TypeCount]
}

// buildPool returns per-type unit counts, each a multiple of three, summing to TotalItemCount
func (b *build) buildPool(types []catalog.TypeID) []int {
	n := len(types)
	base := b.spec.TotalItemCount / n / 3 * 3
	counts := make([]int, n)
	for i := range counts {
		counts[i] = base
	}
	rest := b.spec.TotalItemCount - base*n
	for i := 0; rest > 0; i = (i + 1) % n {
		counts[i] += 3
		rest -= 3
	}
	return counts
}

// extractSeeds places guaranteed sets directly into the active slots of distinct plates
func (b *build) extractSeeds(types []catalog.TypeID, counts []int) {
	want := b.spec.GuaranteedMergeSets

	var eligible []int
	for i, c := range counts {
		if c >= 3 {
			eligible = append(eligible, i)
		}
	}
	if want > len(eligible) {
		b.warnf("guaranteed_merge_sets %d exceeds %d types with 3 units, using %d", want, len(eligible), len(eligible))
		want = len(eligible)
	}
	b.shuffleInts(eligible)

	order := make([]int, len(b.plates))
	for i := range order {
		order[i] = i
	}
	b.shuffleInts(order)

	next := 0
	for _, ti := range eligible[:want] {
		left := len(order) - next
		var fits [][]int
		for _, pat := range seedPatterns {
			if len(pat) <= left {
				fits = append(fits, pat)
			}
		}
		if len(fits) == 0 {
			b.warnf("guaranteed_merge_sets %d needs more plates, using %d", want, len(b.res.Seeds))
			break
		}

		pat := fits[b.rng.IntN(len(fits))]
		s := Seed{Type: types[ti]}
		for _, units := range pat {
			p := order[next]
			next++
			for k := 0; k < units; k++ {
				b.plates[p].Active[k] = board.Slot{Type: types[ti]}
			}
			b.seed[p] = true
			s.Plates = append(s.Plates, p)
			s.Counts = append(s.Counts, units)
		}
		counts[ti] -= 3
		b.res.Seeds = append(b.res.Seeds, s)
	}

	seeds := b.res.Seeds
	b.rng.Shuffle(len(seeds), func(i, j int) { seeds[i], seeds[j] = seeds[j], seeds[i] })
	b.spec.GuaranteedMergeSets = len(seeds)
}

// chooseLockedPlates classifies non-seed plates, returning the sushi-locked ones
// At least one plate stays open so the board is playable
func (b *build) chooseLockedPlates() []int {
	var free []int
	for p := range b.plates {
		if !b.seed[p] {
			free = append(free, p)
		}
	}
	limit := len(free)
	if len(b.res.Seeds) == 0 && limit > 0 {
		limit--
	}

	if b.spec.LockedPlateCount > limit {
		b.warnf("locked_plate_count %d exceeds %d available plates, using %d", b.spec.LockedPlateCount, limit, limit)
		b.spec.LockedPlateCount = limit
	}
	if b.spec.MergeUnlockCount > b.spec.LockedPlateCount {
		b.warnf("merge_unlock_count %d clamped to %d", b.spec.MergeUnlockCount, b.spec.LockedPlateCount)
		b.spec.MergeUnlockCount = b.spec.LockedPlateCount
	}

	b.shuffleInts(free)
	var sushi []int
	for i, p := range free[:b.spec.LockedPlateCount] {
		if i < b.spec.MergeUnlockCount {
			b.plates[p].Class = board.LockedBySushi
			sushi = append(sushi, p)
		} else {
			b.plates[p].Class = board.LockedByAd
		}
	}
	return sushi
}

// newDrawer splits the pool into concentrated and dispersed streams and picks the concentration window
func (b *build) newDrawer(types []catalog.TypeID, counts []int) *drawer {
	d := newDrawer(len(b.plates))

	idx := make([]int, len(types))
	for i := range idx {
		idx[i] = i
	}
	b.shuffleInts(idx)
	focus := make([]bool, len(types))
	for _, i := range idx[:b.spec.ConcentratedTypeCount] {
		focus[i] = true
		b.res.Concentrated = append(b.res.Concentrated, types[i])
	}

	for i, t := range types {
		for k := 0; k < counts[i]; k++ {
			if focus[i] {
				d.focus = append(d.focus, t)
			} else {
				d.rest = append(d.rest, t)
			}
		}
	}
	b.shuffleTypes(d.focus)
	b.shuffleTypes(d.rest)

	var open []int
	for p := range b.plates {
		if b.plates[p].Class != board.LockedByAd {
			open = append(open, p)
		}
	}
	if len(d.focus) == 0 || len(open) == 0 {
		return d
	}

	// Capacity estimate: full actives plus mean layer count at mean size 2, two thirds of it concentrated
	perPlate := (board.SlotCount + b.spec.MinLayersPerPlate + b.spec.MaxLayersPerPlate) * 2 / 3
	if perPlate < 1 {
		perPlate = 1
	}
	width := (len(d.focus) + perPlate - 1) / perPlate
	if width > len(open) {
		width = len(open)
	}
	start := b.rng.IntN(len(open))
	for k := 0; k < width; k++ {
		d.window[open[(start+k)%len(open)]] = true
	}
	b.log.Printf("[generator] concentrating %d units into %d plates from plate %d", len(d.focus), width, open[start])
	return d
}

// repair breaks a full same-type set by trading its last unit for an unplaced unit of another type
// With no such unit left the last unit goes back to the pool and the set shrinks
func (b *build) repair(p int, set []catalog.TypeID) []catalog.TypeID {
	if !isTriple(set) {
		return set
	}
	last := len(set) - 1
	if u, ok := b.draw.swapOut(p, set[last]); ok {
		set[last] = u
		return set
	}
	b.draw.putBack(set[last])
	return set[:last]
}

func isTriple(set []catalog.TypeID) bool {
	return len(set) == board.SlotCount && set[0] == set[1] && set[1] == set[2]
}

// fillActives fills active slots, three on Normal plates and 1-3 on sushi-locked plates
func (b *build) fillActives() {
	for p := range b.plates {
		ps := &b.plates[p]
		if ps.Class == board.LockedByAd || b.seed[p] {
			continue
		}
		target := board.SlotCount
		if ps.Class == board.LockedBySushi {
			target = 1 + b.rng.IntN(board.SlotCount)
		}

		set := make([]catalog.TypeID, 0, board.SlotCount)
		for len(set) < target {
			t, ok := b.draw.next(p)
			if !ok {
				break
			}
			set = append(set, t)
		}
		for i, t := range b.repair(p, set) {
			ps.Active[i] = board.Slot{Type: t}
		}
	}
}

// fillLayers queues random(min,max) layers of 1-3 units on every open plate
func (b *build) fillLayers() {
	span := b.spec.MaxLayersPerPlate - b.spec.MinLayersPerPlate + 1
	for p := range b.plates {
		if b.plates[p].Class == board.LockedByAd {
			continue
		}
		n := b.spec.MinLayersPerPlate + b.rng.IntN(span)
		for l := 0; l < n && b.draw.Len() > 0; l++ {
			size := 1 + b.rng.IntN(board.SlotCount)
			set := make([]catalog.TypeID, 0, size)
			for len(set) < size {
				t, ok := b.draw.next(p)
				if !ok {
					break
				}
				set = append(set, t)
			}
			if set = b.repair(p, set); len(set) > 0 {
				b.appendLayer(p, set)
			}
		}
	}
}

func (b *build) appendLayer(p int, types []catalog.TypeID) {
	l, err := board.RandomLayer(types, b.rng)
	if err != nil {
		b.errorf("plate %d: %v", p, err)
		return
	}
	b.plates[p].Reserve = append(b.plates[p].Reserve, l)
}

// sweep deals leftover units round-robin: free active slots on open non-seed plates, then new layers
func (b *build) sweep() {
	if b.draw.Len() == 0 {
		return
	}
	var targets []int
	for p := range b.plates {
		if b.plates[p].Class != board.LockedByAd {
			targets = append(targets, p)
		}
	}
	if len(targets) == 0 {
		b.errorf("%d units left with no open plate", b.draw.Len())
		return
	}
	b.log.Printf("[generator] sweeping %d leftover units", b.draw.Len())

	open := make(map[int][]catalog.TypeID)
	for b.draw.Len() > 0 {
		for _, p := range targets {
			t, ok := b.draw.next(p)
			if !ok {
				break
			}
			if b.placeActive(p, t) {
				continue
			}
			cur := open[p]
			if len(cur) == board.SlotCount {
				b.appendLayer(p, cur)
				cur = nil
			}
			if len(cur) == 2 && cur[0] == t && cur[1] == t {
				if u, ok := b.draw.swapOut(p, t); ok {
					t = u
				} else {
					b.appendLayer(p, cur)
					cur = nil
				}
			}
			open[p] = append(cur, t)
		}
	}
	for _, p := range targets {
		if len(open[p]) > 0 {
			b.appendLayer(p, open[p])
		}
	}
}

// placeActive puts t into the first free active slot of a Normal non-seed plate
func (b *build) placeActive(p int, t catalog.TypeID) bool {
	ps := &b.plates[p]
	if ps.Class != board.Normal || b.seed[p] {
		return false
	}
	slot := -1
	var others []catalog.TypeID
	for i, s := range ps.Active {
		if s.Filled() {
			others = append(others, s.Type)
		} else if slot < 0 {
			slot = i
		}
	}
	if slot < 0 {
		return false
	}
	if len(others) == 2 && others[0] == t && others[1] == t {
		u, ok := b.draw.swapOut(p, t)
		if !ok {
			return false
		}
		t = u
	}
	ps.Active[slot] = board.Slot{Type: t}
	return true
}

// assignRequired draws each sushi-locked plate's unlock type from types on Normal plates
// Types with a full set on Normal plates are preferred so the unlock is reachable
func (b *build) assignRequired(sushi []int) {
	if len(sushi) == 0 {
		return
	}
	var normal []board.PlateState
	for p := range b.plates {
		if b.plates[p].Class == board.Normal {
			normal = append(normal, b.plates[p])
		}
	}
	counts := board.CountTypes(normal)

	var full, present []catalog.TypeID
	for _, t := range b.res.Types {
		if counts[t] >= 3 {
			full = append(full, t)
		}
		if counts[t] > 0 {
			present = append(present, t)
		}
	}
	pick := full
	if len(pick) == 0 {
		pick = present
	}

	for _, p := range sushi {
		if len(pick) == 0 {
			b.warnf("no type on open plates to unlock plate %d, leaving it open", p)
			b.plates[p].Class = board.Normal
			b.spec.MergeUnlockCount--
			b.spec.LockedPlateCount--
			continue
		}
		b.plates[p].Required = pick[b.rng.IntN(len(pick))]
	}
}

// lockItems sets lock stage 3 on random positions of Normal non-seed plates
func (b *build) lockItems() {
	type position struct{ plate, layer, index int }
	var cands []position
	for p := range b.plates {
		ps := &b.plates[p]
		if ps.Class != board.Normal || b.seed[p] {
			continue
		}
		for i, s := range ps.Active {
			if s.Filled() {
				cands = append(cands, position{p, -1, i})
			}
		}
		for li, l := range ps.Reserve {
			for e := 0; e < l.Len(); e++ {
				cands = append(cands, position{p, li, e})
			}
		}
	}

	k := b.spec.LockedItemCount
	if k > len(cands) {
		b.warnf("locked_item_count %d exceeds %d positions, using %d", k, len(cands), len(cands))
		k = len(cands)
		b.spec.LockedItemCount = k
	}
	b.rng.Shuffle(len(cands), func(i, j int) { cands[i], cands[j] = cands[j], cands[i] })

	for _, c := range cands[:k] {
		ps := &b.plates[c.plate]
		if c.layer < 0 {
			ps.Active[c.index].Lock = board.MaxLockStage
		} else {
			ps.Reserve[c.layer] = ps.Reserve[c.layer].WithLock(c.index, board.MaxLockStage)
		}
	}
}

// finish runs the diagnostic pass and fills the result
func (b *build) finish() {
	placed := 0
	for i := range b.plates {
		placed += b.plates[i].ItemCount()
	}
	if placed != b.spec.TotalItemCount {
		b.errorf("placed %d units, expected %d", placed, b.spec.TotalItemCount)
	}

	violations := board.VerifyStates(b.plates)
	for _, v := range violations {
		b.errorf("%s", v)
	}

	b.res.Plates = b.plates
	b.res.Effective = b.spec
	b.res.Violations = violations
}
