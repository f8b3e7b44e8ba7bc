package level

import "github.com/lixenwraith/sushi-merge/catalog"

// drawer hands out unplaced units
// Plates inside the concentration window take two of every three draws from the concentrated stream,
// so three consecutive draws never come from that stream alone; other plates draw dispersed units first
type drawer struct {
	focus  []catalog.TypeID
	rest   []catalog.TypeID
	window []bool
	drawn  []int
}

func newDrawer(plates int) *drawer {
	return &drawer{window: make([]bool, plates), drawn: make([]int, plates)}
}

func (d *drawer) inWindow(p int) bool {
	return p >= 0 && p < len(d.window) && d.window[p]
}

func (d *drawer) queues(p int) [2]*[]catalog.TypeID {
	if d.inWindow(p) && d.drawn[p]%3 != 2 {
		return [2]*[]catalog.TypeID{&d.focus, &d.rest}
	}
	return [2]*[]catalog.TypeID{&d.rest, &d.focus}
}

// Len returns the number of unplaced units
func (d *drawer) Len() int {
	return len(d.focus) + len(d.rest)
}

func (d *drawer) next(p int) (catalog.TypeID, bool) {
	for _, q := range d.queues(p) {
		if len(*q) > 0 {
			t := (*q)[0]
			*q = (*q)[1:]
			if d.inWindow(p) {
				d.drawn[p]++
			}
			return t, true
		}
	}
	return catalog.NoType, false
}

// swapOut trades t for the first unplaced unit of a different type, searching p's preferred stream first
func (d *drawer) swapOut(p int, t catalog.TypeID) (catalog.TypeID, bool) {
	for _, q := range d.queues(p) {
		for i, u := range *q {
			if u != t {
				(*q)[i] = t
				return u, true
			}
		}
	}
	return catalog.NoType, false
}

func (d *drawer) putBack(t catalog.TypeID) {
	d.rest = append(d.rest, t)
}
