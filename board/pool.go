package board

import "github.com/lixenwraith/sushi-merge/catalog"

// Handle addresses an item in the pool arena, NoItem marks an empty slot
type Handle uint32

const NoItem Handle = 0

// PlateID is the stable index of a plate on the board
type PlateID int

// NoPlate marks an item held by no plate (in hand or in flight to the pool)
const NoPlate PlateID = -1

// Item is one live piece on the board
// Plate is a weak back-index kept in sync by Board, never ownership
type Item struct {
	Type  catalog.TypeID
	Lock  int
	Plate PlateID
	live  bool
}

// Locked reports whether the item blocks moves and merges
func (it *Item) Locked() bool {
	return it.Lock > 0
}

// Pool is a free-list arena of items
// Handle 0 is reserved so the zero value of a slot is empty
type Pool struct {
	items []Item
	free  []Handle
	live  int
}

// NewPool creates an arena pre-sized for capacity items
func NewPool(capacity int) *Pool {
	items := make([]Item, 1, capacity+1)
	return &Pool{items: items}
}

// Get returns a fresh detached item of type t
func (p *Pool) Get(t catalog.TypeID) Handle {
	var h Handle
	if n := len(p.free); n > 0 {
		h = p.free[n-1]
		p.free = p.free[:n-1]
	} else {
		h = Handle(len(p.items))
		p.items = append(p.items, Item{})
	}
	p.items[h] = Item{Type: t, Plate: NoPlate, live: true}
	p.live++
	return h
}

// Release returns h to the free list, false if h is not live
func (p *Pool) Release(h Handle) bool {
	it := p.Item(h)
	if it == nil {
		return false
	}
	*it = Item{Plate: NoPlate}
	p.free = append(p.free, h)
	p.live--
	return true
}

// Item returns the live item for h or nil
func (p *Pool) Item(h Handle) *Item {
	if h == NoItem || int(h) >= len(p.items) || !p.items[h].live {
		return nil
	}
	return &p.items[h]
}

// Live returns the number of items handed out and not released
func (p *Pool) Live() int {
	return p.live
}

// Handles returns all live handles in ascending order
func (p *Pool) Handles() []Handle {
	out := make([]Handle, 0, p.live)
	for i := 1; i < len(p.items); i++ {
		if p.items[i].live {
			out = append(out, Handle(i))
		}
	}
	return out
}
