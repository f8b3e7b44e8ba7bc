package catalog

import "sort"

// TypeID identifies an item type; values are positive, zero means no type
type TypeID int

// NoType marks an empty slot or a missing requirement
const NoType TypeID = 0

// Metadata is the display information for one item type
type Metadata struct {
	ID    TypeID
	Name  string
	Glyph rune
	Color int32 // 0xRRGGBB
}

// Catalog is the read-only view the generator and board use
type Catalog interface {
	Get(id TypeID) (Metadata, bool)
	Types() []TypeID
}

// Static is an in-memory catalog built once at startup
type Static struct {
	entries map[TypeID]Metadata
	order   []TypeID
}

// NewStatic builds a catalog from entries, dropping non-positive and duplicate IDs
func NewStatic(entries ...Metadata) *Static {
	c := &Static{entries: make(map[TypeID]Metadata, len(entries))}
	for _, m := range entries {
		if m.ID <= NoType {
			continue
		}
		if _, dup := c.entries[m.ID]; dup {
			continue
		}
		c.entries[m.ID] = m
		c.order = append(c.order, m.ID)
	}
	sort.Slice(c.order, func(i, j int) bool { return c.order[i] < c.order[j] })
	return c
}

// Get returns metadata for id
func (c *Static) Get(id TypeID) (Metadata, bool) {
	m, ok := c.entries[id]
	return m, ok
}

// Types returns all IDs in ascending order, caller owns the slice
func (c *Static) Types() []TypeID {
	out := make([]TypeID, len(c.order))
	copy(out, c.order)
	return out
}

// Len returns the number of entries
func (c *Static) Len() int {
	return len(c.order)
}

// Default returns the stock sushi catalog
func Default() *Static {
	return NewStatic(
		Metadata{ID: 1, Name: "salmon", Glyph: 'S', Color: 0xFA8072},
		Metadata{ID: 2, Name: "tuna", Glyph: 'T', Color: 0xC0392B},
		Metadata{ID: 3, Name: "egg", Glyph: 'E', Color: 0xF4D03F},
		Metadata{ID: 4, Name: "cucumber", Glyph: 'C', Color: 0x27AE60},
		Metadata{ID: 5, Name: "shrimp", Glyph: 'P', Color: 0xF39C12},
		Metadata{ID: 6, Name: "eel", Glyph: 'U', Color: 0x6E2C00},
		Metadata{ID: 7, Name: "octopus", Glyph: 'O', Color: 0x8E44AD},
		Metadata{ID: 8, Name: "roe", Glyph: 'R', Color: 0xE74C3C},
		Metadata{ID: 9, Name: "squid", Glyph: 'Q', Color: 0xECF0F1},
		Metadata{ID: 10, Name: "avocado", Glyph: 'A', Color: 0x7DCEA0},
		Metadata{ID: 11, Name: "scallop", Glyph: 'H', Color: 0xFDEBD0},
		Metadata{ID: 12, Name: "mackerel", Glyph: 'M', Color: 0x5D6D7E},
	)
}
