// Package render holds the renderer-side view of the video core: which
// cached tiles are stale and whether cached palette colors must be dropped.
package render

import "slices"

// Cache tracks invalidations coming from the video core. A renderer drains
// it once per frame with TakePaletteInvalidation and TakeChangedTiles.
type Cache struct {
	clearCache   bool
	tilesChanged [2]map[uint16]struct{}
}

func NewCache() *Cache {
	c := &Cache{}
	for i := range c.tilesChanged {
		c.tilesChanged[i] = make(map[uint16]struct{})
	}
	return c
}

// InvalidatePaletteCache marks every cached colorized tile stale.
func (c *Cache) InvalidatePaletteCache() { c.clearCache = true }

// TileChanged records a written tile (16-byte aligned address) in bank.
func (c *Cache) TileChanged(bank int, addr uint16) {
	c.tilesChanged[bank&1][addr&0xFFF0] = struct{}{}
}

// PaletteInvalidated reports whether an invalidation is pending.
func (c *Cache) PaletteInvalidated() bool { return c.clearCache }

// TakePaletteInvalidation returns and clears the pending invalidation.
func (c *Cache) TakePaletteInvalidation() bool {
	v := c.clearCache
	c.clearCache = false
	return v
}

// ChangedTiles returns the changed tile addresses of bank in ascending order.
func (c *Cache) ChangedTiles(bank int) []uint16 {
	set := c.tilesChanged[bank&1]
	out := make([]uint16, 0, len(set))
	for a := range set {
		out = append(out, a)
	}
	slices.Sort(out)
	return out
}

// TakeChangedTiles returns the changed tiles of bank and forgets them.
func (c *Cache) TakeChangedTiles(bank int) []uint16 {
	out := c.ChangedTiles(bank)
	c.tilesChanged[bank&1] = make(map[uint16]struct{})
	return out
}
