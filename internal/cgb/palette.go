package cgb

import "fmt"

const (
	NumPalettes      = 8
	ColorsPerPalette = 4
	PaletteEntries   = NumPalettes * ColorsPerPalette

	// initial palette entry; hardware leaves CRAM undefined, all ones reads as white
	paletteReset = 0xFFFF
)

// PaletteMemory is one CRAM bank (background or object): 8 palettes of 4
// colors, each color a little-endian RGB555 word. Bit 15 is unused.
type PaletteMemory [PaletteEntries]uint16

func newPaletteMemory() PaletteMemory {
	var m PaletteMemory
	for i := range m {
		m[i] = paletteReset
	}
	return m
}

// PaletteIndex is BCPS/OCPS (FF68/FF6A). The raw value is decomposed as
//
//	bit 7    auto-increment after data writes
//	bit 1-5  color entry 0..31
//	bit 0    0 = low byte, 1 = high byte
type PaletteIndex struct {
	raw     byte
	autoInc bool
	index   int
	hl      int
}

// Set stores raw and recomputes the decoded fields.
func (p *PaletteIndex) Set(raw byte) {
	if raw == p.raw {
		return
	}
	p.raw = raw
	p.hl = int(raw & 1)
	p.index = int(raw>>1) & 0x1F
	p.autoInc = raw&0x80 != 0
}

func (p *PaletteIndex) Get() byte     { return p.raw }
func (p *PaletteIndex) Index() int    { return p.index }
func (p *PaletteIndex) HighLow() int  { return p.hl }
func (p *PaletteIndex) AutoInc() bool { return p.autoInc }

// AdvanceIfEnabled bumps the 7-bit address field after a data write when
// auto-increment is on. Index and byte selector roll over together and
// 0x7F wraps to 0x00; the auto-increment bit stays set.
func (p *PaletteIndex) AdvanceIfEnabled() {
	if !p.autoInc {
		return
	}
	p.Set(0x80 | ((p.raw + 1) & 0x7F))
}

// PaletteColor is BCPD/OCPD (FF69/FF6B), the data port into one palette
// memory addressed by its paired index register. It borrows both; the
// Video subsystem owns them.
type PaletteColor struct {
	mem   *PaletteMemory
	index *PaletteIndex
}

func NewPaletteColor(mem *PaletteMemory, index *PaletteIndex) *PaletteColor {
	return &PaletteColor{mem: mem, index: index}
}

// Set writes one byte of the current entry and advances the index.
func (c *PaletteColor) Set(value byte) {
	i := c.index.Index()
	entry := c.mem[i]
	if c.index.HighLow() == 1 {
		entry = (entry & 0x00FF) | uint16(value)<<8
	} else {
		entry = (entry & 0xFF00) | uint16(value)
	}
	c.mem[i] = entry
	c.index.AdvanceIfEnabled()
}

// Get returns the whole entry at the current index. Reads are not byte
// selected and never advance the index.
func (c *PaletteColor) Get() uint16 { return c.mem[c.index.Index()] }

// ResolveColor returns the 24-bit 0xRRGGBB value of a palette color.
func (c *PaletteColor) ResolveColor(palette, color int) (uint32, error) {
	if palette < 0 || palette >= NumPalettes || color < 0 || color >= ColorsPerPalette {
		return 0, fmt.Errorf("%w: palette %d color %d", ErrPaletteIndex, palette, color)
	}
	return Expand15(c.mem[palette*ColorsPerPalette+color]), nil
}

// Expand15 converts an RGB555 word (red in the low bits) to 0xRRGGBB by
// shifting each 5-bit channel into the top of its byte. Bit 15 is ignored.
func Expand15(c uint16) uint32 {
	c &= 0x7FFF
	r := uint32(c&0x1F) << 3
	g := uint32((c>>5)&0x1F) << 3
	b := uint32((c>>10)&0x1F) << 3
	return r<<16 | g<<8 | b
}
