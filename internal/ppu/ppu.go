package ppu

// InterruptRequester is a callback signature to request IF bits (0:VBlank, 1:STAT, etc.).
type InterruptRequester func(bit int)

// HBlankHook is called each time a visible line enters mode 0. The HDMA
// engine hangs off this.
type HBlankHook func() error

// LCD register addresses.
const (
	LCDC = 0xFF40
	STAT = 0xFF41
	SCY  = 0xFF42
	SCX  = 0xFF43
	LY   = 0xFF44
	LYC  = 0xFF45
	BGP  = 0xFF47
	OBP0 = 0xFF48
	OBP1 = 0xFF49
	WY   = 0xFF4A
	WX   = 0xFF4B
)

const (
	dotsPerLine  = 456
	visibleLines = 144
	totalLines   = 154
)

// PPU models the LCD controller registers and line timing. It owns no
// video memory; VRAM and palettes live in the cgb package.
type PPU struct {
	// regs
	lcdc byte // FF40
	stat byte // FF41 (mode bits 0-1, coincidence flag bit2, enables bits3-6)
	scy  byte // FF42
	scx  byte // FF43
	ly   byte // FF44
	lyc  byte // FF45
	bgp  byte // FF47
	obp0 byte // FF48
	obp1 byte // FF49
	wy   byte // FF4A
	wx   byte // FF4B

	dot int // dots within current line [0..455]

	req    InterruptRequester
	hblank HBlankHook
}

func New(req InterruptRequester) *PPU {
	return &PPU{req: req}
}

// SetHBlankHook installs the function called on every visible H-Blank.
func (p *PPU) SetHBlankHook(h HBlankHook) { p.hblank = h }

// CPURead returns the value of an LCD register. Returns 0xFF for others.
func (p *PPU) CPURead(addr uint16) byte {
	switch addr {
	case LCDC:
		return p.lcdc
	case STAT:
		// bit7 reads as 1; bit6..3 are enables; bit2 coincidence; bit1..0 mode
		return 0x80 | (p.stat & 0x7F)
	case SCY:
		return p.scy
	case SCX:
		return p.scx
	case LY:
		return p.ly
	case LYC:
		return p.lyc
	case BGP:
		return p.bgp
	case OBP0:
		return p.obp0
	case OBP1:
		return p.obp1
	case WY:
		return p.wy
	case WX:
		return p.wx
	default:
		return 0xFF
	}
}

// CPUWrite handles writes to LCD registers. It reports whether the stored
// value changed, which the caller uses to drop cached DMG palette shades.
func (p *PPU) CPUWrite(addr uint16, value byte) bool {
	switch addr {
	case LCDC:
		prev := p.lcdc
		p.lcdc = value
		if (p.lcdc&0x80) == 0 && (prev&0x80) != 0 {
			// Turning LCD off resets LY/mode
			p.ly = 0
			p.dot = 0
			p.setMode(0)
			p.updateLYC()
		} else if (p.lcdc&0x80) != 0 && (prev&0x80) == 0 {
			// Turning LCD on: start at LY=0, mode 2 (OAM)
			p.ly = 0
			p.dot = 0
			p.setMode(2)
			p.updateLYC()
		}
		return prev != value
	case STAT:
		prev := p.stat
		p.stat = (p.stat & 0x07) | (value & 0x78)
		return prev != p.stat
	case SCY:
		return set(&p.scy, value)
	case SCX:
		return set(&p.scx, value)
	case LY:
		p.ly = 0
		p.dot = 0
		p.updateLYC()
		if (p.lcdc & 0x80) != 0 {
			p.setMode(2)
		}
		return true
	case LYC:
		changed := set(&p.lyc, value)
		p.updateLYC()
		return changed
	case BGP:
		return set(&p.bgp, value)
	case OBP0:
		return set(&p.obp0, value)
	case OBP1:
		return set(&p.obp1, value)
	case WY:
		return set(&p.wy, value)
	case WX:
		return set(&p.wx, value)
	}
	return false
}

func set(reg *byte, value byte) bool {
	if *reg == value {
		return false
	}
	*reg = value
	return true
}

// Tick advances PPU state by the given number of dots. It stops at the
// first error returned by the H-Blank hook.
func (p *PPU) Tick(dots int) error {
	for i := 0; i < dots; i++ {
		if (p.lcdc & 0x80) == 0 { // LCD off
			return nil
		}
		p.dot++
		// Mode scheduling
		var mode byte
		if p.ly >= visibleLines {
			mode = 1
		} else {
			switch {
			case p.dot < 80:
				mode = 2
			case p.dot < 80+172:
				mode = 3
			default:
				mode = 0
			}
		}
		if p.setMode(mode) && mode == 0 && p.hblank != nil {
			if err := p.hblank(); err != nil {
				return err
			}
		}

		if p.dot >= dotsPerLine {
			p.dot = 0
			p.ly++
			if p.ly == visibleLines {
				// Enter VBlank
				p.request(0)
				if (p.stat & (1 << 4)) != 0 {
					p.request(1)
				}
			} else if p.ly >= totalLines {
				p.ly = 0
			}
			p.updateLYC()
			// Set mode for new line start (dot=0)
			if p.ly >= visibleLines {
				p.setMode(1)
			} else {
				p.setMode(2)
			}
		}
	}
	return nil
}

func (p *PPU) request(bit int) {
	if p.req != nil {
		p.req(bit)
	}
}

// setMode switches STAT mode bits and reports whether the mode changed.
func (p *PPU) setMode(mode byte) bool {
	prev := p.stat & 0x03
	if prev == mode {
		return false
	}
	p.stat = (p.stat &^ 0x03) | (mode & 0x03)
	switch mode {
	case 0: // HBlank
		if (p.stat & (1 << 3)) != 0 {
			p.request(1)
		}
	case 2: // OAM
		if (p.stat & (1 << 5)) != 0 {
			p.request(1)
		}
	}
	return true
}

func (p *PPU) updateLYC() {
	if p.ly == p.lyc {
		p.stat |= 1 << 2
		if (p.stat & (1 << 6)) != 0 {
			p.request(1)
		}
	} else {
		p.stat &^= 1 << 2
	}
}

// Mode returns the current STAT mode (0..3).
func (p *PPU) Mode() byte { return p.stat & 0x03 }
