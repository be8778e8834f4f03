// Package ram is the generic backing store for everything in the upper
// address space that no other component claims: work RAM, OAM, the raw
// IO register bytes, high RAM and IE.
package ram

import (
	"errors"
	"fmt"
)

// ErrUnmapped is returned for addresses below work RAM, which belong to
// the cartridge and VRAM.
var ErrUnmapped = errors.New("ram: address not backed by RAM")

const (
	wramStart = 0xC000
	echoStart = 0xE000
	oamStart  = 0xFE00
	oamEnd    = 0xFEA0
	ioStart   = 0xFF00
	hramStart = 0xFF80

	IF   = 0xFF0F
	SVBK = 0xFF70
	IE   = 0xFFFF
)

// RAM backs C000-FFFF. In CGB mode D000-DFFF is switched between seven
// banks by SVBK (FF70); bank 0 selects bank 1.
type RAM struct {
	wram [8][0x1000]byte
	oam  [0xA0]byte
	io   [0x80]byte
	hram [0x7F]byte
	ie   byte

	cgb bool
}

func New() *RAM {
	return &RAM{}
}

// SetCGBMode enables WRAM bank switching.
func (r *RAM) SetCGBMode(on bool) { r.cgb = on }

func (r *RAM) bank() int {
	if !r.cgb {
		return 1
	}
	b := int(r.io[SVBK-ioStart] & 0x07)
	if b == 0 {
		b = 1
	}
	return b
}

// wramSlot resolves C000-DFFF (and its echo) to a bank and offset.
func (r *RAM) wramSlot(addr uint16) (int, uint16) {
	if addr >= echoStart {
		addr -= 0x2000
	}
	if addr < 0xD000 {
		return 0, addr - wramStart
	}
	return r.bank(), addr - 0xD000
}

func (r *RAM) Read(addr uint16) (byte, error) {
	switch {
	case addr < wramStart:
		return 0, fmt.Errorf("%w: %04X", ErrUnmapped, addr)
	case addr < oamStart:
		b, off := r.wramSlot(addr)
		return r.wram[b][off], nil
	case addr < oamEnd:
		return r.oam[addr-oamStart], nil
	case addr < ioStart:
		return 0xFF, nil // unusable area
	case addr < hramStart:
		v := r.io[addr-ioStart]
		switch addr {
		case IF:
			v |= 0xE0 // upper bits always read 1
		case SVBK:
			if r.cgb {
				v |= 0xF8
			}
		}
		return v, nil
	case addr < IE:
		return r.hram[addr-hramStart], nil
	default:
		return r.ie, nil
	}
}

func (r *RAM) Write(addr uint16, value byte) error {
	switch {
	case addr < wramStart:
		return fmt.Errorf("%w: %04X", ErrUnmapped, addr)
	case addr < oamStart:
		b, off := r.wramSlot(addr)
		r.wram[b][off] = value
	case addr < oamEnd:
		r.oam[addr-oamStart] = value
	case addr < ioStart:
		// unusable area, writes ignored
	case addr < hramStart:
		r.io[addr-ioStart] = value
	case addr < IE:
		r.hram[addr-hramStart] = value
	default:
		r.ie = value
	}
	return nil
}

// RequestInterrupt sets the given IF bit.
func (r *RAM) RequestInterrupt(bit int) {
	r.io[IF-ioStart] |= 1 << uint(bit)
}
