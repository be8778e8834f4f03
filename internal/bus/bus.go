// Package bus decodes the 16-bit CPU address space onto the cartridge,
// boot ROM, VRAM, IO router and RAM backing store.
package bus

import "github.com/FabianRolfMatthiasNoll/cgbio/internal/cart"

// Memory is a fallible byte-addressed device.
type Memory interface {
	Read(addr uint16) (byte, error)
	Write(addr uint16, value byte) error
}

// VRAM is the banked video memory at 0x8000-0x9FFF, accessed through the
// currently selected bank.
type VRAM interface {
	ReadVRAM(addr uint16) (byte, error)
	WriteVRAM(addr uint16, value byte) error
}

const (
	romEnd      = 0x8000
	vramEnd     = 0xA000
	extRAMEnd   = 0xC000
	ioStart     = 0xFF00
	ioEnd       = 0xFF80
	dmgBootSize = 0x100
	// CGB boot ROMs skip the cartridge header at 0x0100-0x01FF
	cgbHeaderStart = 0x0100
	cgbHeaderEnd   = 0x0200
)

type Bus struct {
	cart  cart.Cartridge
	vram  VRAM
	io    Memory
	store Memory

	boot        []byte
	bootEnabled bool
	cgb         bool
}

// New creates a bus. The IO page goes to store until SetIO is called.
func New(c cart.Cartridge, vram VRAM, store Memory) *Bus {
	return &Bus{cart: c, vram: vram, store: store}
}

// SetIO connects the register router for 0xFF00-0xFF7F.
func (b *Bus) SetIO(io Memory) { b.io = io }

// SetCartridge swaps the inserted cartridge.
func (b *Bus) SetCartridge(c cart.Cartridge) { b.cart = c }

// SetBootROM maps a boot ROM over the start of cartridge ROM. A nil or
// empty image leaves the cartridge visible.
func (b *Bus) SetBootROM(boot []byte) {
	b.boot = boot
	b.bootEnabled = len(boot) > 0
}

func (b *Bus) BootROMEnabled() bool { return b.bootEnabled }

// DisableBootROM unmaps the boot ROM for good.
func (b *Bus) DisableBootROM() { b.bootEnabled = false }

func (b *Bus) SetCGBMode(on bool) { b.cgb = on }
func (b *Bus) CGBMode() bool      { return b.cgb }

func (b *Bus) inBoot(addr uint16) bool {
	if !b.bootEnabled || int(addr) >= len(b.boot) {
		return false
	}
	if addr < dmgBootSize {
		return true
	}
	return addr >= cgbHeaderEnd || addr < cgbHeaderStart
}

func (b *Bus) Read(addr uint16) (byte, error) {
	switch {
	case addr < romEnd:
		if b.inBoot(addr) {
			return b.boot[addr], nil
		}
		return b.readCart(addr), nil
	case addr < vramEnd:
		return b.vram.ReadVRAM(addr)
	case addr < extRAMEnd:
		return b.readCart(addr), nil
	case addr >= ioStart && addr < ioEnd && b.io != nil:
		return b.io.Read(addr)
	default:
		return b.store.Read(addr)
	}
}

func (b *Bus) Write(addr uint16, value byte) error {
	switch {
	case addr < romEnd:
		if b.cart != nil {
			b.cart.Write(addr, value)
		}
		return nil
	case addr < vramEnd:
		return b.vram.WriteVRAM(addr, value)
	case addr < extRAMEnd:
		if b.cart != nil {
			b.cart.Write(addr, value)
		}
		return nil
	case addr >= ioStart && addr < ioEnd && b.io != nil:
		return b.io.Write(addr, value)
	default:
		return b.store.Write(addr, value)
	}
}

func (b *Bus) readCart(addr uint16) byte {
	if b.cart == nil {
		return 0xFF
	}
	return b.cart.Read(addr)
}
