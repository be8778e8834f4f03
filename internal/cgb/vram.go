package cgb

import "fmt"

const (
	VRAMStart = 0x8000
	VRAMEnd   = 0xA000 // exclusive
	VRAMSize  = VRAMEnd - VRAMStart

	// tile data lives below the tile maps at 0x9800
	tileDataEnd = 0x9800
)

// BankSelect is the VBK register (FF4F). Only bit 0 is stored.
type BankSelect struct {
	active int
}

// Set switches the active bank to bit 0 of value.
func (b *BankSelect) Set(value byte) {
	bank := int(value & 1)
	if bank == b.active {
		return
	}
	b.active = bank
}

// Get returns the active bank with all unused bits set.
func (b *BankSelect) Get() byte { return byte(b.active) | 0xFE }

// Active returns the currently selected bank (0 or 1).
func (b *BankSelect) Active() int { return b.active }

// VRAM holds both 8 KiB video RAM banks. Which one the CPU sees is decided
// by the BankSelect register passed to each accessor.
type VRAM struct {
	banks [2][VRAMSize]byte
}

func checkVRAM(addr uint16) error {
	if addr < VRAMStart || addr >= VRAMEnd {
		return fmt.Errorf("%w: %04X", ErrVRAMAddress, addr)
	}
	return nil
}

// Read returns the byte at addr in the given bank.
func (v *VRAM) Read(bank int, addr uint16) (byte, error) {
	if err := checkVRAM(addr); err != nil {
		return 0, err
	}
	return v.banks[bank&1][addr-VRAMStart], nil
}

// Write stores value at addr in the given bank.
func (v *VRAM) Write(bank int, addr uint16, value byte) error {
	if err := checkVRAM(addr); err != nil {
		return err
	}
	v.banks[bank&1][addr-VRAMStart] = value
	return nil
}
