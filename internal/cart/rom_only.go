package cart

const (
	romEnd      = 0x8000
	extRAMStart = 0xA000
	extRAMEnd   = 0xC000
)

// ROMOnly is a cartridge without a bank controller. It may carry up to
// 8 KiB of unbanked external RAM.
type ROMOnly struct {
	rom []byte
	ram []byte
}

func NewROMOnly(rom []byte, ramSize int) *ROMOnly {
	if ramSize > extRAMEnd-extRAMStart {
		ramSize = extRAMEnd - extRAMStart
	}
	return &ROMOnly{rom: rom, ram: make([]byte, ramSize)}
}

func (c *ROMOnly) Read(addr uint16) byte {
	switch {
	case addr < romEnd:
		if int(addr) < len(c.rom) {
			return c.rom[addr]
		}
	case addr >= extRAMStart && addr < extRAMEnd:
		if off := int(addr - extRAMStart); off < len(c.ram) {
			return c.ram[off]
		}
	}
	return 0xFF
}

// Write stores into external RAM; ROM writes are ignored.
func (c *ROMOnly) Write(addr uint16, value byte) {
	if addr >= extRAMStart && addr < extRAMEnd {
		if off := int(addr - extRAMStart); off < len(c.ram) {
			c.ram[off] = value
		}
	}
}
