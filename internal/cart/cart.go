// Package cart parses cartridge headers and provides the ROM collaborator
// the bus reads from.
package cart

// Cartridge serves ROM (0x0000-0x7FFF) and external RAM (0xA000-0xBFFF).
// Addresses are CPU addresses.
type Cartridge interface {
	Read(addr uint16) byte
	Write(addr uint16, value byte)
}

// NewCartridge parses the header and returns the cartridge. Bank
// switching is not emulated: banked types are mapped as a flat 32 KiB
// image, and callers can check Header.Banked to warn about it.
func NewCartridge(rom []byte) (Cartridge, *Header, error) {
	h, err := ParseHeader(rom)
	if err != nil {
		return nil, nil, err
	}
	return NewROMOnly(rom, h.RAMSizeBytes), h, nil
}
