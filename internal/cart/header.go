package cart

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
)

const (
	logoStart  = 0x0104
	titleStart = 0x0134
	cgbFlag    = 0x0143
	headerEnd  = 0x014F
)

// ErrShortROM is returned when the image is too small to hold a header.
var ErrShortROM = errors.New("cart: ROM too small to contain header")

var nintendoLogo = [48]byte{
	0xCE, 0xED, 0x66, 0x66, 0xCC, 0x0D, 0x00, 0x0B, 0x03, 0x73, 0x00, 0x83, 0x00, 0x0C, 0x00, 0x0D,
	0x00, 0x08, 0x11, 0x1F, 0x88, 0x89, 0x00, 0x0E, 0xDC, 0xCC, 0x6E, 0xE6, 0xDD, 0xDD, 0xD9, 0x99,
	0xBB, 0xBB, 0x67, 0x63, 0x6E, 0x0E, 0xEC, 0xCC, 0xDD, 0xDC, 0x99, 0x9F, 0xBB, 0xB9, 0x33, 0x3E,
}

// Header is the decoded cartridge header at 0x0100-0x014F.
type Header struct {
	Title          string // trimmed ASCII
	CGBFlag        byte   // 0x0143
	SGBFlag        byte   // 0x0146
	CartType       byte   // 0x0147
	ROMSizeCode    byte   // 0x0148
	RAMSizeCode    byte   // 0x0149
	HeaderChecksum byte   // 0x014D
	GlobalChecksum uint16 // 0x014E-0x014F

	ROMSizeBytes int
	RAMSizeBytes int
	LogoOK       bool
}

func ParseHeader(rom []byte) (*Header, error) {
	if len(rom) <= headerEnd {
		return nil, fmt.Errorf("%w: %d bytes", ErrShortROM, len(rom))
	}

	// CGB titles are 15 bytes; the 16th is the CGB flag
	end := titleStart + 16
	if rom[cgbFlag]&0x80 != 0 {
		end = cgbFlag
	}
	title := strings.TrimRight(string(rom[titleStart:end]), "\x00")

	h := &Header{
		Title:          title,
		CGBFlag:        rom[cgbFlag],
		SGBFlag:        rom[0x0146],
		CartType:       rom[0x0147],
		ROMSizeCode:    rom[0x0148],
		RAMSizeCode:    rom[0x0149],
		HeaderChecksum: rom[0x014D],
		GlobalChecksum: binary.BigEndian.Uint16(rom[0x014E:0x0150]),
		ROMSizeBytes:   romSize(rom[0x0148]),
		RAMSizeBytes:   ramSize(rom[0x0149]),
		LogoOK:         [48]byte(rom[logoStart:logoStart+48]) == nintendoLogo,
	}
	return h, nil
}

// SupportsCGB reports whether the cartridge enables color hardware.
// Both 0x80 (dual mode) and 0xC0 (CGB only) set bit 7.
func (h *Header) SupportsCGB() bool { return h.CGBFlag&0x80 != 0 }

// Banked reports whether the cartridge type uses a memory bank controller.
func (h *Header) Banked() bool { return h.CartType != 0x00 }

func HeaderChecksumOK(rom []byte) bool {
	if len(rom) < 0x014E {
		return false
	}
	var sum byte
	for addr := titleStart; addr <= 0x014C; addr++ {
		sum = sum - rom[addr] - 1
	}
	return sum == rom[0x014D]
}

func romSize(code byte) int {
	switch {
	case code <= 0x08:
		return (32 * 1024) << code
	case code == 0x52:
		return 1152 * 1024
	case code == 0x53:
		return 1280 * 1024
	case code == 0x54:
		return 1536 * 1024
	}
	return 0
}

func ramSize(code byte) int {
	switch code {
	case 0x02:
		return 8 * 1024
	case 0x03:
		return 32 * 1024
	case 0x04:
		return 128 * 1024
	case 0x05:
		return 64 * 1024
	}
	return 0
}
