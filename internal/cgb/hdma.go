package cgb

import "fmt"

// HDMA register addresses.
const (
	HDMA1 = 0xFF51 // source high
	HDMA2 = 0xFF52 // source low (bits 4-7)
	HDMA3 = 0xFF53 // destination high (bits 0-4)
	HDMA4 = 0xFF54 // destination low (bits 4-7)
	HDMA5 = 0xFF55 // length/mode/status

	hdmaChunk = 0x10
)

// Memory is the general bus the DMA copies through, so that every byte
// goes through the normal address decoding and its side effects.
type Memory interface {
	Read(addr uint16) (byte, error)
	Write(addr uint16, value byte) error
}

// HDMA is the CGB VRAM DMA engine. A write to HDMA5 with bit 7 clear runs a
// general purpose transfer to completion before returning; with bit 7 set
// it arms an H-Blank transfer that moves one 16-byte chunk per Step.
type HDMA struct {
	mem Memory

	hdma1, hdma2, hdma3, hdma4 byte
	// while active: bit 7 clear, bits 0-6 = chunks remaining - 1
	hdma5 byte

	active  bool
	curSrc  uint16
	curDest uint16
}

func NewHDMA(mem Memory) *HDMA {
	return &HDMA{mem: mem, hdma5: 0xFF}
}

// SetMemory attaches the bus used for copies.
func (h *HDMA) SetMemory(mem Memory) { h.mem = mem }

// Active reports whether an H-Blank transfer is in progress.
func (h *HDMA) Active() bool { return h.active }

// Read returns HDMA5. HDMA1-HDMA4 are write-only and fail with ErrWriteOnly.
func (h *HDMA) Read(addr uint16) (byte, error) {
	if addr == HDMA5 {
		return h.hdma5, nil
	}
	return 0, fmt.Errorf("%w: %04X", ErrWriteOnly, addr)
}

// Write stores one of the HDMA registers; a write to HDMA5 starts,
// updates or stops a transfer.
func (h *HDMA) Write(addr uint16, value byte) error {
	switch addr {
	case HDMA1:
		h.hdma1 = value
	case HDMA2:
		h.hdma2 = value
	case HDMA3:
		h.hdma3 = value
	case HDMA4:
		h.hdma4 = value
	case HDMA5:
		return h.writeHDMA5(value)
	}
	return nil
}

func (h *HDMA) source() uint16 { return uint16(h.hdma1)<<8 | uint16(h.hdma2&0xF0) }

func (h *HDMA) dest() uint16 {
	return 0x8000 | uint16(h.hdma3&0x1F)<<8 | uint16(h.hdma4&0xF0)
}

func (h *HDMA) writeHDMA5(value byte) error {
	if h.active {
		if value&0x80 == 0 {
			// stop: bit 7 set, remaining count kept
			h.active = false
			h.hdma5 = (h.hdma5 & 0x7F) | 0x80
		} else {
			h.hdma5 = value & 0x7F
		}
		return nil
	}

	src, dst := h.source(), h.dest()
	if value&0x80 != 0 {
		h.hdma5 = value & 0x7F
		h.active = true
		h.curSrc = src
		h.curDest = dst
		return nil
	}

	// registers are only reset once the copy succeeds
	length := (int(value&0x7F) + 1) * hdmaChunk
	if err := h.copy(src, dst, length); err != nil {
		return err
	}
	h.hdma1, h.hdma2, h.hdma3, h.hdma4, h.hdma5 = 0xFF, 0xFF, 0xFF, 0xFF, 0xFF
	return nil
}

// Step moves one chunk of an active H-Blank transfer. It must be called
// once per H-Blank and is a no-op when idle.
func (h *HDMA) Step() error {
	if !h.active {
		return nil
	}
	src := h.curSrc & 0xFFF0
	dst := 0x8000 | (h.curDest & 0x1FF0)
	if err := h.copy(src, dst, hdmaChunk); err != nil {
		return err
	}

	h.curSrc = src + hdmaChunk
	h.curDest = dst + hdmaChunk
	if h.curDest == 0xA000 {
		h.curDest = 0x8000
	}
	// the source never points into VRAM
	if h.curSrc == 0x8000 {
		h.curSrc = 0xA000
	}

	h.hdma1 = byte(h.curSrc >> 8)
	h.hdma2 = byte(h.curSrc) & 0xF0
	h.hdma3 = byte(h.curDest>>8) & 0x1F
	h.hdma4 = byte(h.curDest) & 0xF0

	if h.hdma5 == 0 {
		h.active = false
		h.hdma5 = 0xFF
		return nil
	}
	h.hdma5--
	return nil
}

func (h *HDMA) copy(src, dst uint16, n int) error {
	for i := 0; i < n; i++ {
		v, err := h.mem.Read(src + uint16(i))
		if err != nil {
			return fmt.Errorf("hdma: read %04X: %w", src+uint16(i), err)
		}
		if err := h.mem.Write(dst+uint16(i), v); err != nil {
			return fmt.Errorf("hdma: write %04X: %w", dst+uint16(i), err)
		}
	}
	return nil
}
