// Package cgb implements the Game Boy Color video/DMA register core:
// VRAM banking, CGB palette memory, HDMA/GDMA transfers and the KEY1
// double-speed register.
package cgb

import "errors"

// These errors indicate a defect in the caller's address decoding, never
// something a running program can provoke: every CPU-originated value is
// masked into range before use.
var (
	ErrVRAMAddress  = errors.New("cgb: VRAM address out of range")
	ErrPaletteIndex = errors.New("cgb: palette index out of range")
	ErrWriteOnly    = errors.New("cgb: read of write-only register")
)
