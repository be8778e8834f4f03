package mmio

// IO register addresses handled by the router. LCD, timer and HDMA
// addresses are defined next to their owners (ppu, timer, cgb).
const (
	// SB is the serial transfer data register.
	SB uint16 = 0xFF01
	// DMA starts an OAM DMA transfer from (value << 8).
	DMA uint16 = 0xFF46
	// KEY1 is the CGB speed switch register.
	KEY1 uint16 = 0xFF4D
	// VBK selects the CGB VRAM bank.
	VBK uint16 = 0xFF4F
	// BOOT unmaps the boot ROM when written with 0x01 or 0x11.
	BOOT uint16 = 0xFF50
	// BCPS/BCPD are the CGB background palette index and data registers.
	BCPS uint16 = 0xFF68
	BCPD uint16 = 0xFF69
	// OCPS/OCPD are the CGB object palette index and data registers.
	OCPS uint16 = 0xFF6A
	OCPD uint16 = 0xFF6B
	// SVBK selects the CGB WRAM bank. The backing store implements it.
	SVBK uint16 = 0xFF70

	// audio registers and wave RAM
	soundStart uint16 = 0xFF10
	soundEnd   uint16 = 0xFF40 // exclusive

	ioStart uint16 = 0xFF00
	ioEnd   uint16 = 0xFF80 // exclusive

	oamStart uint16 = 0xFE00
	oamSize         = 0xA0
)
