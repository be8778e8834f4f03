// Package emu wires the color IO core to its collaborators and drives it
// with cycle ticks from a CPU or a script.
package emu

import (
	"fmt"
	"io"

	"github.com/FabianRolfMatthiasNoll/cgbio/internal/bus"
	"github.com/FabianRolfMatthiasNoll/cgbio/internal/cart"
	"github.com/FabianRolfMatthiasNoll/cgbio/internal/cgb"
	"github.com/FabianRolfMatthiasNoll/cgbio/internal/mmio"
	"github.com/FabianRolfMatthiasNoll/cgbio/internal/ppu"
	"github.com/FabianRolfMatthiasNoll/cgbio/internal/ram"
	"github.com/FabianRolfMatthiasNoll/cgbio/internal/render"
	"github.com/FabianRolfMatthiasNoll/cgbio/internal/timer"
)

// CyclesPerFrame is one 154-line frame at normal speed.
const CyclesPerFrame = 70224

type Machine struct {
	cfg Config

	cache  *render.Cache
	video  *cgb.Video
	hdma   *cgb.HDMA
	speed  *cgb.DoubleSpeed
	ram    *ram.RAM
	timer  *timer.Timer
	ppu    *ppu.PPU
	router *mmio.Router
	bus    *bus.Bus

	header *cart.Header
	serial io.Writer
	// odd CPU cycle left over in double speed, where a dot takes two
	dotCarry int
}

// New creates a machine with no cartridge inserted, in DMG mode.
func New(cfg Config) *Machine {
	cfg.Defaults()
	m := &Machine{cfg: cfg}
	m.wire()
	return m
}

func (m *Machine) wire() {
	m.cache = render.NewCache()
	m.video = cgb.NewVideo(m.cache)
	m.speed = &cgb.DoubleSpeed{}
	m.ram = ram.New()
	m.bus = bus.New(nil, m.video, m.ram)
	m.hdma = cgb.NewHDMA(m.bus)
	m.timer = timer.New(m.ram.RequestInterrupt)
	m.ppu = ppu.New(m.ram.RequestInterrupt)
	m.ppu.SetHBlankHook(m.hdma.Step)

	deps := mmio.Deps{
		Store:        m.ram,
		Bus:          m.bus,
		System:       m.bus,
		Timer:        m.timer,
		Sound:        m.cfg.Sound,
		SoundEnabled: m.cfg.SoundEnabled,
		LCD:          m.ppu,
		Renderer:     m.cache,
		Video:        m.video,
		HDMA:         m.hdma,
		Speed:        m.speed,
		Serial:       m.serial,
	}
	if m.cfg.Trace {
		deps.Logger = m.cfg.Logger
	}
	m.router = mmio.New(deps)
	m.bus.SetIO(m.router)
	m.dotCarry = 0
}

// LoadCartridge resets the machine and inserts rom. Color hardware is
// enabled when the header asks for it and ForceDMG is off. A boot ROM of
// at least 256 bytes is mapped over the cartridge; otherwise the IO
// registers start from their post-boot values.
func (m *Machine) LoadCartridge(rom []byte, boot []byte) error {
	c, h, err := cart.NewCartridge(rom)
	if err != nil {
		return fmt.Errorf("load cartridge: %w", err)
	}
	m.wire()
	m.header = h

	color := h.SupportsCGB() && !m.cfg.ForceDMG
	m.bus.SetCartridge(c)
	m.bus.SetCGBMode(color)
	m.ram.SetCGBMode(color)

	m.cfg.Logger.Printf("ROM: %q cgb=%v", h.Title, color)
	if h.Banked() {
		m.cfg.Logger.Printf("ROM: cartridge type %02X is banked, only the first 32 KiB are mapped", h.CartType)
	}

	if len(boot) >= 0x100 {
		m.bus.SetBootROM(boot)
		return nil
	}
	return m.applyPostBootIO()
}

// postBootIO are the register values the boot ROM leaves behind.
var postBootIO = []struct {
	addr  uint16
	value byte
}{
	{0xFF00, 0xCF}, // JOYP: no group selected
	{timer.TIMA, 0x00},
	{timer.TMA, 0x00},
	{timer.TAC, 0x00},
	{0xFF26, 0x80}, // NR52 power
	{0xFF24, 0x77}, // NR50
	{0xFF25, 0xF3}, // NR51
	{ppu.LCDC, 0x91},
	{ppu.SCY, 0x00},
	{ppu.SCX, 0x00},
	{ppu.LYC, 0x00},
	{ppu.BGP, 0xFC},
	{ppu.OBP0, 0xFF},
	{ppu.OBP1, 0xFF},
	{ppu.WY, 0x00},
	{ppu.WX, 0x00},
	{ram.IE, 0x00},
}

func (m *Machine) applyPostBootIO() error {
	for _, r := range postBootIO {
		if err := m.bus.Write(r.addr, r.value); err != nil {
			return fmt.Errorf("post-boot IO %04X: %w", r.addr, err)
		}
	}
	return nil
}

// Read and Write access the full address space as the CPU would.
func (m *Machine) Read(addr uint16) (byte, error)      { return m.bus.Read(addr) }
func (m *Machine) Write(addr uint16, value byte) error { return m.bus.Write(addr, value) }

// Tick advances the timer and LCD by CPU cycles. The timer follows the CPU
// clock; the LCD runs at half the CPU rate in double speed. H-Blank DMA
// chunks are copied as the LCD enters mode 0, and a failing copy stops
// the tick.
func (m *Machine) Tick(cycles int) error {
	m.timer.Tick(cycles)
	dots := cycles
	if m.speed.Double() {
		m.dotCarry += cycles
		dots = m.dotCarry / 2
		m.dotCarry %= 2
	}
	return m.ppu.Tick(dots)
}

// RunFrame ticks one LCD frame worth of CPU cycles.
func (m *Machine) RunFrame() error {
	cycles := CyclesPerFrame
	if m.speed.Double() {
		cycles *= 2
	}
	return m.Tick(cycles)
}

// HBlank runs one H-Blank DMA step without advancing the LCD.
func (m *Machine) HBlank() error { return m.hdma.Step() }

// SpeedSwitch performs the STOP-triggered speed change if KEY1 is armed.
// It reports whether the speed changed.
func (m *Machine) SpeedSwitch() bool {
	if !m.speed.Commit() {
		return false
	}
	m.dotCarry = 0
	return true
}

// ToggleSpeed arms KEY1 bit 0, keeping the current-speed bit, and runs
// the switch as a STOP would.
func (m *Machine) ToggleSpeed() (bool, error) {
	v, err := m.Read(mmio.KEY1)
	if err != nil {
		return false, err
	}
	if err := m.Write(mmio.KEY1, v|0x01); err != nil {
		return false, err
	}
	return m.SpeedSwitch(), nil
}

func (m *Machine) DoubleSpeed() bool { return m.speed.Double() }
func (m *Machine) CGBMode() bool     { return m.bus.CGBMode() }

// Header returns the loaded cartridge header, or nil.
func (m *Machine) Header() *cart.Header { return m.header }

// Cache exposes the renderer-side invalidation state.
func (m *Machine) Cache() *render.Cache { return m.cache }

func (m *Machine) HDMAActive() bool { return m.hdma.Active() }

// BGColor and OBJColor resolve a palette entry to 0xRRGGBB.
func (m *Machine) BGColor(palette, color int) (uint32, error) {
	return m.video.BGColor(palette, color)
}

func (m *Machine) OBJColor(palette, color int) (uint32, error) {
	return m.video.OBJColor(palette, color)
}

// ReadVRAMBank reads VRAM from a given bank regardless of VBK.
func (m *Machine) ReadVRAMBank(bank int, addr uint16) (byte, error) {
	return m.video.ReadVRAMBank(bank, addr)
}

// SetSerialWriter connects an io.Writer to receive bytes written to SB.
// It survives cartridge reloads.
func (m *Machine) SetSerialWriter(w io.Writer) {
	m.serial = w
	m.router.SetSerialWriter(w)
}
