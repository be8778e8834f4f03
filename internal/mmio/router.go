// Package mmio routes CPU accesses to the FF00-FF7F register page to the
// component that owns each register.
package mmio

import (
	"fmt"
	"io"
	"log"

	"github.com/FabianRolfMatthiasNoll/cgbio/internal/cgb"
	"github.com/FabianRolfMatthiasNoll/cgbio/internal/ppu"
	"github.com/FabianRolfMatthiasNoll/cgbio/internal/timer"
)

// Memory is a byte-addressed memory that can fail on addresses it does
// not back.
type Memory interface {
	Read(addr uint16) (byte, error)
	Write(addr uint16, value byte) error
}

// Timer owns DIV/TIMA/TMA/TAC.
type Timer interface {
	CPURead(addr uint16) byte
	CPUWrite(addr uint16, value byte)
}

// Sound owns FF10-FF3F, addressed by offset from FF10.
type Sound interface {
	ReadRegister(reg int) byte
	WriteRegister(reg int, value byte)
}

// LCD owns the LCD control, status, position and DMG palette registers.
// CPUWrite reports whether the stored value changed.
type LCD interface {
	CPURead(addr uint16) byte
	CPUWrite(addr uint16, value byte) bool
}

// Renderer is told when cached palette colors are stale.
type Renderer interface {
	InvalidatePaletteCache()
}

// System exposes the boot ROM mapping and whether CGB hardware is active.
type System interface {
	BootROMEnabled() bool
	DisableBootROM()
	CGBMode() bool
}

// Deps are the collaborators the router dispatches to. Store and System
// are required; a nil optional collaborator leaves its addresses to Store.
type Deps struct {
	Store  Memory // generic backing store for unclaimed addresses
	Bus    Memory // full address space, used by OAM DMA
	System System

	Timer        Timer
	Sound        Sound
	SoundEnabled bool
	LCD          LCD
	Renderer     Renderer

	Video *cgb.Video
	HDMA  *cgb.HDMA
	Speed *cgb.DoubleSpeed

	Serial io.Writer
	Logger *log.Logger // when set, every write is traced
}

type handler struct {
	read  func(addr uint16) (byte, error)
	write func(addr uint16, value byte) error
	// CGB registers fall through to the store in DMG mode
	cgbOnly bool
}

// Router decodes FF00-FF7F through a table built once at construction.
// Addresses outside the page, and unclaimed ones inside it, go to Store.
type Router struct {
	d        Deps
	handlers [ioEnd - ioStart]*handler
}

func New(d Deps) *Router {
	r := &Router{d: d}
	r.build()
	return r
}

// SetSerialWriter connects an io.Writer to receive bytes written to SB.
func (r *Router) SetSerialWriter(w io.Writer) { r.d.Serial = w }

// SetSoundEnabled gates the audio register range.
func (r *Router) SetSoundEnabled(on bool) { r.d.SoundEnabled = on }

// SetLogger turns write tracing on (non-nil) or off.
func (r *Router) SetLogger(l *log.Logger) { r.d.Logger = l }

func (r *Router) handle(addr uint16, h *handler) { r.handlers[addr-ioStart] = h }

func (r *Router) handleRange(from, to uint16, h *handler) {
	for a := from; a < to; a++ {
		r.handle(a, h)
	}
}

func (r *Router) build() {
	d := &r.d

	r.handle(SB, &handler{write: r.writeSerial})

	if d.Timer != nil {
		r.handleRange(timer.DIV, timer.TAC+1, &handler{
			read:  func(a uint16) (byte, error) { return d.Timer.CPURead(a), nil },
			write: func(a uint16, v byte) error { d.Timer.CPUWrite(a, v); return nil },
		})
	}

	r.handleRange(soundStart, soundEnd, &handler{read: r.readSound, write: r.writeSound})

	if d.LCD != nil {
		lcd := &handler{
			read:  func(a uint16) (byte, error) { return d.LCD.CPURead(a), nil },
			write: func(a uint16, v byte) error { d.LCD.CPUWrite(a, v); return nil },
		}
		for _, a := range []uint16{ppu.LCDC, ppu.STAT, ppu.SCY, ppu.SCX, ppu.LY, ppu.LYC, ppu.WY, ppu.WX} {
			r.handle(a, lcd)
		}
		compat := &handler{read: lcd.read, write: r.writeCompatPalette}
		for _, a := range []uint16{ppu.BGP, ppu.OBP0, ppu.OBP1} {
			r.handle(a, compat)
		}
	}

	if d.Bus != nil {
		r.handle(DMA, &handler{write: r.writeOAMDMA})
	}
	r.handle(BOOT, &handler{write: r.writeBoot})

	if d.Speed != nil {
		r.handle(KEY1, &handler{
			cgbOnly: true,
			read:    func(uint16) (byte, error) { return d.Speed.Get(), nil },
			write:   func(_ uint16, v byte) error { d.Speed.Set(v); return nil },
		})
	}

	if v := d.Video; v != nil {
		r.handle(VBK, regs(v.ReadVBK, v.WriteVBK))
		r.handle(BCPS, regs(v.ReadBCPS, v.WriteBCPS))
		r.handle(BCPD, regs(func() byte { return byte(v.ReadBCPD()) }, v.WriteBCPD))
		r.handle(OCPS, regs(v.ReadOCPS, v.WriteOCPS))
		r.handle(OCPD, regs(func() byte { return byte(v.ReadOCPD()) }, v.WriteOCPD))
	}

	if d.HDMA != nil {
		r.handleRange(cgb.HDMA1, cgb.HDMA5+1, &handler{
			cgbOnly: true,
			read:    d.HDMA.Read,
			write:   d.HDMA.Write,
		})
	}

	// WRAM bank select is a plain byte in the store, which does the banking
	r.handle(SVBK, &handler{
		cgbOnly: true,
		read:    d.Store.Read,
		write:   d.Store.Write,
	})
}

// regs adapts a CGB register getter/setter pair.
func regs(get func() byte, set func(byte)) *handler {
	return &handler{
		cgbOnly: true,
		read:    func(uint16) (byte, error) { return get(), nil },
		write:   func(_ uint16, v byte) error { set(v); return nil },
	}
}

func (r *Router) lookup(addr uint16) *handler {
	if addr < ioStart || addr >= ioEnd {
		return nil
	}
	h := r.handlers[addr-ioStart]
	if h == nil || (h.cgbOnly && !r.d.System.CGBMode()) {
		return nil
	}
	return h
}

// Read returns the value of the register at addr.
func (r *Router) Read(addr uint16) (byte, error) {
	if h := r.lookup(addr); h != nil && h.read != nil {
		return h.read(addr)
	}
	return r.d.Store.Read(addr)
}

// Write stores value into the register at addr, with its side effects.
func (r *Router) Write(addr uint16, value byte) error {
	if r.d.Logger != nil {
		r.d.Logger.Printf("io: write %04X=%02X", addr, value)
	}
	if h := r.lookup(addr); h != nil && h.write != nil {
		return h.write(addr, value)
	}
	return r.d.Store.Write(addr, value)
}

func (r *Router) soundOn() bool { return r.d.SoundEnabled && r.d.Sound != nil }

func (r *Router) readSound(addr uint16) (byte, error) {
	if !r.soundOn() {
		return 0, nil
	}
	return r.d.Sound.ReadRegister(int(addr - soundStart)), nil
}

func (r *Router) writeSound(addr uint16, value byte) error {
	if r.soundOn() {
		r.d.Sound.WriteRegister(int(addr-soundStart), value)
	}
	return nil
}

// writeCompatPalette handles BGP/OBP0/OBP1. Outside CGB mode the renderer
// shades tiles through these, so a change invalidates its cache.
func (r *Router) writeCompatPalette(addr uint16, value byte) error {
	changed := r.d.LCD.CPUWrite(addr, value)
	if changed && !r.d.System.CGBMode() && r.d.Renderer != nil {
		r.d.Renderer.InvalidatePaletteCache()
	}
	return nil
}

func (r *Router) writeSerial(addr uint16, value byte) error {
	if r.d.Serial != nil {
		if _, err := r.d.Serial.Write([]byte{value}); err != nil {
			return fmt.Errorf("serial: %w", err)
		}
	}
	return r.d.Store.Write(addr, value)
}

func (r *Router) writeBoot(addr uint16, value byte) error {
	if r.d.System.BootROMEnabled() && (value == 0x01 || value == 0x11) {
		r.d.System.DisableBootROM()
	}
	return r.d.Store.Write(addr, value)
}

// writeOAMDMA copies 160 bytes from (value << 8) into OAM through the bus.
func (r *Router) writeOAMDMA(addr uint16, value byte) error {
	if err := r.d.Store.Write(addr, value); err != nil {
		return err
	}
	src := uint16(value) << 8
	for i := uint16(0); i < oamSize; i++ {
		v, err := r.d.Bus.Read(src + i)
		if err != nil {
			return fmt.Errorf("oam dma: read %04X: %w", src+i, err)
		}
		if err := r.d.Bus.Write(oamStart+i, v); err != nil {
			return fmt.Errorf("oam dma: write %04X: %w", oamStart+i, err)
		}
	}
	return nil
}
