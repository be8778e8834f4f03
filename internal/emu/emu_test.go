package emu

import (
	"bytes"
	"errors"
	"io"
	"log"
	"strings"
	"testing"

	"github.com/FabianRolfMatthiasNoll/cgbio/internal/cart"
	"github.com/FabianRolfMatthiasNoll/cgbio/internal/cgb"
	"github.com/FabianRolfMatthiasNoll/cgbio/internal/mmio"
	"github.com/FabianRolfMatthiasNoll/cgbio/internal/ppu"
	"github.com/FabianRolfMatthiasNoll/cgbio/internal/ram"
)

func testROM(title string, cgbFlag byte) []byte {
	rom := make([]byte, 0x8000)
	copy(rom[0x0134:0x0143], title)
	rom[0x0143] = cgbFlag
	rom[0x0000] = 0x11
	return rom
}

func newMachine(t *testing.T, cfg Config, cgbFlag byte) *Machine {
	t.Helper()
	if cfg.Logger == nil {
		cfg.Logger = log.New(io.Discard, "", 0)
	}
	m := New(cfg)
	if err := m.LoadCartridge(testROM("CGBTEST", cgbFlag), nil); err != nil {
		t.Fatalf("LoadCartridge: %v", err)
	}
	return m
}

func mustRead(t *testing.T, m *Machine, addr uint16) byte {
	t.Helper()
	v, err := m.Read(addr)
	if err != nil {
		t.Fatalf("read %04X: %v", addr, err)
	}
	return v
}

func mustWrite(t *testing.T, m *Machine, addr uint16, v byte) {
	t.Helper()
	if err := m.Write(addr, v); err != nil {
		t.Fatalf("write %04X=%02X: %v", addr, v, err)
	}
}

func TestLoadCartridge_ModeAndPostBoot(t *testing.T) {
	m := newMachine(t, Config{}, 0x80)
	if !m.CGBMode() || m.Header().Title != "CGBTEST" {
		t.Fatalf("CGBMode=%v title=%q", m.CGBMode(), m.Header().Title)
	}
	if got := mustRead(t, m, ppu.LCDC); got != 0x91 {
		t.Fatalf("LCDC got %02X, want 91", got)
	}
	if got := mustRead(t, m, ppu.BGP); got != 0xFC {
		t.Fatalf("BGP got %02X, want FC", got)
	}
	if got := mustRead(t, m, 0x0000); got != 0x11 {
		t.Fatalf("ROM 0000 got %02X, want 11", got)
	}

	d := newMachine(t, Config{ForceDMG: true}, 0x80)
	if d.CGBMode() {
		t.Fatalf("ForceDMG left color hardware on")
	}
	mustWrite(t, d, mmio.VBK, 0x01)
	mustWrite(t, d, 0x8000, 0x5A)
	if v, _ := d.ReadVRAMBank(0, 0x8000); v != 0x5A {
		t.Fatalf("DMG VRAM write went to bank 1")
	}
}

func TestLoadCartridge_ShortROM(t *testing.T) {
	m := New(Config{Logger: log.New(io.Discard, "", 0)})
	if err := m.LoadCartridge(make([]byte, 0x100), nil); !errors.Is(err, cart.ErrShortROM) {
		t.Fatalf("err=%v, want ErrShortROM", err)
	}
}

func TestLoadCartridge_BootROM(t *testing.T) {
	m := New(Config{Logger: log.New(io.Discard, "", 0)})
	boot := make([]byte, 0x100)
	boot[0] = 0x31
	if err := m.LoadCartridge(testROM("BOOT", 0x00), boot); err != nil {
		t.Fatalf("LoadCartridge: %v", err)
	}
	if got := mustRead(t, m, 0x0000); got != 0x31 {
		t.Fatalf("boot overlay got %02X, want 31", got)
	}
	if got := mustRead(t, m, ppu.LCDC); got != 0x00 {
		t.Fatalf("post-boot IO applied with a boot ROM: LCDC=%02X", got)
	}
	mustWrite(t, m, mmio.BOOT, 0x01)
	if got := mustRead(t, m, 0x0000); got != 0x11 {
		t.Fatalf("after FF50 got %02X, want cart 11", got)
	}
}

func TestPaletteThroughBus(t *testing.T) {
	m := newMachine(t, Config{}, 0xC0)
	m.Cache().TakePaletteInvalidation()
	mustWrite(t, m, mmio.BCPS, 0x88) // palette 1 color 0, auto-increment
	mustWrite(t, m, mmio.BCPD, 0x00)
	mustWrite(t, m, mmio.BCPD, 0x7C)
	c, err := m.BGColor(1, 0)
	if err != nil || c != 0x0000F8 {
		t.Fatalf("BG 1/0 got %06X err=%v, want 0000F8", c, err)
	}
	if !m.Cache().TakePaletteInvalidation() {
		t.Fatalf("palette write did not invalidate the render cache")
	}
	if _, err := m.OBJColor(8, 0); !errors.Is(err, cgb.ErrPaletteIndex) {
		t.Fatalf("OBJColor(8,0) err=%v, want ErrPaletteIndex", err)
	}
}

func fillWRAM(t *testing.T, m *Machine, base uint16, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		mustWrite(t, m, base+uint16(i), byte(i+1))
	}
}

func armHDMA(t *testing.T, m *Machine, src, dst uint16, hdma5 byte) {
	t.Helper()
	mustWrite(t, m, cgb.HDMA1, byte(src>>8))
	mustWrite(t, m, cgb.HDMA2, byte(src))
	mustWrite(t, m, cgb.HDMA3, byte(dst>>8))
	mustWrite(t, m, cgb.HDMA4, byte(dst))
	mustWrite(t, m, cgb.HDMA5, hdma5)
}

func TestTick_HBlankDMA(t *testing.T) {
	m := newMachine(t, Config{}, 0x80)
	fillWRAM(t, m, 0xC000, 0x20)
	armHDMA(t, m, 0xC000, 0x8800, 0x81)
	if !m.HDMAActive() {
		t.Fatalf("H-Blank DMA not armed")
	}

	if err := m.Tick(456); err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if v, _ := m.ReadVRAMBank(0, 0x880F); v != 0x10 {
		t.Fatalf("first chunk last byte got %02X, want 10", v)
	}
	if v, _ := m.ReadVRAMBank(0, 0x8810); v != 0x00 {
		t.Fatalf("second chunk copied early")
	}
	if got := mustRead(t, m, cgb.HDMA5); got != 0x00 {
		t.Fatalf("HDMA5 after one chunk got %02X, want 00", got)
	}

	if err := m.Tick(456); err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if v, _ := m.ReadVRAMBank(0, 0x881F); v != 0x20 {
		t.Fatalf("second chunk last byte got %02X, want 20", v)
	}
	if m.HDMAActive() || mustRead(t, m, cgb.HDMA5) != 0xFF {
		t.Fatalf("transfer still active after last chunk")
	}
	tiles := m.Cache().ChangedTiles(0)
	if len(tiles) != 2 || tiles[0] != 0x8800 || tiles[1] != 0x8810 {
		t.Fatalf("changed tiles got %04X, want [8800 8810]", tiles)
	}
}

func TestGDMAToBank1(t *testing.T) {
	m := newMachine(t, Config{}, 0x80)
	fillWRAM(t, m, 0xD000, 0x10)
	mustWrite(t, m, mmio.VBK, 0x01)
	armHDMA(t, m, 0xD000, 0x9000, 0x00)
	if v, _ := m.ReadVRAMBank(1, 0x9000); v != 0x01 {
		t.Fatalf("bank 1 got %02X, want 01", v)
	}
	if v, _ := m.ReadVRAMBank(0, 0x9000); v != 0x00 {
		t.Fatalf("bank 0 written by GDMA with VBK=1")
	}
	if m.HDMAActive() {
		t.Fatalf("GDMA left the engine active")
	}
}

func TestSpeedSwitch(t *testing.T) {
	m := newMachine(t, Config{}, 0x80)
	if m.SpeedSwitch() {
		t.Fatalf("switched without KEY1 armed")
	}
	mustWrite(t, m, mmio.KEY1, 0x01)
	if !m.SpeedSwitch() || !m.DoubleSpeed() {
		t.Fatalf("speed switch did not enter double speed")
	}
	if got := mustRead(t, m, mmio.KEY1); got != 0x80 {
		t.Fatalf("KEY1 got %02X, want 80", got)
	}

	// the LCD now takes two CPU cycles per dot
	fillWRAM(t, m, 0xC000, 0x10)
	armHDMA(t, m, 0xC000, 0x8000, 0x80)
	if err := m.Tick(456); err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if !m.HDMAActive() {
		t.Fatalf("H-Blank reached after 228 dots")
	}
	if err := m.Tick(60); err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if m.HDMAActive() {
		t.Fatalf("H-Blank not reached after 258 dots")
	}
}

func TestToggleSpeed_RoundTrip(t *testing.T) {
	m := newMachine(t, Config{}, 0x80)
	for i, want := range []struct {
		key1   byte
		double bool
	}{{0x80, true}, {0x00, false}, {0x80, true}} {
		switched, err := m.ToggleSpeed()
		if err != nil || !switched {
			t.Fatalf("toggle %d: switched=%v err=%v", i, switched, err)
		}
		if got := mustRead(t, m, mmio.KEY1); got != want.key1 || m.DoubleSpeed() != want.double {
			t.Fatalf("toggle %d: KEY1=%02X double=%v, want %02X %v", i, got, m.DoubleSpeed(), want.key1, want.double)
		}
	}

	d := newMachine(t, Config{ForceDMG: true}, 0x80)
	if switched, err := d.ToggleSpeed(); err != nil || switched || d.DoubleSpeed() {
		t.Fatalf("DMG toggle: switched=%v err=%v", switched, err)
	}
}

func TestRunFrame_VBlankInterrupt(t *testing.T) {
	m := newMachine(t, Config{}, 0x80)
	mustWrite(t, m, ram.IF, 0x00)
	if err := m.RunFrame(); err != nil {
		t.Fatalf("RunFrame: %v", err)
	}
	if got := mustRead(t, m, ram.IF); got&0x01 == 0 {
		t.Fatalf("IF after a frame got %02X, want VBlank bit", got)
	}
	if got := mustRead(t, m, ppu.LY); got != 0 {
		t.Fatalf("LY after a full frame got %d, want 0", got)
	}
}

func TestTraceAndSerial(t *testing.T) {
	var logs, serial bytes.Buffer
	m := New(Config{Trace: true, Logger: log.New(&logs, "", 0)})
	m.SetSerialWriter(&serial)
	if err := m.LoadCartridge(testROM("TRACE", 0x80), nil); err != nil {
		t.Fatalf("LoadCartridge: %v", err)
	}
	mustWrite(t, m, mmio.SB, 'Z')

	out := logs.String()
	for _, want := range []string{`ROM: "TRACE" cgb=true`, "io: write FF40=91", "io: write FF01=5A"} {
		if !strings.Contains(out, want) {
			t.Fatalf("log missing %q:\n%s", want, out)
		}
	}
	if serial.String() != "Z" {
		t.Fatalf("serial got %q, want \"Z\"", serial.String())
	}
}

func TestSoundGate(t *testing.T) {
	off := newMachine(t, Config{}, 0x80)
	mustWrite(t, off, 0xFF11, 0x80)
	if got := mustRead(t, off, 0xFF11); got != 0 {
		t.Fatalf("disabled sound read got %02X, want 00", got)
	}
	on := newMachine(t, Config{SoundEnabled: true}, 0x80)
	if got := mustRead(t, on, 0xFF26); got != 0xF0 {
		t.Fatalf("NR52 after post-boot got %02X, want F0", got)
	}
}
