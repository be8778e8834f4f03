package ui

import (
	"io"
	"log"
	"testing"

	"github.com/FabianRolfMatthiasNoll/cgbio/internal/emu"
	"github.com/FabianRolfMatthiasNoll/cgbio/internal/ppu"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	m := emu.New(emu.Config{Logger: log.New(io.Discard, "", 0)})
	rom := make([]byte, 0x8000)
	rom[0x0143] = 0x80
	if err := m.LoadCartridge(rom, nil); err != nil {
		t.Fatalf("LoadCartridge: %v", err)
	}
	return &App{m: m, paused: true}
}

func readLY(t *testing.T, a *App) byte {
	t.Helper()
	v, err := a.m.Read(ppu.LY)
	if err != nil {
		t.Fatalf("read LY: %v", err)
	}
	return v
}

// N must advance exactly one scanline at either speed.
func TestApp_LineStep(t *testing.T) {
	a := newTestApp(t)
	if err := a.m.Tick(a.lineCycles()); err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if got := readLY(t, a); got != 1 {
		t.Fatalf("normal speed LY got %d, want 1", got)
	}

	if err := a.switchSpeed(); err != nil || !a.m.DoubleSpeed() {
		t.Fatalf("switchSpeed: err=%v double=%v", err, a.m.DoubleSpeed())
	}
	if err := a.m.Tick(a.lineCycles()); err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if got := readLY(t, a); got != 2 {
		t.Fatalf("double speed LY got %d, want 2", got)
	}
}

func TestApp_SwitchSpeedBack(t *testing.T) {
	a := newTestApp(t)
	for i := 0; i < 2; i++ {
		if err := a.switchSpeed(); err != nil {
			t.Fatalf("switchSpeed: %v", err)
		}
	}
	v, err := a.m.Read(0xFF4D)
	if err != nil || v != 0x00 || a.m.DoubleSpeed() {
		t.Fatalf("after two switches KEY1=%02X double=%v err=%v, want 00 false", v, a.m.DoubleSpeed(), err)
	}
	if a.status != "double speed: false" {
		t.Fatalf("status got %q", a.status)
	}
}
