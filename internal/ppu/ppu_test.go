package ppu

import (
	"errors"
	"testing"
)

// helper to read mode bits from STAT (FF41)
func statMode(p *PPU) byte { return p.CPURead(0xFF41) & 0x03 }

func TestPPUModeSequenceOneLine(t *testing.T) {
	var irqs []int
	p := New(func(bit int) { irqs = append(irqs, bit) })
	// Turn LCD on
	p.CPUWrite(0xFF40, 0x80)
	if m := statMode(p); m != 2 {
		t.Fatalf("expected mode 2 after LCD on, got %d", m)
	}
	// After 80 dots -> mode 3
	p.Tick(80)
	if m := statMode(p); m != 3 {
		t.Fatalf("expected mode 3 at dot 80, got %d", m)
	}
	// After 252 dots -> HBlank (mode 0)
	p.Tick(172)
	if m := statMode(p); m != 0 {
		t.Fatalf("expected mode 0 at dot 252, got %d", m)
	}
	// End of line -> next line mode 2 and LY increments
	p.Tick(456 - 252)
	if ly := p.CPURead(0xFF44); ly != 1 {
		t.Fatalf("expected LY=1, got %d", ly)
	}
	if m := statMode(p); m != 2 {
		t.Fatalf("expected mode 2 at new line, got %d", m)
	}
	_ = irqs
}

func TestPPUVBlankAndSTATOnVBlank(t *testing.T) {
	var got []int
	p := New(func(bit int) { got = append(got, bit) })
	// Enable STAT interrupt on VBlank (bit4)
	p.CPUWrite(0xFF41, 1<<4)
	// Turn LCD on
	p.CPUWrite(0xFF40, 0x80)
	// Advance to start of LY=144: 144 lines * 456 dots
	p.Tick(144 * 456)
	// Expect a VBlank IF (bit 0) and a STAT (bit 1)
	vb, st := 0, 0
	for _, b := range got {
		if b == 0 {
			vb++
		} else if b == 1 {
			st++
		}
	}
	if vb == 0 {
		t.Fatalf("expected at least one VBlank IRQ at LY=144")
	}
	if st == 0 {
		t.Fatalf("expected STAT IRQ on VBlank when enabled")
	}
}

func TestSTATModeAndLYCCoincidence(t *testing.T) {
	var got []int
	p := New(func(bit int) { got = append(got, bit) })
	// Enable STAT for HBlank (bit3), OAM (bit5), and LYC (bit6)
	p.CPUWrite(0xFF41, (1<<3)|(1<<5)|(1<<6))
	// Set LYC=2 to trigger coincidence on line 2
	p.CPUWrite(0xFF45, 2)
	// Turn LCD on
	p.CPUWrite(0xFF40, 0x80)
	// First line: mode 2->3->0 should trigger HBlank STAT once
	// Advance to HBlank of first line
	p.Tick(80 + 172) // now entering HBlank (mode 0)
	// One STAT due to HBlank expected
	hblankStats := 0
	for _, b := range got {
		if b == 1 {
			hblankStats++
		}
	}
	if hblankStats == 0 {
		t.Fatalf("expected STAT IRQ on HBlank when enabled")
	}
	// Clear and advance to LY=2 to test LYC coincidence
	got = got[:0]
	// Finish line 0, then full line 1, then start of line 2 to update LYC
	p.Tick((456 - (80 + 172)) + 456 + 1)
	// Expect a STAT due to LYC coincidence enable at LY==LYC
	hasLYC := false
	for _, b := range got {
		if b == 1 {
			hasLYC = true
			break
		}
	}
	if !hasLYC {
		t.Fatalf("expected STAT IRQ on LYC coincidence at LY=2")
	}
}

func TestHBlankHookOncePerVisibleLine(t *testing.T) {
	p := New(nil)
	calls := 0
	p.SetHBlankHook(func() error { calls++; return nil })
	p.CPUWrite(LCDC, 0x80)
	// one full frame: 144 visible lines + 10 VBlank lines
	if err := p.Tick(154 * 456); err != nil {
		t.Fatalf("tick: %v", err)
	}
	if calls != 144 {
		t.Fatalf("H-Blank hook called %d times, want 144", calls)
	}
	if ly := p.CPURead(LY); ly != 0 {
		t.Fatalf("LY after one frame got %d, want 0", ly)
	}
}

func TestHBlankHookErrorStopsTick(t *testing.T) {
	p := New(nil)
	errStop := errors.New("stop")
	p.SetHBlankHook(func() error { return errStop })
	p.CPUWrite(LCDC, 0x80)
	if err := p.Tick(456); !errors.Is(err, errStop) {
		t.Fatalf("tick err=%v, want stop", err)
	}
	// stopped right at the mode 0 transition
	if m := statMode(p); m != 0 {
		t.Fatalf("mode after failed hook got %d, want 0", m)
	}
	if ly := p.CPURead(LY); ly != 0 {
		t.Fatalf("LY advanced past failing H-Blank: %d", ly)
	}
}

func TestLCDOffNoHBlank(t *testing.T) {
	p := New(nil)
	calls := 0
	p.SetHBlankHook(func() error { calls++; return nil })
	if err := p.Tick(10 * 456); err != nil {
		t.Fatal(err)
	}
	if calls != 0 {
		t.Fatalf("H-Blank hook ran with LCD off")
	}
}

func TestCPUWriteReportsChange(t *testing.T) {
	p := New(nil)
	if !p.CPUWrite(BGP, 0xFC) {
		t.Fatalf("first BGP write not reported as change")
	}
	if p.CPUWrite(BGP, 0xFC) {
		t.Fatalf("same BGP value reported as change")
	}
	if got := p.CPURead(BGP); got != 0xFC {
		t.Fatalf("BGP got %02x, want FC", got)
	}
	p.CPUWrite(WX, 0x07)
	p.CPUWrite(SCY, 0x10)
	if p.CPURead(WX) != 0x07 || p.CPURead(SCY) != 0x10 {
		t.Fatalf("position registers not stored")
	}
	if got := p.CPURead(0xFF4C); got != 0xFF {
		t.Fatalf("unmapped read got %02x, want FF", got)
	}
}

func TestSTATHBlankInterrupt(t *testing.T) {
	var irqs []int
	p := New(func(bit int) { irqs = append(irqs, bit) })
	p.CPUWrite(LCDC, 0x80)
	p.CPUWrite(STAT, 1<<3)
	p.Tick(80 + 171)
	if len(irqs) != 0 {
		t.Fatalf("STAT IRQ before HBlank: %v", irqs)
	}
	p.Tick(1)
	if len(irqs) != 1 || irqs[0] != 1 {
		t.Fatalf("expected one STAT IRQ on entering HBlank, got %v", irqs)
	}
}

func TestWriteLYResetsLine(t *testing.T) {
	p := New(nil)
	p.CPUWrite(LCDC, 0x80)
	p.Tick(500)
	if ly := p.CPURead(LY); ly != 1 {
		t.Fatalf("expected LY=1 after 500 dots, got %d", ly)
	}
	p.CPUWrite(LY, 0x42)
	if ly := p.CPURead(LY); ly != 0 {
		t.Fatalf("LY write should reset LY to 0, got %d", ly)
	}
	if m := statMode(p); m != 2 {
		t.Fatalf("expected mode 2 after LY reset, got %d", m)
	}
}
