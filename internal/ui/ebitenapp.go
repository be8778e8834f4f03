// Package ui is an ebiten window showing the resolved color palettes and
// the CGB IO registers of a running machine.
package ui

import (
	"fmt"
	"image/color"

	"github.com/FabianRolfMatthiasNoll/cgbio/internal/cgb"
	"github.com/FabianRolfMatthiasNoll/cgbio/internal/emu"
	"github.com/FabianRolfMatthiasNoll/cgbio/internal/mmio"
	"github.com/FabianRolfMatthiasNoll/cgbio/internal/ppu"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

const (
	screenW = 320
	screenH = 200

	swatch   = 8  // swatch edge in pixels
	swatchX  = 10 // left edge of palette 0
	bgRowY   = 24
	objRowY  = 48
	palettes = cgb.NumPalettes
	colors   = cgb.ColorsPerPalette
	regsY    = 72
	lineDots = 456
)

type App struct {
	cfg    Config
	m      *emu.Machine
	paused bool
	status string
}

func NewApp(cfg Config, m *emu.Machine) *App {
	cfg.Defaults()
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(screenW*cfg.Scale, screenH*cfg.Scale)
	return &App{cfg: cfg, m: m, paused: true}
}

func (a *App) Run() error { return ebiten.RunGame(a) }

// Update handles the keys and advances the machine. Any machine error ends
// the game loop and is returned from Run.
func (a *App) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		a.paused = !a.paused
	}

	// Step a scanline (N) or a frame (F) while paused
	if a.paused && inpututil.IsKeyJustPressed(ebiten.KeyN) {
		return a.m.Tick(a.lineCycles())
	}
	if a.paused && inpututil.IsKeyJustPressed(ebiten.KeyF) {
		return a.m.RunFrame()
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyV) {
		if err := a.toggleBank(); err != nil {
			return err
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyS) {
		if err := a.switchSpeed(); err != nil {
			return err
		}
	}

	if !a.paused {
		return a.m.RunFrame()
	}
	return nil
}

func (a *App) toggleBank() error {
	v, err := a.m.Read(mmio.VBK)
	if err != nil {
		return err
	}
	if err := a.m.Write(mmio.VBK, (v^1)&1); err != nil {
		return err
	}
	a.status = fmt.Sprintf("VBK <- %d", (v^1)&1)
	return nil
}

// lineCycles is one scanline in CPU cycles; the LCD takes two per dot in
// double speed.
func (a *App) lineCycles() int {
	if a.m.DoubleSpeed() {
		return 2 * lineDots
	}
	return lineDots
}

// switchSpeed arms KEY1 and executes the switch as a STOP would.
func (a *App) switchSpeed() error {
	switched, err := a.m.ToggleSpeed()
	if err != nil {
		return err
	}
	if switched {
		a.status = fmt.Sprintf("double speed: %v", a.m.DoubleSpeed())
	} else {
		a.status = "speed switch needs CGB mode"
	}
	return nil
}

func (a *App) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{0x20, 0x20, 0x28, 0xFF})

	ebitenutil.DebugPrintAt(screen, "BG", swatchX, bgRowY-14)
	ebitenutil.DebugPrintAt(screen, "OBJ", swatchX, objRowY-14)
	for p := 0; p < palettes; p++ {
		for c := 0; c < colors; c++ {
			x := float32(swatchX + (p*(colors+1)+c)*swatch)
			if rgb, err := a.m.BGColor(p, c); err == nil {
				vector.DrawFilledRect(screen, x, bgRowY, swatch, swatch, toRGBA(rgb), false)
			}
			if rgb, err := a.m.OBJColor(p, c); err == nil {
				vector.DrawFilledRect(screen, x, objRowY, swatch, swatch, toRGBA(rgb), false)
			}
		}
	}

	lines := []string{
		fmt.Sprintf("LCDC %s  STAT %s  LY %s", a.reg(ppu.LCDC), a.reg(ppu.STAT), a.reg(ppu.LY)),
		fmt.Sprintf("VBK  %s  KEY1 %s  HDMA5 %s", a.reg(mmio.VBK), a.reg(mmio.KEY1), a.reg(cgb.HDMA5)),
		fmt.Sprintf("BCPS %s  OCPS %s  SVBK %s", a.reg(mmio.BCPS), a.reg(mmio.OCPS), a.reg(mmio.SVBK)),
		fmt.Sprintf("cgb %v  double %v  hdma %v", a.m.CGBMode(), a.m.DoubleSpeed(), a.m.HDMAActive()),
		"Space: run/pause  N: line  F: frame  V: bank  S: speed",
		a.status,
	}
	for i, s := range lines {
		ebitenutil.DebugPrintAt(screen, s, swatchX, regsY+i*14)
	}
}

func (a *App) Layout(outW, outH int) (int, int) { return screenW, screenH }

// reg formats a register for display. Reading the IO page has no side
// effects, so the inspector can poll it every frame.
func (a *App) reg(addr uint16) string {
	v, err := a.m.Read(addr)
	if err != nil {
		return "--"
	}
	return fmt.Sprintf("%02X", v)
}

func toRGBA(rgb uint32) color.RGBA {
	return color.RGBA{R: byte(rgb >> 16), G: byte(rgb >> 8), B: byte(rgb), A: 0xFF}
}
