package main

import (
	"flag"
	"log"
	"os"

	"golang.org/x/term"

	"github.com/FabianRolfMatthiasNoll/cgbio/internal/emu"
	"github.com/FabianRolfMatthiasNoll/cgbio/internal/ui"
)

type CLIFlags struct {
	ROMPath string
	BootROM string
	Script  string
	Trace   bool
	Sound   bool
	DMG     bool

	// inspector window
	UI    bool
	Scale int
	Title string
}

func parseFlags() CLIFlags {
	var f CLIFlags
	flag.StringVar(&f.ROMPath, "rom", "", "path to ROM (.gb/.gbc); a blank CGB cartridge if empty")
	flag.StringVar(&f.BootROM, "bootrom", "", "optional boot ROM")
	flag.StringVar(&f.Script, "script", "", "run console commands from file instead of stdin")
	flag.BoolVar(&f.Trace, "trace", false, "log every IO register write")
	flag.BoolVar(&f.Sound, "sound", false, "route the audio registers")
	flag.BoolVar(&f.DMG, "dmg", false, "disable color hardware")
	flag.BoolVar(&f.UI, "ui", false, "open the palette/register inspector")
	flag.IntVar(&f.Scale, "scale", 2, "window scale")
	flag.StringVar(&f.Title, "title", "cgbio", "window title")
	flag.Parse()
	return f
}

func mustRead(path string) []byte {
	if path == "" {
		return nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("read %s: %v", path, err)
	}
	return b
}

// blankROM is an empty 32 KiB image whose header asks for color hardware.
func blankROM() []byte {
	rom := make([]byte, 0x8000)
	copy(rom[0x0134:], "CGBIO")
	rom[0x0143] = 0x80
	return rom
}

func main() {
	f := parseFlags()

	rom := mustRead(f.ROMPath)
	if rom == nil {
		log.Printf("no -rom given, using a blank CGB cartridge")
		rom = blankROM()
	}
	boot := mustRead(f.BootROM)

	m := emu.New(emu.Config{
		Trace:        f.Trace,
		SoundEnabled: f.Sound,
		ForceDMG:     f.DMG,
	})
	m.SetSerialWriter(os.Stdout)
	if err := m.LoadCartridge(rom, boot); err != nil {
		log.Fatalf("load cart: %v", err)
	}

	c := newConsole(m, os.Stdout)
	switch {
	case f.Script != "":
		file, err := os.Open(f.Script)
		if err != nil {
			log.Fatalf("open script: %v", err)
		}
		err = c.run(file, false)
		file.Close()
		if err != nil {
			log.Fatalf("%s: %v", f.Script, err)
		}
	case !f.UI:
		interactive := term.IsTerminal(int(os.Stdin.Fd()))
		if err := c.run(os.Stdin, interactive); err != nil {
			log.Fatal(err)
		}
	}

	if f.UI {
		app := ui.NewApp(ui.Config{Title: f.Title, Scale: f.Scale}, m)
		if err := app.Run(); err != nil {
			log.Fatal(err)
		}
	}
}
