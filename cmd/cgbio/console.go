package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/FabianRolfMatthiasNoll/cgbio/internal/emu"
)

var errUsage = errors.New("usage")

// console executes one command per line against a machine:
//
//	r ADDR               read a byte
//	w ADDR VAL           write a byte
//	tick N               advance N CPU cycles
//	hblank               run one H-Blank DMA step
//	frame                advance one frame
//	speed                arm KEY1 and switch speed
//	color bg|obj PAL COL resolve a palette color
//	vram BANK ADDR       read VRAM from a bank
//
// Numbers for ADDR and VAL are hex, with or without 0x. Lines starting
// with # are comments.
type console struct {
	m   *emu.Machine
	out io.Writer
}

func newConsole(m *emu.Machine, out io.Writer) *console {
	return &console{m: m, out: out}
}

// run executes every line of r. Interactive sessions print a prompt and
// report errors without stopping; scripts stop at the first error.
func (c *console) run(r io.Reader, interactive bool) error {
	s := bufio.NewScanner(r)
	line := 0
	for {
		if interactive {
			fmt.Fprint(c.out, "> ")
		}
		if !s.Scan() {
			break
		}
		line++
		if err := c.exec(s.Text()); err != nil {
			if !interactive {
				return fmt.Errorf("line %d: %w", line, err)
			}
			fmt.Fprintf(c.out, "* %v\n", err)
		}
	}
	return s.Err()
}

func (c *console) exec(line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
		return nil
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]

	switch cmd {
	case "r":
		if len(args) != 1 {
			return fmt.Errorf("%w: r ADDR", errUsage)
		}
		addr, err := parseHex(args[0], 16)
		if err != nil {
			return err
		}
		v, err := c.m.Read(uint16(addr))
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "%04X=%02X\n", addr, v)
	case "w":
		if len(args) != 2 {
			return fmt.Errorf("%w: w ADDR VAL", errUsage)
		}
		addr, err := parseHex(args[0], 16)
		if err != nil {
			return err
		}
		v, err := parseHex(args[1], 8)
		if err != nil {
			return err
		}
		return c.m.Write(uint16(addr), byte(v))
	case "tick":
		if len(args) != 1 {
			return fmt.Errorf("%w: tick N", errUsage)
		}
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 0 {
			return fmt.Errorf("bad cycle count %q", args[0])
		}
		return c.m.Tick(n)
	case "hblank":
		return c.m.HBlank()
	case "frame":
		return c.m.RunFrame()
	case "speed":
		if _, err := c.m.ToggleSpeed(); err != nil {
			return err
		}
		fmt.Fprintf(c.out, "double=%v\n", c.m.DoubleSpeed())
	case "color":
		return c.color(args)
	case "vram":
		if len(args) != 2 {
			return fmt.Errorf("%w: vram BANK ADDR", errUsage)
		}
		bank, err := strconv.Atoi(args[0])
		if err != nil || bank < 0 || bank > 1 {
			return fmt.Errorf("bad bank %q", args[0])
		}
		addr, err := parseHex(args[1], 16)
		if err != nil {
			return err
		}
		v, err := c.m.ReadVRAMBank(bank, uint16(addr))
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "%d:%04X=%02X\n", bank, addr, v)
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
	return nil
}

func (c *console) color(args []string) error {
	if len(args) != 3 {
		return fmt.Errorf("%w: color bg|obj PAL COL", errUsage)
	}
	pal, err1 := strconv.Atoi(args[1])
	col, err2 := strconv.Atoi(args[2])
	if err := errors.Join(err1, err2); err != nil {
		return err
	}
	var rgb uint32
	var err error
	switch strings.ToLower(args[0]) {
	case "bg":
		rgb, err = c.m.BGColor(pal, col)
	case "obj":
		rgb, err = c.m.OBJColor(pal, col)
	default:
		return fmt.Errorf("%w: color bg|obj PAL COL", errUsage)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "%s %d/%d=#%06X\n", strings.ToLower(args[0]), pal, col, rgb)
	return nil
}

func parseHex(s string, bits int) (uint64, error) {
	s = strings.TrimPrefix(strings.ToLower(s), "0x")
	v, err := strconv.ParseUint(s, 16, bits)
	if err != nil {
		return 0, fmt.Errorf("bad hex %q", s)
	}
	return v, nil
}
