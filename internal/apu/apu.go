// Package apu holds the sound register file at FF10-FF3F. Registers are
// addressed by offset from FF10. Nothing is synthesized; the registers
// read back the way the hardware returns them.
package apu

const (
	nr10 = 0x00
	nr12 = 0x02
	nr14 = 0x04
	nr22 = 0x07
	nr24 = 0x09
	nr30 = 0x0A
	nr34 = 0x0E
	nr42 = 0x11
	nr44 = 0x13
	nr52 = 0x16

	waveStart = 0x20
	numRegs   = 0x30
)

// readMask is ORed into every read; write-only bits and unused registers
// read back as 1.
var readMask = [numRegs]byte{
	0x80, 0x3F, 0x00, 0xFF, 0xBF, // NR10-NR14
	0xFF, 0x3F, 0x00, 0xFF, 0xBF, // unused, NR21-NR24
	0x7F, 0xFF, 0x9F, 0xFF, 0xBF, // NR30-NR34
	0xFF, 0xFF, 0x00, 0x00, 0xBF, // unused, NR41-NR44
	0x00, 0x00, 0x70, // NR50, NR51, NR52
	0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF,
	// wave RAM reads back unmasked
}

type APU struct {
	regs [numRegs]byte
	on   bool
	// channel status bits reported in NR52 bits 0-3
	status byte
}

func New() *APU { return &APU{} }

func (a *APU) ReadRegister(reg int) byte {
	if reg < 0 || reg >= numRegs {
		return 0xFF
	}
	if reg == nr52 {
		v := readMask[nr52] | a.status
		if a.on {
			v |= 0x80
		}
		return v
	}
	return a.regs[reg] | readMask[reg]
}

// WriteRegister stores a register. While powered off only NR52 and wave
// RAM accept writes; powering off clears NR10-NR51.
func (a *APU) WriteRegister(reg int, value byte) {
	switch {
	case reg < 0 || reg >= numRegs:
		return
	case reg >= waveStart:
		a.regs[reg] = value
		return
	case reg == nr52:
		a.power(value&0x80 != 0)
		return
	case !a.on:
		return
	}
	a.regs[reg] = value

	switch reg {
	case nr14:
		a.trigger(0, value, dacOn(a.regs[nr12]))
	case nr24:
		a.trigger(1, value, dacOn(a.regs[nr22]))
	case nr34:
		a.trigger(2, value, a.regs[nr30]&0x80 != 0)
	case nr44:
		a.trigger(3, value, dacOn(a.regs[nr42]))
	case nr12, nr22, nr42:
		if !dacOn(value) {
			a.status &^= 1 << channelOf(reg)
		}
	case nr30:
		if value&0x80 == 0 {
			a.status &^= 1 << 2
		}
	}
}

func (a *APU) power(on bool) {
	if a.on && !on {
		for i := nr10; i < nr52; i++ {
			a.regs[i] = 0
		}
		a.status = 0
	}
	a.on = on
}

// trigger enables a channel when bit 7 of NRx4 is written with its DAC on.
func (a *APU) trigger(ch int, value byte, dac bool) {
	if value&0x80 != 0 && dac {
		a.status |= 1 << ch
	}
}

// dacOn reports whether an envelope register leaves the DAC powered.
func dacOn(env byte) bool { return env&0xF8 != 0 }

func channelOf(envReg int) int {
	switch envReg {
	case nr12:
		return 0
	case nr22:
		return 1
	}
	return 3
}

// Powered reports NR52 bit 7.
func (a *APU) Powered() bool { return a.on }
