package timer

// Timer register addresses.
const (
	DIV  = 0xFF04
	TIMA = 0xFF05
	TMA  = 0xFF06
	TAC  = 0xFF07
)

// IRQBit is the IF bit requested when TIMA reloads.
const IRQBit = 2

// reload happens this many cycles after TIMA overflows
const reloadDelay = 4

// Timer is the DMG/CGB divider and programmable timer. TIMA counts falling
// edges of the divider bit selected by TAC.
type Timer struct {
	divInternal uint16
	tima        byte
	tma         byte
	tac         byte

	// cycles left until TIMA is reloaded from TMA; 0 = none pending
	reload int

	req func(bit int)
}

func New(req func(bit int)) *Timer {
	return &Timer{req: req}
}

// timerInput is the AND of the TAC enable bit and the selected divider bit.
func (t *Timer) timerInput() bool {
	if t.tac&0x04 == 0 {
		return false
	}
	var bit uint
	switch t.tac & 0x03 {
	case 0:
		bit = 9 // 4096 Hz
	case 1:
		bit = 3 // 262144 Hz
	case 2:
		bit = 5 // 65536 Hz
	default:
		bit = 7 // 16384 Hz
	}
	return t.divInternal&(1<<bit) != 0
}

func (t *Timer) increment() {
	if t.reload > 0 {
		return
	}
	t.tima++
	if t.tima == 0 {
		t.reload = reloadDelay
	}
}

// Tick advances the divider by the given number of CPU cycles.
func (t *Timer) Tick(cycles int) {
	for i := 0; i < cycles; i++ {
		if t.reload > 0 {
			t.reload--
			if t.reload == 0 {
				t.tima = t.tma
				if t.req != nil {
					t.req(IRQBit)
				}
			}
		}
		prev := t.timerInput()
		t.divInternal++
		if prev && !t.timerInput() {
			t.increment()
		}
	}
}

func (t *Timer) CPURead(addr uint16) byte {
	switch addr {
	case DIV:
		return byte(t.divInternal >> 8)
	case TIMA:
		return t.tima
	case TMA:
		return t.tma
	case TAC:
		return 0xF8 | t.tac
	}
	return 0xFF
}

func (t *Timer) CPUWrite(addr uint16, value byte) {
	switch addr {
	case DIV:
		// any write clears the divider, which can produce a falling edge
		prev := t.timerInput()
		t.divInternal = 0
		if prev {
			t.increment()
		}
	case TIMA:
		// a write during the reload delay cancels the reload
		t.reload = 0
		t.tima = value
	case TMA:
		t.tma = value
	case TAC:
		prev := t.timerInput()
		t.tac = value & 0x07
		if prev && !t.timerInput() {
			t.increment()
		}
	}
}
