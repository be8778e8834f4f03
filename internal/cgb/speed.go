package cgb

// KEY1 is the CPU speed switch register (FF4D).
const KEY1 = 0xFF4D

// DoubleSpeed models KEY1: bit 0 is the pending switch request written by
// the program, bit 7 reflects the current speed.
type DoubleSpeed struct {
	key1   byte
	double bool
}

func (d *DoubleSpeed) Set(value byte) { d.key1 = value }
func (d *DoubleSpeed) Get() byte      { return d.key1 }

// Double reports whether the CPU runs at double speed.
func (d *DoubleSpeed) Double() bool { return d.double }

// Commit performs a requested speed switch. The CPU calls it when it
// executes STOP; without a pending request it does nothing.
func (d *DoubleSpeed) Commit() bool {
	if d.key1&0x01 == 0 {
		return false
	}
	d.double = !d.double
	d.key1 ^= 0x81
	return true
}
