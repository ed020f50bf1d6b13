package emu

// portBus decodes the 8-bit I/O space to chip handlers. Reads and writes
// decode separately so an input and an output can share a port number.
type portBus struct {
	in  [256]func() uint8
	out [256]func(uint8)

	unmapped int
}

func (b *portBus) mapIn(port uint8, f func() uint8) { b.in[port] = f }
func (b *portBus) mapOut(port uint8, f func(uint8)) { b.out[port] = f }

// read returns $FF from an undecoded port, the floating bus value
func (b *portBus) read(port uint8) uint8 {
	if f := b.in[port]; f != nil {
		return f()
	}
	b.unmapped++
	return 0xFF
}

func (b *portBus) write(port uint8, value uint8) {
	if f := b.out[port]; f != nil {
		f(value)
		return
	}
	b.unmapped++
}
