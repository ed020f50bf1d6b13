package emu

// VDP models the register, VRAM and status interface of the TMS9918A. It does
// not render; it only answers the port protocol the way the chip does.
type VDP struct {
	vram       [0x4000]uint8 // 16KB VRAM
	register   [8]uint8      // VDP registers
	addr       uint16        // Current VRAM address
	addrLatch  uint8         // First byte of control write
	writeLatch bool          // True if first byte written
	readMode   bool          // Cursor was last set for reading
	readBuffer uint8         // Read ahead buffer for VRAM reads
	status     uint8         // Status register

	// Protocol violations seen. A VRAM data access while the control port
	// holds half a command, or reading with a write cursor.
	desyncs int
}

const (
	vramMask = 0x3FFF

	statusInt = 0x80
)

func NewVDP() *VDP {
	return &VDP{}
}

// ReadControl returns the status register and clears the interrupt, fifth
// sprite and collision flags
func (v *VDP) ReadControl() uint8 {
	s := v.status
	v.status &= 0x1F
	v.writeLatch = false // Clear address latch (matches real hardware)
	return s
}

// WriteControl handles the two byte command sequence. The second byte has
// bit 7 set for a register write; otherwise bit 6 selects a write cursor and
// the low 6 bits are the top of the address.
func (v *VDP) WriteControl(value uint8) {
	if !v.writeLatch {
		v.addrLatch = value
		v.writeLatch = true
		return
	}
	v.writeLatch = false

	if value&0x80 != 0 {
		v.register[value&0x07] = v.addrLatch
		return
	}

	v.addr = (uint16(value&0x3F)<<8 | uint16(v.addrLatch)) & vramMask
	if value&0x40 != 0 {
		v.readMode = false
		return
	}

	// Read setup fetches the first byte ahead
	v.readMode = true
	v.readBuffer = v.vram[v.addr]
	v.addr = (v.addr + 1) & vramMask
}

// ReadData returns the read ahead byte and fetches the next
func (v *VDP) ReadData() uint8 {
	if v.writeLatch || !v.readMode {
		v.desyncs++
	}
	v.writeLatch = false
	data := v.readBuffer
	v.readBuffer = v.vram[v.addr]
	v.addr = (v.addr + 1) & vramMask
	return data
}

// WriteData stores a byte at the cursor
func (v *VDP) WriteData(value uint8) {
	if v.writeLatch || v.readMode {
		v.desyncs++
	}
	v.writeLatch = false
	v.vram[v.addr] = value
	v.readBuffer = value
	v.addr = (v.addr + 1) & vramMask
}

// SetVBlank raises the frame interrupt flag
func (v *VDP) SetVBlank() {
	v.status |= statusInt
}

// SetSpriteStatus sets the collision and fifth sprite bits as the sprite
// logic of a real chip would
func (v *VDP) SetSpriteStatus(fifth bool, collision bool, sprite uint8) {
	v.status = v.status&statusInt | sprite&0x1F
	if fifth {
		v.status |= 0x40
	}
	if collision {
		v.status |= 0x20
	}
}

// InterruptPending reports whether the INT line is asserted
func (v *VDP) InterruptPending() bool {
	return v.status&statusInt != 0 && v.register[1]&0x20 != 0
}

// Mode returns the M3, M2 and M1 bits as one value: bit 0 is M3 (register 0
// bit 1), bit 1 is M2 (register 1 bit 3) and bit 2 is M1 (register 1 bit 4)
func (v *VDP) Mode() uint8 {
	m3 := (v.register[0] >> 1) & 0x01
	m2 := (v.register[1] >> 3) & 0x01
	m1 := (v.register[1] >> 4) & 0x01
	return m3 | m2<<1 | m1<<2
}

// DisplayEnabled reports whether register 1 has the screen switched on
func (v *VDP) DisplayEnabled() bool {
	return v.register[1]&0x40 != 0
}

// NameTable returns the name table base
func (v *VDP) NameTable() uint16 {
	return uint16(v.register[2]&0x0F) << 10
}

// ColorTable returns the color table base. In graphics II only bit 7 of
// register 3 selects the table.
func (v *VDP) ColorTable() uint16 {
	if v.register[0]&0x02 != 0 {
		return uint16(v.register[3]&0x80) << 6
	}
	return uint16(v.register[3]) << 6
}

// PatternTable returns the pattern table base. In graphics II only bit 2 of
// register 4 selects the table.
func (v *VDP) PatternTable() uint16 {
	if v.register[0]&0x02 != 0 {
		return uint16(v.register[4]&0x04) << 11
	}
	return uint16(v.register[4]&0x07) << 11
}

// SpriteAttributeTable returns the sprite attribute table base
func (v *VDP) SpriteAttributeTable() uint16 {
	return uint16(v.register[5]&0x7F) << 7
}

// SpritePatternTable returns the sprite pattern table base
func (v *VDP) SpritePatternTable() uint16 {
	return uint16(v.register[6]&0x07) << 11
}

// Backdrop returns the backdrop color, the low nibble of register 7
func (v *VDP) Backdrop() uint8 {
	return v.register[7] & 0x0F
}

// TextColor returns the text mode foreground color
func (v *VDP) TextColor() uint8 {
	return v.register[7] >> 4
}

// GetVRAM returns the VRAM for inspection
func (v *VDP) GetVRAM() []uint8 {
	return v.vram[:]
}

// GetRegister returns register n
func (v *VDP) GetRegister(n int) uint8 {
	if n < 0 || n >= len(v.register) {
		return 0
	}
	return v.register[n]
}

// GetAddress returns the VRAM cursor
func (v *VDP) GetAddress() uint16 {
	return v.addr
}

// GetWriteLatch reports whether the control port holds half a command
func (v *VDP) GetWriteLatch() bool {
	return v.writeLatch
}

// GetStatus returns the status register without clearing it
func (v *VDP) GetStatus() uint8 {
	return v.status
}

// Desyncs returns the number of protocol violations seen
func (v *VDP) Desyncs() int {
	return v.desyncs
}
