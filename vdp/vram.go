package vdp

import (
	"github.com/user-none/colecohal/logger"
)

// SetWriteAddress points the VRAM cursor at addr for writing. Only the low 14
// bits are sent.
func (v *VDP) SetWriteAddress(addr uint16) {
	if v == nil {
		return
	}
	v.setAddress(addr, vramWrite)
}

// SetReadAddress points the VRAM cursor at addr for reading. Only the low 14
// bits are sent.
func (v *VDP) SetReadAddress(addr uint16) {
	if v == nil {
		return
	}
	v.setAddress(addr, vramRead)
}

func (v *VDP) setAddress(addr uint16, direction uint8) {
	v.irq.Disable()
	v.io.Out(v.wiring.ControlPort, uint8(addr))
	v.io.Out(v.wiring.ControlPort, direction|uint8(addr>>8)&0x3F)
	v.irq.Enable()
}

// WriteBytes streams data to VRAM at the cursor and returns the number of
// bytes written.
func (v *VDP) WriteBytes(data []uint8) int {
	if v == nil {
		return 0
	}
	return v.WriteRepeating(data, len(data), len(data))
}

// WriteConstant writes value length times
func (v *VDP) WriteConstant(value uint8, length int) int {
	if v == nil {
		return 0
	}
	return v.WriteRepeating([]uint8{value}, length, 1)
}

// WriteRepeating writes total bytes cycling through the first patternLength
// bytes of data. A patternLength longer than data is shortened to len(data).
// The return value is the number of bytes actually sent, which is less than
// total when the platform caps a single burst. Every call starts at pattern
// index 0, so a caller continuing a capped run resumes the pattern at
// n%patternLength.
func (v *VDP) WriteRepeating(data []uint8, total int, patternLength int) int {
	if v == nil || len(data) == 0 || patternLength <= 0 || total < 0 {
		return 0
	}
	if patternLength > len(data) {
		patternLength = len(data)
	}
	total = v.capBurst(total)

	v.irq.Disable()
	for i := 0; i < total; i++ {
		v.io.Out(v.wiring.DataPort, data[i%patternLength])
	}
	v.io.In(v.wiring.ControlPort)
	v.irq.Enable()

	return total
}

// ReadBytes reads length bytes from VRAM at the cursor into buf. When length
// exceeds len(buf) the buffer is filled again from the start so it ends up
// holding the last bytes read.
func (v *VDP) ReadBytes(buf []uint8, length int) int {
	if v == nil || len(buf) == 0 || length < 0 {
		return 0
	}
	length = v.capBurst(length)

	v.irq.Disable()
	for i := 0; i < length; i++ {
		buf[i%len(buf)] = v.io.In(v.wiring.DataPort)
	}
	v.io.In(v.wiring.ControlPort)
	v.irq.Enable()

	return length
}

// WriteTableRecord writes count records of recordSize bytes from data into the
// table at base, starting at record start.
func (v *VDP) WriteTableRecord(base uint16, data []uint8, start int, count int, recordSize int) int {
	if v == nil {
		return 0
	}
	n := count * recordSize
	v.SetWriteAddress(base + uint16(start*recordSize))
	return v.WriteRepeating(data, n, n)
}

// WriteSpriteTerminator ends the sprite list at sprite index
func (v *VDP) WriteSpriteTerminator(index int) {
	if v == nil {
		return
	}
	b := TerminatorSprite.Bytes()
	v.WriteTableRecord(v.tables.SpriteAttribute, b[:], index, 1, SpriteAttributeSize)
}

// ClearAll zeroes all of VRAM
func (v *VDP) ClearAll() {
	if v == nil {
		return
	}
	v.SetWriteAddress(0)
	v.fill(0)
}

// SelfTest fills VRAM with a test pattern and reads it back. It returns false
// on the first mismatch.
func (v *VDP) SelfTest() bool {
	if v == nil {
		return false
	}

	v.SetWriteAddress(0)
	v.fill(selfTestPattern)

	v.SetReadAddress(0)
	buf := make([]uint8, selfTestChunk)
	for addr := 0; addr < MemSize; {
		want := min(len(buf), MemSize-addr)
		n := v.ReadBytes(buf, want)
		if n == 0 {
			logger.Logf(logger.Allow, logTag, "self test: no data at $%04X", addr)
			return false
		}
		for i := 0; i < n; i++ {
			if buf[i] != selfTestPattern {
				logger.Logf(logger.Allow, logTag, "self test: $%04X read $%02X", addr+i, buf[i])
				return false
			}
		}
		addr += n
	}

	logger.Log(logger.Allow, logTag, "self test passed")
	return true
}

// fill writes value over all of VRAM from the cursor, one burst at a time
func (v *VDP) fill(value uint8) {
	for done := 0; done < MemSize; {
		n := v.WriteConstant(value, MemSize-done)
		if n == 0 {
			return
		}
		done += n
	}
}

func (v *VDP) capBurst(n int) int {
	if v.wiring.MaxBurst > 0 && n > v.wiring.MaxBurst {
		return v.wiring.MaxBurst
	}
	return n
}
