// Package vdp drives the TMS9918/28/29 video display processor with 16KB of
// VRAM.
//
// The chip's registers are write only, so the driver keeps a shadow of
// registers 0, 1 and 7 and of the table addresses. Every setter modifies the
// shadow and then rewrites the whole affected register. Nothing is ever read
// back from the chip except the status register and VRAM.
package vdp

import (
	"github.com/user-none/colecohal/hal"
	"github.com/user-none/colecohal/logger"
)

const logTag = "vdp"

// Tables holds the VRAM base addresses of the five tables
type Tables struct {
	Name            uint16
	Color           uint16
	Pattern         uint16
	SpriteAttribute uint16
	SpritePattern   uint16
}

// DefaultTables are the addresses set by Init
var DefaultTables = Tables{
	Name:            NameTableAddr,
	Color:           ColorTableAddr,
	Pattern:         PatternTableAddr,
	SpriteAttribute: SpriteAttributeTableAddr,
	SpritePattern:   SpritePatternTableAddr,
}

// State is a snapshot of the shadow registers
type State struct {
	Mode      Mode
	Register0 uint8
	Register1 uint8
	ColorReg  uint8
	Tables    Tables
}

// VDP is the video controller. A nil *VDP is valid and does nothing.
type VDP struct {
	io     hal.PortIO
	irq    hal.IRQMask
	wiring hal.VDPWiring

	mode      Mode
	register0 uint8
	register1 uint8
	colorReg  uint8
	tables    Tables
}

// New binds a controller to its ports. The chip is not touched until Init.
func New(io hal.PortIO, irq hal.IRQMask, wiring hal.VDPWiring) *VDP {
	return &VDP{
		io:     io,
		irq:    irq,
		wiring: wiring,
		tables: DefaultTables,
	}
}

// Init resets the shadow state, selects mode and background color and writes
// all registers. Register 1 is set for 16KB with the screen blanked and
// interrupts, large and magnified sprites off.
func (v *VDP) Init(mode Mode, background Color) {
	if v == nil || !mode.valid() {
		return
	}

	v.mode = mode
	v.register0 = 0
	v.register1 = 1 << reg1VRAM16K
	v.colorReg = uint8(background & 0x0F)
	v.tables = DefaultTables

	logger.Logf(logger.Allow, logTag, "init %s, background %d", mode, background&0x0F)

	v.writeModeRegisters()
}

// SetMode changes the display mode and rewrites the registers. Bits of
// register 1 that are not mode bits are kept.
func (v *VDP) SetMode(mode Mode) {
	if v == nil || !mode.valid() {
		return
	}

	v.mode = mode
	logger.Logf(logger.Allow, logTag, "mode %s", mode)
	v.writeModeRegisters()
}

// SetTables changes the table addresses and rewrites the registers
func (v *VDP) SetTables(t Tables) {
	if v == nil {
		return
	}

	v.tables = Tables{
		Name:            t.Name & addrMask,
		Color:           t.Color & addrMask,
		Pattern:         t.Pattern & addrMask,
		SpriteAttribute: t.SpriteAttribute & addrMask,
		SpritePattern:   t.SpritePattern & addrMask,
	}
	v.writeModeRegisters()
}

// SetBlank blanks the screen when on is true. The register bit is active low:
// a set bit enables the display.
func (v *VDP) SetBlank(on bool) {
	if v == nil {
		return
	}
	v.setRegister1Bit(reg1Blank, !on)
}

// SetIRQ enables or disables the frame interrupt
func (v *VDP) SetIRQ(on bool) {
	if v == nil {
		return
	}
	v.setRegister1Bit(reg1IRQ, on)
}

// SetSpriteSize selects 16x16 sprites when big is true, 8x8 otherwise
func (v *VDP) SetSpriteSize(big bool) {
	if v == nil {
		return
	}
	v.setRegister1Bit(reg1SpriteSize, big)
}

// SetSpriteMagnify doubles sprite pixels when on is true
func (v *VDP) SetSpriteMagnify(on bool) {
	if v == nil {
		return
	}
	v.setRegister1Bit(reg1SpriteMagnif, on)
}

// SetTextColor sets the text mode foreground color
func (v *VDP) SetTextColor(c Color) {
	if v == nil {
		return
	}
	v.colorReg = (v.colorReg & 0x0F) | uint8(c&0x0F)<<4
	v.writeRegister(Register7, v.colorReg)
}

// SetBackgroundColor sets the backdrop color
func (v *VDP) SetBackgroundColor(c Color) {
	if v == nil {
		return
	}
	v.colorReg = (v.colorReg & 0xF0) | uint8(c&0x0F)
	v.writeRegister(Register7, v.colorReg)
}

// SetRegister writes any register directly. The shadow is not updated, so a
// later setter touching the same register writes the shadow value back.
func (v *VDP) SetRegister(num uint8, data uint8) {
	if v == nil {
		return
	}
	v.writeRegister(num, data)
}

// ReadStatus returns the status register. Reading it clears the interrupt
// flag and the collision and fifth sprite flags, and every VRAM transfer ends
// with a status read of its own, so a caller interested in the interrupt
// flag must read it before any other VRAM operation.
func (v *VDP) ReadStatus() uint8 {
	if v == nil {
		return 0
	}
	return v.io.In(v.wiring.ControlPort)
}

// State returns the shadow registers
func (v *VDP) State() State {
	if v == nil {
		return State{}
	}
	return State{
		Mode:      v.mode,
		Register0: v.register0,
		Register1: v.register1,
		ColorReg:  v.colorReg,
		Tables:    v.tables,
	}
}

// Tables returns the current table addresses
func (v *VDP) Tables() Tables {
	if v == nil {
		return Tables{}
	}
	return v.tables
}

func (v *VDP) setRegister1Bit(bit uint, set bool) {
	if set {
		v.register1 |= 1 << bit
	} else {
		v.register1 &^= 1 << bit
	}
	v.writeRegister(Register1, v.register1)
}

// writeModeRegisters derives the mode bits and writes registers 0 to 7.
// Text mode has no color table and no sprites so registers 3, 5 and 6 are
// left alone.
func (v *VDP) writeModeRegisters() {
	// only graphics II sets M3
	v.register0 = 0x02 & (uint8(v.mode) << 1)

	// M1 and M2 in bits 4 and 3
	v.register1 = (v.register1 & reg1KeepMask) | ((0x06 & uint8(v.mode)) << 2)

	v.writeRegister(Register0, v.register0)
	v.writeRegister(Register1, v.register1)
	v.writeRegister(Register2, uint8(v.tables.Name>>nameTableScale))

	if v.mode == GraphicsII {
		color := uint8(gfx2ColorHigh)
		if v.tables.Color < gfx2Split {
			color = gfx2ColorLow
		}
		v.writeRegister(Register3, color)

		pattern := uint8(gfx2PatternHigh)
		if v.tables.Pattern < gfx2Split {
			pattern = gfx2PatternLow
		}
		v.writeRegister(Register4, pattern)
	} else {
		if v.mode != Text {
			v.writeRegister(Register3, uint8(v.tables.Color>>colorTableScale))
		}
		v.writeRegister(Register4, uint8(v.tables.Pattern>>patternTableScale))
	}

	if v.mode != Text {
		v.writeRegister(Register5, uint8(v.tables.SpriteAttribute>>spriteAttributeTableScale))
		v.writeRegister(Register6, uint8(v.tables.SpritePattern>>spritePatternTableScale))
	}

	v.writeRegister(Register7, v.colorReg)
}

// writeRegister sends the value and then the register number with bit 7 set
func (v *VDP) writeRegister(num uint8, data uint8) {
	v.irq.Disable()
	v.io.Out(v.wiring.ControlPort, data)
	v.io.Out(v.wiring.ControlPort, registerWrite|num)
	v.irq.Enable()
}
