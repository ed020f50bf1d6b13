// Package gisnd drives the General Instrument AY-3-8910 programmable sound
// generator: three tone channels, a noise source, a mixer and one envelope
// generator shared by all channels.
//
// Every register write is an address phase followed by a data phase. Both
// phases run inside one masked section so an interrupt handler touching the
// chip can never land between them.
package gisnd

import (
	"github.com/user-none/colecohal/hal"
	"github.com/user-none/colecohal/logger"
)

const logTag = "gisnd"

// Channel is 'A', 'B' or 'C'
type Channel byte

const (
	ChannelA Channel = 'A'
	ChannelB Channel = 'B'
	ChannelC Channel = 'C'
)

// Registers
const (
	RegAFreqLow = iota
	RegAFreqHigh
	RegBFreqLow
	RegBFreqHigh
	RegCFreqLow
	RegCFreqHigh
	RegNoiseFreq
	RegMixer
	RegALevel
	RegBLevel
	RegCLevel
	RegEnvFreqLow
	RegEnvFreqHigh
	RegEnvShape
	RegIOPortA // reserved
	RegIOPortB // reserved

	RegisterCount
)

// Mixer channel bits. A set bit disables the channel.
const (
	MixA   = 0x01
	MixB   = 0x02
	MixC   = 0x04
	MixAll = MixA | MixB | MixC
)

// Envelope shape bits
const (
	EnvHold      = 0x01
	EnvAlternate = 0x02
	EnvAttack    = 0x04
	EnvContinue  = 0x08
)

const (
	// DividerMask covers the 12 bit tone divider
	DividerMask = 0x0FFF

	noiseMask = 0x1F
	shapeMask = 0x0F
	levelMask = 0x0F

	// envelope select bit in the level registers
	levelEnvelope = 0x10

	// MSXClock is the chip clock on the MSX and the Super Game Module
	MSXClock = 1789772
)

// FrequencyDivider returns the 12 bit tone divider for a target frequency,
// refClock/(32*freq). The chip itself divides its clock by 16*divider, so a
// refClock of twice the chip clock gives the true pitch. A zero target
// returns zero.
func FrequencyDivider(refClock uint32, freq uint32) uint16 {
	if freq == 0 {
		return 0
	}
	return uint16((uint64(refClock) / (uint64(freq) << 5)) & DividerMask)
}

// EnvelopeFrequencyDivider returns the 16 bit envelope period for a target
// envelope frequency, clock/(512*freq). A zero target returns zero.
func EnvelopeFrequencyDivider(refClock uint32, freq uint32) uint16 {
	if freq == 0 {
		return 0
	}
	return uint16(uint64(refClock) / (uint64(freq) << 9))
}

// PSG is one AY-3-8910. A nil *PSG is valid and does nothing.
type PSG struct {
	io     hal.PortIO
	irq    hal.IRQMask
	wiring hal.PSGWiring

	selectMask uint8
	strobeMask uint8
}

// New binds a PSG to its wiring
func New(io hal.PortIO, irq hal.IRQMask, wiring hal.PSGWiring) *PSG {
	return &PSG{
		io:         io,
		irq:        irq,
		wiring:     wiring,
		selectMask: 1 << wiring.SelectBit,
		strobeMask: 1 << wiring.StrobeBit,
	}
}

// Init silences the three channels. Level 0 is silent on this chip.
func (p *PSG) Init() {
	if p == nil {
		return
	}

	if p.wiring.Split {
		logger.Logf(logger.Allow, logTag, "init, address $%02X data $%02X", p.wiring.AddressPort, p.wiring.DataPort)
	} else {
		logger.Logf(logger.Allow, logTag, "init, latch on $%02X/$%02X", p.wiring.DataPort, p.wiring.ControlPort)
	}

	for _, c := range []Channel{ChannelA, ChannelB, ChannelC} {
		p.SetChannelAttenuation(c, 0, false)
	}
}

// SetChannelFrequency writes the low byte and then the high nibble of the
// tone divider
func (p *PSG) SetChannelFrequency(c Channel, divider uint16) {
	if p == nil {
		return
	}

	var lo, hi uint8
	switch c {
	case ChannelA:
		lo, hi = RegAFreqLow, RegAFreqHigh
	case ChannelB:
		lo, hi = RegBFreqLow, RegBFreqHigh
	case ChannelC:
		lo, hi = RegCFreqLow, RegCFreqHigh
	default:
		return
	}

	p.WriteRegister(lo, uint8(divider))
	p.WriteRegister(hi, uint8(divider>>8)&0x0F)
}

// SetChannelAttenuation sets the level of a channel. With envelope set the
// channel follows the envelope generator and level is ignored by the chip.
func (p *PSG) SetChannelAttenuation(c Channel, level uint8, envelope bool) {
	if p == nil {
		return
	}

	var reg uint8
	switch c {
	case ChannelA:
		reg = RegALevel
	case ChannelB:
		reg = RegBLevel
	case ChannelC:
		reg = RegCLevel
	default:
		return
	}

	v := level & levelMask
	if envelope {
		v |= levelEnvelope
	}
	p.WriteRegister(reg, v)
}

// SetMixer sets which channels carry noise and tone. A set bit disables
// (MixA, MixB, MixC). The wiring's I/O direction bits are kept.
func (p *PSG) SetMixer(noise uint8, tone uint8) {
	if p == nil {
		return
	}
	p.WriteRegister(RegMixer, (noise&MixAll)<<3|tone&MixAll|p.wiring.MixerIOBits)
}

// SetNoiseFrequency sets the 5 bit noise divider
func (p *PSG) SetNoiseFrequency(divider uint8) {
	if p == nil {
		return
	}
	p.WriteRegister(RegNoiseFreq, divider&noiseMask)
}

// SetEnvelopeFrequency sets the 16 bit envelope period, low byte first
func (p *PSG) SetEnvelopeFrequency(divider uint16) {
	if p == nil {
		return
	}
	p.WriteRegister(RegEnvFreqLow, uint8(divider))
	p.WriteRegister(RegEnvFreqHigh, uint8(divider>>8))
}

// SetEnvelopeShape sets the envelope shape and restarts the envelope
func (p *PSG) SetEnvelopeShape(shape uint8) {
	if p == nil {
		return
	}
	p.WriteRegister(RegEnvShape, shape&shapeMask)
}

// WriteRegister latches reg and writes value to it
func (p *PSG) WriteRegister(reg uint8, value uint8) {
	if p == nil || reg >= RegisterCount {
		return
	}

	p.irq.Disable()
	p.sendAddress(reg)
	p.sendData(value)
	p.irq.Enable()
}

// ReadRegister latches reg and reads it back. Only split wiring has a read
// port; latch wiring returns false without touching the chip.
func (p *PSG) ReadRegister(reg uint8) (uint8, bool) {
	if p == nil || !p.wiring.Split || reg >= RegisterCount {
		return 0, false
	}

	p.irq.Disable()
	p.sendAddress(reg)
	v := p.io.In(p.wiring.ReadPort)
	p.irq.Enable()

	return v, true
}

// sendAddress drops the select line, strobes the register number in from the
// data port and raises select again
func (p *PSG) sendAddress(reg uint8) {
	if p.wiring.Split {
		p.io.Out(p.wiring.AddressPort, reg)
		return
	}

	p.io.Out(p.wiring.ControlPort, p.strobeMask)
	p.io.Out(p.wiring.DataPort, reg)
	p.io.Out(p.wiring.ControlPort, 0)
	p.io.Out(p.wiring.ControlPort, p.strobeMask)
	p.io.Out(p.wiring.ControlPort, p.selectMask|p.strobeMask)
}

// sendData strobes value in with select high
func (p *PSG) sendData(value uint8) {
	if p.wiring.Split {
		p.io.Out(p.wiring.DataPort, value)
		return
	}

	p.io.Out(p.wiring.DataPort, value)
	p.io.Out(p.wiring.ControlPort, p.selectMask)
	p.io.Out(p.wiring.ControlPort, p.selectMask|p.strobeMask)
}
