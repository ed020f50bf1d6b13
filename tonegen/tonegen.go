// Package tonegen drives the SN76489 tone generator: three square wave voices
// and one noise channel.
//
// Every command is a single byte. When the chip sits behind the READY
// handshake each byte waits for READY before and after the write strobe.
// The wait has no timeout, a chip that never raises READY hangs the caller.
package tonegen

import (
	"github.com/user-none/colecohal/hal"
	"github.com/user-none/colecohal/logger"
)

const logTag = "tonegen"

// Voice numbers the three tone voices 1 to 3
type Voice uint8

// NoiseType selects the noise feedback
type NoiseType uint8

const (
	Periodic NoiseType = 0
	White    NoiseType = 1
)

// NoiseRate selects the noise shift rate
type NoiseRate uint8

const (
	Rate512    NoiseRate = 0 // clock/512
	Rate1024   NoiseRate = 1 // clock/1024
	Rate2048   NoiseRate = 2 // clock/2048
	RateVoice3 NoiseRate = 3 // follow voice 3
)

const (
	// Mute is the attenuation that silences a channel. Each step is 2dB.
	Mute = 15

	// DividerMask covers the 10 bit tone divider
	DividerMask = 0x3FF

	// ColecoClock is the reference clock on the ColecoVision
	ColecoClock = 3579545
)

// command registers
const (
	regVoice1Freq = 0
	regVoice1Attn = 1
	regVoice2Freq = 2
	regVoice2Attn = 3
	regVoice3Freq = 4
	regVoice3Attn = 5
	regNoiseCtrl  = 6
	regNoiseAttn  = 7

	latchBit = 0x80
	regShift = 4
)

// FrequencyDivider returns the 10 bit divider for a target frequency. The
// chip outputs clock/(32*divider). A zero target returns zero.
func FrequencyDivider(refClock uint32, freq uint32) uint16 {
	if freq == 0 {
		return 0
	}
	return uint16((uint64(refClock) / (uint64(freq) << 5)) & DividerMask)
}

// ToneGenerator is one SN76489. A nil *ToneGenerator is valid and does
// nothing.
type ToneGenerator struct {
	io     hal.PortIO
	irq    hal.IRQMask
	wiring hal.ToneWiring

	strobeMask uint8
	readyMask  uint8
}

// New binds a tone generator to its wiring
func New(io hal.PortIO, irq hal.IRQMask, wiring hal.ToneWiring) *ToneGenerator {
	return &ToneGenerator{
		io:         io,
		irq:        irq,
		wiring:     wiring,
		strobeMask: 1<<wiring.ChipEnableBit | 1<<wiring.WriteEnableBit,
		readyMask:  1 << wiring.ReadyBit,
	}
}

// Init mutes the three voices and the noise channel
func (g *ToneGenerator) Init() {
	if g == nil {
		return
	}

	if g.wiring.Handshake {
		logger.Logf(logger.Allow, logTag, "init, handshake on $%02X", g.wiring.DataPort)
	} else {
		logger.Logf(logger.Allow, logTag, "init, direct on $%02X", g.wiring.DataPort)
	}

	for v := Voice(1); v <= 3; v++ {
		g.SetVoiceAttenuation(v, Mute)
	}
	g.SetNoiseAttenuation(Mute)
}

// SetVoiceFrequency sets the divider of a voice. The low nibble goes in the
// latch byte and the upper six bits in a following data byte.
func (g *ToneGenerator) SetVoiceFrequency(voice Voice, divider uint16) {
	if g == nil {
		return
	}

	reg, ok := freqRegister(voice)
	if !ok {
		return
	}

	g.SendByte(latchBit | reg<<regShift | uint8(divider&0x0F))
	g.SendByte(uint8((divider & 0x3F0) >> 4))
}

// SetVoiceAttenuation sets the attenuation of a voice, 0 loudest and Mute
// silent
func (g *ToneGenerator) SetVoiceAttenuation(voice Voice, level uint8) {
	if g == nil {
		return
	}

	reg, ok := attnRegister(voice)
	if !ok {
		return
	}

	g.SendByte(latchBit | reg<<regShift | level&0x0F)
}

// SetNoiseAttenuation sets the attenuation of the noise channel
func (g *ToneGenerator) SetNoiseAttenuation(level uint8) {
	if g == nil {
		return
	}
	g.SendByte(latchBit | regNoiseAttn<<regShift | level&0x0F)
}

// SetNoiseControl selects the noise type and shift rate
func (g *ToneGenerator) SetNoiseControl(typ NoiseType, rate NoiseRate) {
	if g == nil {
		return
	}
	g.SendByte(latchBit | regNoiseCtrl<<regShift | uint8(typ&0x01)<<2 | uint8(rate&0x03))
}

// SendByte writes one raw command byte with interrupts masked
func (g *ToneGenerator) SendByte(b uint8) {
	if g == nil {
		return
	}

	g.irq.Disable()
	if g.wiring.Handshake {
		g.waitReady()
		g.io.Out(g.wiring.DataPort, b)
		// chip enable and write enable are active low
		g.io.Out(g.wiring.ControlPort, ^g.strobeMask)
		g.io.Out(g.wiring.ControlPort, 0xFF)
		g.waitReady()
	} else {
		g.io.Out(g.wiring.DataPort, b)
	}
	g.irq.Enable()
}

func (g *ToneGenerator) waitReady() {
	for g.io.In(g.wiring.StatusPort)&g.readyMask == 0 {
	}
}

func freqRegister(voice Voice) (uint8, bool) {
	switch voice {
	case 1:
		return regVoice1Freq, true
	case 2:
		return regVoice2Freq, true
	case 3:
		return regVoice3Freq, true
	}
	return 0, false
}

func attnRegister(voice Voice) (uint8, bool) {
	switch voice {
	case 1:
		return regVoice1Attn, true
	case 2:
		return regVoice2Attn, true
	case 3:
		return regVoice3Attn, true
	}
	return 0, false
}
