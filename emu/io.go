package emu

import (
	"fmt"
	"io"

	"github.com/user-none/colecohal/hal"
	"github.com/user-none/colecohal/logger"
)

const logTag = "emu"

// NTSC chip clocks and the audio output rate
const (
	ToneClock  = 3579545
	PSGClock   = 1789772
	SampleRate = 44100
)

// Input holds controller state. Bits are active high here and inverted on
// the port.
//
//	Joystick: bit 0 up, 1 right, 2 down, 3 left, 6 left button
//	Keypad:   bits 0-3 key code, 6 right button
type Input struct {
	Joystick uint8
	Keypad   uint8
}

// Machine is the emulated board for one platform profile. It decodes the
// profile's ports to the chips and implements hal.PortIO, hal.IRQMask and
// hal.ControllerReader so the drivers run against it unchanged.
//
// The VDP frame interrupt is delivered through hal.VDPHook. It is taken
// between port operations when unmasked, and held until Enable when it
// arrives inside a masked section.
type Machine struct {
	Platform hal.Platform
	Timing   RegionTiming

	VDP  *VDP
	Tone *ToneChip
	AY   *AYChip

	Input  [2]Input
	keypad bool

	bus portBus

	masked    bool
	deferred  bool
	inService bool

	// FrameEvery raises a frame interrupt after every FrameEvery port
	// operations. Zero disables it.
	FrameEvery int

	// PortOps counts port reads and writes
	PortOps int

	// Interrupts counts delivered interrupts and Deferred the ones held
	// back by the mask
	Interrupts int
	Deferred   int

	trace io.Writer
}

// NewMachine builds the board for a platform profile in the given region
func NewMachine(p hal.Platform, r Region) *Machine {
	timing := GetTimingForRegion(r)
	m := &Machine{
		Platform: p,
		Timing:   timing,
		VDP:      NewVDP(),
	}
	bufferSize := timing.SamplesPerFrame() * 2

	m.bus.mapIn(p.VDP.DataPort, m.VDP.ReadData)
	m.bus.mapOut(p.VDP.DataPort, m.VDP.WriteData)
	m.bus.mapIn(p.VDP.ControlPort, m.VDP.ReadControl)
	m.bus.mapOut(p.VDP.ControlPort, m.VDP.WriteControl)

	if t := p.Tone; t != nil {
		m.Tone = NewToneChip(timing.ToneClock(), SampleRate, bufferSize)
		m.bus.mapOut(t.DataPort, m.Tone.WriteData)
		if t.Handshake {
			m.Tone.SetHandshake(t.ChipEnableBit, t.WriteEnableBit, t.ReadyBit)
			m.bus.mapOut(t.ControlPort, m.Tone.WriteControl)
			m.bus.mapIn(t.StatusPort, m.Tone.ReadStatus)
		}
	}

	if s := p.PSG; s != nil {
		m.AY = NewAYChip(timing.PSGClock(), SampleRate, bufferSize)
		if s.Split {
			m.bus.mapOut(s.AddressPort, m.AY.WriteAddress)
			m.bus.mapOut(s.DataPort, m.AY.WriteData)
			m.bus.mapIn(s.ReadPort, m.AY.ReadData)
		} else {
			m.AY.SetLatch(s.SelectBit, s.StrobeBit)
			m.bus.mapOut(s.DataPort, m.AY.WriteBus)
			m.bus.mapOut(s.ControlPort, m.AY.WriteControl)
		}
	}

	c := p.Controller
	m.bus.mapOut(c.StrobeSetPort, func(uint8) { m.keypad = true })
	m.bus.mapOut(c.StrobeResetPort, func(uint8) { m.keypad = false })
	m.bus.mapIn(c.PortOne, func() uint8 { return m.readController(0) })
	m.bus.mapIn(c.PortTwo, func() uint8 { return m.readController(1) })

	logger.Logf(logger.Allow, logTag, "machine %s %v", p.Name, r)
	return m
}

// SetTrace writes every port operation to w. Nil turns tracing off.
func (m *Machine) SetTrace(w io.Writer) {
	m.trace = w
}

// In implements hal.PortIO
func (m *Machine) In(port uint8) uint8 {
	v := m.bus.read(port)
	if m.trace != nil {
		fmt.Fprintf(m.trace, "IN  $%02X = $%02X\n", port, v)
	}
	m.tick()
	return v
}

// Out implements hal.PortIO
func (m *Machine) Out(port uint8, value uint8) {
	m.bus.write(port, value)
	if m.trace != nil {
		fmt.Fprintf(m.trace, "OUT $%02X , $%02X\n", port, value)
	}
	m.tick()
}

// Disable implements hal.IRQMask
func (m *Machine) Disable() {
	m.masked = true
}

// Enable implements hal.IRQMask. An interrupt held back while masked is
// taken now.
func (m *Machine) Enable() {
	m.masked = false
	if m.deferred && !m.inService {
		m.deferred = false
		m.deliver()
	}
}

// Masked reports whether interrupts are masked
func (m *Machine) Masked() bool {
	return m.masked
}

// Unmapped returns the number of accesses to undecoded ports
func (m *Machine) Unmapped() int {
	return m.bus.unmapped
}

// VBlank ends a frame: the VDP raises its interrupt flag and, if enabled in
// register 1, the interrupt line
func (m *Machine) VBlank() {
	m.VDP.SetVBlank()
	if !m.VDP.InterruptPending() {
		return
	}
	if m.masked || m.inService {
		m.Deferred++
		m.deferred = true
		return
	}
	m.deliver()
}

func (m *Machine) tick() {
	m.PortOps++
	if m.FrameEvery > 0 && m.PortOps%m.FrameEvery == 0 {
		m.VBlank()
	}
}

// deliver runs the hook the way the CPU takes an interrupt: masked on entry
// and unmasked on return
func (m *Machine) deliver() {
	m.Interrupts++
	m.inService = true
	m.masked = true
	hal.VDPHook.Fire()
	m.masked = false
	m.inService = false
}

// Controller implements hal.ControllerReader straight from the input state,
// keypad in the high byte
func (m *Machine) Controller(n int) uint16 {
	in := m.Input[0]
	if n == 2 {
		in = m.Input[1]
	}
	return uint16(in.Keypad)<<8 | uint16(in.Joystick)
}

func (m *Machine) readController(n int) uint8 {
	if m.keypad {
		return ^m.Input[n].Keypad
	}
	return ^m.Input[n].Joystick
}

// RenderTone runs the tone chip for the given time and returns its samples
func (m *Machine) RenderTone(seconds float64) []float32 {
	if m.Tone == nil {
		return nil
	}
	return m.render(seconds, m.Timing.ToneClock(), m.Tone.GenerateSamples)
}

// RenderPSG runs the AY chip for the given time and returns its samples
func (m *Machine) RenderPSG(seconds float64) []float32 {
	if m.AY == nil {
		return nil
	}
	return m.render(seconds, m.Timing.PSGClock(), func(clocks int) []float32 {
		m.AY.GenerateSamples(clocks)
		buf, n := m.AY.GetBuffer()
		return buf[:n]
	})
}

// render runs a chip one frame at a time and collects the samples
func (m *Machine) render(seconds float64, clock int, generate func(clocks int) []float32) []float32 {
	fps := m.Timing.FPS
	frames := int(seconds * float64(fps))
	out := make([]float32, 0, frames*m.Timing.SamplesPerFrame())
	for i := 0; i < frames; i++ {
		out = append(out, generate(clock/fps)...)
	}
	return out
}
