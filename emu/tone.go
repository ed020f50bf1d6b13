package emu

import (
	"errors"

	"github.com/user-none/go-chip-sn76489"
)

// ErrReadyTimeout is the panic value raised when a poll budget runs out
var ErrReadyTimeout = errors.New("tone chip READY never returned")

// ToneChip puts an SN76489 behind either a plain write port or the READY
// handshake.
//
// In handshake mode the byte on the data port is only taken when the
// write-enable line rises while chip-enable is low. The chip then drops READY
// for BusyPolls status reads, the time it takes the real part to latch a
// byte. With Stuck set READY never comes back.
type ToneChip struct {
	chip *sn76489.SN76489

	handshake bool
	ceMask    uint8
	weMask    uint8
	readyMask uint8

	data    uint8
	control uint8
	busy    int

	// BusyPolls is how many status reads READY stays low after a write
	BusyPolls int

	// Stuck holds READY low forever
	Stuck bool

	// Polls counts status reads
	Polls int

	// PollBudget panics with ErrReadyTimeout once Polls exceeds it. Zero
	// means no budget.
	PollBudget int

	// Commands holds every byte the chip accepted, in order
	Commands []uint8

	// Violations counts writes strobed while the chip was busy
	Violations int
}

// NewToneChip creates a tone chip clocked at clock producing samples at
// sampleRate
func NewToneChip(clock int, sampleRate int, bufferSize int) *ToneChip {
	return &ToneChip{
		chip:    sn76489.New(clock, sampleRate, bufferSize, sn76489.Sega),
		control: 0xFF,
	}
}

// SetHandshake switches the chip to the READY handshake on the given bits
func (t *ToneChip) SetHandshake(ceBit, weBit, readyBit uint8) {
	t.handshake = true
	t.ceMask = 1 << ceBit
	t.weMask = 1 << weBit
	t.readyMask = 1 << readyBit
}

// WriteData handles a write to the data port
func (t *ToneChip) WriteData(value uint8) {
	if !t.handshake {
		t.accept(value)
		return
	}
	t.data = value
}

// WriteControl handles a write to the control port. Both lines are active
// low.
func (t *ToneChip) WriteControl(value uint8) {
	prev := t.control
	t.control = value

	weRose := prev&t.weMask == 0 && value&t.weMask != 0
	ceLow := prev&t.ceMask == 0
	if !weRose || !ceLow {
		return
	}

	if t.busy > 0 || t.Stuck {
		t.Violations++
	}
	t.accept(t.data)
	t.busy = t.BusyPolls
}

// ReadStatus returns the status port with READY set when the chip can take a
// byte
func (t *ToneChip) ReadStatus() uint8 {
	t.Polls++
	if t.PollBudget > 0 && t.Polls > t.PollBudget {
		panic(ErrReadyTimeout)
	}
	if t.Stuck {
		return 0
	}
	if t.busy > 0 {
		t.busy--
		return 0
	}
	return t.readyMask
}

// Ready reports whether the next status read will show READY
func (t *ToneChip) Ready() bool {
	return !t.Stuck && t.busy == 0
}

func (t *ToneChip) accept(value uint8) {
	t.Commands = append(t.Commands, value)
	t.chip.Write(value)
}

// ToneReg returns the divider of tone channel ch, 0 to 2
func (t *ToneChip) ToneReg(ch int) uint16 {
	return t.chip.GetToneReg(ch)
}

// Volume returns the attenuation of channel ch, 0 to 2 tone and 3 noise
func (t *ToneChip) Volume(ch int) uint8 {
	return t.chip.GetVolume(ch)
}

// NoiseReg returns the noise control register
func (t *ToneChip) NoiseReg() uint8 {
	return t.chip.GetNoiseReg()
}

// GenerateSamples runs the chip for clocks input clocks and returns the
// samples produced
func (t *ToneChip) GenerateSamples(clocks int) []float32 {
	t.chip.GenerateSamples(clocks)
	buf, n := t.chip.GetBuffer()
	return buf[:n]
}
