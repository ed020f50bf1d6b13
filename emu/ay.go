package emu

// AYChip emulates the AY-3-8910 Programmable Sound Generator
// - 3 square wave tone channels with 12-bit dividers
// - 1 noise generator shared through the mixer
// - 4-bit level per channel (0 = silent, 15 = max) or the envelope
// - 1 envelope generator with 16-bit period and 4-bit shape
//
// The register file is reached through a bus latch (BDIR/BC1 style select and
// strobe lines on a control port) or through separate address, write and
// read ports.
type AYChip struct {
	regs    [16]uint8
	address uint8

	// Latch bus interface
	selectMask uint8
	strobeMask uint8
	bus        uint8
	control    uint8

	// Tone channel counters and output state
	toneCounter [3]uint16
	toneOutput  [3]bool

	// Noise
	noiseCounter uint8
	noiseShift   uint32 // 17-bit LFSR
	noiseOutput  bool

	// Envelope
	envCounter   uint32
	envStep      uint8
	envAttack    bool
	envHolding   bool
	envHoldLevel uint8

	// Clock info
	clocksPerSample float64
	clockCounter    float64
	clockDivider    int // Divides input clock by 16

	// Output buffer (used by GenerateSamples)
	buffer    []float32
	bufferPos int

	// Writes counts completed register writes
	Writes int
}

// Register width masks. Unused bits read back as zero.
var ayRegMask = [16]uint8{
	0xFF, 0x0F, 0xFF, 0x0F, 0xFF, 0x0F, // tone periods
	0x1F,             // noise period
	0xFF,             // mixer and I/O direction
	0x1F, 0x1F, 0x1F, // levels with envelope select
	0xFF, 0xFF, // envelope period
	0x0F,       // envelope shape
	0xFF, 0xFF, // I/O ports
}

// Level table: converts 4-bit level to linear amplitude
// 0 = silence, 15 = maximum, roughly 3dB per step
var ayLevelTable = []float32{
	0.0, 0.0137, 0.0205, 0.0291, 0.0423, 0.0618, 0.0847, 0.1369,
	0.1691, 0.2647, 0.3527, 0.4499, 0.5704, 0.6873, 0.8482, 1.0,
}

// NewAYChip creates a new AY chip instance
// clock is the chip clock frequency (1789772 Hz on the MSX)
// sampleRate is the audio output sample rate (e.g., 44100 Hz)
// bufferSize is the number of samples per buffer
func NewAYChip(clock int, sampleRate int, bufferSize int) *AYChip {
	return &AYChip{
		clocksPerSample: float64(clock) / float64(sampleRate),
		buffer:          make([]float32, bufferSize),
		noiseShift:      1,
		control:         0xFF,
	}
}

// SetLatch wires the latch bus interface. selectBit low addresses a register,
// high writes data. strobeBit is the active low strobe; the bus is sampled
// when it falls.
func (a *AYChip) SetLatch(selectBit, strobeBit uint8) {
	a.selectMask = 1 << selectBit
	a.strobeMask = 1 << strobeBit
}

// WriteBus handles a write to the latch data port
func (a *AYChip) WriteBus(value uint8) {
	a.bus = value
}

// WriteControl handles a write to the latch control port
func (a *AYChip) WriteControl(value uint8) {
	prev := a.control
	a.control = value

	strobeFell := prev&a.strobeMask != 0 && value&a.strobeMask == 0
	if !strobeFell {
		return
	}
	if value&a.selectMask == 0 {
		a.WriteAddress(a.bus)
	} else {
		a.WriteData(a.bus)
	}
}

// WriteAddress latches the register number. Values above 15 select nothing.
func (a *AYChip) WriteAddress(value uint8) {
	a.address = value
}

// WriteData writes the latched register
func (a *AYChip) WriteData(value uint8) {
	if a.address > 15 {
		return
	}
	a.regs[a.address] = value & ayRegMask[a.address]
	a.Writes++

	if a.address == 13 {
		a.restartEnvelope()
	}
}

// ReadData reads the latched register
func (a *AYChip) ReadData() uint8 {
	if a.address > 15 {
		return 0xFF
	}
	return a.regs[a.address]
}

// Register returns register n without going through the latch
func (a *AYChip) Register(n int) uint8 {
	if n < 0 || n >= len(a.regs) {
		return 0
	}
	return a.regs[n]
}

// TonePeriod returns the 12-bit divider of channel ch, 0 to 2
func (a *AYChip) TonePeriod(ch int) uint16 {
	return uint16(a.regs[ch*2+1])<<8 | uint16(a.regs[ch*2])
}

// EnvelopePeriod returns the 16-bit envelope period
func (a *AYChip) EnvelopePeriod() uint16 {
	return uint16(a.regs[12])<<8 | uint16(a.regs[11])
}

func (a *AYChip) restartEnvelope() {
	a.envCounter = 0
	a.envStep = 0
	a.envHolding = false
	a.envAttack = a.regs[13]&0x04 != 0
}

// Clock advances the chip by one input clock cycle
func (a *AYChip) Clock() {
	a.clockDivider++
	if a.clockDivider < 16 {
		return
	}
	a.clockDivider = 0

	// Tone channels toggle every period ticks
	for i := 0; i < 3; i++ {
		period := a.TonePeriod(i)
		if period == 0 {
			period = 1
		}
		a.toneCounter[i]++
		if a.toneCounter[i] >= period {
			a.toneCounter[i] = 0
			a.toneOutput[i] = !a.toneOutput[i]
		}
	}

	// Noise
	period := a.regs[6]
	if period == 0 {
		period = 1
	}
	a.noiseCounter++
	if a.noiseCounter >= period {
		a.noiseCounter = 0
		feedback := (a.noiseShift ^ (a.noiseShift >> 3)) & 1
		a.noiseShift = (a.noiseShift >> 1) | feedback<<16
		a.noiseOutput = a.noiseShift&1 != 0
	}

	// Envelope steps every period*16 ticks
	env := uint32(a.EnvelopePeriod())
	if env == 0 {
		env = 1
	}
	a.envCounter++
	if a.envCounter >= env*16 {
		a.envCounter = 0
		a.stepEnvelope()
	}
}

func (a *AYChip) stepEnvelope() {
	if a.envHolding {
		return
	}
	a.envStep++
	if a.envStep < 16 {
		return
	}

	shape := a.regs[13]
	switch {
	case shape&0x08 == 0:
		// no continue: drop to zero and stay
		a.envHolding = true
		a.envHoldLevel = 0
	case shape&0x01 != 0:
		a.envHolding = true
		a.envHoldLevel = 0
		if a.envAttack {
			a.envHoldLevel = 15
		}
		if shape&0x02 != 0 {
			a.envHoldLevel = 15 - a.envHoldLevel
		}
	default:
		a.envStep = 0
		if shape&0x02 != 0 {
			a.envAttack = !a.envAttack
		}
	}
}

// EnvelopeLevel returns the current 4-bit envelope output
func (a *AYChip) EnvelopeLevel() uint8 {
	if a.envHolding {
		return a.envHoldLevel
	}
	if a.envAttack {
		return a.envStep
	}
	return 15 - a.envStep
}

// Sample generates one audio sample
func (a *AYChip) Sample() float32 {
	var sample float32 = 0
	mixer := a.regs[7]

	for i := 0; i < 3; i++ {
		toneOff := mixer&(1<<i) != 0
		noiseOff := mixer&(1<<(i+3)) != 0
		on := (a.toneOutput[i] || toneOff) && (a.noiseOutput || noiseOff)

		level := a.regs[8+i] & 0x0F
		if a.regs[8+i]&0x10 != 0 {
			level = a.EnvelopeLevel()
		}

		if on {
			sample += ayLevelTable[level]
		} else {
			sample -= ayLevelTable[level]
		}
	}

	// Normalize (3 channels, each ±1 max)
	return sample / 3.0
}

// GenerateSamples fills the buffer with audio samples for the number of
// input clocks that occurred
func (a *AYChip) GenerateSamples(clocks int) {
	a.bufferPos = 0

	for i := 0; i < clocks; i++ {
		a.Clock()
		a.clockCounter++

		if a.clockCounter >= a.clocksPerSample {
			a.clockCounter -= a.clocksPerSample
			if a.bufferPos < len(a.buffer) {
				a.buffer[a.bufferPos] = a.Sample()
				a.bufferPos++
			}
		}
	}
}

// GetBuffer returns the current audio buffer and the number of valid samples
func (a *AYChip) GetBuffer() ([]float32, int) {
	return a.buffer, a.bufferPos
}
