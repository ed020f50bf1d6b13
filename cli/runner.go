// Package cli drives the chip drivers against the emulated board for the
// halcheck command: bring-up, VRAM self test, asset loading, tone playback and
// capture.
package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/user-none/colecohal/assets"
	"github.com/user-none/colecohal/emu"
	"github.com/user-none/colecohal/gisnd"
	"github.com/user-none/colecohal/hal"
	"github.com/user-none/colecohal/logger"
	"github.com/user-none/colecohal/tonegen"
	"github.com/user-none/colecohal/vdp"
)

const logTag = "cli"

// ErrUnknownTable is returned for a table name LoadTable does not know
var ErrUnknownTable = errors.New("unknown table")

// ErrPartialRecord is returned when an asset is not a whole number of records
var ErrPartialRecord = errors.New("asset is not a whole number of records")

// ErrTableOverflow is returned when an asset would run past the end of VRAM
var ErrTableOverflow = errors.New("asset runs past the end of VRAM")

// ErrNoSound is returned when the board has no sound chip to play on
var ErrNoSound = errors.New("platform has no sound chip")

// ErrBadVoice is returned for a voice outside 1 to 3
var ErrBadVoice = errors.New("voice must be 1, 2 or 3")

// Runner wraps an emulated board and the drivers bound to it. Drivers for
// chips the board does not carry are nil and do nothing.
type Runner struct {
	machine    *emu.Machine
	vdp        *vdp.VDP
	tone       *tonegen.ToneGenerator
	psg        *gisnd.PSG
	controller hal.ControllerReader

	frames int
	status uint8
}

// NewRunner builds the board for platform p and binds the drivers to it
func NewRunner(p hal.Platform, region emu.Region) *Runner {
	m := emu.NewMachine(p, region)
	r := &Runner{
		machine:    m,
		vdp:        vdp.New(m, m, p.VDP),
		controller: hal.NewPortController(m, m, p.Controller),
	}
	if p.Tone != nil {
		r.tone = tonegen.New(m, m, *p.Tone)
	}
	if p.PSG != nil {
		r.psg = gisnd.New(m, m, *p.PSG)
	}
	return r
}

// Machine returns the emulated board
func (r *Runner) Machine() *emu.Machine {
	return r.machine
}

// Frames returns the number of frame interrupts taken since BringUp
func (r *Runner) Frames() int {
	return r.frames
}

// BringUp initializes every chip, clears VRAM, turns the display on and
// installs a frame handler that acknowledges the VDP interrupt.
// frameEvery raises a frame interrupt after that many port operations; zero
// leaves frames to explicit VBlank calls.
func (r *Runner) BringUp(mode vdp.Mode, bg vdp.Color, frameEvery int) {
	r.frames = 0
	hal.VDPHook.Install(r.machine, func() {
		r.frames++
		r.status = r.vdp.ReadStatus()
	})
	r.machine.FrameEvery = frameEvery

	r.vdp.Init(mode, bg)
	r.vdp.SetIRQ(true)
	r.vdp.ClearAll()
	r.vdp.SetBlank(false)

	r.tone.Init()
	r.psg.Init()
	logger.Logf(logger.Allow, logTag, "%s up in %v", r.machine.Platform.Name, mode)
}

// Close removes the frame handler
func (r *Runner) Close() {
	hal.VDPHook.Clear(r.machine)
}

// SelfTest runs the VRAM pattern test and clears VRAM afterwards
func (r *Runner) SelfTest() bool {
	ok := r.vdp.SelfTest()
	r.vdp.ClearAll()
	return ok
}

// table returns the base address and record size of a named table
func (r *Runner) table(name string) (uint16, int, error) {
	t := r.vdp.Tables()
	switch strings.ToLower(name) {
	case "name":
		return t.Name, 1, nil
	case "color", "colour":
		return t.Color, 1, nil
	case "pattern":
		return t.Pattern, vdp.PatternSize, nil
	case "sprite":
		return t.SpriteAttribute, vdp.SpriteAttributeSize, nil
	case "spritepattern":
		return t.SpritePattern, vdp.PatternSize, nil
	}
	return 0, 0, fmt.Errorf("%w: %s", ErrUnknownTable, name)
}

// LoadTable loads an asset file into the named table starting at record
// start and returns the number of records written
func (r *Runner) LoadTable(table string, path string, start int) (int, error) {
	base, size, err := r.table(table)
	if err != nil {
		return 0, err
	}

	data, name, err := assets.Load(path)
	if err != nil {
		return 0, err
	}
	if len(data)%size != 0 {
		return 0, fmt.Errorf("%w: %s has %d bytes, records are %d", ErrPartialRecord, name, len(data), size)
	}
	if start < 0 || int(base)+start*size+len(data) > vdp.MemSize {
		return 0, fmt.Errorf("%w: %s at record %d", ErrTableOverflow, name, start)
	}

	// one burst may be capped, keep going until everything is out
	records := len(data) / size
	written := 0
	for written < len(data) {
		n := r.vdp.WriteTableRecord(base, data[written:], start+written/size, records-written/size, size)
		if n == 0 {
			break
		}
		written += n
	}

	logger.Logf(logger.Allow, logTag, "%s: %d records into %s table at $%04X", name, written/size, table, base)
	return written / size, nil
}

// PlayTone sounds voice (1 to 3) at hz on the tone generator, or on the PSG
// when the board has no tone generator
func (r *Runner) PlayTone(voice int, hz uint32) error {
	if voice < 1 || voice > 3 {
		return ErrBadVoice
	}

	timing := r.machine.Timing
	switch {
	case r.tone != nil:
		div := tonegen.FrequencyDivider(uint32(timing.ToneClock()), hz)
		r.tone.SetVoiceFrequency(tonegen.Voice(voice), div)
		r.tone.SetVoiceAttenuation(tonegen.Voice(voice), 0)
	case r.psg != nil:
		ch := gisnd.ChannelA + gisnd.Channel(voice-1)
		div := gisnd.FrequencyDivider(uint32(2*timing.PSGClock()), hz)
		r.psg.SetChannelFrequency(ch, div)
		r.psg.SetMixer(gisnd.MixAll, gisnd.MixAll&^(1<<(voice-1)))
		r.psg.SetChannelAttenuation(ch, 15, false)
	default:
		return ErrNoSound
	}

	logger.Logf(logger.Allow, logTag, "voice %d at %d Hz", voice, hz)
	return nil
}

// Silence mutes every sound chip
func (r *Runner) Silence() {
	r.tone.Init()
	r.psg.Init()
}

// CaptureWAV renders seconds of audio from the board's sound chips and writes
// it as a WAV file. When both chips are present they are mixed evenly.
func (r *Runner) CaptureWAV(path string, seconds float64) error {
	tone := r.machine.RenderTone(seconds)
	psg := r.machine.RenderPSG(seconds)

	var samples []float32
	switch {
	case tone != nil && psg != nil:
		samples = make([]float32, min(len(tone), len(psg)))
		for i := range samples {
			samples[i] = (tone[i] + psg[i]) / 2
		}
	case tone != nil:
		samples = tone
	case psg != nil:
		samples = psg
	default:
		return ErrNoSound
	}

	return emu.WriteWAV(path, samples, emu.SampleRate)
}

// Report writes the board state
func (r *Runner) Report(w io.Writer) {
	m := r.machine
	st := r.vdp.State()

	fmt.Fprintf(w, "platform   %s (%d Hz)\n", m.Platform.Name, m.Timing.FPS)
	fmt.Fprintf(w, "mode       %v\n", st.Mode)
	fmt.Fprintf(w, "registers ")
	for i := 0; i < 8; i++ {
		fmt.Fprintf(w, " %02X", m.VDP.GetRegister(i))
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "tables     name $%04X color $%04X pattern $%04X sprites $%04X sprite patterns $%04X\n",
		st.Tables.Name, st.Tables.Color, st.Tables.Pattern, st.Tables.SpriteAttribute, st.Tables.SpritePattern)
	fmt.Fprintf(w, "port ops   %d (unmapped %d, desyncs %d)\n", m.PortOps, m.Unmapped(), m.VDP.Desyncs())
	fmt.Fprintf(w, "frames     %d (interrupts %d, deferred %d, last status $%02X)\n",
		r.frames, m.Interrupts, m.Deferred, r.status)

	if m.Tone != nil {
		fmt.Fprintf(w, "tone       %d commands, dividers %03X %03X %03X, attenuation %X %X %X noise %X\n",
			len(m.Tone.Commands), m.Tone.ToneReg(0), m.Tone.ToneReg(1), m.Tone.ToneReg(2),
			m.Tone.Volume(0), m.Tone.Volume(1), m.Tone.Volume(2), m.Tone.Volume(3))
	}
	if m.AY != nil {
		fmt.Fprintf(w, "psg       ")
		for i := 0; i < gisnd.RegisterCount; i++ {
			fmt.Fprintf(w, " %02X", m.AY.Register(i))
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "controller %04X %04X\n", r.controller.Controller(1), r.controller.Controller(2))
}
