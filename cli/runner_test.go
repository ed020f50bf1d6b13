package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user-none/colecohal/emu"
	"github.com/user-none/colecohal/gisnd"
	"github.com/user-none/colecohal/hal"
	"github.com/user-none/colecohal/vdp"
)

func newRunner(t *testing.T, p hal.Platform) *Runner {
	t.Helper()
	r := NewRunner(p, emu.RegionNTSC)
	t.Cleanup(r.Close)
	return r
}

func writeAsset(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestRunner_BringUp(t *testing.T) {
	for _, p := range []hal.Platform{hal.Coleco(), hal.ColecoSGM(), hal.MSX(), hal.Bench()} {
		t.Run(p.Name, func(t *testing.T) {
			r := newRunner(t, p)
			r.BringUp(vdp.GraphicsII, vdp.Cyan, 50)

			m := r.Machine()
			assert.True(t, m.VDP.DisplayEnabled())
			assert.Equal(t, uint8(vdp.Cyan), m.VDP.Backdrop())
			assert.Zero(t, m.VDP.Desyncs())
			assert.Zero(t, m.Unmapped())

			// bring-up alone does enough port work for a few frames
			assert.Greater(t, r.Frames(), 0)
			assert.Equal(t, m.Interrupts, r.Frames())

			if m.Tone != nil {
				for ch := 0; ch < 4; ch++ {
					assert.EqualValues(t, 15, m.Tone.Volume(ch))
				}
			}
			if m.AY != nil {
				assert.Equal(t, 3, m.AY.Writes)
			}
		})
	}
}

func TestRunner_SelfTest(t *testing.T) {
	r := newRunner(t, hal.Bench())
	r.BringUp(vdp.GraphicsI, vdp.Black, 100)

	require.True(t, r.SelfTest())
	assert.Equal(t, make([]uint8, vdp.MemSize), r.Machine().VDP.GetVRAM())
	assert.Zero(t, r.Machine().VDP.Desyncs())
}

func TestRunner_LoadTable(t *testing.T) {
	r := newRunner(t, hal.Bench())
	r.BringUp(vdp.GraphicsI, vdp.Black, 0)

	// 64 patterns is 512 bytes, two capped bursts on this board
	data := make([]uint8, 64*vdp.PatternSize)
	for i := range data {
		data[i] = uint8(i)
	}
	path := writeAsset(t, "font.pat", data)

	n, err := r.LoadTable("pattern", path, 32)
	require.NoError(t, err)
	assert.Equal(t, 64, n)

	base := int(vdp.PatternTableAddr) + 32*vdp.PatternSize
	assert.Equal(t, data, r.Machine().VDP.GetVRAM()[base:base+len(data)])
}

func TestRunner_LoadTableErrors(t *testing.T) {
	r := newRunner(t, hal.Coleco())
	r.BringUp(vdp.GraphicsI, vdp.Black, 0)

	_, err := r.LoadTable("palette", writeAsset(t, "a.bin", []byte{1}), 0)
	assert.ErrorIs(t, err, ErrUnknownTable)

	_, err = r.LoadTable("pattern", writeAsset(t, "b.pat", []byte{1, 2, 3}), 0)
	assert.ErrorIs(t, err, ErrPartialRecord)

	// the name table sits 0x800 bytes before the end of VRAM
	_, err = r.LoadTable("name", writeAsset(t, "c.nam", make([]byte, 0x900)), 0)
	assert.ErrorIs(t, err, ErrTableOverflow)

	_, err = r.LoadTable("sprite", writeAsset(t, "d.spr", []byte{1, 2, 3, 4}), -1)
	assert.ErrorIs(t, err, ErrTableOverflow)

	_, err = r.LoadTable("pattern", filepath.Join(t.TempDir(), "missing.pat"), 0)
	assert.Error(t, err)
}

func TestRunner_PlayToneSN(t *testing.T) {
	r := newRunner(t, hal.Bench())
	r.BringUp(vdp.GraphicsI, vdp.Black, 0)

	require.NoError(t, r.PlayTone(2, 440))
	tone := r.Machine().Tone
	assert.EqualValues(t, 254, tone.ToneReg(1))
	assert.EqualValues(t, 0, tone.Volume(1))

	assert.ErrorIs(t, r.PlayTone(0, 440), ErrBadVoice)
	assert.ErrorIs(t, r.PlayTone(4, 440), ErrBadVoice)

	r.Silence()
	assert.EqualValues(t, 15, tone.Volume(1))
}

func TestRunner_PlayTonePSG(t *testing.T) {
	r := newRunner(t, hal.MSX())
	r.BringUp(vdp.GraphicsI, vdp.Black, 0)

	require.NoError(t, r.PlayTone(3, 440))
	ay := r.Machine().AY
	assert.EqualValues(t, 254, ay.TonePeriod(2))
	assert.EqualValues(t, 0x80|0x38|0x03, ay.Register(7))
	assert.EqualValues(t, 15, ay.Register(10))

	r.Silence()
	assert.EqualValues(t, 0, ay.Register(10))
}

func TestRunner_PlayTonePSGVoices(t *testing.T) {
	for voice := 1; voice <= 3; voice++ {
		r := newRunner(t, hal.MSX())
		r.BringUp(vdp.GraphicsI, vdp.Black, 0)

		require.NoError(t, r.PlayTone(voice, 440))
		ay := r.Machine().AY
		ch := voice - 1
		assert.EqualValues(t, 254, ay.TonePeriod(ch), "voice %d", voice)
		assert.EqualValues(t, 15, ay.Register(gisnd.RegALevel+ch), "voice %d", voice)
		assert.EqualValues(t, 0x80|0x38|(gisnd.MixAll&^(1<<ch)), ay.Register(gisnd.RegMixer), "voice %d", voice)

		// only the chosen voice sounds
		for other := 0; other < 3; other++ {
			if other != ch {
				assert.EqualValues(t, 0, ay.Register(gisnd.RegALevel+other), "voice %d channel %d", voice, other)
			}
		}
	}
}

func TestRunner_CaptureWAV(t *testing.T) {
	for _, p := range []hal.Platform{hal.Coleco(), hal.MSX(), hal.Bench()} {
		t.Run(p.Name, func(t *testing.T) {
			r := newRunner(t, p)
			r.BringUp(vdp.GraphicsI, vdp.Black, 0)
			require.NoError(t, r.PlayTone(1, 440))

			path := filepath.Join(t.TempDir(), "tone.wav")
			require.NoError(t, r.CaptureWAV(path, 0.5))

			samples, rate, err := emu.ReadWAV(path)
			require.NoError(t, err)
			assert.Equal(t, emu.SampleRate, rate)
			assert.InDelta(t, emu.SampleRate/2, len(samples), emu.SampleRate/20)

			var peak float32
			for _, s := range samples {
				peak = max(peak, s, -s)
			}
			assert.Greater(t, peak, float32(0.01))
		})
	}
}

func TestRunner_Report(t *testing.T) {
	r := newRunner(t, hal.ColecoSGM())
	r.BringUp(vdp.Text, vdp.DarkBlue, 0)
	r.Machine().Input[0] = emu.Input{Joystick: 0x01}

	var buf bytes.Buffer
	r.Report(&buf)
	out := buf.String()

	for _, want := range []string{
		"platform   coleco-sgm (60 Hz)",
		"mode       text",
		"desyncs 0",
		"tone       4 commands",
		"psg ",
		"controller 0001 0000",
	} {
		assert.True(t, strings.Contains(out, want), "missing %q in\n%s", want, out)
	}
}
