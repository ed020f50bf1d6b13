package emu_test

import (
	"bytes"
	"testing"

	"github.com/user-none/colecohal/emu"
	"github.com/user-none/colecohal/gisnd"
	"github.com/user-none/colecohal/hal"
	"github.com/user-none/colecohal/tonegen"
	"github.com/user-none/colecohal/vdp"
)

// unmasked is an interrupt mask that does nothing, standing in for a driver
// that forgot to mask its port sequences
type unmasked struct{}

func (unmasked) Disable() {}
func (unmasked) Enable()  {}

func allPlatforms() []hal.Platform {
	return []hal.Platform{hal.Coleco(), hal.ColecoSGM(), hal.MSX(), hal.Bench()}
}

// TestDrivers_VDPInit tests Init lands the expected registers on every board
func TestDrivers_VDPInit(t *testing.T) {
	for _, p := range allPlatforms() {
		t.Run(p.Name, func(t *testing.T) {
			m := emu.NewMachine(p, emu.RegionNTSC)
			v := vdp.New(m, m, p.VDP)

			v.Init(vdp.GraphicsII, vdp.DarkBlue)

			if got := vdp.Mode(m.VDP.Mode()); got != vdp.GraphicsII {
				t.Errorf("Mode: expected %v, got %v", vdp.GraphicsII, got)
			}
			if m.VDP.DisplayEnabled() {
				t.Error("Display should be blanked after Init")
			}
			if got := m.VDP.NameTable(); got != vdp.NameTableAddr {
				t.Errorf("NameTable: expected 0x%04X, got 0x%04X", vdp.NameTableAddr, got)
			}
			if got := m.VDP.ColorTable(); got != vdp.ColorTableAddr {
				t.Errorf("ColorTable: expected 0x%04X, got 0x%04X", vdp.ColorTableAddr, got)
			}
			if got := m.VDP.PatternTable(); got != vdp.PatternTableAddr {
				t.Errorf("PatternTable: expected 0x%04X, got 0x%04X", vdp.PatternTableAddr, got)
			}
			if got := m.VDP.SpriteAttributeTable(); got != vdp.SpriteAttributeTableAddr {
				t.Errorf("SpriteAttributeTable: expected 0x%04X, got 0x%04X", vdp.SpriteAttributeTableAddr, got)
			}
			if got := m.VDP.SpritePatternTable(); got != vdp.SpritePatternTableAddr {
				t.Errorf("SpritePatternTable: expected 0x%04X, got 0x%04X", vdp.SpritePatternTableAddr, got)
			}
			if got := m.VDP.Backdrop(); got != uint8(vdp.DarkBlue) {
				t.Errorf("Backdrop: expected %d, got %d", vdp.DarkBlue, got)
			}

			v.SetBlank(false)
			if !m.VDP.DisplayEnabled() {
				t.Error("Display should be enabled")
			}
			if m.VDP.Desyncs() != 0 || m.Unmapped() != 0 {
				t.Errorf("Desyncs %d, unmapped %d", m.VDP.Desyncs(), m.Unmapped())
			}
		})
	}
}

// TestDrivers_VRAMRoundTrip tests streamed writes read back through the
// driver, including a capped burst
func TestDrivers_VRAMRoundTrip(t *testing.T) {
	for _, p := range allPlatforms() {
		t.Run(p.Name, func(t *testing.T) {
			m := emu.NewMachine(p, emu.RegionNTSC)
			v := vdp.New(m, m, p.VDP)
			v.Init(vdp.GraphicsI, vdp.Black)

			data := make([]uint8, 300)
			for i := range data {
				data[i] = uint8(i * 7)
			}

			want := len(data)
			if p.VDP.MaxBurst > 0 {
				want = p.VDP.MaxBurst
			}

			v.SetWriteAddress(0x1000)
			if n := v.WriteBytes(data); n != want {
				t.Fatalf("WriteBytes: expected %d, got %d", want, n)
			}
			if !bytes.Equal(m.VDP.GetVRAM()[0x1000:0x1000+want], data[:want]) {
				t.Error("VRAM does not hold the written bytes")
			}

			buf := make([]uint8, want)
			v.SetReadAddress(0x1000)
			if n := v.ReadBytes(buf, want); n != want {
				t.Fatalf("ReadBytes: expected %d, got %d", want, n)
			}
			if !bytes.Equal(buf, data[:want]) {
				t.Error("ReadBytes does not match the written bytes")
			}
			if m.VDP.Desyncs() != 0 {
				t.Errorf("Desyncs: expected 0, got %d", m.VDP.Desyncs())
			}
		})
	}
}

// TestDrivers_SelfTestAndClear tests the full VRAM pattern test and clear
func TestDrivers_SelfTestAndClear(t *testing.T) {
	for _, p := range []hal.Platform{hal.Coleco(), hal.Bench()} {
		t.Run(p.Name, func(t *testing.T) {
			m := emu.NewMachine(p, emu.RegionNTSC)
			v := vdp.New(m, m, p.VDP)
			v.Init(vdp.GraphicsI, vdp.Black)

			if !v.SelfTest() {
				t.Fatal("SelfTest failed on a healthy VDP")
			}

			v.ClearAll()
			for addr, b := range m.VDP.GetVRAM() {
				if b != 0 {
					t.Fatalf("VRAM[0x%04X]: expected 0, got 0x%02X", addr, b)
				}
			}
		})
	}
}

// TestDrivers_Sprites tests sprite records and the list terminator
func TestDrivers_Sprites(t *testing.T) {
	m := emu.NewMachine(hal.Coleco(), emu.RegionNTSC)
	v := vdp.New(m, m, m.Platform.VDP)
	v.Init(vdp.GraphicsI, vdp.Black)

	sprites := []vdp.SpriteAttribute{
		{Y: 10, X: 20, Name: 1, Color: vdp.White},
		{Y: 30, X: 40, Name: 2, Color: vdp.LightRed, EarlyClock: true},
	}
	base := v.Tables().SpriteAttribute
	v.WriteTableRecord(base, vdp.EncodeSprites(sprites), 0, len(sprites), vdp.SpriteAttributeSize)
	v.WriteSpriteTerminator(len(sprites))

	vram := m.VDP.GetVRAM()
	for i, want := range sprites {
		var rec [vdp.SpriteAttributeSize]uint8
		copy(rec[:], vram[int(base)+i*vdp.SpriteAttributeSize:])
		if got := vdp.DecodeSpriteAttribute(rec); got != want {
			t.Errorf("Sprite %d: expected %+v, got %+v", i, want, got)
		}
	}
	if got := vram[int(base)+len(sprites)*vdp.SpriteAttributeSize]; got != vdp.SpriteTerminator {
		t.Errorf("Terminator: expected 0x%02X, got 0x%02X", vdp.SpriteTerminator, got)
	}
}

// TestDrivers_FrameInterruptMasked tests a frame hook that reads status does
// not disturb driver port sequences
func TestDrivers_FrameInterruptMasked(t *testing.T) {
	m := emu.NewMachine(hal.Bench(), emu.RegionNTSC)
	v := vdp.New(m, m, m.Platform.VDP)
	v.Init(vdp.GraphicsI, vdp.Black)

	frames := 0
	hal.VDPHook.Install(m, func() {
		frames++
		v.ReadStatus()
	})
	defer hal.VDPHook.Clear(m)

	v.SetIRQ(true)
	m.FrameEvery = 3

	data := []uint8{0xDE, 0xAD, 0xBE, 0xEF}
	for i := 0; i < 64; i++ {
		v.SetWriteAddress(uint16(0x2000 + i*len(data)))
		v.WriteBytes(data)
	}

	if frames == 0 || m.Deferred == 0 {
		t.Fatalf("Expected delivered and deferred interrupts, got %d and %d", frames, m.Deferred)
	}
	if m.VDP.Desyncs() != 0 {
		t.Errorf("Desyncs: expected 0, got %d", m.VDP.Desyncs())
	}
	vram := m.VDP.GetVRAM()
	for i := 0; i < 64*len(data); i++ {
		if vram[0x2000+i] != data[i%len(data)] {
			t.Fatalf("VRAM[0x%04X]: expected 0x%02X, got 0x%02X", 0x2000+i, data[i%len(data)], vram[0x2000+i])
		}
	}
}

// TestDrivers_FrameInterruptUnmasked tests the same sequence without masking
// is broken by the hook
func TestDrivers_FrameInterruptUnmasked(t *testing.T) {
	m := emu.NewMachine(hal.Bench(), emu.RegionNTSC)
	v := vdp.New(m, unmasked{}, m.Platform.VDP)
	v.Init(vdp.GraphicsI, vdp.Black)

	hal.VDPHook.Install(m, func() { m.VDP.ReadControl() })
	defer hal.VDPHook.Clear(m)

	v.SetIRQ(true)
	m.FrameEvery = 2

	data := []uint8{0xDE, 0xAD}
	for i := 0; i < 16; i++ {
		v.SetWriteAddress(uint16(0x2000 + i*len(data)))
		v.WriteBytes(data)
	}

	if m.VDP.Desyncs() == 0 {
		t.Error("Expected desyncs with unmasked port sequences")
	}
}

// TestDrivers_ToneDirect tests the tone generator written directly
func TestDrivers_ToneDirect(t *testing.T) {
	m := emu.NewMachine(hal.Coleco(), emu.RegionNTSC)
	g := tonegen.New(m, m, *m.Platform.Tone)

	g.Init()
	want := []uint8{0x9F, 0xBF, 0xDF, 0xFF}
	if !bytes.Equal(m.Tone.Commands, want) {
		t.Errorf("Init commands: expected % X, got % X", want, m.Tone.Commands)
	}

	div := tonegen.FrequencyDivider(tonegen.ColecoClock, 440)
	g.SetVoiceFrequency(1, div)
	g.SetVoiceAttenuation(2, 0)
	g.SetNoiseControl(tonegen.White, tonegen.Rate1024)

	if got := m.Tone.ToneReg(0); got != div {
		t.Errorf("Voice 1 divider: expected 0x%03X, got 0x%03X", div, got)
	}
	if got := m.Tone.Volume(1); got != 0 {
		t.Errorf("Voice 2 attenuation: expected 0, got %d", got)
	}
	if got := m.Tone.Volume(0); got != tonegen.Mute {
		t.Errorf("Voice 1 attenuation: expected %d, got %d", tonegen.Mute, got)
	}
	if got := m.Tone.NoiseReg(); got != 0x05 {
		t.Errorf("Noise control: expected 0x05, got 0x%02X", got)
	}
}

// TestDrivers_ToneHandshake tests every byte waits for READY and is strobed
// once
func TestDrivers_ToneHandshake(t *testing.T) {
	m := emu.NewMachine(hal.Bench(), emu.RegionNTSC)
	m.Tone.BusyPolls = 3
	g := tonegen.New(m, m, *m.Platform.Tone)

	g.Init()
	g.SetVoiceFrequency(3, 0x2A5)

	if len(m.Tone.Commands) != 6 {
		t.Fatalf("Commands: expected 6, got %d", len(m.Tone.Commands))
	}
	if m.Tone.Violations != 0 {
		t.Errorf("Violations: expected 0, got %d", m.Tone.Violations)
	}
	if got := m.Tone.ToneReg(2); got != 0x2A5 {
		t.Errorf("Voice 3 divider: expected 0x2A5, got 0x%03X", got)
	}
	// one ready poll before and BusyPolls+1 after each byte
	if want := 6 * (1 + 4); m.Tone.Polls != want {
		t.Errorf("Polls: expected %d, got %d", want, m.Tone.Polls)
	}
	if !m.Tone.Ready() {
		t.Error("Chip should be ready after the last byte")
	}
}

// TestDrivers_ToneStuck tests a chip that never raises READY hangs the
// driver with interrupts masked
func TestDrivers_ToneStuck(t *testing.T) {
	m := emu.NewMachine(hal.Bench(), emu.RegionNTSC)
	m.Tone.Stuck = true
	m.Tone.PollBudget = 1000
	g := tonegen.New(m, m, *m.Platform.Tone)

	defer func() {
		if r := recover(); r != emu.ErrReadyTimeout {
			t.Fatalf("Expected ErrReadyTimeout panic, got %v", r)
		}
		if !m.Masked() {
			t.Error("Driver should be waiting with interrupts masked")
		}
		if len(m.Tone.Commands) != 0 {
			t.Errorf("Commands: expected none, got % X", m.Tone.Commands)
		}
	}()

	g.SendByte(0x9F)
	t.Fatal("SendByte returned from a stuck chip")
}

// TestDrivers_PSG tests the AY driver on the latch and split boards
func TestDrivers_PSG(t *testing.T) {
	for _, p := range []hal.Platform{hal.ColecoSGM(), hal.MSX(), hal.Bench()} {
		t.Run(p.Name, func(t *testing.T) {
			m := emu.NewMachine(p, emu.RegionNTSC)
			g := gisnd.New(m, m, *p.PSG)

			g.Init()
			if m.AY.Writes != 3 {
				t.Errorf("Init writes: expected 3, got %d", m.AY.Writes)
			}

			g.SetChannelFrequency(gisnd.ChannelB, 0x123)
			g.SetChannelAttenuation(gisnd.ChannelA, 12, false)
			g.SetChannelAttenuation(gisnd.ChannelC, 0, true)
			g.SetMixer(gisnd.MixAll, gisnd.MixC)
			g.SetNoiseFrequency(0x11)
			g.SetEnvelopeFrequency(0x1234)
			g.SetEnvelopeShape(gisnd.EnvContinue | gisnd.EnvAttack)

			if got := m.AY.TonePeriod(1); got != 0x123 {
				t.Errorf("Channel B period: expected 0x123, got 0x%03X", got)
			}
			if got := m.AY.Register(gisnd.RegALevel); got != 12 {
				t.Errorf("Channel A level: expected 12, got %d", got)
			}
			if got := m.AY.Register(gisnd.RegCLevel); got != 0x10 {
				t.Errorf("Channel C level: expected 0x10, got 0x%02X", got)
			}
			if want := uint8(0x3C) | p.PSG.MixerIOBits; m.AY.Register(gisnd.RegMixer) != want {
				t.Errorf("Mixer: expected 0x%02X, got 0x%02X", want, m.AY.Register(gisnd.RegMixer))
			}
			if got := m.AY.Register(gisnd.RegNoiseFreq); got != 0x11 {
				t.Errorf("Noise period: expected 0x11, got 0x%02X", got)
			}
			if got := m.AY.EnvelopePeriod(); got != 0x1234 {
				t.Errorf("Envelope period: expected 0x1234, got 0x%04X", got)
			}
			if got := m.AY.Register(gisnd.RegEnvShape); got != 0x0C {
				t.Errorf("Envelope shape: expected 0x0C, got 0x%02X", got)
			}

			v, ok := g.ReadRegister(gisnd.RegBFreqLow)
			if ok != p.PSG.Split {
				t.Errorf("ReadRegister ok: expected %v, got %v", p.PSG.Split, ok)
			}
			if ok && v != 0x23 {
				t.Errorf("ReadRegister: expected 0x23, got 0x%02X", v)
			}

			if m.Unmapped() != 0 {
				t.Errorf("Unmapped: expected 0, got %d", m.Unmapped())
			}
		})
	}
}

// TestDrivers_Controller tests the port controller reader against the board
func TestDrivers_Controller(t *testing.T) {
	m := emu.NewMachine(hal.Coleco(), emu.RegionNTSC)
	m.Input[0] = emu.Input{Joystick: 0x41, Keypad: 0x0D}
	m.Input[1] = emu.Input{Joystick: 0x04}

	c := hal.NewPortController(m, m, m.Platform.Controller)
	if got := c.Controller(1); got != 0x0D41 {
		t.Errorf("Controller 1: expected 0x0D41, got 0x%04X", got)
	}
	if got := c.Controller(2); got != 0x0004 {
		t.Errorf("Controller 2: expected 0x0004, got 0x%04X", got)
	}
	if m.Masked() {
		t.Error("Interrupts should be unmasked after reading")
	}
}

// TestDrivers_ControllerAgreesWithBoard tests the port reader matches the
// board's own view of the inputs
func TestDrivers_ControllerAgreesWithBoard(t *testing.T) {
	m := emu.NewMachine(hal.MSX(), emu.RegionPAL)
	m.Input[1] = emu.Input{Joystick: 0x0A, Keypad: 0x47}

	var direct, ported hal.ControllerReader = m, hal.NewPortController(m, m, m.Platform.Controller)
	for n := 1; n <= 2; n++ {
		if a, b := direct.Controller(n), ported.Controller(n); a != b {
			t.Errorf("Controller %d: board 0x%04X, ports 0x%04X", n, a, b)
		}
	}
}
