package hal_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user-none/colecohal/hal"
	"github.com/user-none/colecohal/hal/haltest"
)

func TestHook_InstallIsMasked(t *testing.T) {
	rec := haltest.NewRecorder()
	var h hal.Hook

	called := 0
	h.Install(rec, func() { called++ })
	assert.True(t, h.Installed())
	assert.Equal(t, []haltest.Op{haltest.DI, haltest.EI}, rec.Ops)

	h.Fire()
	assert.Equal(t, 1, called)

	h.Clear(rec)
	assert.False(t, h.Installed())
	h.Fire()
	assert.Equal(t, 1, called, "cleared hook must not fire")
}

func TestPlatformByName(t *testing.T) {
	for _, name := range hal.PlatformNames() {
		p, err := hal.PlatformByName(name)
		require.NoError(t, err, name)
		assert.Equal(t, name, p.Name)
		assert.NoError(t, p.Validate(), name)
	}

	p, err := hal.PlatformByName("COLECO")
	require.NoError(t, err)
	assert.Equal(t, uint8(0xBE), p.VDP.DataPort)
	assert.Equal(t, uint8(0xBF), p.VDP.ControlPort)
	require.NotNil(t, p.Tone)
	assert.Equal(t, uint8(0xFF), p.Tone.DataPort)
	assert.Nil(t, p.PSG)

	_, err = hal.PlatformByName("amiga")
	assert.ErrorIs(t, err, hal.ErrUnknownPlatform)
}

func TestPlatform_ValidateConflicts(t *testing.T) {
	p := hal.MSX()
	p.PSG.DataPort = p.VDP.DataPort
	assert.ErrorIs(t, p.Validate(), hal.ErrPortConflict)

	p = hal.Bench()
	p.Tone.WriteEnableBit = p.Tone.ChipEnableBit
	assert.Error(t, p.Validate())

	p = hal.Bench()
	p.PSG.StrobeBit = 9
	assert.Error(t, p.Validate())
}

func TestLoadPlatform_BaseOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "board.json")
	data := `{"base": "bench", "name": "proto", "vdp": {"dataPort": 152, "controlPort": 153, "maxBurst": 64}}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	p, err := hal.LoadPlatform(path)
	require.NoError(t, err)
	assert.Equal(t, "proto", p.Name)
	assert.Equal(t, 64, p.VDP.MaxBurst)
	require.NotNil(t, p.Tone)
	assert.True(t, p.Tone.Handshake, "fields not named in the file come from the base")
	assert.Equal(t, 1, p.Version)
}

func TestLoadPlatform_Defaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bare.json")
	data := `{"vdp": {"dataPort": 190, "controlPort": 191}}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	p, err := hal.LoadPlatform(path)
	require.NoError(t, err)
	assert.Equal(t, "bare.json", p.Name)
	assert.Equal(t, uint8(0xFC), p.Controller.PortOne)
}

func TestLoadPlatform_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := hal.LoadPlatform(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{"), 0644))
	_, err = hal.LoadPlatform(bad)
	assert.Error(t, err)

	unknown := filepath.Join(dir, "unknown.json")
	require.NoError(t, os.WriteFile(unknown, []byte(`{"base": "nes"}`), 0644))
	_, err = hal.LoadPlatform(unknown)
	assert.ErrorIs(t, err, hal.ErrUnknownPlatform)
}

func TestSavePlatform_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sgm.json")
	require.NoError(t, hal.SavePlatform(path, hal.ColecoSGM()))

	p, err := hal.LoadPlatform(path)
	require.NoError(t, err)
	assert.Equal(t, hal.ColecoSGM(), p)
}

func TestPortController(t *testing.T) {
	rec := haltest.NewRecorder()
	w := hal.Coleco().Controller
	rec.Script(w.PortTwo, 0xBE, 0xF2)

	var r hal.ControllerReader = hal.NewPortController(rec, rec, w)
	assert.Equal(t, uint16(0x0D41), r.Controller(2))
	assert.Equal(t, []haltest.Op{
		haltest.DI,
		haltest.Out(w.StrobeResetPort, 0),
		haltest.In(w.PortTwo, 0xBE),
		haltest.Out(w.StrobeSetPort, 0),
		haltest.In(w.PortTwo, 0xF2),
		haltest.EI,
	}, rec.Ops)

	rec.Reset()
	rec.Default = 0xFF
	assert.Equal(t, uint16(0), r.Controller(1), "released controller")
	assert.Equal(t, haltest.In(w.PortOne, 0xFF), rec.Ops[2])
}
