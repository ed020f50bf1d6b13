package hal

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const currentVersion = 1

// ErrUnknownPlatform is returned when a profile name is not recognised
var ErrUnknownPlatform = errors.New("unknown platform")

// ErrPortConflict is returned when two output functions share a port
var ErrPortConflict = errors.New("port conflict")

// LoadPlatform reads a platform profile from a JSON file. A profile may name
// a built in platform in "base" and override only some of its fields.
func LoadPlatform(path string) (Platform, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Platform{}, fmt.Errorf("failed to read platform: %w", err)
	}

	var header struct {
		Base string `json:"base"`
	}
	if err := json.Unmarshal(data, &header); err != nil {
		return Platform{}, fmt.Errorf("failed to parse platform: %w", err)
	}

	p := Platform{}
	if header.Base != "" {
		p, err = PlatformByName(header.Base)
		if err != nil {
			return Platform{}, err
		}
	}

	if err := json.Unmarshal(data, &p); err != nil {
		return Platform{}, fmt.Errorf("failed to parse platform: %w", err)
	}

	p = migratePlatform(p, path)

	if err := p.Validate(); err != nil {
		return Platform{}, err
	}

	return p, nil
}

// SavePlatform writes a profile atomically
func SavePlatform(path string, p Platform) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode platform: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write platform: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to write platform: %w", err)
	}
	return nil
}

// migratePlatform fills in anything an older or partial profile lacks
func migratePlatform(p Platform, path string) Platform {
	if p.Version == 0 {
		p.Version = currentVersion
	}
	if p.Name == "" {
		p.Name = filepath.Base(path)
	}
	if p.Controller == (ControllerWiring{}) {
		p.Controller = colecoController
	}
	return p
}

// Validate checks that no two output functions are decoded on the same port
// and that every bit position fits in a byte.
func (p Platform) Validate() error {
	outs := map[uint8]string{}
	claim := func(port uint8, what string) error {
		if prev, ok := outs[port]; ok {
			return fmt.Errorf("%w: $%02X used by %s and %s", ErrPortConflict, port, prev, what)
		}
		outs[port] = what
		return nil
	}
	bit := func(b uint8, what string) error {
		if b > 7 {
			return fmt.Errorf("%s: bit %d out of range", what, b)
		}
		return nil
	}

	if p.VDP.DataPort == p.VDP.ControlPort {
		return fmt.Errorf("%w: vdp data and control both on $%02X", ErrPortConflict, p.VDP.DataPort)
	}
	if err := claim(p.VDP.DataPort, "vdp data"); err != nil {
		return err
	}
	if err := claim(p.VDP.ControlPort, "vdp control"); err != nil {
		return err
	}

	if t := p.Tone; t != nil {
		if err := claim(t.DataPort, "tone data"); err != nil {
			return err
		}
		if t.Handshake {
			if err := claim(t.ControlPort, "tone control"); err != nil {
				return err
			}
			if t.ChipEnableBit == t.WriteEnableBit {
				return fmt.Errorf("tone: chip enable and write enable share bit %d", t.ChipEnableBit)
			}
			for _, b := range []uint8{t.ChipEnableBit, t.WriteEnableBit, t.ReadyBit} {
				if err := bit(b, "tone"); err != nil {
					return err
				}
			}
		}
	}

	if s := p.PSG; s != nil {
		if err := claim(s.DataPort, "psg data"); err != nil {
			return err
		}
		if s.Split {
			if err := claim(s.AddressPort, "psg address"); err != nil {
				return err
			}
		} else {
			if err := claim(s.ControlPort, "psg control"); err != nil {
				return err
			}
			if s.SelectBit == s.StrobeBit {
				return fmt.Errorf("psg: select and strobe share bit %d", s.SelectBit)
			}
			for _, b := range []uint8{s.SelectBit, s.StrobeBit} {
				if err := bit(b, "psg"); err != nil {
					return err
				}
			}
		}
	}

	if err := claim(p.Controller.StrobeSetPort, "controller strobe set"); err != nil {
		return err
	}
	if err := claim(p.Controller.StrobeResetPort, "controller strobe reset"); err != nil {
		return err
	}

	return nil
}
