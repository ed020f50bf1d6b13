package hal

import (
	"fmt"
	"sort"
	"strings"
)

// VDPWiring assigns the two VDP ports
type VDPWiring struct {
	DataPort    uint8 `json:"dataPort"`
	ControlPort uint8 `json:"controlPort"`

	// MaxBurst caps the number of data port transfers made by one streaming
	// call. Zero means no cap.
	MaxBurst int `json:"maxBurst,omitempty"`
}

// ToneWiring assigns the SN76489 ports and handshake lines.
//
// Without Handshake the command byte is written straight to DataPort. With
// Handshake the byte is placed on DataPort and strobed by taking the
// chip-enable and write-enable lines of ControlPort low and then high again,
// while the READY line is polled on StatusPort before and after.
type ToneWiring struct {
	Handshake      bool  `json:"handshake"`
	DataPort       uint8 `json:"dataPort"`
	ControlPort    uint8 `json:"controlPort,omitempty"`
	StatusPort     uint8 `json:"statusPort,omitempty"`
	ChipEnableBit  uint8 `json:"chipEnableBit,omitempty"`
	WriteEnableBit uint8 `json:"writeEnableBit,omitempty"`
	ReadyBit       uint8 `json:"readyBit,omitempty"`
}

// PSGWiring assigns the AY-3-8910 ports.
//
// In latch mode the register address and the value both go out on DataPort.
// SelectBit of ControlPort chooses address (low) or data (high) and StrobeBit
// is the active low chip-select/write strobe. In split mode the chip decodes
// its own ports: AddressPort latches the register, DataPort writes it and
// ReadPort reads it back.
type PSGWiring struct {
	Split       bool  `json:"split"`
	DataPort    uint8 `json:"dataPort"`
	ControlPort uint8 `json:"controlPort,omitempty"`
	SelectBit   uint8 `json:"selectBit,omitempty"`
	StrobeBit   uint8 `json:"strobeBit,omitempty"`
	AddressPort uint8 `json:"addressPort,omitempty"`
	ReadPort    uint8 `json:"readPort,omitempty"`

	// MixerIOBits are ORed into every mixer write. Bits 6 and 7 of the mixer
	// register set the direction of the two I/O ports.
	MixerIOBits uint8 `json:"mixerIOBits,omitempty"`
}

// ControllerWiring assigns the controller ports
type ControllerWiring struct {
	StrobeSetPort   uint8 `json:"strobeSetPort"`
	StrobeResetPort uint8 `json:"strobeResetPort"`
	PortOne         uint8 `json:"portOne"`
	PortTwo         uint8 `json:"portTwo"`
}

// Platform is the complete port map of a target board. Tone and PSG are nil
// when the board does not carry that chip.
type Platform struct {
	Version    int              `json:"version"`
	Name       string           `json:"name"`
	VDP        VDPWiring        `json:"vdp"`
	Tone       *ToneWiring      `json:"tone,omitempty"`
	PSG        *PSGWiring       `json:"psg,omitempty"`
	Controller ControllerWiring `json:"controller"`
}

var colecoController = ControllerWiring{
	StrobeSetPort:   0x80,
	StrobeResetPort: 0xC0,
	PortOne:         0xFC,
	PortTwo:         0xFF,
}

// Coleco is the ColecoVision: VDP at $BE/$BF and the SN76489 written directly
// on $FF.
func Coleco() Platform {
	return Platform{
		Version:    currentVersion,
		Name:       "coleco",
		VDP:        VDPWiring{DataPort: 0xBE, ControlPort: 0xBF},
		Tone:       &ToneWiring{DataPort: 0xFF},
		Controller: colecoController,
	}
}

// ColecoSGM is the ColecoVision with the Super Game Module AY-3-8910 on
// $50 (address), $51 (write) and $52 (read).
func ColecoSGM() Platform {
	p := Coleco()
	p.Name = "coleco-sgm"
	p.PSG = &PSGWiring{
		Split:       true,
		AddressPort: 0x50,
		DataPort:    0x51,
		ReadPort:    0x52,
	}
	return p
}

// MSX has the VDP at $98/$99 and the AY-3-8910 on $A0 (address), $A1 (write)
// and $A2 (read). The mixer keeps I/O port A as input and port B as output.
func MSX() Platform {
	return Platform{
		Version: currentVersion,
		Name:    "msx",
		VDP:     VDPWiring{DataPort: 0x98, ControlPort: 0x99},
		PSG: &PSGWiring{
			Split:       true,
			AddressPort: 0xA0,
			DataPort:    0xA1,
			ReadPort:    0xA2,
			MixerIOBits: 0x80,
		},
		Controller: colecoController,
	}
}

// Bench is a discrete bring-up board where both sound chips hang off
// general purpose ports: the SN76489 behind the READY handshake and the
// AY-3-8910 behind the address/data latch.
func Bench() Platform {
	return Platform{
		Version: currentVersion,
		Name:    "bench",
		VDP:     VDPWiring{DataPort: 0x98, ControlPort: 0x99, MaxBurst: 256},
		Tone: &ToneWiring{
			Handshake:      true,
			DataPort:       0x40,
			ControlPort:    0x41,
			StatusPort:     0x42,
			ChipEnableBit:  0,
			WriteEnableBit: 1,
			ReadyBit:       0,
		},
		PSG: &PSGWiring{
			DataPort:    0x48,
			ControlPort: 0x49,
			SelectBit:   0,
			StrobeBit:   1,
		},
		Controller: colecoController,
	}
}

var platforms = map[string]func() Platform{
	"coleco":     Coleco,
	"coleco-sgm": ColecoSGM,
	"msx":        MSX,
	"bench":      Bench,
}

// PlatformNames lists the built in profiles
func PlatformNames() []string {
	names := make([]string, 0, len(platforms))
	for n := range platforms {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// PlatformByName returns a built in profile. Names are case insensitive.
func PlatformByName(name string) (Platform, error) {
	f, ok := platforms[strings.ToLower(name)]
	if !ok {
		return Platform{}, fmt.Errorf("%w: %s", ErrUnknownPlatform, name)
	}
	return f(), nil
}
