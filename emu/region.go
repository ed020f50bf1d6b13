package emu

import (
	"fmt"
	"strings"
)

// Region selects the video standard of the emulated board
type Region int

const (
	RegionNTSC Region = iota
	RegionPAL
)

func (r Region) String() string {
	switch r {
	case RegionNTSC:
		return "NTSC"
	case RegionPAL:
		return "PAL"
	default:
		return "Unknown"
	}
}

// ParseRegion converts a region name, case insensitive
func ParseRegion(s string) (Region, error) {
	switch strings.ToLower(s) {
	case "ntsc", "":
		return RegionNTSC, nil
	case "pal":
		return RegionPAL, nil
	}
	return RegionNTSC, fmt.Errorf("unknown region: %s", s)
}

// RegionTiming holds timing constants for a specific region
type RegionTiming struct {
	CPUClockHz int // Z80 clock, also the SN76489 clock
	Scanlines  int // Total scanlines per frame
	FPS        int // Frames per second, the VDP interrupt rate
}

// NTSC timing: 3.579545 MHz, 262 scanlines, 60 Hz
var NTSCTiming = RegionTiming{
	CPUClockHz: 3579545,
	Scanlines:  262,
	FPS:        60,
}

// PAL timing: 3.546893 MHz, 313 scanlines, 50 Hz
var PALTiming = RegionTiming{
	CPUClockHz: 3546893,
	Scanlines:  313,
	FPS:        50,
}

// GetTimingForRegion returns the appropriate timing constants
func GetTimingForRegion(r Region) RegionTiming {
	if r == RegionPAL {
		return PALTiming
	}
	return NTSCTiming
}

// ToneClock is the SN76489 input clock
func (t RegionTiming) ToneClock() int {
	return t.CPUClockHz
}

// PSGClock is the AY-3-8910 input clock, half the CPU clock
func (t RegionTiming) PSGClock() int {
	return t.CPUClockHz / 2
}

// SamplesPerFrame is the audio produced per video frame at SampleRate
func (t RegionTiming) SamplesPerFrame() int {
	return SampleRate / t.FPS
}
