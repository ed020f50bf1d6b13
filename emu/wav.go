package emu

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/user-none/colecohal/logger"
)

// ErrNoSamples is returned when there is nothing to write
var ErrNoSamples = errors.New("no samples")

const wavBitDepth = 16

// EncodeWAV writes mono float samples in the range -1 to 1 as a 16 bit PCM
// WAV stream
func EncodeWAV(w io.WriteSeeker, samples []float32, sampleRate int) error {
	if len(samples) == 0 {
		return ErrNoSamples
	}

	data := make([]int, len(samples))
	for i, s := range samples {
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		data[i] = int(s * 32767)
	}

	enc := wav.NewEncoder(w, sampleRate, wavBitDepth, 1, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: wavBitDepth,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("wav: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("wav: %w", err)
	}
	return nil
}

// WriteWAV writes samples to a WAV file
func WriteWAV(path string, samples []float32, sampleRate int) (rerr error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("wav: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil && rerr == nil {
			rerr = fmt.Errorf("wav: %w", err)
		}
	}()

	logger.Logf(logger.Allow, logTag, "writing %d samples to %s", len(samples), path)
	return EncodeWAV(f, samples, sampleRate)
}

// ReadWAV loads the first channel of a WAV file as float samples
func ReadWAV(path string) ([]float32, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("wav: %w", err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, 0, fmt.Errorf("wav: not a valid wav file")
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("wav: %w", err)
	}
	chans := int(dec.NumChans)
	if chans < 1 || dec.BitDepth == 0 {
		return nil, 0, fmt.Errorf("wav: bad format")
	}
	scale := float32(int(1) << (dec.BitDepth - 1))

	// copy first channel only
	out := make([]float32, 0, len(buf.Data)/chans)
	for i := 0; i < len(buf.Data); i += chans {
		out = append(out, float32(buf.Data[i])/scale)
	}
	return out, int(dec.SampleRate), nil
}
