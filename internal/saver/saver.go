// Package saver implements spec §6's Saver capability: writing a finished
// Mid/Side-recombined stereo signal out as a WAV file at one of the three
// bit depths the pipeline supports. Grounded on the teacher's go-audio/wav
// dependency, used there only for decoding (internal/audio/wav_decoder.go);
// the teacher never wrote any audio back out, so the encoder side is new,
// built from the same library's symmetric encoder API.
package saver

import (
	"fmt"
	"math"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/linuxmatters/jivemaster/internal/dsp"
	"github.com/linuxmatters/jivemaster/internal/pipeline"
)

// WAV writes PCM_16, PCM_24 or FLOAT_32 WAV files via go-audio/wav.
type WAV struct{}

func (WAV) Save(path string, signal dsp.Stereo, sampleRate int, bitDepth pipeline.BitDepth) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	bits, audioFormat := wavFormat(bitDepth)
	enc := wav.NewEncoder(f, sampleRate, bits, 2, audioFormat)

	n := signal.Len()
	buf := &goaudio.IntBuffer{
		Data:   make([]int, n*2),
		Format: &goaudio.Format{NumChannels: 2, SampleRate: sampleRate},
	}

	if bitDepth == pipeline.Float32 {
		// WAVE_FORMAT_IEEE_FLOAT (audioFormat 3) stores raw IEEE-754 bit
		// patterns in place of integer samples; the encoder writes each
		// IntBuffer entry as bitDepth/8 raw little-endian bytes regardless
		// of format tag, so handing it the float's bit pattern produces a
		// bit-exact float32 WAV.
		for i := 0; i < n; i++ {
			buf.Data[i*2] = int(int32(math.Float32bits(float32(clampFloat(signal.L[i])))))
			buf.Data[i*2+1] = int(int32(math.Float32bits(float32(clampFloat(signal.R[i])))))
		}
		if err := enc.Write(buf); err != nil {
			return fmt.Errorf("%s: write PCM: %w", path, err)
		}
		return enc.Close()
	}

	maxVal := float64(goaudio.IntMaxSignedValue(bits))
	for i := 0; i < n; i++ {
		buf.Data[i*2] = int(math.Round(clampFloat(signal.L[i]) * maxVal))
		buf.Data[i*2+1] = int(math.Round(clampFloat(signal.R[i]) * maxVal))
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("%s: write PCM: %w", path, err)
	}
	return enc.Close()
}

func clampFloat(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}

// wavFormat returns go-audio/wav's bit depth and WAVE_FORMAT tag for bitDepth.
func wavFormat(bitDepth pipeline.BitDepth) (bits int, audioFormat int) {
	switch bitDepth {
	case pipeline.PCM24:
		return 24, 1
	case pipeline.Float32:
		return 32, 3
	default:
		return 16, 1
	}
}
