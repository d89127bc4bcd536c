package loaders

import (
	"fmt"
	"io"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/linuxmatters/jivemaster/internal/pipeline"
)

// WAV decodes PCM WAV files via go-audio/wav, the teacher's own decoder
// library (internal/audio/wav_decoder.go), extended here to de-interleave
// every channel instead of collapsing to one.
type WAV struct{}

const wavChunkFrames = 1 << 16

func (WAV) Load(path string) (pipeline.Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return pipeline.Source{}, err
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return pipeline.Source{}, fmt.Errorf("%s: invalid WAV file", path)
	}
	if err := dec.FwdToPCM(); err != nil {
		return pipeline.Source{}, fmt.Errorf("%s: seek to PCM data: %w", path, err)
	}

	numChans := int(dec.NumChans)
	bitDepth := int(dec.BitDepth)
	sampleRate := int(dec.SampleRate)
	maxVal := float64(goaudio.IntMaxSignedValue(bitDepth))

	channels := make([][]float64, numChans)

	buf := &goaudio.IntBuffer{
		Data:   make([]int, wavChunkFrames*numChans),
		Format: &goaudio.Format{NumChannels: numChans, SampleRate: sampleRate},
	}
	for {
		n, err := dec.PCMBuffer(buf)
		if err != nil && err != io.EOF {
			return pipeline.Source{}, fmt.Errorf("%s: read PCM: %w", path, err)
		}
		if n == 0 {
			break
		}
		frames := n / numChans
		for ch := 0; ch < numChans; ch++ {
			for i := 0; i < frames; i++ {
				channels[ch] = append(channels[ch], float64(buf.Data[i*numChans+ch])/maxVal)
			}
		}
		if err == io.EOF {
			break
		}
	}

	return pipeline.Source{Channels: channels, SampleRate: sampleRate}, nil
}
