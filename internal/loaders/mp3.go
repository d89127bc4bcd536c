package loaders

import (
	"fmt"
	"io"
	"os"

	"github.com/hajimehoshi/go-mp3"

	"github.com/linuxmatters/jivemaster/internal/pipeline"
)

// MP3 decodes MP3 files via hajimehoshi/go-mp3, the teacher's own
// dependency (internal/audio/mp3_decoder.go). go-mp3 always decodes to
// interleaved 16-bit stereo PCM; unlike the teacher's decoder, which
// averaged L/R into mono, this keeps both channels.
type MP3 struct{}

const mp3ChunkBytes = 1 << 16 // multiple of 4 (bytes per stereo frame)

func (MP3) Load(path string) (pipeline.Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return pipeline.Source{}, err
	}
	defer f.Close()

	dec, err := mp3.NewDecoder(f)
	if err != nil {
		return pipeline.Source{}, fmt.Errorf("%s: open MP3 stream: %w", path, err)
	}

	left := make([]float64, 0)
	right := make([]float64, 0)
	buf := make([]byte, mp3ChunkBytes)

	for {
		n, err := dec.Read(buf)
		if err != nil && err != io.EOF {
			return pipeline.Source{}, fmt.Errorf("%s: read MP3 data: %w", path, err)
		}
		frames := n / 4
		for i := 0; i < frames; i++ {
			l := int16(buf[i*4]) | (int16(buf[i*4+1]) << 8)
			r := int16(buf[i*4+2]) | (int16(buf[i*4+3]) << 8)
			left = append(left, float64(l)/32768.0)
			right = append(right, float64(r)/32768.0)
		}
		if err == io.EOF {
			break
		}
	}

	return pipeline.Source{
		Channels:   [][]float64{left, right},
		SampleRate: dec.SampleRate(),
	}, nil
}
