package loaders

import (
	"fmt"
	"io"
	"os"

	"github.com/mewkiz/flac"

	"github.com/linuxmatters/jivemaster/internal/pipeline"
)

// FLAC decodes FLAC files via mewkiz/flac, the teacher's own dependency
// (internal/audio/flac_decoder.go). Unlike the teacher's decoder, which
// downmixed every subframe to mono for the visualizer, this keeps every
// subframe as its own channel.
type FLAC struct{}

func (FLAC) Load(path string) (pipeline.Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return pipeline.Source{}, err
	}
	defer f.Close()

	stream, err := flac.New(f)
	if err != nil {
		return pipeline.Source{}, fmt.Errorf("%s: open FLAC stream: %w", path, err)
	}
	defer stream.Close()

	info := stream.Info
	numChans := int(info.NChannels)
	channels := make([][]float64, numChans)

	for {
		frame, err := stream.ParseNext()
		if err == io.EOF {
			break
		}
		if err != nil {
			return pipeline.Source{}, fmt.Errorf("%s: parse FLAC frame: %w", path, err)
		}

		maxVal := float64(int64(1) << (frame.BitsPerSample - 1))
		for ch := 0; ch < numChans && ch < len(frame.Subframes); ch++ {
			samples := frame.Subframes[ch].Samples
			for _, s := range samples {
				channels[ch] = append(channels[ch], float64(s)/maxVal)
			}
		}
	}

	return pipeline.Source{Channels: channels, SampleRate: int(info.SampleRate)}, nil
}
