// Package loaders implements spec §6's Loader capability: decoding WAV,
// FLAC and MP3 files into per-channel float64 PCM, the boundary the core
// pipeline package never crosses itself (container format is explicitly
// out of the core's scope). Adapted from the teacher's internal/audio
// decoders, which decoded into a single downmixed mono stream for
// visualization; these keep every channel separate, since the mastering
// engine needs true stereo (or mono-promoted) signal, never a downmix.
package loaders

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/linuxmatters/jivemaster/internal/pipeline"
)

// Open dispatches to the decoder matching path's extension, falling back
// to sniffing the file's magic bytes when the extension is missing or
// unrecognized.
type Open struct{}

// Load implements pipeline.Loader by detecting the container format and
// delegating to the matching format-specific loader.
func (Open) Load(path string) (pipeline.Source, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		return WAV{}.Load(path)
	case ".flac":
		return FLAC{}.Load(path)
	case ".mp3":
		return MP3{}.Load(path)
	}
	return sniffAndLoad(path)
}

func sniffAndLoad(path string) (pipeline.Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return pipeline.Source{}, err
	}
	head := make([]byte, 12)
	n, _ := f.Read(head)
	f.Close()
	head = head[:n]

	switch {
	case bytes.HasPrefix(head, []byte("RIFF")):
		return WAV{}.Load(path)
	case bytes.HasPrefix(head, []byte("fLaC")):
		return FLAC{}.Load(path)
	case len(head) >= 3 && (head[0] == 0xFF && head[1]&0xE0 == 0xE0), bytes.HasPrefix(head, []byte("ID3")):
		return MP3{}.Load(path)
	}
	return pipeline.Source{}, fmt.Errorf("%s: unrecognized audio container", path)
}
