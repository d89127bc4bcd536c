package pipeline

import (
	"fmt"

	"github.com/linuxmatters/jivemaster/internal/dsp"
	"github.com/linuxmatters/jivemaster/internal/events"
)

// BitDepth is the output sample format of a ResultSpec (spec §6).
type BitDepth int

const (
	PCM16 BitDepth = iota
	PCM24
	Float32
)

func (b BitDepth) String() string {
	switch b {
	case PCM16:
		return "PCM_16"
	case PCM24:
		return "PCM_24"
	case Float32:
		return "FLOAT_32"
	default:
		return "unknown"
	}
}

// ResultSpec is one requested output variant (spec §6).
type ResultSpec struct {
	Path       string
	BitDepth   BitDepth
	UseLimiter bool
	Normalize  bool
	Preview    bool

	// PreviewSize is the excerpt length in samples when Preview is set
	// (SPEC_FULL.md §9: "first preview_size samples of the first loud
	// piece"). 0 means 30 seconds at the internal sample rate.
	PreviewSize int
}

// Source is the decoded, not-yet-resampled audio a Loader hands back:
// the PCM data plus its native sample rate and channel count.
type Source struct {
	Channels   [][]float64 // one slice per channel, 1 (mono) or 2 (stereo)
	SampleRate int
}

// Loader is the consumed capability of spec §6: "given a path, returns
// {pcm, sample_rate}". Decode/encode of specific containers (WAV/FLAC/MP3)
// lives in internal/loaders, outside the core's in-scope boundary.
type Loader interface {
	Load(path string) (Source, error)
}

// Resampler converts a mono channel from one sample rate to another,
// the external collaborator spec §6 calls out separately from Loader.
type Resampler interface {
	Resample(channel []float64, fromRate, toRate int) ([]float64, error)
}

// Saver is the consumed capability of spec §6: "given {pcm, sample_rate,
// bit_depth, path}, writes the file." Container format is not inspected
// by the core.
type Saver interface {
	Save(path string, signal dsp.Stereo, sampleRate int, bitDepth BitDepth) error
}

// Error is the core's tagged-variant error (spec §7): every non-warning
// failure carries one of the frozen four-digit codes of internal/events.
type Error struct {
	Code    int
	Level   events.Level
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(code int, err error) *Error {
	return &Error{Code: code, Level: events.Error, Message: events.Message(code), Err: err}
}

// Cancelled is returned when a CancelToken is consulted and found
// cancelled (spec §5/§7).
var Cancelled = &Error{Code: events.CodeCancelled, Level: events.Error, Message: "processing cancelled"}

// CancelToken is consulted at stage boundaries (spec §5). A nil token is
// never cancelled.
type CancelToken interface {
	Cancelled() bool
}
