// Package spectral implements the Spectral Analyzer (spec §4.4, component
// C4): the average magnitude spectrum of a channel across its loud pieces,
// computed independently for Mid and Side and for TARGET and REFERENCE.
package spectral

import (
	"github.com/linuxmatters/jivemaster/internal/dsp"
	"github.com/linuxmatters/jivemaster/internal/segment"
)

// AverageMagnitude computes the average magnitude spectrum of channel over
// its loud pieces using non-overlapping, unwindowed FFT blocks of length
// nFFT (spec §4.1's
// batch_fft_magnitude, spec §4.4). Complexity is O(P*B*N log N) where P is
// the number of loud pieces and B the blocks per piece, as spec §4.4 notes.
func AverageMagnitude(channel dsp.Channel, loud segment.Result, nFFT, workers int) []float64 {
	return dsp.BatchFFTMagnitude(channel, loud.Loud, nFFT, workers)
}

// Pair bundles the Mid and Side average magnitude spectra for one side
// (TARGET or REFERENCE) of the comparison.
type Pair struct {
	Mid, Side []float64
}

// Analyze computes both channels' average magnitude spectra for a single
// signal given its already-segmented Mid and Side loud-piece sets.
func Analyze(mid, side dsp.Channel, midLoud, sideLoud segment.Result, nFFT, workers int) Pair {
	return Pair{
		Mid:  AverageMagnitude(mid, midLoud, nFFT, workers),
		Side: AverageMagnitude(side, sideLoud, nFFT, workers),
	}
}
