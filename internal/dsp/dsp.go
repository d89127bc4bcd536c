// Package dsp holds the engine's DSP primitives (spec §4.1, component C1):
// RMS, amplify, normalize, the L/R <-> M/S transform, clipping detection
// and the FFT-backed helpers (batch magnitude spectra and full-length FIR
// convolution) every other core package builds on.
package dsp

import (
	"math"

	"github.com/linuxmatters/jivemaster/internal/config"
)

// Channel is a single mono stream of samples, stored as float64 throughout
// the core for precision (the decoders in internal/loaders already hand
// over float64, and samples are narrowed only at the Saver boundary).
type Channel []float64

// Stereo is a pair of channels of equal length.
type Stereo struct {
	L, R Channel
}

// Len returns the number of frames, or 0 for a zero-value Stereo.
func (s Stereo) Len() int {
	return len(s.L)
}

// RMS computes the root-mean-square of x, per spec §4.1.
func RMS(x Channel) float64 {
	if len(x) == 0 {
		return 0
	}
	var sumSq float64
	for _, v := range x {
		sumSq += v * v
	}
	return math.Sqrt(sumSq / float64(len(x)))
}

// FloorDenominator replaces a denominator below config.Epsilon with the
// floor itself, the "divide-by-silence" guard named in spec §4.1/§7.
func FloorDenominator(x float64) float64 {
	if x < config.Epsilon {
		return config.Epsilon
	}
	return x
}

// Amplify multiplies x by gain g elementwise, with no saturation.
func Amplify(x Channel, g float64) Channel {
	out := make(Channel, len(x))
	for i, v := range x {
		out[i] = v * g
	}
	return out
}

// AmplifyInPlace multiplies x by gain g elementwise, in place.
func AmplifyInPlace(x Channel, g float64) {
	for i := range x {
		x[i] *= g
	}
}

// Peak returns the maximum absolute value in x.
func Peak(x Channel) float64 {
	var peak float64
	for _, v := range x {
		if a := math.Abs(v); a > peak {
			peak = a
		}
	}
	return peak
}

// Normalize divides x by its peak absolute value, returning a new channel.
// A silent channel is returned unchanged (dividing by the epsilon floor
// would otherwise blow up a zero signal into noise).
func Normalize(x Channel) Channel {
	peak := Peak(x)
	if peak < config.Epsilon {
		out := make(Channel, len(x))
		copy(out, x)
		return out
	}
	return Amplify(x, 1/peak)
}

// LRtoMS converts a stereo L/R pair into Mid/Side, per spec §3:
// M = (L+R)/2, S = (L-R)/2.
func LRtoMS(s Stereo) (mid, side Channel) {
	n := s.Len()
	mid = make(Channel, n)
	side = make(Channel, n)
	for i := 0; i < n; i++ {
		mid[i] = (s.L[i] + s.R[i]) / 2
		side[i] = (s.L[i] - s.R[i]) / 2
	}
	return mid, side
}

// MStoLR inverts LRtoMS: L = M+S, R = M-S.
func MStoLR(mid, side Channel) Stereo {
	n := len(mid)
	out := Stereo{L: make(Channel, n), R: make(Channel, n)}
	for i := 0; i < n; i++ {
		out.L[i] = mid[i] + side[i]
		out.R[i] = mid[i] - side[i]
	}
	return out
}

// LimitedDetection reports the clipping/limiting heuristics of spec §4.1.
type LimitedDetection struct {
	PeakMatches int
	Clipping    bool
	Limited     bool
}

// DetectLimited counts samples at the global peak (or its negation) and
// flags "clipping" or "limited" per the thresholds in cfg.
func DetectLimited(x Channel, cfg config.Config) LimitedDetection {
	peak := Peak(x)
	if peak < config.Epsilon {
		return LimitedDetection{}
	}
	var matches int
	for _, v := range x {
		if math.Abs(math.Abs(v)-peak) < 1e-9 {
			matches++
		}
	}
	det := LimitedDetection{PeakMatches: matches}
	if matches > cfg.ClippingSamplesThreshold && peak >= 1.0 {
		det.Clipping = true
	}
	if matches > cfg.LimitedSamplesThreshold {
		det.Limited = true
	}
	return det
}
