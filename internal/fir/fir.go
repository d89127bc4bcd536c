// Package fir implements the FIR Synthesizer (spec §4.5, component C5) —
// the mastering engine's central innovation: from a REF/TGT magnitude
// ratio, produce a smoothed linear-phase FIR via log-domain resampling,
// LOESS smoothing, mirroring and an IFFT+Hann-window impulse response.
package fir

import (
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/interp"

	"github.com/linuxmatters/jivemaster/internal/config"
	"github.com/linuxmatters/jivemaster/internal/dsp"
)

// Synthesize builds the channel's FIR filter from its REFERENCE and
// TARGET average magnitude spectra (spec §4.5 steps 1-6). refMag and
// tgtMag must both have length cfg.FFTSize. sampleRate is the internal
// processing rate (spec's "rate").
func Synthesize(refMag, tgtMag []float64, sampleRate int, cfg config.Config) dsp.Channel {
	n := cfg.FFTSize

	ratio := ratioSpectrum(refMag, tgtMag)

	fLin, ratioHalf := linearGrid(ratio, n, sampleRate)
	fLog := logGrid(n, sampleRate, cfg.LinLogOversampling)

	ratioLog := splineResample(fLin, ratioHalf, fLog)
	smoothedLog := Loess(ratioLog, cfg.LoessSpan)
	hHalf := splineResample(fLog, smoothedLog, fLin)

	full := mirror(hHalf, ratio, n, cfg.PreserveEdgeBins)

	return impulseResponse(full, n)
}

// ratioSpectrum implements spec §4.5 step 1: floor the TARGET spectrum at
// epsilon and divide the REFERENCE spectrum by it, bin by bin.
func ratioSpectrum(refMag, tgtMag []float64) []float64 {
	ratio := make([]float64, len(refMag))
	for k := range ratio {
		t := tgtMag[k]
		if t < config.Epsilon {
			t = config.Epsilon
		}
		ratio[k] = refMag[k] / t
	}
	return ratio
}

// linearGrid returns f_lin[k] = (rate/2) * k/(N/2) for k in [0, N/2], and
// the corresponding half of the ratio spectrum (spec §4.5 step 2).
func linearGrid(ratio []float64, n, sampleRate int) (freqs, values []float64) {
	half := n / 2
	nyquist := float64(sampleRate) / 2
	freqs = make([]float64, half+1)
	values = make([]float64, half+1)
	for k := 0; k <= half; k++ {
		freqs[k] = nyquist * float64(k) / float64(half)
		values[k] = ratio[k]
	}
	return freqs, values
}

// logGrid returns the log-spaced frequency grid of spec §4.5 step 2:
// spanning [4/N * rate/2, rate/2] with N/2*O + 1 points.
func logGrid(n, sampleRate, oversampling int) []float64 {
	nyquist := float64(sampleRate) / 2
	fMin := 4.0 / float64(n) * nyquist
	fMax := nyquist
	points := n/2*oversampling + 1

	grid := make([]float64, points)
	logMin := math.Log(fMin)
	logMax := math.Log(fMax)
	for j := 0; j < points; j++ {
		t := float64(j) / float64(points-1)
		grid[j] = math.Exp(logMin + t*(logMax-logMin))
	}
	return grid
}

// splineResample cubic-spline-interpolates (x, y) onto newX, per spec
// §4.5 steps 2 and 4 ("interpolate ratio onto f_log using cubic spline"
// and "cubic-spline-interpolate the smoothed curve back to f_lin").
func splineResample(x, y, newX []float64) []float64 {
	var spline interp.NaturalCubic
	if err := spline.Fit(x, y); err != nil {
		// Degenerate input (e.g. fewer than two distinct points): every
		// output point takes the last input value. This only arises for
		// pathologically short FFT sizes.
		out := make([]float64, len(newX))
		for i := range out {
			out[i] = y[len(y)-1]
		}
		return out
	}
	out := make([]float64, len(newX))
	for i, xv := range newX {
		out[i] = spline.Predict(xv)
	}
	return out
}

// mirror implements spec §4.5 step 5: build the full N-length spectrum
// from the smoothed half-spectrum, with DC stripped and the two edge bins
// preserved verbatim from the unsmoothed ratio when preserveEdges is set
// (the §9 open question, resolved as a Config toggle in SPEC_FULL.md §5).
func mirror(hHalf, ratio []float64, n int, preserveEdges bool) []complex128 {
	full := make([]complex128, n)
	half := n / 2
	for k := 0; k <= half; k++ {
		full[k] = complex(hHalf[k], 0)
	}
	for k := 1; k < half; k++ {
		full[n-k] = full[k]
	}
	full[0] = 0
	if preserveEdges {
		full[1] = complex(ratio[1], 0)
		full[n-1] = complex(ratio[n-1], 0)
	}
	return full
}

// impulseResponse implements spec §4.5 step 6: h_zero_phase = Re(IFFT(H)),
// shifted by N/2 to center the linear-phase impulse response, then
// windowed by a Hann window of length N. A general complex inverse FFT is
// used (not the real-input optimized transform) because the edge-bin
// overrides in mirror break exact Hermitian symmetry, which is exactly why
// the spec calls for taking the real part rather than assuming it. gonum's
// inverse transform is unnormalized, so each sample is divided by N.
func impulseResponse(full []complex128, n int) dsp.Channel {
	fft := fourier.NewCmplxFFT(n)
	seq := fft.Sequence(nil, full)

	shifted := make([]float64, n)
	for i, c := range seq {
		shifted[(i+n/2)%n] = real(c) / float64(n)
	}

	window := dsp.HannWindow(n)
	out := make(dsp.Channel, n)
	for i := range out {
		out[i] = shifted[i] * window[i]
	}
	return out
}
