package dsp

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
)

// HannWindow returns a Hann window of length n, matching the teacher's
// ApplyHanning helper but returning the coefficients themselves so callers
// can reuse them (the FIR synthesizer windows an impulse response, not an
// analysis block, so it needs the raw coefficients rather than a windowed
// copy of a signal).
func HannWindow(n int) []float64 {
	w := make([]float64, n)
	if n == 1 {
		w[0] = 1
		return w
	}
	for i := range w {
		w[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
	}
	return w
}

// ApplyHann returns data windowed by a Hann window, as the teacher's
// ApplyHanning did for visualizer FFT blocks.
func ApplyHann(data []float64) []float64 {
	w := HannWindow(len(data))
	out := make([]float64, len(data))
	for i, v := range data {
		out[i] = v * w[i]
	}
	return out
}

// NextPow2 returns the smallest power of two >= n.
func NextPow2(n int) int {
	if n <= 1 {
		return 1
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// BlockMagnitude computes |FFT(block)| for a single n-sample block, mirrored
// to full length n (spec §3: "bins [N/2+1..N-1] mirror [N/2-1..1]"). block
// must have length n; shorter blocks should be zero-padded by the caller.
func BlockMagnitude(block []float64, n int) []float64 {
	fft := fourier.NewFFT(n)
	coeffs := fft.Coefficients(nil, block) // length n/2+1
	mag := make([]float64, n)
	for k, c := range coeffs {
		mag[k] = cmplx.Abs(c)
	}
	for k := n/2 + 1; k < n; k++ {
		mag[k] = mag[n-k]
	}
	return mag
}

// BatchFFTMagnitude implements spec §4.1's batch_fft_magnitude: for each
// loud piece, split into non-overlapping nFFT blocks, average |FFT(block)|
// within the piece, then average across pieces. pieces are slices into
// channel; each must have length >= nFFT for at least one block to be
// produced. Per-piece spectra are computed across a bounded worker pool
// (spec §5: "components MAY parallelize embarrassingly-parallel work"),
// then combined with a fixed-order pairwise tree reduction so the result is
// bit-stable regardless of how many workers ran (spec §5's determinism
// requirement), rather than an order-dependent running sum across
// goroutines.
func BatchFFTMagnitude(channel Channel, pieces []Piece, nFFT, workers int) []float64 {
	perPiece := make([][]float64, len(pieces))
	used := make([]bool, len(pieces))

	Parallel(len(pieces), workers, func(i int) {
		piece := pieces[i]
		seg := channel[piece.Start:piece.End]
		blocksPerPiece := len(seg) / nFFT
		if blocksPerPiece == 0 {
			return
		}
		pieceAvg := make([]float64, nFFT)
		for b := 0; b < blocksPerPiece; b++ {
			block := seg[b*nFFT : (b+1)*nFFT]
			mag := BlockMagnitude(block, nFFT)
			for k, v := range mag {
				pieceAvg[k] += v
			}
		}
		for k := range pieceAvg {
			pieceAvg[k] /= float64(blocksPerPiece)
		}
		perPiece[i] = pieceAvg
		used[i] = true
	})

	var active [][]float64
	for i, ok := range used {
		if ok {
			active = append(active, perPiece[i])
		}
	}
	if len(active) == 0 {
		return make([]float64, nFFT)
	}
	sum := TreeSum(active)
	avg := make([]float64, nFFT)
	for k, v := range sum {
		avg[k] = v / float64(len(active))
	}
	return avg
}

// Fconv implements spec §4.1's fconv: linear convolution of x and h via
// FFT, N = len(x)+len(h)-1, both padded to the next power of two, first N
// samples returned. gonum's inverse transform is unnormalized, so its
// output is scaled by 1/padded to give the plain linear convolution; no
// other normalization is applied. x and h are both real, so the real-input
// FFT applies.
func Fconv(x, h []float64) []float64 {
	n := len(x) + len(h) - 1
	if n <= 0 {
		return nil
	}
	padded := NextPow2(n)

	xp := make([]float64, padded)
	copy(xp, x)
	hp := make([]float64, padded)
	copy(hp, h)

	fft := fourier.NewFFT(padded)
	xc := fft.Coefficients(nil, xp)
	hc := fft.Coefficients(nil, hp)

	for i := range xc {
		xc[i] *= hc[i]
	}

	out := fft.Sequence(nil, xc)[:n]
	scale := 1 / float64(padded)
	for i := range out {
		out[i] *= scale
	}
	return out
}
