package fir

import (
	"math"
	"testing"

	"github.com/linuxmatters/jivemaster/internal/config"
)

func flatSpectrum(n int, v float64) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = v
	}
	return s
}

// TestSynthesizeLengthAndRealness is spec §8 invariant 4: len(FIR) == N_FFT
// and the FIR is real-valued (trivially true for a []float64, but the
// point is the pipeline never leaves imaginary remainder behind).
func TestSynthesizeLengthAndRealness(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.FFTSize = 1024

	refMag := flatSpectrum(cfg.FFTSize, 1.0)
	tgtMag := flatSpectrum(cfg.FFTSize, 1.0)

	h := Synthesize(refMag, tgtMag, cfg.InternalSampleRate, cfg)
	if len(h) != cfg.FFTSize {
		t.Fatalf("len(FIR) = %d, want %d", len(h), cfg.FFTSize)
	}
	for i, v := range h {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("h[%d] = %v, not finite", i, v)
		}
	}
}

// TestSynthesizeFlatRatioStaysNearUnity covers spec §8 scenario 2: when
// TARGET and REFERENCE spectra are identical, the synthesized FIR should
// approximate an identity filter (a single spike at the center tap,
// since the windowed sinc of a flat frequency response is a delta).
func TestSynthesizeFlatRatioStaysNearUnity(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.FFTSize = 2048

	refMag := flatSpectrum(cfg.FFTSize, 2.0)
	tgtMag := flatSpectrum(cfg.FFTSize, 2.0)

	h := Synthesize(refMag, tgtMag, cfg.InternalSampleRate, cfg)

	center := len(h) / 2
	var energyElsewhere float64
	for i, v := range h {
		if i != center {
			energyElsewhere += v * v
		}
	}
	if h[center] <= 0 {
		t.Fatalf("h[center] = %v, want a positive central tap", h[center])
	}
	if energyElsewhere > h[center]*h[center]*10 {
		t.Fatalf("too much energy spread outside the center tap for a flat ratio spectrum")
	}
}

func TestRatioSpectrumFloorsDivisor(t *testing.T) {
	refMag := []float64{1, 2, 3}
	tgtMag := []float64{0, 1, 0}
	ratio := ratioSpectrum(refMag, tgtMag)
	if math.IsInf(ratio[0], 0) || math.IsNaN(ratio[0]) {
		t.Fatalf("ratio[0] = %v, want a finite floored value", ratio[0])
	}
	if math.Abs(ratio[1]-2) > 1e-9 {
		t.Fatalf("ratio[1] = %v, want 2", ratio[1])
	}
}

func TestMirrorStripsDCAndPreservesEdges(t *testing.T) {
	n := 16
	hHalf := make([]float64, n/2+1)
	for i := range hHalf {
		hHalf[i] = float64(i + 1)
	}
	ratio := make([]float64, n)
	for i := range ratio {
		ratio[i] = 100 + float64(i)
	}

	full := mirror(hHalf, ratio, n, true)
	if real(full[0]) != 0 {
		t.Fatalf("full[0] = %v, want 0 (DC stripped)", full[0])
	}
	if real(full[1]) != ratio[1] {
		t.Fatalf("full[1] = %v, want ratio[1] = %v", full[1], ratio[1])
	}
	if real(full[n-1]) != ratio[n-1] {
		t.Fatalf("full[%d] = %v, want ratio[%d] = %v", n-1, full[n-1], n-1, ratio[n-1])
	}
	for k := 2; k < n/2; k++ {
		if real(full[n-k]) != real(full[k]) {
			t.Fatalf("full[%d] = %v, full[%d] = %v, want mirrored", n-k, full[n-k], k, full[k])
		}
	}
}

// TestMirrorWithoutEdgePreservationStillFillsLastBin covers the
// preserveEdges=false path: full[n-1] has no edge override to fall back on,
// so it must come from the same mirrored hHalf[1] value as full[1] instead
// of being left at the zero value of the backing make([]complex128, n).
func TestMirrorWithoutEdgePreservationStillFillsLastBin(t *testing.T) {
	n := 16
	hHalf := make([]float64, n/2+1)
	for i := range hHalf {
		hHalf[i] = float64(i + 1)
	}
	ratio := make([]float64, n)
	for i := range ratio {
		ratio[i] = 100 + float64(i)
	}

	full := mirror(hHalf, ratio, n, false)
	if real(full[0]) != 0 {
		t.Fatalf("full[0] = %v, want 0 (DC stripped)", full[0])
	}
	if real(full[n-1]) != real(full[1]) {
		t.Fatalf("full[%d] = %v, want full[1] = %v (mirrored, not zero)", n-1, full[n-1], full[1])
	}
	if real(full[n-1]) == 0 {
		t.Fatalf("full[%d] = 0, want the smoothed mirrored value", n-1)
	}
	for k := 1; k < n/2; k++ {
		if real(full[n-k]) != real(full[k]) {
			t.Fatalf("full[%d] = %v, full[%d] = %v, want mirrored", n-k, full[n-k], k, full[k])
		}
	}
}
