package dsp

import (
	"math"
	"testing"
)

func TestNextPow2(t *testing.T) {
	cases := map[int]int{1: 1, 2: 2, 3: 4, 5: 8, 1024: 1024, 1025: 2048}
	for in, want := range cases {
		if got := NextPow2(in); got != want {
			t.Fatalf("NextPow2(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestHannWindowEndpoints(t *testing.T) {
	w := HannWindow(8)
	if w[0] != 0 {
		t.Fatalf("Hann[0] = %v, want 0", w[0])
	}
	mid := w[len(w)/2]
	if mid < 0.9 {
		t.Fatalf("Hann midpoint = %v, want near 1", mid)
	}
}

func TestBlockMagnitudeMirrorsSymmetry(t *testing.T) {
	n := 64
	block := make([]float64, n)
	for i := range block {
		block[i] = math.Sin(2 * math.Pi * 4 * float64(i) / float64(n))
	}
	mag := BlockMagnitude(block, n)
	if len(mag) != n {
		t.Fatalf("len(mag) = %d, want %d", len(mag), n)
	}
	for k := 2; k < n/2; k++ {
		if math.Abs(mag[k]-mag[n-k]) > 1e-9 {
			t.Fatalf("mag[%d] = %v, mag[%d] = %v, want mirrored", k, mag[k], n-k, mag[n-k])
		}
	}
}

func TestBlockMagnitudePeaksAtToneBin(t *testing.T) {
	n := 256
	toneBin := 10
	block := make([]float64, n)
	for i := range block {
		block[i] = math.Sin(2 * math.Pi * float64(toneBin) * float64(i) / float64(n))
	}
	mag := BlockMagnitude(block, n)

	peakBin := 0
	for k := 1; k < n/2; k++ {
		if mag[k] > mag[peakBin] {
			peakBin = k
		}
	}
	if peakBin != toneBin {
		t.Fatalf("peak bin = %d, want %d", peakBin, toneBin)
	}
}

func TestBatchFFTMagnitudeAveragesAcrossPieces(t *testing.T) {
	nFFT := 64
	pieceSize := nFFT * 2
	channel := make(Channel, pieceSize*3)
	for i := range channel {
		channel[i] = math.Sin(2 * math.Pi * 5 * float64(i) / float64(nFFT))
	}
	pieces := []Piece{
		{Start: 0, End: pieceSize},
		{Start: pieceSize, End: 2 * pieceSize},
		{Start: 2 * pieceSize, End: 3 * pieceSize},
	}

	for _, workers := range []int{1, 4} {
		avg := BatchFFTMagnitude(channel, pieces, nFFT, workers)
		if len(avg) != nFFT {
			t.Fatalf("workers=%d: len(avg) = %d, want %d", workers, len(avg), nFFT)
		}
		if avg[5] <= avg[1] {
			t.Fatalf("workers=%d: expected tone bin 5 to dominate: avg[5]=%v avg[1]=%v", workers, avg[5], avg[1])
		}
	}
}

func TestBatchFFTMagnitudeDeterministicAcrossWorkerCounts(t *testing.T) {
	nFFT := 32
	pieceSize := nFFT
	n := pieceSize * 8
	channel := make(Channel, n)
	for i := range channel {
		channel[i] = math.Sin(0.3*float64(i)) + 0.2*math.Cos(1.7*float64(i))
	}
	var pieces []Piece
	for i := 0; i < n/pieceSize; i++ {
		pieces = append(pieces, Piece{Start: i * pieceSize, End: (i + 1) * pieceSize})
	}

	single := BatchFFTMagnitude(channel, pieces, nFFT, 1)
	multi := BatchFFTMagnitude(channel, pieces, nFFT, 8)
	for k := range single {
		if math.Abs(single[k]-multi[k]) > 1e-9 {
			t.Fatalf("bin %d differs between worker counts: %v vs %v", k, single[k], multi[k])
		}
	}
}

func TestFconvLength(t *testing.T) {
	x := make([]float64, 100)
	h := make([]float64, 33)
	x[0] = 1
	h[0] = 1
	out := Fconv(x, h)
	wantLen := len(x) + len(h) - 1
	if len(out) != wantLen {
		t.Fatalf("len(Fconv) = %d, want %d", len(out), wantLen)
	}
}

func TestFconvIdentityImpulse(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5}
	h := []float64{1} // identity impulse
	out := Fconv(x, h)
	if len(out) != len(x) {
		t.Fatalf("len(out) = %d, want %d", len(out), len(x))
	}
	for i := range x {
		if math.Abs(out[i]-x[i]) > 1e-9 {
			t.Fatalf("out[%d] = %v, want %v", i, out[i], x[i])
		}
	}
}

func TestTreeSumMatchesPlainSum(t *testing.T) {
	parts := [][]float64{
		{1, 2, 3},
		{4, 5, 6},
		{7, 8, 9},
		{10, 11, 12},
		{13, 14, 15},
	}
	got := TreeSum(parts)
	want := []float64{1 + 4 + 7 + 10 + 13, 2 + 5 + 8 + 11 + 14, 3 + 6 + 9 + 12 + 15}
	for k := range want {
		if got[k] != want[k] {
			t.Fatalf("TreeSum[%d] = %v, want %v", k, got[k], want[k])
		}
	}
}
