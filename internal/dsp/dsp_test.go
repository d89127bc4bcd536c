package dsp

import (
	"math"
	"testing"

	"github.com/linuxmatters/jivemaster/internal/config"
)

func TestRMSZeroOnlyForSilence(t *testing.T) {
	if got := RMS(Channel{0, 0, 0}); got != 0 {
		t.Fatalf("RMS(silence) = %v, want 0", got)
	}
	if got := RMS(Channel{1, -1, 1, -1}); got <= 0 {
		t.Fatalf("RMS(nonzero) = %v, want > 0", got)
	}
	if got := RMS(nil); got != 0 {
		t.Fatalf("RMS(nil) = %v, want 0", got)
	}
}

func TestRMSKnownValue(t *testing.T) {
	// RMS of a constant 0.5 signal is 0.5.
	x := make(Channel, 1000)
	for i := range x {
		x[i] = 0.5
	}
	if got := RMS(x); math.Abs(got-0.5) > 1e-9 {
		t.Fatalf("RMS(constant 0.5) = %v, want 0.5", got)
	}
}

func TestAmplify(t *testing.T) {
	out := Amplify(Channel{1, 2, -3}, 2)
	want := Channel{2, 4, -6}
	for i := range want {
		if out[i] != want[i] {
			t.Fatalf("Amplify[%d] = %v, want %v", i, out[i], want[i])
		}
	}
}

func TestNormalizePeaksAtOne(t *testing.T) {
	out := Normalize(Channel{0.5, -0.25, 0.1})
	if got := Peak(out); math.Abs(got-1) > 1e-9 {
		t.Fatalf("Normalize peak = %v, want 1", got)
	}
}

func TestNormalizeSilenceUnchanged(t *testing.T) {
	silence := Channel{0, 0, 0}
	out := Normalize(silence)
	for i := range silence {
		if out[i] != silence[i] {
			t.Fatalf("Normalize(silence)[%d] = %v, want 0", i, out[i])
		}
	}
}

// TestMSRoundTrip is spec §8 invariant 2: ms_to_lr(lr_to_ms(L, R)) == (L, R).
func TestMSRoundTrip(t *testing.T) {
	l := Channel{0.3, -0.7, 0.1, 0.95, -1.0}
	r := Channel{-0.1, 0.2, 0.1, -0.4, 1.0}
	stereo := Stereo{L: l, R: r}

	mid, side := LRtoMS(stereo)
	back := MStoLR(mid, side)

	for i := range l {
		if math.Abs(back.L[i]-l[i]) > 1e-9 {
			t.Fatalf("L[%d] = %v, want %v", i, back.L[i], l[i])
		}
		if math.Abs(back.R[i]-r[i]) > 1e-9 {
			t.Fatalf("R[%d] = %v, want %v", i, back.R[i], r[i])
		}
	}
}

func TestDetectLimitedClippingVsLimited(t *testing.T) {
	cfg := config.DefaultConfig()

	clean := make(Channel, 1000)
	for i := range clean {
		clean[i] = 0.1 * math.Sin(float64(i))
	}
	det := DetectLimited(clean, cfg)
	if det.Clipping || det.Limited {
		t.Fatalf("clean signal incorrectly flagged: %+v", det)
	}

	clipped := make(Channel, 1000)
	for i := range clipped {
		if i%2 == 0 {
			clipped[i] = 1.0
		} else {
			clipped[i] = 0.1
		}
	}
	det = DetectLimited(clipped, cfg)
	if !det.Clipping {
		t.Fatalf("heavily clipped signal not flagged as clipping: %+v", det)
	}
}

func TestFloorDenominator(t *testing.T) {
	if got := FloorDenominator(0); got != config.Epsilon {
		t.Fatalf("FloorDenominator(0) = %v, want epsilon", got)
	}
	if got := FloorDenominator(1); got != 1 {
		t.Fatalf("FloorDenominator(1) = %v, want 1", got)
	}
}
