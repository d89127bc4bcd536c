package convolve

import (
	"math"
	"testing"

	"github.com/linuxmatters/jivemaster/internal/dsp"
)

func TestApplyIdentityImpulsePreservesSignal(t *testing.T) {
	n := 8
	fir := make(dsp.Channel, n)
	fir[n/2] = 1.0 // center-tap identity impulse, matching Apply's delay trim

	signal := dsp.Channel{0.1, -0.2, 0.3, -0.4, 0.5, -0.6, 0.7, -0.8}
	out := Apply(signal, fir)

	if len(out) != len(signal) {
		t.Fatalf("len(out) = %d, want %d", len(out), len(signal))
	}
	for i := range signal {
		if math.Abs(out[i]-signal[i]) > 1e-9 {
			t.Fatalf("out[%d] = %v, want %v", i, out[i], signal[i])
		}
	}
}

func TestApplyOutputLengthMatchesInput(t *testing.T) {
	fir := make(dsp.Channel, 64)
	fir[32] = 1.0
	signal := make(dsp.Channel, 1000)
	for i := range signal {
		signal[i] = math.Sin(float64(i))
	}

	out := Apply(signal, fir)
	if len(out) != len(signal) {
		t.Fatalf("len(out) = %d, want %d", len(out), len(signal))
	}
}

func TestStereoRecombinesMidSide(t *testing.T) {
	n := 16
	midFIR := make(dsp.Channel, n)
	midFIR[n/2] = 1.0
	sideFIR := make(dsp.Channel, n)
	sideFIR[n/2] = 1.0

	mid := dsp.Channel{1, 1, 1, 1}
	side := dsp.Channel{0.1, -0.1, 0.1, -0.1}

	out := Stereo(mid, side, midFIR, sideFIR)
	want := dsp.MStoLR(mid, side)

	if len(out.L) != len(want.L) {
		t.Fatalf("len(out.L) = %d, want %d", len(out.L), len(want.L))
	}
	for i := range want.L {
		if math.Abs(out.L[i]-want.L[i]) > 1e-9 {
			t.Fatalf("out.L[%d] = %v, want %v", i, out.L[i], want.L[i])
		}
		if math.Abs(out.R[i]-want.R[i]) > 1e-9 {
			t.Fatalf("out.R[%d] = %v, want %v", i, out.R[i], want.R[i])
		}
	}
}
