package config

import "testing"

func TestPieceSize(t *testing.T) {
	c := DefaultConfig()
	c.InternalSampleRate = 44100
	c.PieceSizeSeconds = 15
	if got, want := c.PieceSize(), 15*44100; got != want {
		t.Fatalf("PieceSize() = %d, want %d", got, want)
	}
}

func TestMaxLengthSamples(t *testing.T) {
	c := DefaultConfig()
	c.InternalSampleRate = 44100
	c.MaxLengthMinutes = 1
	if got, want := c.MaxLengthSamples(), int64(60*44100); got != want {
		t.Fatalf("MaxLengthSamples() = %d, want %d", got, want)
	}
}

func TestLookaheadAndHoldSamplesAreAtLeastOne(t *testing.T) {
	l := DefaultLimiter()
	l.LookaheadMS = 0
	l.HoldMS = 0
	if got := l.LookaheadSamples(44100); got < 1 {
		t.Fatalf("LookaheadSamples() = %d, want >= 1", got)
	}
	if got := l.HoldSamples(44100); got < 1 {
		t.Fatalf("HoldSamples() = %d, want >= 1", got)
	}
}

func TestTimeConstantsScaleWithSampleRate(t *testing.T) {
	l := DefaultLimiter()
	attack44k, release44k, smoothing44k := l.TimeConstants(44100)
	attack88k, release88k, smoothing88k := l.TimeConstants(88200)

	if attack88k <= attack44k {
		t.Fatalf("attack at 88200Hz = %v, want greater than at 44100Hz (%v)", attack88k, attack44k)
	}
	if release88k <= release44k {
		t.Fatalf("release at 88200Hz = %v, want greater than at 44100Hz (%v)", release88k, release44k)
	}
	if len(smoothing88k) != len(smoothing44k) {
		t.Fatalf("smoothing stage count changed with sample rate: %d vs %d", len(smoothing88k), len(smoothing44k))
	}
	for i := range smoothing44k {
		if smoothing88k[i] <= smoothing44k[i] {
			t.Fatalf("smoothing[%d] at 88200Hz = %v, want greater than at 44100Hz (%v)", i, smoothing88k[i], smoothing44k[i])
		}
	}
}

func TestDefaultConfigMatchesDocumentedDefaults(t *testing.T) {
	c := DefaultConfig()
	if c.FFTSize != 32768 {
		t.Fatalf("FFTSize = %d, want 32768", c.FFTSize)
	}
	if c.RMSCorrectionSteps != 4 {
		t.Fatalf("RMSCorrectionSteps = %d, want 4", c.RMSCorrectionSteps)
	}
	if !c.CorrectionFinalUsesLimiter {
		t.Fatal("CorrectionFinalUsesLimiter = false, want true")
	}
	if c.Limiter.Threshold != LimitedMaximumPoint {
		t.Fatalf("Limiter.Threshold = %v, want %v", c.Limiter.Threshold, LimitedMaximumPoint)
	}
}
