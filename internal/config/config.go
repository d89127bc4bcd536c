// Package config holds the runtime-configurable parameters of the mastering
// engine. Unlike the teacher's visualiser, which hardcodes its constants in
// a package-level const block, the engine's parameters (spec §6) must be
// tunable per run, so they live on a struct with a documented default
// constructor instead.
package config

// Numerical guard floor used wherever a denominator could vanish.
const Epsilon = 1e-6

// LimitedMaximumPoint is the near-unity ceiling used for pre-normalizing the
// REFERENCE and for "normalize" output variants.
const LimitedMaximumPoint = 0.9981

// Limiter holds the Hyrax look-ahead limiter's tunables.
type Limiter struct {
	// Threshold is the brickwall ceiling, in (0, 1].
	Threshold float64

	AttackMS    float64
	ReleaseMS   float64
	HoldMS      float64
	LookaheadMS float64

	// SmoothingStagesMS is a cascade of one-pole low-pass time constants
	// applied after the attack/hold/release follower. At least two
	// stages are expected: a fast one and a slower one.
	SmoothingStagesMS []float64
}

// DefaultLimiter returns the Hyrax defaults described in spec §4.7/§6.
func DefaultLimiter() Limiter {
	return Limiter{
		Threshold:         LimitedMaximumPoint,
		AttackMS:          1,
		ReleaseMS:         60,
		HoldMS:            8,
		LookaheadMS:       1,
		SmoothingStagesMS: []float64{5, 40},
	}
}

// Config collects every tunable named in spec §6.
type Config struct {
	InternalSampleRate int
	FFTSize            int
	PieceSizeSeconds   float64
	MaxLengthMinutes   float64

	LinLogOversampling int
	LoessSpan          float64

	// PreserveEdgeBins controls whether the FIR synthesizer keeps the
	// source's H[1]/H[N-1] preservation overrides (spec §4.5 step 5,
	// §9 open question). Default true: matches the documented behaviour.
	PreserveEdgeBins bool

	RMSCorrectionSteps int

	// CorrectionFinalUsesLimiter selects whether the correction loop's
	// terminal pass (§4.8) runs the real Hyrax limiter or the cheaper
	// hard-clip simulator used for every step before it.
	CorrectionFinalUsesLimiter bool

	ClippingSamplesThreshold int
	LimitedSamplesThreshold  int

	Limiter Limiter

	TempFolder string

	// Workers bounds the worker pool used for the per-piece FFT magnitude
	// spectra; per-piece RMS and convolution run on one goroutine.
	// 0 means GOMAXPROCS.
	Workers int
}

// DefaultConfig returns the engine defaults named throughout spec §6.
func DefaultConfig() Config {
	return Config{
		InternalSampleRate:         44100,
		FFTSize:                    32768,
		PieceSizeSeconds:           15,
		MaxLengthMinutes:           60,
		LinLogOversampling:         4,
		LoessSpan:                  0.075,
		PreserveEdgeBins:           true,
		RMSCorrectionSteps:         4,
		CorrectionFinalUsesLimiter: true,
		ClippingSamplesThreshold:   8,
		LimitedSamplesThreshold:    128,
		Limiter:                    DefaultLimiter(),
	}
}

// PieceSize returns the piece length in samples at the internal rate.
func (c Config) PieceSize() int {
	return int(c.PieceSizeSeconds * float64(c.InternalSampleRate))
}

// MaxLengthSamples returns the validation cap on input length, in samples.
func (c Config) MaxLengthSamples() int64 {
	return int64(c.MaxLengthMinutes * 60 * float64(c.InternalSampleRate))
}

// LookaheadSamples returns the Hyrax look-ahead delay line length.
func (l Limiter) LookaheadSamples(sampleRate int) int {
	return msToSamples(l.LookaheadMS, sampleRate)
}

// HoldSamples returns the hold counter length in samples.
func (l Limiter) HoldSamples(sampleRate int) int {
	return msToSamples(l.HoldMS, sampleRate)
}

func msToSamples(ms float64, sampleRate int) int {
	n := int(ms * float64(sampleRate) / 1000.0)
	if n < 1 {
		n = 1
	}
	return n
}

// TimeConstants converts attack/release/smoothing milliseconds into the
// per-sample one-pole coefficients the Hyrax follower consumes.
func (l Limiter) TimeConstants(sampleRate int) (attack, release float64, smoothing []float64) {
	attack = timeConstantSamples(l.AttackMS, sampleRate)
	release = timeConstantSamples(l.ReleaseMS, sampleRate)
	smoothing = make([]float64, len(l.SmoothingStagesMS))
	for i, ms := range l.SmoothingStagesMS {
		smoothing[i] = timeConstantSamples(ms, sampleRate)
	}
	return attack, release, smoothing
}

func timeConstantSamples(ms float64, sampleRate int) float64 {
	samples := ms * float64(sampleRate) / 1000.0
	if samples < 1 {
		samples = 1
	}
	return samples
}
