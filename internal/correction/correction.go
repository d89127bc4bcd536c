// Package correction implements the Correction Loop (spec §4.8, component
// C8): iteratively re-estimating RMS after candidate limiting and
// rescaling the signal to converge on the REFERENCE's matching loudness.
package correction

import (
	"math"

	"github.com/linuxmatters/jivemaster/internal/config"
	"github.com/linuxmatters/jivemaster/internal/dsp"
	"github.com/linuxmatters/jivemaster/internal/limiter"
	"github.com/linuxmatters/jivemaster/internal/segment"
)

// Step records one iteration's coefficient, for diagnostics/testing.
type Step struct {
	Coefficient float64
	MatchingRMS float64
}

// Run implements spec §4.8's loop: K-1 hard-clip simulation passes
// followed by one pass using the real Hyrax limiter (or, if
// cfg.CorrectionFinalUsesLimiter is false, one more hard-clip pass — the
// §9 open question resolved in SPEC_FULL.md §5). pieceSize is the piece
// length used to re-derive the loud subset of the Mid channel at every
// iteration, since the candidate's loud pieces can shift as gain changes.
func Run(signal dsp.Stereo, refMatchingRMS float64, cfg config.Config, hyrax *limiter.Hyrax) (dsp.Stereo, []Step) {
	pieceSize := cfg.PieceSize()
	steps := make([]Step, 0, cfg.RMSCorrectionSteps)

	current := signal
	iterations := cfg.RMSCorrectionSteps
	if iterations < 1 {
		iterations = 1
	}

	for step := 1; step < iterations; step++ {
		mid, _ := dsp.LRtoMS(current)
		candidate := hardClip(mid)
		coef, matching := coefficientFor(candidate, pieceSize, refMatchingRMS)
		current = scale(current, coef)
		steps = append(steps, Step{Coefficient: coef, MatchingRMS: matching})
	}

	mid, _ := dsp.LRtoMS(current)
	var limited dsp.Channel
	if cfg.CorrectionFinalUsesLimiter && hyrax != nil {
		limited = hyrax.Process(mid)
	} else {
		limited = hardClip(mid)
	}
	coef, matching := coefficientFor(limited, pieceSize, refMatchingRMS)
	current = scale(current, coef)
	steps = append(steps, Step{Coefficient: coef, MatchingRMS: matching})

	return current, steps
}

// hardClip is the "fast simulation of limiting" of spec §4.8: clip_hard.
func hardClip(x dsp.Channel) dsp.Channel {
	out := make(dsp.Channel, len(x))
	for i, v := range x {
		out[i] = math.Max(-1, math.Min(1, v))
	}
	return out
}

func coefficientFor(candidate dsp.Channel, pieceSize int, refMatchingRMS float64) (coef, matching float64) {
	loud := segment.Select(candidate, pieceSize)
	matching = segment.MatchingRMS(loud)
	denom := dsp.FloorDenominator(matching)
	return refMatchingRMS / denom, matching
}

func scale(signal dsp.Stereo, coef float64) dsp.Stereo {
	return dsp.Stereo{
		L: dsp.Amplify(signal.L, coef),
		R: dsp.Amplify(signal.R, coef),
	}
}
