// Package level implements the Level Analyzer (spec §4.3, component C3):
// deriving the TARGET/REFERENCE matching RMS from their Mid channels and
// the single gain coefficient applied uniformly to TARGET Mid and Side.
package level

import (
	"github.com/linuxmatters/jivemaster/internal/config"
	"github.com/linuxmatters/jivemaster/internal/dsp"
	"github.com/linuxmatters/jivemaster/internal/segment"
)

// Result holds the matching RMS values and derived coefficient for a
// single TARGET-vs-REFERENCE level match.
type Result struct {
	TargetMatchingRMS    float64
	ReferenceMatchingRMS float64
	Coefficient          float64
	Clamped              bool // true if TARGET matching RMS was floored
}

// Analyze computes the matching RMS of the TARGET Mid channel (via its
// already-selected loud pieces) and the coefficient that scales TARGET
// loudness onto referenceMatchingRMS, per spec §4.3. referenceMatchingRMS
// is the REFERENCE's matching RMS, a scalar taken directly from the
// (possibly cached) reference statistics bundle rather than a fresh
// segment.Result, since the cache only ever stores the scalar.
func Analyze(targetMid segment.Result, referenceMatchingRMS float64) Result {
	tgt := segment.MatchingRMS(targetMid)

	clamped := false
	denominator := tgt
	if denominator < config.Epsilon {
		denominator = config.Epsilon
		clamped = true
	}

	return Result{
		TargetMatchingRMS:    tgt,
		ReferenceMatchingRMS: referenceMatchingRMS,
		Coefficient:          referenceMatchingRMS / denominator,
		Clamped:              clamped,
	}
}

// Apply scales both the Mid and Side channels of the TARGET by coef,
// producing the Stage-1 output named in spec §4.3/§4.10.
func Apply(mid, side dsp.Channel, coef float64) (outMid, outSide dsp.Channel) {
	return dsp.Amplify(mid, coef), dsp.Amplify(side, coef)
}
