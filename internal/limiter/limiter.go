// Package limiter implements the Hyrax look-ahead brickwall limiter (spec
// §4.7, component C7): peak detection over a look-ahead window, an
// attack/hold/release gain envelope, a cascade of smoothing stages, and a
// final safety clip. The CORE owns this limiter outright (spec §9's
// re-architecture note rejects shelling out to an external VST host, the
// source's original design); Hyrax replaces it entirely.
package limiter

import (
	"math"

	"github.com/linuxmatters/jivemaster/internal/config"
	"github.com/linuxmatters/jivemaster/internal/dsp"
)

// followerState is the gain follower's state machine of spec §4.7's table:
// Tracking (rising back to 1), Attacking (descending toward a new peak) or
// Holding (sustaining a reached minimum for H samples).
type followerState int

const (
	stateTracking followerState = iota
	stateAttacking
	stateHolding
)

// Hyrax is a reusable look-ahead limiter instance. State is per-call
// (spec §3: "Limiter state ... transient, scoped to a single processing
// call"); Hyrax itself holds only the immutable configuration derived
// once from config.Limiter.
type Hyrax struct {
	threshold  float64
	lookahead  int
	holdLen    int
	attackTC   float64
	releaseTC  float64
	smoothTC   []float64
	sampleRate int
}

// New constructs a Hyrax limiter from cfg at the given internal sample
// rate, deriving per-sample time constants from the millisecond
// parameters (spec §6).
func New(cfg config.Limiter, sampleRate int) *Hyrax {
	attack, release, smoothing := cfg.TimeConstants(sampleRate)
	return &Hyrax{
		threshold:  cfg.Threshold,
		lookahead:  cfg.LookaheadSamples(sampleRate),
		holdLen:    cfg.HoldSamples(sampleRate),
		attackTC:   attack,
		releaseTC:  release,
		smoothTC:   smoothing,
		sampleRate: sampleRate,
	}
}

// Process applies the limiter to x and returns a new channel delayed by
// the look-ahead length (spec §4.7's contract and §8 invariant 6: a signal
// already within the threshold at every sample is returned unchanged
// except for that delay). Equivalent to ProcessStereo(x, x)'s left channel,
// i.e. the peak detector sees only x.
func (h *Hyrax) Process(x dsp.Channel) dsp.Channel {
	l, _ := h.ProcessStereo(x, x)
	return l
}

// ProcessStereo applies the limiter to a stereo pair, deriving a single
// reduction envelope from the sample-wise peak of both channels combined
// and applying that same gain and the same look-ahead delay to each
// channel. Sharing one envelope and one delay across L/R (spec §8
// invariant 1: |output_peak| <= threshold for either channel whenever
// use_limiter = true) is required because limiting each channel off its
// own peak independently, or delaying one but not the other, would both
// let the combined signal exceed the threshold and smear the stereo
// image. The returned channels are extended by the look-ahead length so
// no trailing input is dropped.
func (h *Hyrax) ProcessStereo(l, r dsp.Channel) (dsp.Channel, dsp.Channel) {
	n := len(l)
	outLen := n + h.lookahead
	outL := make(dsp.Channel, outLen)
	outR := make(dsp.Channel, outLen)
	if n == 0 {
		return dsp.Channel{}, dsp.Channel{}
	}

	peak := combinedPeak(l, r)
	reduction := h.reductionEnvelope(peak)
	smoothed := h.smoothEnvelope(reduction)

	for i := 0; i < outLen; i++ {
		srcIdx := i - h.lookahead
		if srcIdx < 0 {
			continue
		}
		gain := smoothed[srcIdx]
		outL[i] = clip(l[srcIdx]*gain, h.threshold)
		outR[i] = clip(r[srcIdx]*gain, h.threshold)
	}
	return outL, outR
}

// combinedPeak returns the sample-wise max(|l[i]|, |r[i]|), the single
// channel the reduction envelope is derived from so both channels share
// one gain decision.
func combinedPeak(l, r dsp.Channel) dsp.Channel {
	out := make(dsp.Channel, len(l))
	for i := range l {
		a, b := math.Abs(l[i]), math.Abs(r[i])
		if b > a {
			a = b
		}
		out[i] = a
	}
	return out
}

// reductionEnvelope computes r_req per sample (spec §4.7 step 2): the
// instantaneous reduction needed so that the look-ahead window's peak does
// not exceed the threshold, then runs it through the attack/hold/release
// follower (step 3) to produce r_ahr.
func (h *Hyrax) reductionEnvelope(x dsp.Channel) []float64 {
	n := len(x)
	rReq := make([]float64, n)
	for i := 0; i < n; i++ {
		end := i + h.lookahead
		if end > n {
			end = n
		}
		peak := 0.0
		for j := i; j < end; j++ {
			if a := math.Abs(x[j]); a > peak {
				peak = a
			}
		}
		if peak <= h.threshold || peak < config.Epsilon {
			rReq[i] = 1
		} else {
			rReq[i] = h.threshold / peak
		}
	}

	rAhr := make([]float64, n)
	state := stateTracking
	gain := 1.0
	holdCounter := 0

	for i := 0; i < n; i++ {
		switch state {
		case stateTracking:
			if rReq[i] < gain {
				state = stateAttacking
			} else {
				gain += (1 - gain) / h.releaseTC
				if gain > 1 {
					gain = 1
				}
			}
		case stateAttacking:
			gain -= (gain - rReq[i]) / h.attackTC
			if gain <= rReq[i] {
				gain = rReq[i]
				state = stateHolding
				holdCounter = h.holdLen
			}
		case stateHolding:
			if rReq[i] < gain {
				// A deeper reduction arrived mid-hold: attack further.
				state = stateAttacking
			} else {
				holdCounter--
				if holdCounter <= 0 {
					state = stateTracking
				}
			}
		}
		rAhr[i] = gain
	}
	return rAhr
}

// smoothEnvelope cascades one-pole low-pass smoothers over the
// attack/hold/release envelope (spec §4.7 step 4). Each stage is
// asymmetric: it tracks descents immediately (so gain reduction is never
// delayed past the point a peak needs it) and smooths only the rise back
// toward unity, which is what removes zipper artifacts without
// reintroducing overshoot.
func (h *Hyrax) smoothEnvelope(env []float64) []float64 {
	out := env
	for _, tc := range h.smoothTC {
		out = onePoleAsymmetric(out, tc)
	}
	return out
}

func onePoleAsymmetric(x []float64, tc float64) []float64 {
	n := len(x)
	out := make([]float64, n)
	if n == 0 {
		return out
	}
	prev := x[0]
	out[0] = prev
	for i := 1; i < n; i++ {
		if x[i] < prev {
			prev = x[i]
		} else {
			prev += (x[i] - prev) / tc
		}
		out[i] = prev
	}
	return out
}

func clip(v, threshold float64) float64 {
	if v > threshold {
		return threshold
	}
	if v < -threshold {
		return -threshold
	}
	return v
}
