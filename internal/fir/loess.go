package fir

// Loess applies a LOESS-style locally-weighted linear regression to y,
// treating y as samples on an evenly-spaced grid (spec §4.5 step 3: the
// smoother operates on the log-resampled curve, whose grid is evenly
// spaced in log-frequency by construction, so index distance and
// x-distance coincide). spanFrac is the neighborhood size as a fraction of
// len(y) (default 0.075, spec §6's loess_span).
//
// This is the engine's defining characteristic (spec §4.5): any locally
// weighted regression equivalent is acceptable (tricube weights, degree-2
// local polynomial, span-fraction neighborhood); this implementation uses
// tricube weights with a degree-1 (linear) local fit, which is the classic
// Cleveland LOWESS formulation and is not available as a library anywhere
// in the examples pack (see DESIGN.md) — hand-rolled directly against the
// spec's description.
func Loess(y []float64, spanFrac float64) []float64 {
	n := len(y)
	out := make([]float64, n)
	if n == 0 {
		return out
	}
	if n == 1 {
		out[0] = y[0]
		return out
	}

	k := int(spanFrac * float64(n))
	if k < 2 {
		k = 2
	}
	if k > n {
		k = n
	}

	for i := 0; i < n; i++ {
		lo, hi := neighborWindow(i, n, k)
		out[i] = weightedLocalLinear(y, i, lo, hi)
	}
	return out
}

// neighborWindow returns the [lo, hi) index range of the k nearest
// neighbors (by index distance) to i, clamped to [0, n), widening on the
// in-bounds side near either edge so the window always has exactly k
// points (standard LOESS boundary handling).
func neighborWindow(i, n, k int) (lo, hi int) {
	lo = i - k/2
	hi = lo + k
	if lo < 0 {
		hi -= lo
		lo = 0
	}
	if hi > n {
		lo -= hi - n
		hi = n
	}
	if lo < 0 {
		lo = 0
	}
	return lo, hi
}

// weightedLocalLinear fits a weighted linear regression y ~ a + b*(x - x_i)
// over the window [lo, hi) using tricube weights keyed on index distance
// from i, and returns the fitted value at x_i (i.e. the intercept a).
func weightedLocalLinear(y []float64, i, lo, hi int) float64 {
	maxDist := 0.0
	for j := lo; j < hi; j++ {
		d := absInt(j - i)
		if float64(d) > maxDist {
			maxDist = float64(d)
		}
	}
	if maxDist == 0 {
		return y[i]
	}

	var s0, s1, s2, sy0, sy1 float64
	for j := lo; j < hi; j++ {
		d := float64(absInt(j - i))
		w := tricube(d / maxDist)
		xc := float64(j - i)
		s0 += w
		s1 += w * xc
		s2 += w * xc * xc
		sy0 += w * y[j]
		sy1 += w * xc * y[j]
	}

	denom := s0*s2 - s1*s1
	if denom < 1e-12 && denom > -1e-12 {
		if s0 == 0 {
			return y[i]
		}
		return sy0 / s0 // degenerate window: fall back to weighted mean
	}
	return (s2*sy0 - s1*sy1) / denom
}

func tricube(u float64) float64 {
	if u < 0 {
		u = -u
	}
	if u >= 1 {
		return 0
	}
	t := 1 - u*u*u
	return t * t * t
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
