// Package convolve implements the Convolver (spec §4.6, component C6):
// applying a channel's FIR via block frequency-domain convolution and
// trimming the filter's group delay.
package convolve

import (
	"github.com/linuxmatters/jivemaster/internal/dsp"
)

// Apply convolves signal with fir via dsp.Fconv, drops the first N_FFT/2
// samples (the filter's group delay) and keeps the next len(signal)
// samples, so the filtered channel has exactly the length of the Stage-1
// input it was derived from (spec §4.6).
func Apply(signal, fir dsp.Channel) dsp.Channel {
	delay := len(fir) / 2
	full := dsp.Fconv(signal, fir)

	end := len(signal) + delay
	if end > len(full) {
		end = len(full)
	}
	trimmed := full[delay:end]

	out := make(dsp.Channel, len(trimmed))
	copy(out, trimmed)
	return out
}

// Stereo applies the Mid FIR to the Mid channel and the Side FIR to the
// Side channel of a Stage-1 output, then recombines M/S into L/R, per
// spec §4.6's "Mid FIR -> Mid channel; Side FIR -> Side channel; recombine"
// description.
func Stereo(mid, side, midFIR, sideFIR dsp.Channel) dsp.Stereo {
	filteredMid := Apply(mid, midFIR)
	filteredSide := Apply(side, sideFIR)

	n := len(filteredMid)
	if len(filteredSide) < n {
		n = len(filteredSide)
	}
	return dsp.MStoLR(filteredMid[:n], filteredSide[:n])
}
