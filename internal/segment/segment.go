// Package segment implements the Segmenter (spec §4.2, component C2):
// splitting a channel into fixed-size pieces and selecting the "loud"
// subset used by every downstream analysis stage.
package segment

import (
	"errors"

	"github.com/linuxmatters/jivemaster/internal/dsp"
)

// Pieces splits channel into non-overlapping pieceSize-sample pieces.
// Trailing samples beyond the last full piece are dropped for analysis
// purposes (spec §4.2), but remain in the original channel for output.
func Pieces(channel dsp.Channel, pieceSize int) []dsp.Piece {
	n := len(channel) / pieceSize
	pieces := make([]dsp.Piece, n)
	for i := 0; i < n; i++ {
		pieces[i] = dsp.Piece{Start: i * pieceSize, End: (i + 1) * pieceSize}
	}
	return pieces
}

// Result is the outcome of selecting the loud subset of a channel's pieces.
type Result struct {
	All       []dsp.Piece
	Loud      []dsp.Piece
	LoudRMS   []float64 // parallel to Loud
	PieceRMS  []float64 // parallel to All
	Threshold float64   // RMS of the per-piece RMS values
}

// Select implements spec §4.2's loud-piece selection: compute per-piece
// RMS, take the RMS of those RMS values as the threshold (not the mean),
// and admit any piece whose RMS is >= threshold (ties admitted). Because
// the threshold is itself an RMS of the very set it's compared against, it
// can never exceed the maximum piece RMS, so at least one piece is always
// admitted — the "loud-piece set" invariant of spec §3.
func Select(channel dsp.Channel, pieceSize int) Result {
	all := Pieces(channel, pieceSize)
	pieceRMS := make([]float64, len(all))
	for i, p := range all {
		pieceRMS[i] = dsp.RMS(p.Slice(channel))
	}
	threshold := dsp.RMS(pieceRMS)

	var loud []dsp.Piece
	var loudRMS []float64
	for i, p := range all {
		if pieceRMS[i] >= threshold {
			loud = append(loud, p)
			loudRMS = append(loudRMS, pieceRMS[i])
		}
	}
	return Result{All: all, Loud: loud, LoudRMS: loudRMS, PieceRMS: pieceRMS, Threshold: threshold}
}

// ErrNoLoudPieces is returned when a channel yields no pieces at all (too
// short for even one full piece at the configured piece size), the one
// genuinely unreachable-by-construction case spec §3's loud-piece
// invariant doesn't otherwise cover.
var ErrNoLoudPieces = errors.New("no pieces available for loud-piece selection")

// Validate reports ErrNoLoudPieces if result has no admitted pieces.
func Validate(result Result) error {
	if len(result.Loud) == 0 {
		return ErrNoLoudPieces
	}
	return nil
}

// MatchingRMS is the RMS of the admitted pieces' RMS values, i.e. the
// single scalar spec §4.3 calls the "matching RMS" of a side.
func MatchingRMS(result Result) float64 {
	return dsp.RMS(result.LoudRMS)
}
