package dsp

// Piece is a contiguous [Start, End) slice boundary into a Channel, per
// spec §3's "Piece" data type. Segmentation lives in internal/segment; the
// type itself sits here because both internal/segment and the FFT helpers
// above (BatchFFTMagnitude) need it without creating an import cycle
// between the two.
type Piece struct {
	Start, End int
}

// Slice returns the piece's samples from channel.
func (p Piece) Slice(channel Channel) Channel {
	return channel[p.Start:p.End]
}
