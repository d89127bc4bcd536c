package segment

import (
	"math"
	"testing"

	"github.com/linuxmatters/jivemaster/internal/dsp"
)

func buildChannel(pieceSize int, amps []float64) dsp.Channel {
	ch := make(dsp.Channel, pieceSize*len(amps))
	for i, a := range amps {
		for j := 0; j < pieceSize; j++ {
			ch[i*pieceSize+j] = a
		}
	}
	return ch
}

func TestPiecesDropsTrailingSamples(t *testing.T) {
	ch := make(dsp.Channel, 105)
	pieces := Pieces(ch, 50)
	if len(pieces) != 2 {
		t.Fatalf("len(pieces) = %d, want 2", len(pieces))
	}
	if pieces[1].End != 100 {
		t.Fatalf("last piece end = %d, want 100", pieces[1].End)
	}
}

// TestSelectAlwaysAdmitsAtLeastOne is spec §3's loud-piece-set invariant:
// the threshold is the RMS of per-piece RMS values, which can never
// exceed the maximum piece RMS.
func TestSelectAlwaysAdmitsAtLeastOne(t *testing.T) {
	ch := buildChannel(10, []float64{0.01, 0.01, 0.01, 0.01})
	result := Select(ch, 10)
	if len(result.Loud) == 0 {
		t.Fatal("expected at least one admitted piece")
	}
}

func TestSelectAdmitsOnlyLoudPieces(t *testing.T) {
	// Three quiet pieces, one much louder: the louder one should always
	// clear the RMS-of-RMS threshold; the quiet ones should not.
	ch := buildChannel(100, []float64{0.01, 0.01, 0.01, 0.9})
	result := Select(ch, 100)
	if len(result.Loud) != 1 {
		t.Fatalf("len(Loud) = %d, want 1", len(result.Loud))
	}
	if result.Loud[0].Start != 300 {
		t.Fatalf("admitted piece starts at %d, want 300 (the loud one)", result.Loud[0].Start)
	}
}

func TestSelectTiesAdmitted(t *testing.T) {
	ch := buildChannel(10, []float64{0.5, 0.5, 0.5})
	result := Select(ch, 10)
	if len(result.Loud) != 3 {
		t.Fatalf("len(Loud) = %d, want 3 (all tied at threshold)", len(result.Loud))
	}
}

func TestValidateErrorsOnNoPieces(t *testing.T) {
	result := Result{}
	if err := Validate(result); err != ErrNoLoudPieces {
		t.Fatalf("Validate(empty) = %v, want ErrNoLoudPieces", err)
	}
}

func TestMatchingRMSIsRMSOfLoudPieceRMS(t *testing.T) {
	ch := buildChannel(10, []float64{0.3, 0.3})
	result := Select(ch, 10)
	got := MatchingRMS(result)
	want := math.Sqrt((0.3*0.3 + 0.3*0.3) / 2)
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("MatchingRMS = %v, want %v", got, want)
	}
}
