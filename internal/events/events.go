// Package events defines the progress-event contract consumed by the
// pipeline orchestrator (spec §6): a frozen four-digit code table, a
// Level enum and the Sink interface the core emits events to. The core
// never decides presentation — internal/ui and cmd/jivemaster do that.
package events

// Level classifies an event's severity.
type Level int

const (
	InfoLevel Level = iota
	Warning
	Error
)

func (l Level) String() string {
	switch l {
	case InfoLevel:
		return "info"
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// Event is a single progress/status notification.
type Event struct {
	Code    int
	Level   Level
	Message string
}

// Sink receives Events in strict stage order (spec §5). Implementations
// must not block the pipeline indefinitely; the default Sink discards.
type Sink interface {
	Emit(e Event)
}

// DiscardSink implements Sink by dropping every event, the default named
// in spec §6 ("sink: optional; default = discard").
type DiscardSink struct{}

func (DiscardSink) Emit(Event) {}

// FuncSink adapts a plain function to the Sink interface.
type FuncSink func(Event)

func (f FuncSink) Emit(e Event) { f(e) }

// Frozen event codes, per spec §6's table (excerpt reproduced in full).
const (
	CodeLoadingAnalysis    = 2003
	CodeMatchingLevels     = 2004
	CodeMatchingFrequency  = 2005
	CodeCorrectingLevels   = 2006
	CodeFinalizeSaving     = 2007
	CodeTaskComplete       = 2010
	CodeTargetPromotedMono = 2101
	CodeReferenceResampled = 2202

	CodeTargetClipping  = 3001
	CodeTargetLimited   = 3002
	CodeTargetResampled = 3003

	CodeTargetStreamError   = 4001
	CodeTargetTooLong       = 4002
	CodeTargetTooShort      = 4003
	CodeTargetTooManyChans  = 4004
	CodeTargetEqualsRef     = 4005
	CodeReferenceStreamErr  = 4101
	CodeReferenceTooLong    = 4102
	CodeReferenceTooShort   = 4103
	CodeReferenceTooManyCh  = 4104
	CodeUnknownError        = 4201
	CodeInternalValidation  = 4202
	CodeCancelled           = 4203
)

// messages maps each frozen code to its spec §6 meaning, used by Emit
// helpers below so callers don't repeat message text at every call site.
var messages = map[int]string{
	CodeLoadingAnalysis:    "loading & analysis",
	CodeMatchingLevels:     "matching levels",
	CodeMatchingFrequency:  "matching frequencies",
	CodeCorrectingLevels:   "correcting levels",
	CodeFinalizeSaving:     "finalize & saving",
	CodeTaskComplete:       "task complete",
	CodeTargetPromotedMono: "TARGET was mono, promoted",
	CodeReferenceResampled: "REFERENCE was resampled",
	CodeTargetClipping:     "TARGET clipping detected",
	CodeTargetLimited:      "TARGET limiter detected",
	CodeTargetResampled:    "TARGET sample rate != internal; resampled",
	CodeTargetStreamError:  "TARGET stream error",
	CodeTargetTooLong:      "TARGET too long",
	CodeTargetTooShort:     "TARGET too short (< N_FFT samples)",
	CodeTargetTooManyChans: "TARGET too many channels",
	CodeTargetEqualsRef:    "TARGET == REFERENCE",
	CodeReferenceStreamErr: "REFERENCE stream error",
	CodeReferenceTooLong:   "REFERENCE too long",
	CodeReferenceTooShort:  "REFERENCE too short",
	CodeReferenceTooManyCh: "REFERENCE too many channels",
	CodeUnknownError:       "unknown error",
	CodeInternalValidation: "internal validation failed",
	CodeCancelled:          "processing cancelled",
}

// Message returns the frozen message text for code, or "" if unknown.
func Message(code int) string { return messages[code] }

// Info emits an informational event for code, using the frozen message.
func Info(sink Sink, code int) {
	sink.Emit(Event{Code: code, Level: Level(0), Message: messages[code]})
}

// Warn emits a warning event for code with an additional detail string.
func Warn(sink Sink, code int, detail string) {
	msg := messages[code]
	if detail != "" {
		msg = msg + ": " + detail
	}
	sink.Emit(Event{Code: code, Level: Warning, Message: msg})
}

// Err emits an error event for code with an additional detail string.
func Err(sink Sink, code int, detail string) {
	msg := messages[code]
	if detail != "" {
		msg = msg + ": " + detail
	}
	sink.Emit(Event{Code: code, Level: Error, Message: msg})
}
