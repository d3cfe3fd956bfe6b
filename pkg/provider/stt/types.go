package stt

import "time"

// Transcript is one speech-to-text delta for a call. Interim and final
// results share this type.
type Transcript struct {
	// Text is the transcribed speech content.
	Text string

	// IsFinal indicates an authoritative result. Interim deltas may be
	// revised by later messages and must not be persisted as-is.
	IsFinal bool

	// Confidence is the provider's confidence score (0.0–1.0). Zero when
	// the provider does not report one.
	Confidence float64

	// Timestamp marks when the utterance started, relative to stream start.
	Timestamp time.Duration

	// Duration is the length of the utterance, when reported.
	Duration time.Duration
}
