// Package mediastream implements the carrier-facing WebSocket endpoint.
//
// Carriers connect one WebSocket per call leg and send JSON envelopes in the
// media-stream dialect used by Twilio and compatible SIP gateways: a
// "connected" handshake, a "start" event describing the stream, a "media"
// event per 20 ms audio frame, optional "mark" events, and a final "stop".
// Audio payloads are base64-encoded G.711 µ-law at 8 kHz.
//
// Frames are processed in arrival order on the connection's read loop, which
// keeps the per-call ordering guarantee without extra synchronisation.
package mediastream

// Envelope is the top-level JSON message exchanged on a media stream. Only
// the field matching Event is populated.
type Envelope struct {
	// Event discriminates the message: "connected", "start", "media",
	// "mark", or "stop".
	Event string `json:"event"`

	// SequenceNumber is a monotonically increasing message counter assigned
	// by the carrier, transmitted as a decimal string.
	SequenceNumber string `json:"sequenceNumber,omitempty"`

	// StreamSID identifies the stream on media, mark, and stop events.
	StreamSID string `json:"streamSid,omitempty"`

	Start *StartPayload `json:"start,omitempty"`
	Media *MediaPayload `json:"media,omitempty"`
	Stop  *StopPayload  `json:"stop,omitempty"`
	Mark  *MarkPayload  `json:"mark,omitempty"`
}

// Media stream event names.
const (
	EventConnected = "connected"
	EventStart     = "start"
	EventMedia     = "media"
	EventMark      = "mark"
	EventStop      = "stop"
)

// MediaFormat describes the audio encoding announced in the start event.
type MediaFormat struct {
	// Encoding is the codec name, "audio/x-mulaw" for G.711 µ-law.
	Encoding string `json:"encoding"`

	// SampleRate is the source sample rate in Hz, 8000 for telephony.
	SampleRate int `json:"sampleRate"`

	// Channels is the channel count, always 1 for call audio.
	Channels int `json:"channels"`
}

// StartPayload announces a new media stream and its format.
type StartPayload struct {
	AccountSID  string      `json:"accountSid"`
	CallSID     string      `json:"callSid"`
	StreamSID   string      `json:"streamSid"`
	Tracks      []string    `json:"tracks"`
	MediaFormat MediaFormat `json:"mediaFormat"`

	// CustomParameters carries key-value pairs set by the carrier when the
	// stream was provisioned.
	CustomParameters map[string]string `json:"customParameters,omitempty"`
}

// MediaPayload carries one audio frame.
type MediaPayload struct {
	// Track is "inbound" or "outbound" relative to the call.
	Track string `json:"track"`

	// Chunk is a per-track frame counter, transmitted as a decimal string.
	Chunk string `json:"chunk"`

	// Timestamp is the frame's offset from stream start in milliseconds,
	// transmitted as a decimal string.
	Timestamp string `json:"timestamp"`

	// Payload is the base64-encoded µ-law audio.
	Payload string `json:"payload"`
}

// StopPayload closes the stream.
type StopPayload struct {
	AccountSID string `json:"accountSid"`
	CallSID    string `json:"callSid"`
}

// MarkPayload is a carrier-side playback checkpoint.
type MarkPayload struct {
	Name string `json:"name"`
}
