package transcode

import "github.com/trunkline-ai/trunkline/pkg/audio"

// Session is the stateful variant of [Frame] for callers that want continuity
// across frame boundaries. The stateless path duplicates each frame's final
// sample, which can produce a small audible click where frames join; a
// Session carries the last 8 kHz sample of the previous frame and
// interpolates the next frame's leading samples against it instead.
//
// Each call session must own its own Session value. State is per call, never
// shared, which preserves the lock-free concurrency of the stateless path.
// A Session is not safe for concurrent use by multiple goroutines.
type Session struct {
	last   int16
	primed bool
}

// NewSession returns a Session ready for the first frame of a call.
func NewSession() *Session {
	return &Session{}
}

// Frame transcodes one base64-encoded µ-law frame like [Frame], carrying the
// trailing sample into the next call. The first frame of a session behaves
// exactly like the stateless path. Output length is always twice the encoded
// input byte count, so per-frame accounting matches the stateless pipeline.
func (s *Session) Frame(payload string) ([]int16, error) {
	pcm8k, err := decodePayload(payload)
	if err != nil {
		return nil, err
	}
	if len(pcm8k) == 0 {
		return nil, nil
	}

	var out []int16
	if s.primed {
		out = audio.UpsampleContinuous(s.last, pcm8k)
	} else {
		out = audio.Upsample8kTo16k(pcm8k)
	}
	s.last = pcm8k[len(pcm8k)-1]
	s.primed = true
	return out, nil
}

// Reset clears the carried sample, e.g. after an audible gap in the stream
// where interpolating across the discontinuity would be wrong.
func (s *Session) Reset() {
	s.last = 0
	s.primed = false
}

// decodePayload base64-decodes and µ-law-expands a frame payload.
func decodePayload(payload string) ([]int16, error) {
	raw, err := decodeBase64(payload)
	if err != nil {
		return nil, err
	}
	return audio.DecodeMuLaw(raw), nil
}
