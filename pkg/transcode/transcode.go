// Package transcode converts carrier media-stream frames into the PCM format
// required by speech engines: base64 G.711 µ-law at 8 kHz in, signed 16-bit
// linear PCM at 16 kHz out.
//
// [Frame] is a pure, independent transformation with no cross-frame state,
// which makes it safe to run concurrently for any number of simultaneous
// calls without synchronisation. Per-call frame ordering is the caller's
// responsibility; the pipeline itself never reorders.
//
// Silence detection is not part of this path. Callers that want
// to avoid forwarding silent frames to a billed speech API should run
// [audio.SilenceDetector] on the returned buffer themselves.
package transcode

import (
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/trunkline-ai/trunkline/pkg/audio"
)

// ErrMalformedPayload is returned when a frame's base64 payload cannot be
// decoded. It is the only error this package can produce: every byte value is
// a valid µ-law code, so decode and upsample are total. Callers should drop
// the offending frame and continue the call.
var ErrMalformedPayload = errors.New("transcode: malformed base64 payload")

// Frame transcodes one base64-encoded µ-law frame into 16 kHz PCM samples.
// The output contains exactly two samples per encoded input byte. An empty
// payload yields an empty buffer and no error.
func Frame(payload string) ([]int16, error) {
	raw, err := decodeBase64(payload)
	if err != nil {
		return nil, err
	}
	return FrameBytes(raw), nil
}

// decodeBase64 decodes a frame payload, wrapping failures in
// [ErrMalformedPayload] so callers can match with errors.Is.
func decodeBase64(payload string) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return raw, nil
}

// FrameBytes transcodes raw µ-law bytes into 16 kHz PCM samples, skipping the
// base64 layer. Useful for transports that deliver binary frames directly.
func FrameBytes(mulaw []byte) []int16 {
	return audio.Upsample8kTo16k(audio.DecodeMuLaw(mulaw))
}

// Outbound is the reverse path: 16 kHz PCM (e.g. synthesised agent speech)
// down to 8 kHz, compressed to µ-law and base64-encoded for the carrier.
func Outbound(pcm16k []int16) string {
	mulaw := audio.EncodeMuLaw(audio.Downsample16kTo8k(pcm16k))
	return base64.StdEncoding.EncodeToString(mulaw)
}
