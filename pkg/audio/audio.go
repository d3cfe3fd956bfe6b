// Package audio provides the signal-processing primitives for the Trunkline
// telephony media core: G.711 µ-law expansion and compression, 8 kHz ↔ 16 kHz
// resampling, and RMS-based silence classification.
//
// Everything in this package operates on mono 16-bit PCM represented as
// []int16. All functions are pure, with no shared mutable state, so they are
// safe to call concurrently from any number of call sessions. [PCMBytes] and
// [PCMSamples] convert to and from the little-endian byte layout expected by
// speech engines.
package audio

import "encoding/binary"

const (
	// CarrierSampleRate is the sample rate of audio arriving from the
	// telephone carrier (G.711 µ-law, one byte per sample).
	CarrierSampleRate = 8000

	// EngineSampleRate is the sample rate expected by downstream
	// speech-recognition engines.
	EngineSampleRate = 16000
)

// PCMBytes packs samples into little-endian 16-bit PCM bytes, the wire layout
// consumed by speech-to-text clients.
func PCMBytes(samples []int16) []byte {
	buf := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(s))
	}
	return buf
}

// PCMSamples unpacks little-endian 16-bit PCM bytes into samples. A trailing
// odd byte is ignored.
func PCMSamples(pcm []byte) []int16 {
	samples := make([]int16, len(pcm)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(pcm[i*2:]))
	}
	return samples
}
