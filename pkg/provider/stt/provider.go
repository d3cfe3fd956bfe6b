// Package stt defines the Provider interface for streaming speech-to-text
// backends consuming the transcoded call audio.
//
// The pipeline hands each call's 16 kHz linear PCM to one SessionHandle per
// call; the provider returns transcript deltas asynchronously on a channel.
// Model inference itself is entirely the provider's concern; this package
// only fixes the contract between the media core and the speech engine.
//
// Implementations must be safe for concurrent use: many calls stream
// simultaneously, each through its own session.
package stt

import "context"

// StreamConfig describes one call's audio stream for a new STT session.
type StreamConfig struct {
	// SampleRate is the PCM sample rate in Hz. The transcoding pipeline
	// always produces 16000; providers may support other rates for direct
	// pass-through deployments.
	SampleRate int

	// CallID correlates transcripts with the originating call. Providers
	// include it in logging and may tag their own session metadata with it.
	CallID string

	// Language is the BCP-47 recognition language (e.g. "en-US"). Empty
	// lets the provider use its default or auto-detect.
	Language string
}

// SessionHandle is an open streaming transcription session for one call.
//
// Callers must call Close when the call ends; failing to do so may leak
// goroutines and network connections inside the provider. All methods are
// safe for concurrent use.
type SessionHandle interface {
	// SendAudio delivers a chunk of little-endian 16-bit PCM at the
	// configured sample rate. Chunks must be sent in call order. Calling
	// SendAudio after Close returns an error.
	SendAudio(chunk []byte) error

	// Transcripts returns the channel of transcript deltas for this call,
	// both interim and final (see Transcript.IsFinal). The channel is
	// closed when the session ends.
	Transcripts() <-chan Transcript

	// Close flushes pending audio, terminates the session, and closes the
	// Transcripts channel. Calling Close more than once is safe.
	Close() error
}

// Provider is the abstraction over any streaming STT backend.
type Provider interface {
	// StartStream opens a new transcription session. The returned handle
	// accepts audio immediately. Returns an error if the session cannot
	// be established (authentication, unsupported config, ctx cancelled).
	StartStream(ctx context.Context, cfg StreamConfig) (SessionHandle, error)
}
