// Package mock provides test doubles for the stt package interfaces.
//
// Use Provider to verify that the caller starts sessions with the expected
// StreamConfig. Use Session to inspect which audio chunks were delivered and
// to feed controlled Transcript values to the consumer.
package mock

import (
	"context"
	"errors"
	"sync"

	"github.com/trunkline-ai/trunkline/pkg/provider/stt"
)

// StartStreamCall records a single invocation of Provider.StartStream.
type StartStreamCall struct {
	// Ctx is the context passed to StartStream.
	Ctx context.Context
	// Cfg is the StreamConfig passed to StartStream.
	Cfg stt.StreamConfig
}

// Provider is a mock implementation of stt.Provider.
type Provider struct {
	mu sync.Mutex

	// Session is the SessionHandle returned by StartStream. If nil,
	// StartStream returns a fresh default Session.
	Session stt.SessionHandle

	// StartStreamErr, if non-nil, is returned as the error from StartStream.
	StartStreamErr error

	// StartStreamCalls records every call to StartStream.
	StartStreamCalls []StartStreamCall
}

// StartStream records the call and returns Session, StartStreamErr.
func (p *Provider) StartStream(ctx context.Context, cfg stt.StreamConfig) (stt.SessionHandle, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.StartStreamCalls = append(p.StartStreamCalls, StartStreamCall{Ctx: ctx, Cfg: cfg})
	if p.StartStreamErr != nil {
		return nil, p.StartStreamErr
	}
	if p.Session != nil {
		return p.Session, nil
	}
	return NewSession(), nil
}

// Calls returns a copy of the recorded StartStream invocations. Thread-safe.
func (p *Provider) Calls() []StartStreamCall {
	p.mu.Lock()
	defer p.mu.Unlock()
	calls := make([]StartStreamCall, len(p.StartStreamCalls))
	copy(calls, p.StartStreamCalls)
	return calls
}

// Ensure Provider implements stt.Provider at compile time.
var _ stt.Provider = (*Provider)(nil)

// Session is a mock implementation of stt.SessionHandle. It records every
// audio chunk; tests can push Transcript values through TranscriptsCh.
type Session struct {
	mu sync.Mutex

	// Chunks holds a copy of every audio chunk passed to SendAudio.
	Chunks [][]byte

	// SendAudioErr, if non-nil, is returned by SendAudio.
	SendAudioErr error

	// TranscriptsCh is returned by Transcripts. Closed by Close.
	TranscriptsCh chan stt.Transcript

	closed bool
}

// NewSession returns a Session with a buffered transcript channel.
func NewSession() *Session {
	return &Session{TranscriptsCh: make(chan stt.Transcript, 16)}
}

// SendAudio records a copy of chunk.
func (s *Session) SendAudio(chunk []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errors.New("mock: session is closed")
	}
	if s.SendAudioErr != nil {
		return s.SendAudioErr
	}
	cp := make([]byte, len(chunk))
	copy(cp, chunk)
	s.Chunks = append(s.Chunks, cp)
	return nil
}

// Transcripts returns the session's transcript channel.
func (s *Session) Transcripts() <-chan stt.Transcript { return s.TranscriptsCh }

// Close marks the session closed and closes the transcript channel.
// Calling Close more than once is safe.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.TranscriptsCh)
	}
	return nil
}

// Closed reports whether Close has been called. Thread-safe.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// SentBytes returns the total number of audio bytes delivered. Thread-safe.
func (s *Session) SentBytes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int
	for _, c := range s.Chunks {
		n += len(c)
	}
	return n
}

// Ensure Session implements stt.SessionHandle at compile time.
var _ stt.SessionHandle = (*Session)(nil)
