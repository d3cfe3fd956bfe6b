package mediastream

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/trunkline-ai/trunkline/internal/callstats"
	"github.com/trunkline-ai/trunkline/internal/observe"
	"github.com/trunkline-ai/trunkline/pkg/audio"
	"github.com/trunkline-ai/trunkline/pkg/provider/stt"
	"github.com/trunkline-ai/trunkline/pkg/transcode"
)

// session tracks one media stream from start to stop: its transcoder state,
// the speech engine handle, and the running statistics. All methods are
// called from the connection's read loop, so no locking is needed.
type session struct {
	id      string
	cfg     Config
	sttProv stt.Provider
	store   callstats.Store
	metrics *observe.Metrics
	log     *slog.Logger

	detector audio.SilenceDetector
	tr       *transcode.Session

	handle         stt.SessionHandle
	transcriptDone chan struct{}

	stats   callstats.CallStats
	started bool
	closed  bool
}

func newSession(cfg Config, prov stt.Provider, store callstats.Store, m *observe.Metrics) *session {
	s := &session{
		id:       uuid.NewString(),
		cfg:      cfg,
		sttProv:  prov,
		store:    store,
		metrics:  m,
		detector: audio.SilenceDetector{Threshold: cfg.SilenceThreshold},
	}
	if cfg.Continuity {
		s.tr = transcode.NewSession()
	}
	s.log = slog.Default().With("session_id", s.id)
	return s
}

// start handles the stream's start event: it records identifiers, validates
// the announced format, and opens the speech engine stream.
func (s *session) start(ctx context.Context, p *StartPayload) {
	if s.started {
		s.log.Warn("duplicate start event ignored", "stream_sid", p.StreamSID)
		return
	}
	s.started = true
	s.stats.CallSID = p.CallSID
	s.stats.StreamSID = p.StreamSID
	s.stats.StartedAt = time.Now()
	s.log = s.log.With("call_sid", p.CallSID, "stream_sid", p.StreamSID)

	if p.MediaFormat.Encoding != "" && p.MediaFormat.Encoding != "audio/x-mulaw" {
		s.log.Warn("unexpected media encoding, treating payloads as mulaw",
			"encoding", p.MediaFormat.Encoding,
		)
	}
	if p.MediaFormat.SampleRate != 0 && p.MediaFormat.SampleRate != audio.CarrierSampleRate {
		s.log.Warn("unexpected sample rate",
			"sample_rate", p.MediaFormat.SampleRate,
			"expected", audio.CarrierSampleRate,
		)
	}

	s.log.Info("media stream started",
		"account_sid", p.AccountSID,
		"tracks", p.Tracks,
		"continuity", s.cfg.Continuity,
	)

	if s.sttProv == nil {
		return
	}
	handle, err := s.sttProv.StartStream(ctx, stt.StreamConfig{
		SampleRate: audio.EngineSampleRate,
		CallID:     p.CallSID,
		Language:   s.cfg.Language,
	})
	if err != nil {
		s.log.Error("speech engine stream failed to open, audio will be dropped", "error", err)
		return
	}
	s.handle = handle
	s.transcriptDone = make(chan struct{})
	go s.pumpTranscripts(ctx)
}

// pumpTranscripts drains the speech engine's transcript channel until the
// provider closes it.
func (s *session) pumpTranscripts(ctx context.Context) {
	defer close(s.transcriptDone)
	for tr := range s.handle.Transcripts() {
		s.metrics.RecordTranscript(ctx, tr.IsFinal)
		s.log.Info("transcript",
			"final", tr.IsFinal,
			"confidence", tr.Confidence,
			"text", tr.Text,
		)
	}
}

// media transcodes one frame and forwards it to the speech engine. Malformed
// payloads are dropped; the stream keeps going.
func (s *session) media(ctx context.Context, m *MediaPayload) {
	s.stats.FramesReceived++

	begin := time.Now()
	var (
		pcm []int16
		err error
	)
	if s.tr != nil {
		pcm, err = s.tr.Frame(m.Payload)
	} else {
		pcm, err = transcode.Frame(m.Payload)
	}
	if err != nil {
		s.stats.FramesDropped++
		s.metrics.RecordDrop(ctx, "malformed")
		if errors.Is(err, transcode.ErrMalformedPayload) {
			s.log.Warn("malformed media payload dropped", "chunk", m.Chunk, "error", err)
		} else {
			s.log.Error("transcode failed", "chunk", m.Chunk, "error", err)
		}
		return
	}
	s.metrics.TranscodeDuration.Record(ctx, time.Since(begin).Seconds())

	if len(pcm) == 0 {
		return
	}

	silent := s.detector.IsSilent(pcm)
	if silent {
		s.stats.FramesSilent++
		s.metrics.RecordSilent(ctx)
	}
	s.metrics.RecordFrame(ctx, m.Track)

	if silent && s.cfg.DropSilentFrames {
		s.stats.FramesDropped++
		s.metrics.RecordDrop(ctx, "silent")
		return
	}
	if s.handle == nil {
		s.stats.FramesDropped++
		s.metrics.RecordDrop(ctx, "stt_closed")
		return
	}

	buf := audio.PCMBytes(pcm)
	begin = time.Now()
	if err := s.handle.SendAudio(buf); err != nil {
		s.stats.FramesDropped++
		s.metrics.RecordDrop(ctx, "stt_closed")
		s.log.Warn("speech engine rejected audio", "error", err)
		return
	}
	s.metrics.STTDeliveryDuration.Record(ctx, time.Since(begin).Seconds())
	s.stats.BytesForwarded += int64(len(buf))
	s.metrics.RecordForwarded(ctx, len(buf))
}

// stop finalises the session: it closes the speech engine stream, waits for
// remaining transcripts, and persists the stats. Safe to call twice; the
// second call is a no-op.
func (s *session) stop(ctx context.Context) {
	if s.closed {
		return
	}
	s.closed = true
	s.stats.EndedAt = time.Now()

	if s.handle != nil {
		if err := s.handle.Close(); err != nil {
			s.log.Warn("speech engine close", "error", err)
		}
		<-s.transcriptDone
	}

	if s.started && s.store != nil {
		// The request context is already cancelled when the carrier drops
		// the connection; stats still have to land.
		if err := s.store.Record(context.WithoutCancel(ctx), &s.stats); err != nil {
			s.log.Error("failed to persist call stats", "error", err)
		}
	}

	s.log.Info("media stream ended",
		"frames_received", s.stats.FramesReceived,
		"frames_dropped", s.stats.FramesDropped,
		"frames_silent", s.stats.FramesSilent,
		"bytes_forwarded", s.stats.BytesForwarded,
		"duration", s.stats.EndedAt.Sub(s.stats.StartedAt),
	)
}
