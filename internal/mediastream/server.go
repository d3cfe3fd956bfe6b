package mediastream

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/coder/websocket"

	"github.com/trunkline-ai/trunkline/internal/callstats"
	"github.com/trunkline-ai/trunkline/internal/observe"
	"github.com/trunkline-ai/trunkline/pkg/provider/stt"
)

// Config holds the per-stream processing settings for the media endpoint.
type Config struct {
	// Continuity enables stateful upsampling across frame boundaries.
	Continuity bool

	// DropSilentFrames skips speech engine delivery for silent frames.
	DropSilentFrames bool

	// SilenceThreshold is the RMS silence threshold. Zero selects the
	// built-in default.
	SilenceThreshold float64

	// Language is the recognition language hint passed to the speech engine.
	Language string
}

// Server accepts carrier media-stream WebSocket connections and runs one
// [session] per connection.
type Server struct {
	cfg     Config
	stt     stt.Provider
	store   callstats.Store
	metrics *observe.Metrics
}

// New creates a media stream server. prov may be nil, in which case audio is
// transcoded and classified but not forwarded anywhere. store may be nil to
// disable stats persistence; metrics nil selects [observe.DefaultMetrics].
func New(cfg Config, prov stt.Provider, store callstats.Store, m *observe.Metrics) *Server {
	if m == nil {
		m = observe.DefaultMetrics()
	}
	return &Server{cfg: cfg, stt: prov, store: store, metrics: m}
}

// ServeHTTP upgrades the request to a WebSocket and serves the media stream
// until the carrier sends stop or the connection drops.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		observe.Logger(r.Context()).Warn("websocket accept failed", "error", err)
		return
	}
	defer conn.Close(websocket.StatusInternalError, "stream aborted")

	s.serve(r.Context(), conn)
}

// serve runs the read loop for one connection. Events are dispatched in
// arrival order; this is what preserves per-call frame ordering.
func (s *Server) serve(ctx context.Context, conn *websocket.Conn) {
	s.metrics.ActiveCalls.Add(ctx, 1)
	defer s.metrics.ActiveCalls.Add(ctx, -1)

	sess := newSession(s.cfg, s.stt, s.store, s.metrics)
	defer sess.stop(ctx)

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			sess.log.Debug("connection closed", "error", err)
			return
		}

		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			sess.log.Warn("undecodable message ignored", "error", err)
			continue
		}

		switch env.Event {
		case EventConnected:
			sess.log.Debug("carrier connected")
		case EventStart:
			if env.Start != nil {
				sess.start(ctx, env.Start)
			}
		case EventMedia:
			if env.Media != nil {
				sess.media(ctx, env.Media)
			}
		case EventMark:
			if env.Mark != nil {
				sess.log.Debug("mark received", "name", env.Mark.Name)
			}
		case EventStop:
			sess.stop(ctx)
			conn.Close(websocket.StatusNormalClosure, "")
			return
		default:
			sess.log.Debug("unknown event ignored", "event", env.Event)
		}
	}
}
