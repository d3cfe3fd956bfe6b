// Package callstats persists per-call media statistics: how many frames a
// stream carried, how many were dropped or silent, and how many PCM bytes
// reached the speech engine. Stats are written once, when the stream ends.
package callstats

import (
	"context"
	"time"
)

// CallStats is the per-stream summary recorded when a media stream closes.
type CallStats struct {
	// CallSID is the carrier's call identifier.
	CallSID string

	// StreamSID identifies the media stream within the call. Unique per
	// stream; used as the primary key.
	StreamSID string

	// StartedAt is when the stream's start event arrived.
	StartedAt time.Time

	// EndedAt is when the stream closed.
	EndedAt time.Time

	// FramesReceived counts media frames received from the carrier.
	FramesReceived int64

	// FramesDropped counts frames discarded before reaching the speech
	// engine, for any reason.
	FramesDropped int64

	// FramesSilent counts frames classified as silent.
	FramesSilent int64

	// BytesForwarded counts PCM bytes delivered to the speech engine.
	BytesForwarded int64
}

// Store persists call statistics. Implementations must be safe for
// concurrent use.
type Store interface {
	// Record persists the stats for a finished stream. Recording the same
	// StreamSID twice replaces the earlier row.
	Record(ctx context.Context, stats *CallStats) error

	// Ping reports whether the backing store is reachable.
	Ping(ctx context.Context) error

	// Close releases any resources held by the store.
	Close()
}
