// Package metrics defines the instrumentation points the hub reports into
// and owns the process-wide Prometheus registry. Every interface in this
// package is optional: pass nil to disable collection with zero overhead.
package metrics

// HubMetrics provides observability for the session and transfer hub.
//
// Implementations collect connection lifecycle, session lifecycle, frame
// traffic, and transfer throughput. This interface is optional - pass nil to
// disable metrics collection with zero overhead.
//
// Example usage:
//
//	// With metrics enabled
//	metrics.InitRegistry()
//	hubMetrics := prometheus.NewHubMetrics()
//	adapter := ws.NewAdapter(reg, cfg, hubMetrics)
//
//	// Without metrics (pass nil for zero overhead)
//	adapter := ws.NewAdapter(reg, cfg, nil)
type HubMetrics interface {
	// ConnectionOpened increments the open connection gauge and the total
	// accepted counter. Called when a transport finishes its upgrade.
	ConnectionOpened()

	// ConnectionClosed decrements the open connection gauge.
	ConnectionClosed()

	// SessionCreated records a create_session that succeeded.
	SessionCreated()

	// SessionJoined records a join_session that succeeded.
	SessionJoined()

	// SessionDestroyed records a session reclaimed by the janitor.
	SessionDestroyed()

	// FrameReceived records one inbound control frame by its type tag.
	// Binary data frames are recorded under the pseudo-type "binary".
	FrameReceived(frameType string)

	// FrameDropped records an inbound frame the hub refused to act on.
	//
	// Parameters:
	//   - reason: "malformed", "unknown_type", "wrong_state",
	//     "unknown_file", "size_exceeded", "size_mismatch" or "short_frame"
	FrameDropped(reason string)

	// UploadChunk records one ingested upload chunk and its payload size.
	UploadChunk(bytes int)

	// DownloadChunk records one emitted download chunk and its payload size.
	DownloadChunk(bytes int)

	// FileSealed records a completed upload and its final size.
	FileSealed(bytes int64)

	// FileExpired records a file reclaimed by the janitor at TTL.
	FileExpired()

	// Broadcast records one fan-out and the number of devices reached.
	Broadcast(recipients int)
}
