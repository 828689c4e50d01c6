// Package ws is the WebSocket transport of the hub. It upgrades HTTP
// requests into persistent duplex connections, runs one read pump per
// connection, dispatches JSON control frames through a type-keyed procedure
// table, and relays binary data frames between the devices of a session.
//
// Writes to a single connection are serialised by a per-connection mutex; a
// download holds that mutex for its whole start/data/complete sequence so no
// other frame can interleave with the stream. Lock order across the hub is
// registry, then session, then connection write, never the reverse.
package ws

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rohitbhushankumariift2022-coder/easeTransfer/internal/logger"
	"github.com/rohitbhushankumariift2022-coder/easeTransfer/pkg/hub"
	"github.com/rohitbhushankumariift2022-coder/easeTransfer/pkg/metrics"
)

// StatsRecorder receives session lifecycle events for the persisted usage
// counters. Implementations must be safe for concurrent use.
type StatsRecorder interface {
	// RecordSessionCreated is called after a successful create_session.
	RecordSessionCreated()

	// RecordSessionJoined is called after a successful join_session.
	RecordSessionJoined()
}

// Adapter owns the WebSocket endpoint. It upgrades requests, tracks the
// resulting connections for draining, and hands each one to its own read
// pump. Mount it on the router at the /ws path.
type Adapter struct {
	reg     *hub.Registry
	cfg     Config
	metrics metrics.HubMetrics
	stats   StatsRecorder

	upgrader websocket.Upgrader

	mu     sync.Mutex
	conns  map[*Conn]struct{}
	closed bool
	wg     sync.WaitGroup
}

// NewAdapter creates the WebSocket adapter. Zero fields of cfg fall back to
// the package defaults. A nil metrics implementation disables
// instrumentation.
func NewAdapter(reg *hub.Registry, cfg Config, m metrics.HubMetrics) *Adapter {
	return &Adapter{
		reg:     reg,
		cfg:     cfg.withDefaults(),
		metrics: m,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The hub serves devices on the local network; pages served
			// from other hosts on the LAN must be able to connect.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		conns: make(map[*Conn]struct{}),
	}
}

// SetStatsRecorder installs the recorder notified on session create and
// join. Call before the adapter starts accepting connections.
func (a *Adapter) SetStatsRecorder(rec StatsRecorder) {
	a.stats = rec
}

// ServeHTTP upgrades the request and serves the connection until it closes.
// The handler blocks for the lifetime of the connection.
func (a *Adapter) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	closed := a.closed
	a.mu.Unlock()
	if closed {
		http.Error(w, "server is shutting down", http.StatusServiceUnavailable)
		return
	}

	socket, err := a.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response.
		logger.Warn("websocket upgrade failed",
			logger.RemoteAddr(r.RemoteAddr),
			logger.Err(err))
		return
	}

	c := newConn(a, socket)
	if !a.track(c) {
		// Shutdown began between the upgrade and the bookkeeping; the
		// device was never registered, so just close the socket.
		deadline := time.Now().Add(a.cfg.WriteTimeout)
		msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server is shutting down")
		_ = socket.WriteControl(websocket.CloseMessage, msg, deadline)
		_ = socket.Close()
		return
	}
	defer a.untrack(c)

	c.serve()
}

// ConnectionCount returns the number of open WebSocket connections.
func (a *Adapter) ConnectionCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.conns)
}

// Shutdown closes every open connection with a going-away close frame and
// waits for their serve loops to finish, or until ctx expires.
func (a *Adapter) Shutdown(ctx context.Context) error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	conns := make([]*Conn, 0, len(a.conns))
	for c := range a.conns {
		conns = append(conns, c)
	}
	a.mu.Unlock()

	logger.Info("draining websocket connections", logger.Devices(len(conns)))
	for _, c := range conns {
		c.shutdown()
	}

	done := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (a *Adapter) track(c *Conn) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return false
	}
	a.conns[c] = struct{}{}
	a.wg.Add(1)
	return true
}

func (a *Adapter) untrack(c *Conn) {
	a.mu.Lock()
	_, ok := a.conns[c]
	if ok {
		delete(a.conns, c)
	}
	a.mu.Unlock()
	if ok {
		a.wg.Done()
	}
}
