package ws

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rohitbhushankumariift2022-coder/easeTransfer/internal/logger"
	"github.com/rohitbhushankumariift2022-coder/easeTransfer/pkg/hub"
	"github.com/rohitbhushankumariift2022-coder/easeTransfer/pkg/protocol"
)

// State is the protocol position of one connection.
type State int32

const (
	// StateUnregistered is the state after upgrade: a device id exists but
	// the device has not created or joined a session. Only create_session,
	// join_session and ping are accepted.
	StateUnregistered State = iota

	// StateInSession accepts the full protocol, including binary frames.
	StateInSession

	// StateClosed is terminal; the leave path has run.
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateUnregistered:
		return "unregistered"
	case StateInSession:
		return "in_session"
	case StateClosed:
		return "closed"
	default:
		return "invalid"
	}
}

// Conn is one upgraded device connection. It implements hub.Conn so the
// session broadcaster and the janitor can push frames to it.
type Conn struct {
	adapter *Adapter
	ws      *websocket.Conn
	device  *hub.Device

	// writeMu serialises every write to the socket. A download stream
	// holds it from file_download_start through file_download_complete so
	// no broadcast can interleave with the data frames.
	writeMu sync.Mutex

	mu      sync.Mutex
	state   State
	session *hub.Session
	ctx     context.Context

	closeOnce sync.Once
	done      chan struct{}
}

// newConn wraps a freshly upgraded socket and mints the device identity
// that lives for the lifetime of the connection.
func newConn(a *Adapter, socket *websocket.Conn) *Conn {
	c := &Conn{
		adapter: a,
		ws:      socket,
		done:    make(chan struct{}),
	}
	c.device = hub.NewDevice(hub.NewDeviceID(), c)

	lc := logger.NewLogContext(socket.RemoteAddr().String())
	lc.DeviceID = c.device.ID
	c.ctx = logger.WithContext(context.Background(), lc)
	return c
}

// serve registers the device, runs the read pump to completion and tears
// the connection down. It blocks until the connection is closed.
func (c *Conn) serve() {
	a := c.adapter
	a.reg.RegisterDevice(c.device)
	if a.metrics != nil {
		a.metrics.ConnectionOpened()
	}
	logger.InfoCtx(c.context(), "device connected",
		logger.Devices(a.reg.DeviceCount()))

	go c.pingLoop()
	c.readPump()
	c.close()
}

// Send delivers one serialised control frame to the device. It implements
// hub.Conn for broadcast fan-out.
func (c *Conn) Send(frame []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.writeLocked(websocket.TextMessage, frame)
}

// RemoteAddr reports the peer address of the socket.
func (c *Conn) RemoteAddr() string {
	return c.ws.RemoteAddr().String()
}

// writeLocked writes one frame under writeMu, which the caller holds.
func (c *Conn) writeLocked(messageType int, data []byte) error {
	_ = c.ws.SetWriteDeadline(time.Now().Add(c.adapter.cfg.WriteTimeout))
	return c.ws.WriteMessage(messageType, data)
}

// sendFrame serialises and sends one control frame, logging on failure.
// The connection's close path deals with broken sockets; handlers treat
// sends as fire-and-forget.
func (c *Conn) sendFrame(frame any) {
	raw, err := protocol.Encode(frame)
	if err != nil {
		logger.ErrorCtx(c.context(), "control frame encoding failed", logger.Err(err))
		return
	}
	if err := c.Send(raw); err != nil {
		logger.DebugCtx(c.context(), "control frame send failed", logger.Err(err))
	}
}

// readPump consumes frames until the socket errors or is closed. Text
// frames go through the control dispatch table, binary frames to the upload
// path. Each successful read refreshes the idle deadline, as does every
// pong answering the keepalive pings.
func (c *Conn) readPump() {
	cfg := c.adapter.cfg
	c.ws.SetReadLimit(cfg.MaxFrameSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(cfg.ReadIdleTimeout))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(cfg.ReadIdleTimeout))
	})

	for {
		messageType, frame, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseNoStatusReceived) {
				logger.DebugCtx(c.context(), "connection read failed", logger.Err(err))
			}
			return
		}
		_ = c.ws.SetReadDeadline(time.Now().Add(cfg.ReadIdleTimeout))

		switch messageType {
		case websocket.TextMessage:
			c.dispatch(frame)
		case websocket.BinaryMessage:
			c.handleBinary(frame)
		}
	}
}

// pingLoop sends transport-level pings so dead peers trip the read idle
// timeout instead of holding session membership forever. WriteControl is
// safe to call concurrently with the data writes under writeMu.
func (c *Conn) pingLoop() {
	ticker := time.NewTicker(c.adapter.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			deadline := time.Now().Add(c.adapter.cfg.WriteTimeout)
			if err := c.ws.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				logger.DebugCtx(c.context(), "keepalive ping failed", logger.Err(err))
				return
			}
		case <-c.done:
			return
		}
	}
}

// shutdown closes the connection from the server side, announcing the
// close to the peer first. Used when the adapter drains.
func (c *Conn) shutdown() {
	deadline := time.Now().Add(c.adapter.cfg.WriteTimeout)
	msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
	_ = c.ws.WriteControl(websocket.CloseMessage, msg, deadline)
	c.close()
}

// close runs the teardown exactly once: mark the state terminal, close the
// socket, leave the session with a device_left broadcast to the remaining
// members, and unregister the device.
func (c *Conn) close() {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.state = StateClosed
		c.mu.Unlock()
		close(c.done)
		_ = c.ws.Close()

		c.leave()

		c.adapter.reg.UnregisterDevice(c.device.ID)
		if m := c.adapter.metrics; m != nil {
			m.ConnectionClosed()
		}
		lc := logger.FromContext(c.context())
		logger.InfoCtx(c.context(), "device disconnected",
			logger.Devices(c.adapter.reg.DeviceCount()),
			logger.DurationMs(lc.DurationMs()))
	})
}

// leave removes the device from its session, if any, and announces the
// departure to the remaining members.
func (c *Conn) leave() {
	s, remaining, err := c.adapter.reg.Leave(c.device.ID)
	if err != nil || s == nil {
		return
	}

	logger.InfoCtx(c.context(), "device left session", logger.Devices(remaining))
	if remaining == 0 {
		return
	}

	frame, err := protocol.Encode(protocol.DeviceLeft{
		Type:         protocol.TypeDeviceLeft,
		DeviceID:     c.device.ID,
		TotalDevices: remaining,
	})
	if err != nil {
		logger.ErrorCtx(c.context(), "device_left encoding failed", logger.Err(err))
		return
	}
	recipients := s.Broadcast(frame, c.device.ID)
	if m := c.adapter.metrics; m != nil {
		m.Broadcast(recipients)
	}
}

// context returns the connection's logging context, which gains device and
// session fields as the device registers.
func (c *Conn) context() context.Context {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ctx
}

// State returns the connection's protocol state.
func (c *Conn) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Session returns the session the connection belongs to, or nil.
func (c *Conn) Session() *hub.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// setInSession moves the connection into a session. It reports false when
// the connection closed while the registry insert was in flight, in which
// case the caller must undo the membership so the session does not leak a
// dead device.
func (c *Conn) setInSession(s *hub.Session) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateClosed {
		return false
	}
	c.state = StateInSession
	c.session = s

	lc := logger.FromContext(c.ctx).WithDevice(c.device.ID, c.device.Name()).WithSession(s.Code())
	c.ctx = logger.WithContext(c.ctx, lc)
	return true
}
