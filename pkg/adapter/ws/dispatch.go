package ws

import (
	"context"
	"encoding/json"

	"github.com/rohitbhushankumariift2022-coder/easeTransfer/internal/logger"
	"github.com/rohitbhushankumariift2022-coder/easeTransfer/internal/telemetry"
	"github.com/rohitbhushankumariift2022-coder/easeTransfer/pkg/protocol"
)

// Drop reasons recorded when an inbound frame is refused. They match the
// label values documented on metrics.HubMetrics.FrameDropped.
const (
	dropMalformed    = "malformed"
	dropUnknownType  = "unknown_type"
	dropWrongState   = "wrong_state"
	dropUnknownFile  = "unknown_file"
	dropSizeExceeded = "size_exceeded"
	dropSizeMismatch = "size_mismatch"
	dropShortFrame   = "short_frame"
)

// procedureHandler processes one decoded control frame on its connection's
// read pump. Handlers never return errors: every client mistake is answered
// on the wire or dropped, and only transport failures end the connection.
type procedureHandler func(ctx context.Context, c *Conn, in *protocol.Inbound)

// procedure describes one control frame type.
type procedure struct {
	Name    string
	Handler procedureHandler

	// NeedsSession restricts the frame to connections in a session.
	// Frames arriving earlier are dropped without disconnecting.
	NeedsSession bool
}

// controlDispatch maps the "type" tag of inbound control frames to their
// procedures.
var controlDispatch map[string]*procedure

func init() {
	controlDispatch = map[string]*procedure{
		protocol.TypeCreateSession: {
			Name:    protocol.TypeCreateSession,
			Handler: handleCreateSession,
		},
		protocol.TypeJoinSession: {
			Name:    protocol.TypeJoinSession,
			Handler: handleJoinSession,
		},
		protocol.TypeFileStart: {
			Name:         protocol.TypeFileStart,
			Handler:      handleFileStart,
			NeedsSession: true,
		},
		protocol.TypeFileComplete: {
			Name:         protocol.TypeFileComplete,
			Handler:      handleFileComplete,
			NeedsSession: true,
		},
		protocol.TypeRequestFile: {
			Name:         protocol.TypeRequestFile,
			Handler:      handleRequestFile,
			NeedsSession: true,
		},
		protocol.TypeDeleteFile: {
			Name:         protocol.TypeDeleteFile,
			Handler:      handleDeleteFile,
			NeedsSession: true,
		},
		protocol.TypePing: {
			Name:    protocol.TypePing,
			Handler: handlePing,
		},
	}
}

// dispatch decodes one text frame and routes it through the procedure
// table. Malformed and unknown frames are dropped without disconnecting;
// the protocol tolerates anything except transport failure.
func (c *Conn) dispatch(frame []byte) {
	var in protocol.Inbound
	if err := json.Unmarshal(frame, &in); err != nil {
		c.dropFrame("malformed control frame", dropMalformed,
			logger.FrameSize(len(frame)), logger.Err(err))
		return
	}

	proc, ok := controlDispatch[in.Type]
	if !ok {
		c.dropFrame("unknown control frame type", dropUnknownType,
			logger.Frame(in.Type))
		return
	}

	if m := c.adapter.metrics; m != nil {
		m.FrameReceived(in.Type)
	}

	if proc.NeedsSession && c.State() != StateInSession {
		c.dropFrame("control frame requires a session", dropWrongState,
			logger.Frame(in.Type))
		return
	}

	ctx, span := telemetry.StartFrameSpan(c.context(), in.Type,
		telemetry.ClientAddr(c.RemoteAddr()),
		telemetry.FrameSize(len(frame)))
	defer span.End()

	proc.Handler(ctx, c, &in)
}

// dropFrame records a refused frame and logs why. The connection stays
// open.
func (c *Conn) dropFrame(msg, reason string, attrs ...any) {
	if m := c.adapter.metrics; m != nil {
		m.FrameDropped(reason)
	}
	logger.WarnCtx(c.context(), msg, attrs...)
}

// dropQuiet records a silently dropped frame. Used for file-scoped frames
// naming unknown ids, which get no reply and no warning: the file may
// simply have expired under the sender.
func (c *Conn) dropQuiet(msg, reason string, attrs ...any) {
	if m := c.adapter.metrics; m != nil {
		m.FrameDropped(reason)
	}
	logger.DebugCtx(c.context(), msg, attrs...)
}
