package ws

import (
	"context"
	"errors"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rohitbhushankumariift2022-coder/easeTransfer/internal/logger"
	"github.com/rohitbhushankumariift2022-coder/easeTransfer/internal/telemetry"
	"github.com/rohitbhushankumariift2022-coder/easeTransfer/pkg/hub"
	"github.com/rohitbhushankumariift2022-coder/easeTransfer/pkg/protocol"
)

// handleCreateSession opens a new session with the sender as its first
// member and replies with the join code.
func handleCreateSession(ctx context.Context, c *Conn, in *protocol.Inbound) {
	if c.State() != StateUnregistered {
		c.dropFrame("create_session while already in a session", dropWrongState,
			logger.Frame(in.Type))
		return
	}

	name := hub.NormalizeDeviceName(in.DeviceName, c.adapter.cfg.MaxDeviceName)
	dtype := hub.NormalizeDeviceType(in.DeviceType)
	c.device.SetIdentity(name, dtype)

	s, err := c.adapter.reg.Create(c.device)
	if err != nil {
		if errors.Is(err, hub.ErrAlreadyInSession) {
			c.dropFrame("create_session for a device already in a session", dropWrongState,
				logger.Err(err))
			return
		}
		telemetry.RecordError(ctx, err)
		logger.ErrorCtx(ctx, "session creation failed", logger.Err(err))
		c.sendFrame(protocol.SessionError{
			Type:  protocol.TypeSessionError,
			Error: "Failed to create session",
		})
		return
	}
	telemetry.SetAttributes(ctx,
		telemetry.SessionCode(s.Code()),
		telemetry.DeviceID(c.device.ID),
		telemetry.DeviceType(dtype))

	if !c.setInSession(s) {
		// The connection closed while the create was in flight; undo the
		// membership so the empty session is reclaimed right away.
		c.adapter.reg.Leave(c.device.ID)
		return
	}

	if m := c.adapter.metrics; m != nil {
		m.SessionCreated()
	}
	if rec := c.adapter.stats; rec != nil {
		rec.RecordSessionCreated()
	}
	logger.InfoCtx(c.context(), "session created",
		logger.DeviceName(name),
		logger.DeviceTypeAttr(dtype),
		logger.Sessions(c.adapter.reg.SessionCount()))

	c.sendFrame(protocol.SessionCreated{
		Type:             protocol.TypeSessionCreated,
		SessionCode:      s.Code(),
		DeviceID:         c.device.ID,
		ConnectedDevices: s.DeviceCount(),
	})
}

// handleJoinSession adds the sender to an existing session, catches it up
// on the session's sealed files, and announces it to the members already
// there. An unknown code answers session_error and leaves the connection
// open for another attempt.
func handleJoinSession(ctx context.Context, c *Conn, in *protocol.Inbound) {
	if c.State() != StateUnregistered {
		c.dropFrame("join_session while already in a session", dropWrongState,
			logger.Frame(in.Type))
		return
	}

	name := hub.NormalizeDeviceName(in.DeviceName, c.adapter.cfg.MaxDeviceName)
	dtype := hub.NormalizeDeviceType(in.DeviceType)
	c.device.SetIdentity(name, dtype)

	s, err := c.adapter.reg.Join(in.SessionCode, c.device)
	if err != nil {
		if errors.Is(err, hub.ErrSessionNotFound) {
			logger.InfoCtx(ctx, "join for unknown session code",
				logger.SessionCode(in.SessionCode))
			c.sendFrame(protocol.SessionError{
				Type:  protocol.TypeSessionError,
				Error: "Session not found",
			})
			return
		}
		c.dropFrame("join_session rejected", dropWrongState, logger.Err(err))
		return
	}
	telemetry.SetAttributes(ctx,
		telemetry.SessionCode(s.Code()),
		telemetry.DeviceID(c.device.ID),
		telemetry.DeviceType(dtype))

	if !c.setInSession(s) {
		c.adapter.reg.Leave(c.device.ID)
		return
	}

	if m := c.adapter.metrics; m != nil {
		m.SessionJoined()
	}
	if rec := c.adapter.stats; rec != nil {
		rec.RecordSessionJoined()
	}
	logger.InfoCtx(c.context(), "device joined session",
		logger.DeviceName(name),
		logger.DeviceTypeAttr(dtype),
		logger.Devices(s.DeviceCount()))

	c.sendFrame(protocol.SessionJoined{
		Type:             protocol.TypeSessionJoined,
		SessionCode:      s.Code(),
		DeviceID:         c.device.ID,
		ConnectedDevices: s.DeviceCount(),
	})

	// Only sealed files are advertised; open uploads cannot be downloaded.
	if files := s.Files().Catalog(); len(files) > 0 {
		c.sendFrame(protocol.ExistingFiles{
			Type:  protocol.TypeExistingFiles,
			Files: files,
		})
	}

	frame, err := protocol.Encode(protocol.DeviceJoined{
		Type:         protocol.TypeDeviceJoined,
		DeviceID:     c.device.ID,
		DeviceName:   name,
		DeviceType:   dtype,
		TotalDevices: s.DeviceCount(),
	})
	if err != nil {
		logger.ErrorCtx(c.context(), "device_joined encoding failed", logger.Err(err))
		return
	}
	recipients := s.Broadcast(frame, c.device.ID)
	if m := c.adapter.metrics; m != nil {
		m.Broadcast(recipients)
	}
}

// handleFileStart opens an upload and hands the sender the file id it must
// prefix its binary chunks with.
func handleFileStart(ctx context.Context, c *Conn, in *protocol.Inbound) {
	if in.FileSize < 0 {
		c.dropFrame("file_start with negative size", dropMalformed,
			logger.FileName(in.FileName), logger.Size(in.FileSize))
		return
	}

	f := c.Session().Files().Begin(c.device.ID, in.FileName, in.FileSize, in.MimeType)
	telemetry.SetAttributes(ctx,
		telemetry.FileID(f.ID),
		telemetry.FileName(f.OriginalName),
		telemetry.FileSize(f.Size),
		telemetry.MimeType(f.Mimetype))
	logger.InfoCtx(ctx, "upload started",
		logger.FileID(f.ID),
		logger.FileName(f.OriginalName),
		logger.Size(f.Size),
		logger.MimeType(f.Mimetype))

	c.sendFrame(protocol.FileStartAck{
		Type:     protocol.TypeFileStartAck,
		FileID:   f.ID,
		FileName: f.OriginalName,
	})
}

// handleBinary ingests one upload chunk. The frame carries the file id in
// its fixed-width prefix, so chunks of different files may interleave on
// one connection. Chunks for unknown ids are dropped without a reply; a
// chunk that would overflow the declared size is dropped and the file is
// left for the janitor, since it can never complete.
func (c *Conn) handleBinary(frame []byte) {
	if m := c.adapter.metrics; m != nil {
		m.FrameReceived("binary")
	}

	if c.State() != StateInSession {
		c.dropFrame("binary frame outside a session", dropWrongState,
			logger.FrameSize(len(frame)))
		return
	}

	fileID, payload, err := protocol.DecodeBinaryFrame(frame)
	if err != nil {
		c.dropFrame("binary frame shorter than the id prefix", dropShortFrame,
			logger.FrameSize(len(frame)))
		return
	}

	files := c.Session().Files()
	f, ok := files.Get(fileID)
	if !ok {
		c.dropQuiet("chunk for unknown file", dropUnknownFile, logger.FileID(fileID))
		return
	}

	received, err := files.Append(fileID, payload)
	switch {
	case errors.Is(err, hub.ErrFileNotFound):
		c.dropQuiet("chunk for unknown file", dropUnknownFile, logger.FileID(fileID))
		return
	case errors.Is(err, hub.ErrFileComplete):
		c.dropFrame("chunk for a sealed file", dropWrongState, logger.FileID(fileID))
		return
	case errors.Is(err, hub.ErrSizeExceeded):
		c.dropFrame("chunk overflows the declared file size", dropSizeExceeded,
			logger.FileID(fileID),
			logger.Received(received),
			logger.Size(f.Size),
			logger.FrameSize(len(payload)))
		return
	case err != nil:
		logger.ErrorCtx(c.context(), "chunk append failed", logger.Err(err))
		return
	}

	if m := c.adapter.metrics; m != nil {
		m.UploadChunk(len(payload))
	}

	c.sendFrame(protocol.UploadProgress{
		Type:     protocol.TypeUploadProgress,
		FileID:   fileID,
		Progress: protocol.ProgressPercent(received, f.Size),
		Received: received,
		Total:    f.Size,
	})
}

// handleFileComplete seals an upload, announces the file to the sender's
// peers and acknowledges the sender. A size mismatch gets no ack: the file
// stays open and the janitor reclaims it.
func handleFileComplete(ctx context.Context, c *Conn, in *protocol.Inbound) {
	s := c.Session()
	f, err := s.Files().Complete(in.FileID)
	switch {
	case errors.Is(err, hub.ErrFileNotFound):
		c.dropQuiet("file_complete for unknown file", dropUnknownFile,
			logger.FileID(in.FileID))
		return
	case errors.Is(err, hub.ErrFileComplete):
		c.dropFrame("file_complete for an already sealed file", dropWrongState,
			logger.FileID(in.FileID))
		return
	case errors.Is(err, hub.ErrSizeMismatch):
		c.dropFrame("file_complete before every declared byte arrived", dropSizeMismatch,
			logger.FileID(in.FileID))
		return
	case err != nil:
		telemetry.RecordError(ctx, err)
		logger.ErrorCtx(ctx, "upload seal failed", logger.Err(err))
		return
	}

	if m := c.adapter.metrics; m != nil {
		m.FileSealed(f.Size)
	}
	logger.InfoCtx(ctx, "upload complete",
		logger.FileID(f.ID),
		logger.FileName(f.OriginalName),
		logger.Size(f.Size),
		logger.Files(s.Files().Count()))

	frame, encErr := protocol.Encode(protocol.NewFile{
		Type: protocol.TypeNewFile,
		File: f.Meta(),
	})
	if encErr != nil {
		logger.ErrorCtx(ctx, "new_file encoding failed", logger.Err(encErr))
	} else {
		recipients := s.Broadcast(frame, c.device.ID)
		if m := c.adapter.metrics; m != nil {
			m.Broadcast(recipients)
		}
	}

	c.sendFrame(protocol.FileCompleteAck{
		Type:   protocol.TypeFileCompleteAck,
		FileID: f.ID,
	})
}

// handleRequestFile streams a sealed file back to the sender.
func handleRequestFile(ctx context.Context, c *Conn, in *protocol.Inbound) {
	f, err := c.Session().Files().Open(in.FileID)
	switch {
	case errors.Is(err, hub.ErrFileNotFound):
		c.dropQuiet("request_file for unknown file", dropUnknownFile,
			logger.FileID(in.FileID))
		return
	case errors.Is(err, hub.ErrFileNotComplete):
		c.dropFrame("request_file for a file still uploading", dropWrongState,
			logger.FileID(in.FileID))
		return
	case err != nil:
		telemetry.RecordError(ctx, err)
		logger.ErrorCtx(ctx, "download open failed", logger.Err(err))
		return
	}

	telemetry.SetAttributes(ctx,
		telemetry.FileID(f.ID),
		telemetry.FileSize(f.Size))
	c.streamFile(f)
}

// streamFile writes the download sequence: file_download_start, the file
// bytes in fixed-size data frames in contiguous order, then
// file_download_complete. The write mutex is held for the whole sequence so
// no broadcast or ack can interleave with the stream. The buffer of a
// sealed file is immutable, so no store lock is needed while writing.
func (c *Conn) streamFile(f *hub.File) {
	start := time.Now()

	startFrame, err := protocol.Encode(protocol.FileDownloadStart{
		Type:     protocol.TypeFileDownloadStart,
		FileID:   f.ID,
		FileName: f.OriginalName,
		FileSize: f.Size,
		MimeType: f.Mimetype,
	})
	if err != nil {
		logger.ErrorCtx(c.context(), "file_download_start encoding failed", logger.Err(err))
		return
	}
	doneFrame, err := protocol.Encode(protocol.FileDownloadComplete{
		Type:   protocol.TypeFileDownloadComplete,
		FileID: f.ID,
	})
	if err != nil {
		logger.ErrorCtx(c.context(), "file_download_complete encoding failed", logger.Err(err))
		return
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if err := c.writeLocked(websocket.TextMessage, startFrame); err != nil {
		logger.DebugCtx(c.context(), "download aborted", logger.FileID(f.ID), logger.Err(err))
		return
	}

	data := f.Data()
	for off := 0; off < len(data); off += DownloadChunkSize {
		chunk := data[off:min(off+DownloadChunkSize, len(data))]
		dataFrame, err := protocol.EncodeBinaryFrame(f.ID, chunk)
		if err != nil {
			logger.ErrorCtx(c.context(), "data frame encoding failed", logger.FileID(f.ID), logger.Err(err))
			return
		}
		if err := c.writeLocked(websocket.BinaryMessage, dataFrame); err != nil {
			logger.DebugCtx(c.context(), "download aborted", logger.FileID(f.ID),
				logger.Received(int64(off)), logger.Err(err))
			return
		}
		if m := c.adapter.metrics; m != nil {
			m.DownloadChunk(len(chunk))
		}
	}

	if err := c.writeLocked(websocket.TextMessage, doneFrame); err != nil {
		logger.DebugCtx(c.context(), "download aborted", logger.FileID(f.ID), logger.Err(err))
		return
	}

	logger.InfoCtx(c.context(), "download streamed",
		logger.FileID(f.ID),
		logger.FileName(f.OriginalName),
		logger.Size(f.Size),
		logger.DurationMs(logger.Duration(start)))
}

// handleDeleteFile drops a file from the session catalog and announces the
// removal to every member, the deleter included.
func handleDeleteFile(ctx context.Context, c *Conn, in *protocol.Inbound) {
	s := c.Session()
	if !s.Files().Remove(in.FileID) {
		c.dropQuiet("delete_file for unknown file", dropUnknownFile,
			logger.FileID(in.FileID))
		return
	}

	logger.InfoCtx(ctx, "file deleted",
		logger.FileID(in.FileID),
		logger.Files(s.Files().Count()))

	frame, err := protocol.Encode(protocol.FileRemoved{
		Type:   protocol.TypeFileRemoved,
		FileID: in.FileID,
	})
	if err != nil {
		logger.ErrorCtx(ctx, "file_removed encoding failed", logger.Err(err))
		return
	}
	recipients := s.Broadcast(frame, "")
	if m := c.adapter.metrics; m != nil {
		m.Broadcast(recipients)
	}
}

// handlePing answers the application-level keepalive.
func handlePing(ctx context.Context, c *Conn, in *protocol.Inbound) {
	c.sendFrame(protocol.Pong{Type: protocol.TypePong})
}
