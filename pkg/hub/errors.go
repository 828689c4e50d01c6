package hub

import "errors"

// Session errors reported back to devices as session_error frames.
var (
	// ErrSessionNotFound means the join code does not match a live session.
	ErrSessionNotFound = errors.New("session not found")

	// ErrAlreadyInSession means the device tried to create or join a second
	// session over a connection that already belongs to one.
	ErrAlreadyInSession = errors.New("device already in a session")

	// ErrCodeSpaceExhausted means code generation could not find an unused
	// session code. With a 32 symbol alphabet this only happens when the
	// registry is pathologically full.
	ErrCodeSpaceExhausted = errors.New("could not allocate an unused session code")
)

// File transfer errors. These never reach the wire; handlers log them and
// decide per frame whether to drop, ignore or answer.
var (
	// ErrFileNotFound means the referenced file id is not in the session.
	ErrFileNotFound = errors.New("file not found")

	// ErrFileNotComplete means a download was requested for a file whose
	// upload has not been sealed yet.
	ErrFileNotComplete = errors.New("file upload not complete")

	// ErrFileComplete means a chunk arrived for a file already sealed.
	ErrFileComplete = errors.New("file upload already complete")

	// ErrSizeExceeded means a chunk would push the buffered bytes past the
	// size declared in file_start.
	ErrSizeExceeded = errors.New("received bytes exceed declared file size")

	// ErrSizeMismatch means file_complete arrived before all declared bytes.
	ErrSizeMismatch = errors.New("received bytes do not match declared file size")
)
