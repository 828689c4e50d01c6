package protocol

import (
	"errors"
	"strings"
)

// FileIDSize is the width of the file id prefix on binary frames. File ids
// are UUID text, which is exactly this long; shorter ids are right-padded
// with spaces on encode and trimmed on decode.
const FileIDSize = 36

// ErrShortFrame reports a binary frame smaller than the id prefix.
var ErrShortFrame = errors.New("binary frame shorter than the file id prefix")

// ErrIDTooLong reports a file id that cannot fit the fixed-width prefix.
var ErrIDTooLong = errors.New("file id exceeds the frame prefix width")

// EncodeBinaryFrame builds one data frame: the fixed-width id prefix
// followed by the chunk bytes.
func EncodeBinaryFrame(fileID string, payload []byte) ([]byte, error) {
	if len(fileID) > FileIDSize {
		return nil, ErrIDTooLong
	}

	frame := make([]byte, FileIDSize+len(payload))
	copy(frame, fileID)
	for i := len(fileID); i < FileIDSize; i++ {
		frame[i] = ' '
	}
	copy(frame[FileIDSize:], payload)
	return frame, nil
}

// DecodeBinaryFrame splits one data frame into its file id and chunk bytes.
// The payload aliases the frame; callers that keep it must not reuse the
// frame buffer.
func DecodeBinaryFrame(frame []byte) (fileID string, payload []byte, err error) {
	if len(frame) < FileIDSize {
		return "", nil, ErrShortFrame
	}
	fileID = strings.TrimRight(string(frame[:FileIDSize]), " ")
	return fileID, frame[FileIDSize:], nil
}
