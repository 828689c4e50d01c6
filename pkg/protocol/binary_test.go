package protocol

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testFileID = "11111111-2222-3333-4444-555555555555"

func TestBinaryFrameRoundTrip(t *testing.T) {
	t.Parallel()

	payload := []byte("chunk bytes")
	frame, err := EncodeBinaryFrame(testFileID, payload)
	require.NoError(t, err)
	require.Len(t, frame, FileIDSize+len(payload))

	id, got, err := DecodeBinaryFrame(frame)
	require.NoError(t, err)
	assert.Equal(t, testFileID, id)
	assert.Equal(t, payload, got)
}

func TestShortIDIsPaddedWithSpaces(t *testing.T) {
	t.Parallel()

	frame, err := EncodeBinaryFrame("short", []byte("data"))
	require.NoError(t, err)

	// The prefix is always the full width, padded with 0x20.
	assert.Equal(t, "short"+strings.Repeat(" ", FileIDSize-5), string(frame[:FileIDSize]))

	id, payload, err := DecodeBinaryFrame(frame)
	require.NoError(t, err)
	assert.Equal(t, "short", id)
	assert.Equal(t, []byte("data"), payload)
}

func TestEmptyPayloadFrameIsJustThePrefix(t *testing.T) {
	t.Parallel()

	frame, err := EncodeBinaryFrame(testFileID, nil)
	require.NoError(t, err)
	assert.Len(t, frame, FileIDSize)

	id, payload, err := DecodeBinaryFrame(frame)
	require.NoError(t, err)
	assert.Equal(t, testFileID, id)
	assert.Empty(t, payload)
}

func TestOversizedIDIsRefused(t *testing.T) {
	t.Parallel()

	_, err := EncodeBinaryFrame(strings.Repeat("x", FileIDSize+1), []byte("data"))
	assert.ErrorIs(t, err, ErrIDTooLong)
}

func TestTruncatedFrameIsRefused(t *testing.T) {
	t.Parallel()

	_, _, err := DecodeBinaryFrame([]byte("tiny"))
	assert.ErrorIs(t, err, ErrShortFrame)

	_, _, err = DecodeBinaryFrame(nil)
	assert.ErrorIs(t, err, ErrShortFrame)
}
