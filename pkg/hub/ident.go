package hub

import (
	"crypto/rand"
	"fmt"

	"github.com/google/uuid"
)

// sessionCodeAlphabet holds the 32 symbols session codes are drawn from.
// Ambiguous characters (0, O, 1, I) are excluded so codes survive being read
// aloud or typed from a screen. The alphabet size divides 256 evenly, so
// reducing random bytes modulo its length introduces no bias.
const sessionCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// SessionCodeLength is the number of symbols in a session join code.
const SessionCodeLength = 6

// NewSessionCode draws a random session code from the code alphabet.
func NewSessionCode() (string, error) {
	var buf [SessionCodeLength]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", fmt.Errorf("reading session code entropy: %w", err)
	}
	for i, b := range buf {
		buf[i] = sessionCodeAlphabet[int(b)%len(sessionCodeAlphabet)]
	}
	return string(buf[:]), nil
}

// NewDeviceID mints the identifier assigned to a device for the lifetime of
// its connection.
func NewDeviceID() string {
	return uuid.NewString()
}

// NewFileID mints the identifier assigned to a file at file_start. Ids are
// always 36 characters, which the binary frame format relies on.
func NewFileID() string {
	return uuid.NewString()
}
