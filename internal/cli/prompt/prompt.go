// Package prompt wraps promptui with the interactions the CLI needs:
// confirmations, optional text, and the transfer rating scale.
package prompt

import (
	"errors"

	"github.com/manifoldco/promptui"
)

// ErrAborted reports that the user backed out of a prompt with Ctrl+C.
var ErrAborted = errors.New("aborted")

// IsAborted reports whether err came from the user backing out rather than
// a terminal failure.
func IsAborted(err error) bool {
	return errors.Is(err, ErrAborted) ||
		errors.Is(err, promptui.ErrInterrupt) ||
		errors.Is(err, promptui.ErrAbort)
}

// wrapError folds promptui's interrupt and abort errors into ErrAborted so
// callers match on one sentinel.
func wrapError(err error) error {
	if err == nil {
		return nil
	}
	if IsAborted(err) {
		return ErrAborted
	}
	return err
}
