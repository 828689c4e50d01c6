package apiclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// maxProblemBody bounds how much of an error response the client reads.
// Problem documents are a few hundred bytes; anything larger is not one.
const maxProblemBody = 8 << 10

// APIError represents an RFC 7807 problem response from the hub.
type APIError struct {
	// StatusCode is the HTTP status the problem arrived with. It is set by
	// the client, not parsed from the body.
	StatusCode int `json:"-"`

	Type   string `json:"type,omitempty"`
	Title  string `json:"title"`
	Status int    `json:"status,omitempty"`
	Detail string `json:"detail,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s", e.Title, e.Detail)
	}
	return e.Title
}

// IsNotFound returns true if the hub answered 404.
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// IsValidationError returns true if the hub rejected the request body.
func (e *APIError) IsValidationError() bool {
	return e.StatusCode == http.StatusBadRequest
}

// IsUnavailable returns true if the hub is up but a collaborator is not
// configured, e.g. feedback submission without a feedback log.
func (e *APIError) IsUnavailable() bool {
	return e.StatusCode == http.StatusServiceUnavailable
}

// problemFrom turns an error response into an *APIError. The hub answers
// with problem documents, but routing-level errors (a plain chi 404, a
// proxy in the way) arrive as text, so the body is sniffed rather than
// trusted.
func problemFrom(resp *http.Response) error {
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxProblemBody))
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	var apiErr APIError
	if json.Unmarshal(body, &apiErr) == nil && apiErr.Title != "" {
		apiErr.StatusCode = resp.StatusCode
		return &apiErr
	}
	return &APIError{
		StatusCode: resp.StatusCode,
		Title:      http.StatusText(resp.StatusCode),
		Detail:     strings.TrimSpace(string(body)),
	}
}
