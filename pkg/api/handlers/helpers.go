package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// decodeJSONBody decodes a JSON request body into dst, rejecting unknown
// fields so client typos surface as errors instead of silent no-ops.
func decodeJSONBody(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}

	return nil
}
