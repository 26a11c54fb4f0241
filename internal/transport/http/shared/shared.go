// Package shared holds the JSON helpers every handler uses, so error
// envelopes stay consistent across the HTTP surface.
package shared

import (
	"encoding/json"
	"net/http"

	dErrors "libris/pkg/domain-errors"
)

// WriteJSON encodes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError translates a coded domain error into the JSON error envelope.
// Internal causes are masked; caller mistakes surface with their message.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.GetCode(err)
	WriteJSON(w, dErrors.ToHTTPStatus(code), map[string]string{
		"error":             string(code),
		"error_description": dErrors.UserMessage(err),
	})
}
