// Package response writes the API's JSON envelope. Every handler responds
// through these helpers so success and error payloads stay uniform.
package response

import (
	"encoding/json"
	"log"
	"net/http"
)

// ErrorResponse is the body of every non-2xx response. Details carries
// optional context such as the underlying error text or a field message map.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// RespondJSON writes data as JSON with the given status code. A nil data
// writes only the status, which is how 204 responses are sent. Encoding
// failures are logged; the status line has already gone out by then.
func RespondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			log.Printf("failed to encode JSON response: %v", err)
		}
	}
}

// RespondError writes an ErrorResponse with the given status code. Pass an
// empty details value to omit the field from the body.
func RespondError(w http.ResponseWriter, status int, message string, details any) {
	if details == "" {
		details = nil
	}
	RespondJSON(w, status, ErrorResponse{Error: message, Details: details})
}
