package http

import (
	"encoding/json"
	"net/http"

	"gofinances/internal/log"
)

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// RespondJSON writes data as JSON with status. A nil data writes only the
// status.
func RespondJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.FromContext(r.Context()).WithComponent(log.ComponentHTTP).
			ErrorContext(r.Context(), "Failed to encode JSON response", log.FieldError, err.Error())
	}
}

func RespondError(w http.ResponseWriter, r *http.Request, status int, message string, details any) {
	RespondJSON(w, r, status, ErrorResponse{Error: message, Details: details})
}
