package respond

import (
	"encoding/json"
	"net/http"
	"time"

	"musicapp/internal/models"
)

// JSON writes payload with the given status.
func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

// Error writes an ErrorEnvelope.
func Error(w http.ResponseWriter, status int, code, message, details string) {
	JSON(w, status, models.ErrorEnvelope{
		Error:     code,
		Message:   message,
		Details:   details,
		Timestamp: time.Now().UTC(),
	})
}

// Decode reads a JSON body into v, rejecting unknown fields.
func Decode(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
