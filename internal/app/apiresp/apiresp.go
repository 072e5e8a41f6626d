package apiresp

import (
	"encoding/json"
	"net/http"
)

type errorPayload struct {
	Error string `json:"error"`
}

func WriteJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// WriteError writes {"error": msg}. Every error response in the API carries
// a short human-readable message and nothing else.
func WriteError(w http.ResponseWriter, status int, msg string) {
	if msg == "" {
		msg = http.StatusText(status)
	}
	WriteJSON(w, status, errorPayload{Error: msg})
}
