package http

import (
	"encoding/json"
	"net/http"
)

// CountResponse wraps a single count
type CountResponse struct {
	Count int `json:"count"`
}

// WriteJSON writes a JSON response with the given status code
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// The header has already been sent, so an encode error cannot be reported
	_ = json.NewEncoder(w).Encode(v)
}

// WriteOK writes a 200 response
func WriteOK(w http.ResponseWriter, v any) {
	WriteJSON(w, http.StatusOK, v)
}

// WriteList writes a JSON array, never null
func WriteList[T any](w http.ResponseWriter, data []T) {
	if data == nil {
		data = []T{}
	}
	WriteJSON(w, http.StatusOK, data)
}
