package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// MaxBodyBytes bounds the size of a request body.
var MaxBodyBytes int64 = 32 << 20

// MaxWord is the largest k-mer size accepted over HTTP. Every distance
// worker keeps histograms of 4^k entries.
const MaxWord = 8

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

func httpError(w http.ResponseWriter, msg string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

// decodeJSON reads the request body into v, writing the error response and
// returning false when it cannot.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httpError(w, fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit), http.StatusRequestEntityTooLarge)
			return false
		}
		httpError(w, "invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

func checkWord(word int) error {
	if word > MaxWord {
		return fmt.Errorf("word %d exceeds %d", word, MaxWord)
	}
	return nil
}
