package api

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/sadopc/studyr/internal/study"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

type APIError struct {
	Error   string             `json:"error"`
	Details []study.FieldError `json:"details,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteAPIError(w http.ResponseWriter, status int, e APIError) {
	if strings.TrimSpace(e.Error) == "" {
		e.Error = http.StatusText(status)
	}
	WriteJSON(w, status, e)
}

func WriteError(w http.ResponseWriter, status int, msg string) {
	WriteAPIError(w, status, APIError{Error: msg})
}

// readJSON decodes a size-limited body and rejects unknown fields.
func readJSON(r *http.Request, out any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(out)
}

// nonNil keeps empty collections encoding as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
