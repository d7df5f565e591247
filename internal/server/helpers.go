package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/anjali918/Student-Management-System/internal/auth"
	"github.com/anjali918/Student-Management-System/internal/storage"
)

func writeJSON(w http.ResponseWriter, v any) {
	writeJSONStatus(w, http.StatusOK, v)
}

func writeJSONStatus(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// apiError writes the uniform error shape: a single human-readable message.
func apiError(w http.ResponseWriter, code int, msg string) {
	writeJSONStatus(w, code, map[string]string{"error": msg})
}

func tooMany(w http.ResponseWriter, retryAfterSeconds int) {
	if retryAfterSeconds > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds))
	}
	apiError(w, http.StatusTooManyRequests, "too many requests")
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		apiError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// respondError maps internal failures to the error taxonomy. Anything
// unrecognized is logged server-side and surfaced as a generic 500 so no
// internal detail leaks to the client.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, auth.ErrValidation):
		apiError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, auth.ErrEmailTaken):
		apiError(w, http.StatusBadRequest, auth.ErrEmailTaken.Error())
	case errors.Is(err, auth.ErrBadCredentials):
		apiError(w, http.StatusUnauthorized, auth.ErrBadCredentials.Error())
	case errors.Is(err, auth.ErrUserNotFound):
		apiError(w, http.StatusNotFound, auth.ErrUserNotFound.Error())
	case errors.Is(err, storage.ErrNotFound):
		apiError(w, http.StatusNotFound, "not found")
	case errors.Is(err, storage.ErrDuplicate):
		apiError(w, http.StatusBadRequest, "duplicate key")
	default:
		s.log.Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("request failed")
		apiError(w, http.StatusInternalServerError, "internal server error")
	}
}
