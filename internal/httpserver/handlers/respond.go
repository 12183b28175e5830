package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"cvportal/internal/apperr"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func respondJSON(w http.ResponseWriter, v interface{}) {
	respondStatus(w, http.StatusOK, v)
}

func respondStatus(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

type errorBody struct {
	Error  string            `json:"error"`
	Field  string            `json:"field,omitempty"`
	Fields map[string]string `json:"fields,omitempty"`
}

// writeError is the single place service errors become status codes.
// Unexpected errors are logged and answered with an opaque 500.
func writeError(w http.ResponseWriter, r *http.Request, lg *zap.SugaredLogger, err error) {
	var ve *apperr.ValidationError
	var ce *apperr.ConflictError
	switch {
	case errors.As(err, &ve):
		respondStatus(w, http.StatusBadRequest, errorBody{Error: "validation failed", Fields: ve.Fields})
	case errors.Is(err, apperr.ErrNotFound):
		respondStatus(w, http.StatusNotFound, errorBody{Error: "not found"})
	case errors.As(err, &ce):
		respondStatus(w, http.StatusConflict, errorBody{Error: ce.Error(), Field: ce.Field})
	case errors.Is(err, apperr.ErrForbidden):
		respondStatus(w, http.StatusForbidden, errorBody{Error: "forbidden"})
	case apperr.IsAuth(err):
		respondStatus(w, http.StatusUnauthorized, errorBody{Error: authMessage(err)})
	default:
		lg.Errorw("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
		respondStatus(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
	}
}

func authMessage(err error) string {
	switch {
	case errors.Is(err, apperr.ErrMissingCredentials):
		return apperr.ErrMissingCredentials.Error()
	case errors.Is(err, apperr.ErrInvalidCredentials):
		return apperr.ErrInvalidCredentials.Error()
	}
	return apperr.ErrNotAuthenticated.Error()
}

// maxJSONBody bounds every JSON request body. CV uploads go through the
// multipart path with their own limit.
const maxJSONBody = 1 << 20

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return apperr.Invalid("body", "is too large")
		}
		return apperr.Invalid("body", "invalid JSON")
	}
	return nil
}

func idParam(r *http.Request, name string) (uint, error) {
	id, err := strconv.ParseUint(chi.URLParam(r, name), 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.ErrNotFound
	}
	return uint(id), nil
}
