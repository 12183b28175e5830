package handlers

import (
	"net/http"
	"strconv"

	"cvportal/internal/apperr"
	"cvportal/internal/audit"
	"cvportal/internal/auth"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func RecordHistory(rec *audit.Recorder, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r, "id")
		if err != nil {
			writeError(w, r, lg, err)
			return
		}
		out, err := rec.ForRecord(r.Context(), auth.ActorFrom(r.Context()), chi.URLParam(r, "table"), id)
		if err != nil {
			writeError(w, r, lg, err)
			return
		}
		respondJSON(w, out)
	}
}

func RecentHistory(rec *audit.Recorder, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 0
		if s := r.URL.Query().Get("limit"); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil {
				writeError(w, r, lg, apperr.Invalid("limit", "must be an integer"))
				return
			}
			limit = n
		}
		out, err := rec.Recent(r.Context(), auth.ActorFrom(r.Context()), limit)
		if err != nil {
			writeError(w, r, lg, err)
			return
		}
		respondJSON(w, out)
	}
}
