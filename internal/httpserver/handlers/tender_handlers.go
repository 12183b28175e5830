package handlers

import (
	"net/http"

	"cvportal/internal/auth"
	"cvportal/internal/services/tenders"

	"go.uber.org/zap"
)

func ListTenders(svc *tenders.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		out, err := svc.List(r.Context(), auth.ActorFrom(r.Context()), tenders.Filter{Search: q.Get("search"), Status: q.Get("status")})
		if err != nil {
			writeError(w, r, lg, err)
			return
		}
		respondJSON(w, out)
	}
}

func GetTender(svc *tenders.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r, "id")
		if err != nil {
			writeError(w, r, lg, err)
			return
		}
		t, err := svc.Get(r.Context(), auth.ActorFrom(r.Context()), id)
		if err != nil {
			writeError(w, r, lg, err)
			return
		}
		respondJSON(w, t)
	}
}

func CreateTender(svc *tenders.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req tenders.Input
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, lg, err)
			return
		}
		t, err := svc.Create(r.Context(), auth.ActorFrom(r.Context()), req)
		if err != nil {
			writeError(w, r, lg, err)
			return
		}
		respondStatus(w, http.StatusCreated, t)
	}
}

func UpdateTender(svc *tenders.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r, "id")
		if err != nil {
			writeError(w, r, lg, err)
			return
		}
		var req tenders.Input
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, lg, err)
			return
		}
		t, err := svc.Update(r.Context(), auth.ActorFrom(r.Context()), id, req)
		if err != nil {
			writeError(w, r, lg, err)
			return
		}
		respondJSON(w, t)
	}
}

func DeleteTender(svc *tenders.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r, "id")
		if err != nil {
			writeError(w, r, lg, err)
			return
		}
		if err := svc.Delete(r.Context(), auth.ActorFrom(r.Context()), id); err != nil {
			writeError(w, r, lg, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
