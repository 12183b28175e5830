package handlers

import (
	"net/http"

	"cvportal/internal/auth"
	"cvportal/internal/services/users"

	"go.uber.org/zap"
)

func ListUserProfiles(svc *users.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		out, err := svc.List(r.Context(), auth.ActorFrom(r.Context()), users.Filter{Search: q.Get("search"), Role: q.Get("role")})
		if err != nil {
			writeError(w, r, lg, err)
			return
		}
		respondJSON(w, out)
	}
}

func GetUserProfile(svc *users.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r, "id")
		if err != nil {
			writeError(w, r, lg, err)
			return
		}
		u, err := svc.Get(r.Context(), auth.ActorFrom(r.Context()), id)
		if err != nil {
			writeError(w, r, lg, err)
			return
		}
		respondJSON(w, u)
	}
}

func CreateUserProfile(svc *users.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req users.CreateInput
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, lg, err)
			return
		}
		u, err := svc.Create(r.Context(), auth.ActorFrom(r.Context()), req)
		if err != nil {
			writeError(w, r, lg, err)
			return
		}
		respondStatus(w, http.StatusCreated, u)
	}
}

func UpdateUserProfile(svc *users.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r, "id")
		if err != nil {
			writeError(w, r, lg, err)
			return
		}
		var req users.UpdateInput
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, lg, err)
			return
		}
		u, err := svc.Update(r.Context(), auth.ActorFrom(r.Context()), id, req)
		if err != nil {
			writeError(w, r, lg, err)
			return
		}
		respondJSON(w, u)
	}
}

func DeleteUserProfile(svc *users.Service, lg *zap.SugaredLogger) http.HandlerFunc {
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
