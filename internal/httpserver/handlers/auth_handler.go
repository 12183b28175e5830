package handlers

import (
	"net/http"

	"cvportal/internal/auth"
	"cvportal/internal/rbac"

	"go.uber.org/zap"
)

type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func Login(svc *auth.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginReq
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, lg, err)
			return
		}
		res, err := svc.Login(r.Context(), req.Username, req.Password)
		if err != nil {
			writeError(w, r, lg, err)
			return
		}
		respondJSON(w, res)
	}
}

// Logout is public so that it succeeds with a missing or stale token.
func Logout(svc *auth.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Logout(r.Context(), auth.BearerToken(r)); err != nil {
			writeError(w, r, lg, err)
			return
		}
		respondJSON(w, map[string]any{"ok": true})
	}
}

func Me(svc *auth.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, err := svc.CurrentUser(r.Context())
		if err != nil {
			writeError(w, r, lg, err)
			return
		}
		respondJSON(w, u)
	}
}

func Capabilities() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor := auth.ActorFrom(r.Context())
		respondJSON(w, map[string]any{
			"role":         actor.Role,
			"capabilities": rbac.CapabilitiesFor(actor.Role),
		})
	}
}
