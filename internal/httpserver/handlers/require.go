package handlers

import (
	"net/http"

	"cvportal/internal/auth"
	"cvportal/internal/rbac"
	"cvportal/internal/services"

	"go.uber.org/zap"
)

// Require rejects a caller lacking c before the request body is read. The
// services repeat the check, so it also holds for callers outside HTTP.
func Require(g services.Guard, c rbac.Capability, lg *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := g.Check(auth.ActorFrom(r.Context()), c); err != nil {
				writeError(w, r, lg, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
