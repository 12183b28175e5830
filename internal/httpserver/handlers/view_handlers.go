package handlers

import (
	"net/http"

	"cvportal/internal/auth"
	"cvportal/internal/rbac"

	"github.com/go-chi/chi/v5"
)

// View answers whether the caller may open a named screen. A denied screen
// gets a fixed body and never any data.
func View() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view := rbac.View(chi.URLParam(r, "name"))
		if !rbac.KnownView(view) {
			respondStatus(w, http.StatusNotFound, errorBody{Error: "not found"})
			return
		}
		actor := auth.ActorFrom(r.Context())
		if !rbac.CanAccessView(actor.Role, view) {
			respondStatus(w, http.StatusForbidden, errorBody{Error: "access denied"})
			return
		}
		respondJSON(w, map[string]any{"view": view, "allowed": true})
	}
}
