package handlers

import (
	"net/http"

	"cvportal/internal/auth"
	"cvportal/internal/reference"
	"cvportal/internal/services/catalog"

	"go.uber.org/zap"
)

func ReferenceLanguages() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, reference.Languages)
	}
}

func ReferenceQualificationTypes() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, reference.QualificationTypes)
	}
}

func ReferenceDepartments() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, map[string]any{
			"departments": reference.Departments,
			"kLevels":     reference.KLevels,
		})
	}
}

func ListPositions(svc *catalog.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := svc.ListPositions(r.Context(), r.URL.Query().Get("department"))
		if err != nil {
			writeError(w, r, lg, err)
			return
		}
		respondJSON(w, out)
	}
}

func CreatePosition(svc *catalog.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req catalog.PositionInput
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, lg, err)
			return
		}
		p, err := svc.CreatePosition(r.Context(), auth.ActorFrom(r.Context()), req)
		if err != nil {
			writeError(w, r, lg, err)
			return
		}
		respondStatus(w, http.StatusCreated, p)
	}
}

func UpdatePosition(svc *catalog.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r, "id")
		if err != nil {
			writeError(w, r, lg, err)
			return
		}
		var req catalog.PositionInput
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, lg, err)
			return
		}
		p, err := svc.UpdatePosition(r.Context(), auth.ActorFrom(r.Context()), id, req)
		if err != nil {
			writeError(w, r, lg, err)
			return
		}
		respondJSON(w, p)
	}
}

func DeletePosition(svc *catalog.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r, "id")
		if err != nil {
			writeError(w, r, lg, err)
			return
		}
		if err := svc.DeletePosition(r.Context(), auth.ActorFrom(r.Context()), id); err != nil {
			writeError(w, r, lg, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func ListQualifications(svc *catalog.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := svc.ListQualifications(r.Context(), r.URL.Query().Get("type"))
		if err != nil {
			writeError(w, r, lg, err)
			return
		}
		respondJSON(w, out)
	}
}

func CreateQualification(svc *catalog.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req catalog.QualificationInput
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, lg, err)
			return
		}
		q, err := svc.CreateQualification(r.Context(), auth.ActorFrom(r.Context()), req)
		if err != nil {
			writeError(w, r, lg, err)
			return
		}
		respondStatus(w, http.StatusCreated, q)
	}
}

func UpdateQualification(svc *catalog.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r, "id")
		if err != nil {
			writeError(w, r, lg, err)
			return
		}
		var req catalog.QualificationInput
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, lg, err)
			return
		}
		q, err := svc.UpdateQualification(r.Context(), auth.ActorFrom(r.Context()), id, req)
		if err != nil {
			writeError(w, r, lg, err)
			return
		}
		respondJSON(w, q)
	}
}

func DeleteQualification(svc *catalog.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r, "id")
		if err != nil {
			writeError(w, r, lg, err)
			return
		}
		if err := svc.DeleteQualification(r.Context(), auth.ActorFrom(r.Context()), id); err != nil {
			writeError(w, r, lg, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
