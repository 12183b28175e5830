package handlers

import (
	"io"
	"net/http"

	"cvportal/internal/auth"
	"cvportal/internal/blob"
	"cvportal/internal/services/cvrecords"

	"go.uber.org/zap"
)

func DownloadCVFile(svc *cvrecords.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r, "id")
		if err != nil {
			writeError(w, r, lg, err)
			return
		}
		rc, ref, err := svc.OpenFile(r.Context(), auth.ActorFrom(r.Context()), id)
		if err != nil {
			writeError(w, r, lg, err)
			return
		}
		defer rc.Close()
		w.Header().Set("Content-Type", blob.ContentType(ref))
		w.Header().Set("Content-Disposition", `attachment; filename="`+ref+`"`)
		if _, err := io.Copy(w, rc); err != nil {
			lg.Warnw("cv download interrupted", "id", id, "err", err)
		}
	}
}

func CVFileInfo(svc *cvrecords.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r, "id")
		if err != nil {
			writeError(w, r, lg, err)
			return
		}
		info, err := svc.FileInfo(r.Context(), auth.ActorFrom(r.Context()), id)
		if err != nil {
			writeError(w, r, lg, err)
			return
		}
		respondJSON(w, info)
	}
}

func CVFileText(svc *cvrecords.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r, "id")
		if err != nil {
			writeError(w, r, lg, err)
			return
		}
		text, err := svc.FileText(r.Context(), auth.ActorFrom(r.Context()), id)
		if err != nil {
			writeError(w, r, lg, err)
			return
		}
		respondJSON(w, map[string]any{"id": id, "text": text})
	}
}
