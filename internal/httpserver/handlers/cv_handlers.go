package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"cvportal/internal/apperr"
	"cvportal/internal/auth"
	"cvportal/internal/export"
	"cvportal/internal/services/cvrecords"

	"go.uber.org/zap"
)

func cvFilter(r *http.Request) cvrecords.Filter {
	q := r.URL.Query()
	return cvrecords.Filter{Search: q.Get("search"), Status: q.Get("status")}
}

// readCVInput accepts either a JSON body or a multipart form with the JSON in
// the "data" field and the CV document in "file".
func readCVInput(w http.ResponseWriter, r *http.Request, maxUpload int64) (cvrecords.Input, *cvrecords.Upload, func(), error) {
	var in cvrecords.Input
	noop := func() {}
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return in, nil, noop, decodeJSON(w, r, &in)
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUpload)
	if err := r.ParseMultipartForm(maxUpload); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return in, nil, noop, apperr.Invalid("file", "is too large")
		}
		return in, nil, noop, apperr.Invalid("body", "invalid multipart form")
	}
	cleanup := func() { _ = r.MultipartForm.RemoveAll() }
	if data := r.FormValue("data"); data != "" {
		if err := json.Unmarshal([]byte(data), &in); err != nil {
			return in, nil, cleanup, apperr.Invalid("data", "invalid JSON")
		}
	}
	file, hdr, err := r.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		return in, nil, cleanup, nil
	}
	if err != nil {
		return in, nil, cleanup, apperr.Invalid("file", "unreadable upload")
	}
	return in, &cvrecords.Upload{Name: hdr.Filename, Body: file}, func() {
		_ = file.Close()
		cleanup()
	}, nil
}

func ListCVRecords(svc *cvrecords.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := svc.List(r.Context(), auth.ActorFrom(r.Context()), cvFilter(r))
		if err != nil {
			writeError(w, r, lg, err)
			return
		}
		respondJSON(w, out)
	}
}

func GetCVRecord(svc *cvrecords.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r, "id")
		if err != nil {
			writeError(w, r, lg, err)
			return
		}
		rec, err := svc.Get(r.Context(), auth.ActorFrom(r.Context()), id)
		if err != nil {
			writeError(w, r, lg, err)
			return
		}
		respondJSON(w, rec)
	}
}

func CreateCVRecord(svc *cvrecords.Service, maxUpload int64, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		in, file, done, err := readCVInput(w, r, maxUpload)
		defer done()
		if err != nil {
			writeError(w, r, lg, err)
			return
		}
		rec, err := svc.Create(r.Context(), auth.ActorFrom(r.Context()), in, file)
		if err != nil {
			writeError(w, r, lg, err)
			return
		}
		respondStatus(w, http.StatusCreated, rec)
	}
}

func UpdateCVRecord(svc *cvrecords.Service, maxUpload int64, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r, "id")
		if err != nil {
			writeError(w, r, lg, err)
			return
		}
		in, file, done, err := readCVInput(w, r, maxUpload)
		defer done()
		if err != nil {
			writeError(w, r, lg, err)
			return
		}
		rec, err := svc.Update(r.Context(), auth.ActorFrom(r.Context()), id, in, file)
		if err != nil {
			writeError(w, r, lg, err)
			return
		}
		respondJSON(w, rec)
	}
}

func DeleteCVRecord(svc *cvrecords.Service, lg *zap.SugaredLogger) http.HandlerFunc {
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

// ExportCVRecords streams the filtered list as CSV.
func ExportCVRecords(svc *cvrecords.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := svc.List(r.Context(), auth.ActorFrom(r.Context()), cvFilter(r))
		if err != nil {
			writeError(w, r, lg, err)
			return
		}
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename(time.Now())+`"`)
		if err := export.WriteCVRecords(w, out); err != nil {
			lg.Warnw("csv export interrupted", "err", err)
		}
	}
}
