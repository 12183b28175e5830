// Package blob stores uploaded CV documents. Records only ever hold the
// opaque reference returned by Store.
package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"cvportal/internal/config"

	"github.com/google/uuid"
)

var (
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrInvalidRef      = errors.New("invalid file reference")
)

// allowed lists the accepted CV document extensions.
var allowed = map[string]string{
	".pdf":  "application/pdf",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".txt":  "text/plain; charset=utf-8",
	".rtf":  "application/rtf",
	".odt":  "application/vnd.oasis.opendocument.text",
}

var refRe = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}\.[a-z]+$`)

type Info struct {
	Exists     bool       `json:"exists"`
	Size       int64      `json:"size"`
	UploadedAt *time.Time `json:"uploadedAt,omitempty"`
}

type Store interface {
	// Store saves r under a new reference derived from originalName's extension.
	Store(ctx context.Context, originalName string, r io.Reader) (string, error)
	// Open returns apperr.ErrNotFound for a missing blob.
	Open(ctx context.Context, ref string) (io.ReadCloser, error)
	// Delete reports whether something was removed.
	Delete(ctx context.Context, ref string) (bool, error)
	Info(ctx context.Context, ref string) (Info, error)
}

// New builds the store selected by BLOB_BACKEND.
func New(ctx context.Context, cfg config.Config) (Store, error) {
	switch cfg.BlobBackend {
	case "local":
		return NewLocalStore(cfg.UploadsDir)
	case "s3":
		return NewS3Store(ctx, S3Config{
			Bucket:   cfg.S3Bucket,
			Region:   cfg.S3Region,
			Endpoint: cfg.S3Endpoint,
			Prefix:   cfg.S3Prefix,
		})
	}
	return nil, fmt.Errorf("unknown blob backend %q", cfg.BlobBackend)
}

// NewRef returns "<uuid><ext>" or ErrUnsupportedType.
func NewRef(originalName string) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	if _, ok := allowed[ext]; !ok {
		return "", ErrUnsupportedType
	}
	return uuid.NewString() + ext, nil
}

// Supported reports whether a file with this name would be accepted.
func Supported(name string) bool {
	_, ok := allowed[strings.ToLower(filepath.Ext(name))]
	return ok
}

// ContentType is the MIME type served for ref.
func ContentType(ref string) string {
	if ct, ok := allowed[filepath.Ext(ref)]; ok {
		return ct
	}
	return "application/octet-stream"
}

func checkRef(ref string) error {
	if !refRe.MatchString(ref) {
		return ErrInvalidRef
	}
	if _, ok := allowed[filepath.Ext(ref)]; !ok {
		return ErrInvalidRef
	}
	return nil
}
