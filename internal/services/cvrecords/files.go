package cvrecords

import (
	"context"
	"io"

	"cvportal/internal/apperr"
	"cvportal/internal/blob"
	"cvportal/internal/rbac"
)

// fileRef returns the blob reference of record id, or ErrNotFound when the
// record has no file.
func (s *Service) fileRef(ctx context.Context, actor rbac.Actor, id uint) (string, error) {
	if err := s.guard.Check(actor, rbac.CanViewAllCVs); err != nil {
		return "", err
	}
	rec, err := s.load(s.p.DB(ctx), id)
	if err != nil {
		return "", err
	}
	if rec.CVFile == nil || *rec.CVFile == "" {
		return "", apperr.ErrNotFound
	}
	return *rec.CVFile, nil
}

// OpenFile streams the CV document of record id. The caller closes it.
func (s *Service) OpenFile(ctx context.Context, actor rbac.Actor, id uint) (io.ReadCloser, string, error) {
	ref, err := s.fileRef(ctx, actor, id)
	if err != nil {
		return nil, "", err
	}
	rc, err := s.blobs.Open(ctx, ref)
	if err != nil {
		return nil, "", err
	}
	return rc, ref, nil
}

func (s *Service) FileInfo(ctx context.Context, actor rbac.Actor, id uint) (blob.Info, error) {
	ref, err := s.fileRef(ctx, actor, id)
	if err != nil {
		return blob.Info{}, err
	}
	info, err := s.blobs.Info(ctx, ref)
	if err != nil {
		return blob.Info{}, apperr.Storage("cv file info", err)
	}
	return info, nil
}

// FileText extracts the plain text of the CV document for previews.
func (s *Service) FileText(ctx context.Context, actor rbac.Actor, id uint) (string, error) {
	ref, err := s.fileRef(ctx, actor, id)
	if err != nil {
		return "", err
	}
	return blob.ExtractText(ctx, s.blobs, ref)
}
