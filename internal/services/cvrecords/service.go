// Package cvrecords is the lifecycle manager for candidate records.
package cvrecords

import (
	"context"
	"errors"
	"io"
	"time"

	"cvportal/internal/apperr"
	"cvportal/internal/audit"
	"cvportal/internal/blob"
	"cvportal/internal/metrics"
	"cvportal/internal/models"
	"cvportal/internal/rbac"
	"cvportal/internal/services"
	"cvportal/internal/store"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Upload is an optional CV document sent with a create or update.
type Upload struct {
	Name string
	Body io.Reader
}

type Filter struct {
	Search string
	Status string
}

type Service struct {
	p     *store.Provider
	audit *audit.Recorder
	blobs blob.Store
	guard services.Guard
	m     *metrics.Metrics
	lg    *zap.SugaredLogger
}

func NewService(p *store.Provider, rec *audit.Recorder, blobs blob.Store, m *metrics.Metrics, lg *zap.SugaredLogger) *Service {
	return &Service{p: p, audit: rec, blobs: blobs, guard: services.NewGuard(m, lg), m: m, lg: lg}
}

func (s *Service) Create(ctx context.Context, actor rbac.Actor, in Input, file *Upload) (*models.CVRecord, error) {
	if err := s.guard.Check(actor, rbac.CanCaptureRecords); err != nil {
		return nil, err
	}
	if err := in.validateCreate(); err != nil {
		return nil, err
	}
	if err := checkUpload(file); err != nil {
		return nil, err
	}

	rec := models.CVRecord{
		Status:      models.StatusPending,
		SubmittedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
	in.apply(&rec)

	ref, err := s.storeUpload(ctx, file)
	if err != nil {
		return nil, err
	}
	if ref != "" {
		rec.CVFile = &ref
	}

	err = s.p.Transaction(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(&rec).Error; err != nil {
			return apperr.Storage("create cv record", err)
		}
		snap, err := rec.Snapshot()
		if err != nil {
			return &apperr.AuditWriteError{Err: err}
		}
		return s.audit.Record(tx, audit.Entry{
			Action:   models.ActionCreate,
			Table:    audit.TableCVRecords,
			RecordID: rec.ID,
			Actor:    actor,
			New:      snap,
		})
	})
	if err != nil {
		s.discard(ctx, ref)
		return nil, err
	}
	s.m.IncMutation(audit.TableCVRecords, string(models.ActionCreate))
	s.lg.Infow("cv record created", "id", rec.ID, "by", actor.Username)
	return &rec, nil
}

func (s *Service) Get(ctx context.Context, actor rbac.Actor, id uint) (*models.CVRecord, error) {
	if err := s.guard.Check(actor, rbac.CanViewAllCVs); err != nil {
		return nil, err
	}
	return s.load(s.p.DB(ctx), id)
}

// List returns matching records, most recently submitted first.
func (s *Service) List(ctx context.Context, actor rbac.Actor, f Filter) ([]models.CVRecord, error) {
	if err := s.guard.Check(actor, rbac.CanViewAllCVs); err != nil {
		return nil, err
	}
	if f.Status != "" && !models.CVStatus(f.Status).Valid() {
		return nil, apperr.Invalid("status", "must be one of: active, pending, archived")
	}
	q := s.p.DB(ctx).Model(&models.CVRecord{})
	q = store.SearchAny(q, f.Search, "name", "surname", "email", "position", "department")
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	out := []models.CVRecord{}
	if err := q.Order("submitted_at DESC").Order("id DESC").Find(&out).Error; err != nil {
		return nil, apperr.Storage("list cv records", err)
	}
	return out, nil
}

// Update applies the present fields of in. A new file replaces the old blob,
// which is removed once the change has committed.
func (s *Service) Update(ctx context.Context, actor rbac.Actor, id uint, in Input, file *Upload) (*models.CVRecord, error) {
	if err := s.guard.Check(actor, rbac.CanEditCVs); err != nil {
		return nil, err
	}
	if err := in.validateUpdate(); err != nil {
		return nil, err
	}
	if err := checkUpload(file); err != nil {
		return nil, err
	}
	if _, err := s.load(s.p.DB(ctx), id); err != nil {
		return nil, err
	}

	ref, err := s.storeUpload(ctx, file)
	if err != nil {
		return nil, err
	}

	var rec *models.CVRecord
	var replaced string
	err = s.p.Transaction(ctx, func(tx *gorm.DB) error {
		cur, err := s.load(tx, id)
		if err != nil {
			return err
		}
		before, err := cur.Snapshot()
		if err != nil {
			return &apperr.AuditWriteError{Err: err}
		}
		in.apply(cur)
		if ref != "" {
			if cur.CVFile != nil {
				replaced = *cur.CVFile
			}
			cur.CVFile = &ref
		}
		if err := tx.Save(cur).Error; err != nil {
			return apperr.Storage("update cv record", err)
		}
		after, err := cur.Snapshot()
		if err != nil {
			return &apperr.AuditWriteError{Err: err}
		}
		rec = cur
		return s.audit.Record(tx, audit.Entry{
			Action:   models.ActionUpdate,
			Table:    audit.TableCVRecords,
			RecordID: id,
			Actor:    actor,
			Old:      before,
			New:      after,
		})
	})
	if err != nil {
		s.discard(ctx, ref)
		return nil, err
	}
	s.discard(ctx, replaced)
	s.m.IncMutation(audit.TableCVRecords, string(models.ActionUpdate))
	s.lg.Infow("cv record updated", "id", id, "by", actor.Username)
	return rec, nil
}

// Delete removes the record for good. Its blob is removed afterwards on a
// best-effort basis; history is kept.
func (s *Service) Delete(ctx context.Context, actor rbac.Actor, id uint) error {
	if err := s.guard.Check(actor, rbac.CanDeleteCVs); err != nil {
		return err
	}
	var ref string
	err := s.p.Transaction(ctx, func(tx *gorm.DB) error {
		cur, err := s.load(tx, id)
		if err != nil {
			return err
		}
		before, err := cur.Snapshot()
		if err != nil {
			return &apperr.AuditWriteError{Err: err}
		}
		if err := tx.Delete(&models.CVRecord{}, id).Error; err != nil {
			return apperr.Storage("delete cv record", err)
		}
		if cur.CVFile != nil {
			ref = *cur.CVFile
		}
		return s.audit.Record(tx, audit.Entry{
			Action:   models.ActionDelete,
			Table:    audit.TableCVRecords,
			RecordID: id,
			Actor:    actor,
			Old:      before,
		})
	})
	if err != nil {
		return err
	}
	s.discard(ctx, ref)
	s.m.IncMutation(audit.TableCVRecords, string(models.ActionDelete))
	s.lg.Infow("cv record deleted", "id", id, "by", actor.Username)
	return nil
}

func (s *Service) load(db *gorm.DB, id uint) (*models.CVRecord, error) {
	var rec models.CVRecord
	err := db.First(&rec, id).Error
	switch {
	case store.IsNotFound(err):
		return nil, apperr.ErrNotFound
	case err != nil:
		return nil, apperr.Storage("load cv record", err)
	}
	return &rec, nil
}

func checkUpload(file *Upload) error {
	if file == nil {
		return nil
	}
	if !blob.Supported(file.Name) {
		return apperr.Invalid("file", "must be one of: pdf, doc, docx, txt, rtf, odt")
	}
	return nil
}

func (s *Service) storeUpload(ctx context.Context, file *Upload) (string, error) {
	if file == nil {
		return "", nil
	}
	ref, err := s.blobs.Store(ctx, file.Name, file.Body)
	if errors.Is(err, blob.ErrUnsupportedType) {
		return "", apperr.Invalid("file", "must be one of: pdf, doc, docx, txt, rtf, odt")
	}
	if err != nil {
		return "", apperr.Storage("store cv file", err)
	}
	return ref, nil
}

// discard removes a blob without failing the caller.
func (s *Service) discard(ctx context.Context, ref string) {
	if ref == "" {
		return
	}
	if _, err := s.blobs.Delete(context.WithoutCancel(ctx), ref); err != nil {
		s.lg.Warnw("blob cleanup failed", "ref", ref, "err", err)
	}
}
