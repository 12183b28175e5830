// Package tenders tracks tender listings. Every operation needs
// canManageTenders.
package tenders

import (
	"context"
	"strings"
	"time"

	"cvportal/internal/apperr"
	"cvportal/internal/metrics"
	"cvportal/internal/models"
	"cvportal/internal/rbac"
	"cvportal/internal/services"
	"cvportal/internal/store"
	"cvportal/internal/validation"

	"go.uber.org/zap"
)

type Input struct {
	Title           *string              `json:"title" validate:"omitnil,min=1,max=200"`
	ReferenceNumber *string              `json:"referenceNumber" validate:"omitnil,min=1,max=64"`
	Client          *string              `json:"client"`
	Description     *string              `json:"description"`
	ClosingDate     *time.Time           `json:"closingDate"`
	Status          *models.TenderStatus `json:"status" validate:"omitnil,oneof=open closed awarded"`
}

func (in Input) apply(t *models.Tender) {
	if in.Title != nil {
		t.Title = strings.TrimSpace(*in.Title)
	}
	if in.ReferenceNumber != nil {
		t.ReferenceNumber = strings.TrimSpace(*in.ReferenceNumber)
	}
	if in.Client != nil {
		t.Client = *in.Client
	}
	if in.Description != nil {
		t.Description = *in.Description
	}
	if in.ClosingDate != nil {
		d := in.ClosingDate.UTC()
		t.ClosingDate = &d
	}
	if in.Status != nil {
		t.Status = *in.Status
	}
}

type Filter struct {
	Search string
	Status string
}

type Service struct {
	p     *store.Provider
	guard services.Guard
	lg    *zap.SugaredLogger
}

func NewService(p *store.Provider, m *metrics.Metrics, lg *zap.SugaredLogger) *Service {
	return &Service{p: p, guard: services.NewGuard(m, lg), lg: lg}
}

func (s *Service) List(ctx context.Context, actor rbac.Actor, f Filter) ([]models.Tender, error) {
	if err := s.guard.Check(actor, rbac.CanManageTenders); err != nil {
		return nil, err
	}
	q := s.p.DB(ctx).Model(&models.Tender{})
	q = store.SearchAny(q, f.Search, "title", "reference_number", "client")
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	out := []models.Tender{}
	if err := q.Order("created_at DESC").Order("id DESC").Find(&out).Error; err != nil {
		return nil, apperr.Storage("list tenders", err)
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, actor rbac.Actor, id uint) (*models.Tender, error) {
	if err := s.guard.Check(actor, rbac.CanManageTenders); err != nil {
		return nil, err
	}
	var t models.Tender
	err := s.p.DB(ctx).First(&t, id).Error
	switch {
	case store.IsNotFound(err):
		return nil, apperr.ErrNotFound
	case err != nil:
		return nil, apperr.Storage("load tender", err)
	}
	return &t, nil
}

func (s *Service) Create(ctx context.Context, actor rbac.Actor, in Input) (*models.Tender, error) {
	if err := s.guard.Check(actor, rbac.CanManageTenders); err != nil {
		return nil, err
	}
	ve := apperr.NewValidation()
	validation.RequireString(ve, "title", in.Title)
	validation.RequireString(ve, "referenceNumber", in.ReferenceNumber)
	if err := validation.Into(ve, in).Err(); err != nil {
		return nil, err
	}
	t := models.Tender{Status: models.TenderOpen, CreatedBy: actor.Username}
	in.apply(&t)
	if err := s.p.DB(ctx).Create(&t).Error; err != nil {
		if store.IsDuplicate(err) {
			return nil, apperr.Conflict("referenceNumber")
		}
		return nil, apperr.Storage("create tender", err)
	}
	s.lg.Infow("tender created", "id", t.ID, "reference", t.ReferenceNumber, "by", actor.Username)
	return &t, nil
}

func (s *Service) Update(ctx context.Context, actor rbac.Actor, id uint, in Input) (*models.Tender, error) {
	if err := s.guard.Check(actor, rbac.CanManageTenders); err != nil {
		return nil, err
	}
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	t, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	in.apply(t)
	if err := s.p.DB(ctx).Save(t).Error; err != nil {
		if store.IsDuplicate(err) {
			return nil, apperr.Conflict("referenceNumber")
		}
		return nil, apperr.Storage("update tender", err)
	}
	return t, nil
}

func (s *Service) Delete(ctx context.Context, actor rbac.Actor, id uint) error {
	if err := s.guard.Check(actor, rbac.CanManageTenders); err != nil {
		return err
	}
	res := s.p.DB(ctx).Delete(&models.Tender{}, id)
	if res.Error != nil {
		return apperr.Storage("delete tender", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.ErrNotFound
	}
	s.lg.Infow("tender deleted", "id", id, "by", actor.Username)
	return nil
}
