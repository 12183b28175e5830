// Package catalog manages the position and qualification lookup tables.
// Changes here are not version tracked.
package catalog

import (
	"context"
	"strings"

	"cvportal/internal/apperr"
	"cvportal/internal/metrics"
	"cvportal/internal/models"
	"cvportal/internal/rbac"
	"cvportal/internal/reference"
	"cvportal/internal/services"
	"cvportal/internal/store"
	"cvportal/internal/validation"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type PositionInput struct {
	Department *string `json:"department" validate:"omitnil,min=1"`
	RoleTitle  *string `json:"roleTitle" validate:"omitnil,min=1"`
	KLevel     *string `json:"kLevel" validate:"omitnil,oneof=K1 K2 K3 K4 K5"`
}

type QualificationInput struct {
	QualificationType *string `json:"qualificationType" validate:"omitnil,min=1"`
	Name              *string `json:"name" validate:"omitnil,min=1"`
}

func (in *PositionInput) normalize() {
	in.Department = trimmed(in.Department)
	in.RoleTitle = trimmed(in.RoleTitle)
}

func (in *QualificationInput) normalize() {
	in.QualificationType = trimmed(in.QualificationType)
	in.Name = trimmed(in.Name)
}

func trimmed(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	return &t
}

type Service struct {
	p     *store.Provider
	guard services.Guard
	lg    *zap.SugaredLogger
}

func NewService(p *store.Provider, m *metrics.Metrics, lg *zap.SugaredLogger) *Service {
	return &Service{p: p, guard: services.NewGuard(m, lg), lg: lg}
}

// ListPositions is open to every authenticated caller.
func (s *Service) ListPositions(ctx context.Context, department string) ([]models.Position, error) {
	q := s.p.DB(ctx).Model(&models.Position{})
	if department != "" {
		q = q.Where("department = ?", department)
	}
	out := []models.Position{}
	if err := q.Order("department ASC").Order("role_title ASC").Find(&out).Error; err != nil {
		return nil, apperr.Storage("list positions", err)
	}
	return out, nil
}

func (s *Service) CreatePosition(ctx context.Context, actor rbac.Actor, in PositionInput) (*models.Position, error) {
	if err := s.guard.Check(actor, rbac.CanManagePositions); err != nil {
		return nil, err
	}
	in.normalize()
	ve := apperr.NewValidation()
	validation.RequireString(ve, "department", in.Department)
	validation.RequireString(ve, "roleTitle", in.RoleTitle)
	if err := validation.Into(ve, in).Err(); err != nil {
		return nil, err
	}
	pos := models.Position{Department: *in.Department, RoleTitle: *in.RoleTitle}
	if in.KLevel != nil {
		pos.KLevel = *in.KLevel
	}
	if err := s.p.DB(ctx).Create(&pos).Error; err != nil {
		if store.IsDuplicate(err) {
			return nil, apperr.Conflict("roleTitle")
		}
		return nil, apperr.Storage("create position", err)
	}
	s.lg.Infow("position created", "id", pos.ID, "by", actor.Username)
	return &pos, nil
}

func (s *Service) UpdatePosition(ctx context.Context, actor rbac.Actor, id uint, in PositionInput) (*models.Position, error) {
	if err := s.guard.Check(actor, rbac.CanManagePositions); err != nil {
		return nil, err
	}
	in.normalize()
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	var pos models.Position
	if err := first(s.p.DB(ctx), &pos, id); err != nil {
		return nil, err
	}
	if in.Department != nil {
		pos.Department = *in.Department
	}
	if in.RoleTitle != nil {
		pos.RoleTitle = *in.RoleTitle
	}
	if in.KLevel != nil {
		pos.KLevel = *in.KLevel
	}
	if err := s.p.DB(ctx).Save(&pos).Error; err != nil {
		if store.IsDuplicate(err) {
			return nil, apperr.Conflict("roleTitle")
		}
		return nil, apperr.Storage("update position", err)
	}
	return &pos, nil
}

func (s *Service) DeletePosition(ctx context.Context, actor rbac.Actor, id uint) error {
	if err := s.guard.Check(actor, rbac.CanDeletePositions); err != nil {
		return err
	}
	return remove(s.p.DB(ctx), &models.Position{}, id, "delete position")
}

func (s *Service) ListQualifications(ctx context.Context, qualificationType string) ([]models.Qualification, error) {
	q := s.p.DB(ctx).Model(&models.Qualification{})
	if qualificationType != "" {
		q = q.Where("qualification_type = ?", qualificationType)
	}
	out := []models.Qualification{}
	if err := q.Order("qualification_type ASC").Order("name ASC").Find(&out).Error; err != nil {
		return nil, apperr.Storage("list qualifications", err)
	}
	return out, nil
}

func (s *Service) CreateQualification(ctx context.Context, actor rbac.Actor, in QualificationInput) (*models.Qualification, error) {
	if err := s.guard.Check(actor, rbac.CanManageQualifications); err != nil {
		return nil, err
	}
	in.normalize()
	ve := apperr.NewValidation()
	validation.RequireString(ve, "qualificationType", in.QualificationType)
	validation.RequireString(ve, "name", in.Name)
	if err := validation.Into(ve, in).Err(); err != nil {
		return nil, err
	}
	q := models.Qualification{QualificationType: *in.QualificationType, Name: *in.Name}
	if err := s.p.DB(ctx).Create(&q).Error; err != nil {
		if store.IsDuplicate(err) {
			return nil, apperr.Conflict("name")
		}
		return nil, apperr.Storage("create qualification", err)
	}
	s.lg.Infow("qualification created", "id", q.ID, "by", actor.Username)
	return &q, nil
}

func (s *Service) UpdateQualification(ctx context.Context, actor rbac.Actor, id uint, in QualificationInput) (*models.Qualification, error) {
	if err := s.guard.Check(actor, rbac.CanManageQualifications); err != nil {
		return nil, err
	}
	in.normalize()
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	var q models.Qualification
	if err := first(s.p.DB(ctx), &q, id); err != nil {
		return nil, err
	}
	if in.QualificationType != nil {
		q.QualificationType = *in.QualificationType
	}
	if in.Name != nil {
		q.Name = *in.Name
	}
	if err := s.p.DB(ctx).Save(&q).Error; err != nil {
		if store.IsDuplicate(err) {
			return nil, apperr.Conflict("name")
		}
		return nil, apperr.Storage("update qualification", err)
	}
	return &q, nil
}

func (s *Service) DeleteQualification(ctx context.Context, actor rbac.Actor, id uint) error {
	if err := s.guard.Check(actor, rbac.CanDeleteQualifications); err != nil {
		return err
	}
	return remove(s.p.DB(ctx), &models.Qualification{}, id, "delete qualification")
}

// Seed loads the static reference lists into the catalog tables that are
// still empty, so entries removed by an admin stay removed across restarts.
func (s *Service) Seed(ctx context.Context) error {
	return s.p.Transaction(ctx, func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.Position{}).Count(&n).Error; err != nil {
			return apperr.Storage("count positions", err)
		}
		if n == 0 {
			var positions []models.Position
			for _, dept := range reference.DepartmentNames() {
				for _, r := range reference.Departments[dept] {
					positions = append(positions, models.Position{Department: dept, RoleTitle: r.Title, KLevel: r.KLevel})
				}
			}
			if err := tx.Create(&positions).Error; err != nil {
				return apperr.Storage("seed positions", err)
			}
			s.lg.Infow("seeded positions", "count", len(positions))
		}

		if err := tx.Model(&models.Qualification{}).Count(&n).Error; err != nil {
			return apperr.Storage("count qualifications", err)
		}
		if n == 0 {
			var quals []models.Qualification
			for _, typ := range reference.QualificationTypeNames() {
				for _, name := range reference.QualificationTypes[typ] {
					quals = append(quals, models.Qualification{QualificationType: typ, Name: name})
				}
			}
			if err := tx.Create(&quals).Error; err != nil {
				return apperr.Storage("seed qualifications", err)
			}
			s.lg.Infow("seeded qualifications", "count", len(quals))
		}
		return nil
	})
}

func first(db *gorm.DB, dst any, id uint) error {
	err := db.First(dst, id).Error
	switch {
	case store.IsNotFound(err):
		return apperr.ErrNotFound
	case err != nil:
		return apperr.Storage("load catalog entry", err)
	}
	return nil
}

func remove(db *gorm.DB, model any, id uint, op string) error {
	res := db.Delete(model, id)
	if res.Error != nil {
		return apperr.Storage(op, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.ErrNotFound
	}
	return nil
}
