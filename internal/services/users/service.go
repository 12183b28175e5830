// Package users is the lifecycle manager for user profiles.
package users

import (
	"context"
	"strings"

	"cvportal/internal/apperr"
	"cvportal/internal/audit"
	"cvportal/internal/auth"
	"cvportal/internal/metrics"
	"cvportal/internal/models"
	"cvportal/internal/rbac"
	"cvportal/internal/services"
	"cvportal/internal/store"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SessionRevoker ends a user's sessions as part of the caller's transaction.
type SessionRevoker interface {
	RevokeUserSessions(ctx context.Context, tx *gorm.DB, userID uint) error
}

type Service struct {
	p        *store.Provider
	audit    *audit.Recorder
	sessions SessionRevoker
	guard    services.Guard
	m        *metrics.Metrics
	lg       *zap.SugaredLogger
}

func NewService(p *store.Provider, rec *audit.Recorder, sessions SessionRevoker, m *metrics.Metrics, lg *zap.SugaredLogger) *Service {
	return &Service{p: p, audit: rec, sessions: sessions, guard: services.NewGuard(m, lg), m: m, lg: lg}
}

func (s *Service) Create(ctx context.Context, actor rbac.Actor, in CreateInput) (*models.UserProfile, error) {
	if err := s.guard.Check(actor, rbac.CanCreateUsers); err != nil {
		return nil, err
	}
	in.normalize()
	if err := in.validate(); err != nil {
		return nil, err
	}
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, apperr.Invalid("password", "cannot be hashed")
	}
	u := models.UserProfile{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         in.Role,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Department:   in.Department,
		Position:     in.Position,
		PhoneNumber:  in.PhoneNumber,
		IsActive:     true,
		ModifiedBy:   actor.Username,
	}
	if in.IsActive != nil {
		u.IsActive = *in.IsActive
	}

	err = s.p.Transaction(ctx, func(tx *gorm.DB) error {
		if err := checkUnique(tx, 0, u.Username, u.Email); err != nil {
			return err
		}
		if err := tx.Create(&u).Error; err != nil {
			if store.IsDuplicate(err) {
				return apperr.Conflict("username")
			}
			return apperr.Storage("create user", err)
		}
		snap, err := u.Snapshot()
		if err != nil {
			return &apperr.AuditWriteError{Err: err}
		}
		return s.audit.Record(tx, audit.Entry{
			Action:   models.ActionCreate,
			Table:    audit.TableUserProfiles,
			RecordID: u.ID,
			Actor:    actor,
			New:      snap,
		})
	})
	if err != nil {
		return nil, err
	}
	s.m.IncMutation(audit.TableUserProfiles, string(models.ActionCreate))
	s.lg.Infow("user created", "id", u.ID, "username", u.Username, "role", u.Role, "by", actor.Username)
	return &u, nil
}

func (s *Service) Get(ctx context.Context, actor rbac.Actor, id uint) (*models.UserProfile, error) {
	if err := s.guard.Check(actor, rbac.CanAccessUserProfiles); err != nil {
		return nil, err
	}
	return load(s.p.DB(ctx), id)
}

func (s *Service) List(ctx context.Context, actor rbac.Actor, f Filter) ([]models.UserProfile, error) {
	if err := s.guard.Check(actor, rbac.CanAccessUserProfiles); err != nil {
		return nil, err
	}
	if err := f.validate(); err != nil {
		return nil, err
	}
	q := s.p.DB(ctx).Model(&models.UserProfile{})
	q = store.SearchAny(q, f.Search, "username", "email", "first_name", "last_name", "department")
	if f.Role != "" {
		q = q.Where("role = ?", f.Role)
	}
	out := []models.UserProfile{}
	if err := q.Order("username ASC").Find(&out).Error; err != nil {
		return nil, apperr.Storage("list users", err)
	}
	return out, nil
}

// Update applies the present fields of in. Deactivation, a role change or a
// new password end the user's sessions.
func (s *Service) Update(ctx context.Context, actor rbac.Actor, id uint, in UpdateInput) (*models.UserProfile, error) {
	if err := s.guard.Check(actor, rbac.CanEditUsers); err != nil {
		return nil, err
	}
	in.normalize()
	if err := in.validate(); err != nil {
		return nil, err
	}
	var hash string
	if in.Password != nil {
		h, err := auth.HashPassword(*in.Password)
		if err != nil {
			return nil, apperr.Invalid("password", "cannot be hashed")
		}
		hash = h
	}

	var out *models.UserProfile
	err := s.p.Transaction(ctx, func(tx *gorm.DB) error {
		u, err := load(tx, id)
		if err != nil {
			return err
		}
		before, err := u.Snapshot()
		if err != nil {
			return &apperr.AuditWriteError{Err: err}
		}
		wasActive, oldRole := u.IsActive, u.Role

		in.apply(u)
		if err := checkUnique(tx, id, u.Username, u.Email); err != nil {
			return err
		}
		var description string
		if hash != "" {
			u.PasswordHash = hash
			description = "password changed"
		}
		u.ModifiedBy = actor.Username
		if err := tx.Save(u).Error; err != nil {
			if store.IsDuplicate(err) {
				return apperr.Conflict("username")
			}
			return apperr.Storage("update user", err)
		}
		if (wasActive && !u.IsActive) || oldRole != u.Role || hash != "" {
			if err := s.sessions.RevokeUserSessions(ctx, tx, id); err != nil {
				return err
			}
		}
		after, err := u.Snapshot()
		if err != nil {
			return &apperr.AuditWriteError{Err: err}
		}
		out = u
		return s.audit.Record(tx, audit.Entry{
			Action:      models.ActionUpdate,
			Table:       audit.TableUserProfiles,
			RecordID:    id,
			Actor:       actor,
			Old:         before,
			New:         after,
			Description: description,
		})
	})
	if err != nil {
		return nil, err
	}
	s.m.IncMutation(audit.TableUserProfiles, string(models.ActionUpdate))
	s.lg.Infow("user updated", "id", id, "by", actor.Username)
	return out, nil
}

func (s *Service) Delete(ctx context.Context, actor rbac.Actor, id uint) error {
	if err := s.guard.Check(actor, rbac.CanDeleteUsers); err != nil {
		return err
	}
	err := s.p.Transaction(ctx, func(tx *gorm.DB) error {
		u, err := load(tx, id)
		if err != nil {
			return err
		}
		before, err := u.Snapshot()
		if err != nil {
			return &apperr.AuditWriteError{Err: err}
		}
		if err := s.sessions.RevokeUserSessions(ctx, tx, id); err != nil {
			return err
		}
		if err := tx.Delete(&models.UserProfile{}, id).Error; err != nil {
			return apperr.Storage("delete user", err)
		}
		return s.audit.Record(tx, audit.Entry{
			Action:   models.ActionDelete,
			Table:    audit.TableUserProfiles,
			RecordID: id,
			Actor:    actor,
			Old:      before,
		})
	})
	if err != nil {
		return err
	}
	s.m.IncMutation(audit.TableUserProfiles, string(models.ActionDelete))
	s.lg.Infow("user deleted", "id", id, "by", actor.Username)
	return nil
}

// EnsureAdmin creates the first admin account when no admin exists yet.
func (s *Service) EnsureAdmin(ctx context.Context, username, email, password string) (bool, error) {
	var count int64
	err := s.p.DB(ctx).Model(&models.UserProfile{}).Where("role = ?", rbac.RoleAdmin).Count(&count).Error
	if err != nil {
		return false, apperr.Storage("count admins", err)
	}
	if count > 0 {
		return false, nil
	}
	_, err = s.Create(ctx, rbac.System, CreateInput{
		Username: username,
		Email:    email,
		Password: password,
		Role:     rbac.RoleAdmin,
	})
	if err != nil {
		return false, err
	}
	s.lg.Infow("seeded default admin", "username", username)
	return true, nil
}

func load(db *gorm.DB, id uint) (*models.UserProfile, error) {
	var u models.UserProfile
	err := db.First(&u, id).Error
	switch {
	case store.IsNotFound(err):
		return nil, apperr.ErrNotFound
	case err != nil:
		return nil, apperr.Storage("load user", err)
	}
	return &u, nil
}

// checkUnique reports which unique field another user already holds.
func checkUnique(tx *gorm.DB, selfID uint, username, email string) error {
	var n int64
	if err := tx.Model(&models.UserProfile{}).Where("username = ? AND id <> ?", username, selfID).Count(&n).Error; err != nil {
		return apperr.Storage("check username", err)
	}
	if n > 0 {
		return apperr.Conflict("username")
	}
	if err := tx.Model(&models.UserProfile{}).Where("LOWER(email) = ? AND id <> ?", strings.ToLower(email), selfID).Count(&n).Error; err != nil {
		return apperr.Storage("check email", err)
	}
	if n > 0 {
		return apperr.Conflict("email")
	}
	return nil
}
