package auth

import (
	"context"
	"errors"
	"time"

	"cvportal/internal/apperr"
	"cvportal/internal/metrics"
	"cvportal/internal/models"
	"cvportal/internal/store"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service authenticates users and owns their sessions.
type Service struct {
	p       *store.Provider
	signer  *Signer
	revoker Revoker
	m       *metrics.Metrics
	lg      *zap.SugaredLogger
}

// NewService builds the service. revoker and m may be nil.
func NewService(p *store.Provider, signer *Signer, revoker Revoker, m *metrics.Metrics, lg *zap.SugaredLogger) *Service {
	return &Service{p: p, signer: signer, revoker: revoker, m: m, lg: lg}
}

// Authenticate checks username and password and stamps lastLogin. Every
// failure other than missing input is ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*models.UserProfile, error) {
	if username == "" || password == "" {
		s.m.IncAuthAttempt("missing")
		return nil, apperr.ErrMissingCredentials
	}
	var u models.UserProfile
	err := s.p.DB(ctx).Where("username = ?", username).First(&u).Error
	switch {
	case store.IsNotFound(err):
		burnPasswordCheck(password)
		s.m.IncAuthAttempt("invalid")
		return nil, apperr.ErrInvalidCredentials
	case err != nil:
		return nil, apperr.Storage("find user for login", err)
	}
	if CheckPassword(u.PasswordHash, password) != nil || !u.IsActive {
		s.m.IncAuthAttempt("invalid")
		return nil, apperr.ErrInvalidCredentials
	}

	now := time.Now().UTC()
	if err := s.p.DB(ctx).Model(&u).UpdateColumn("last_login", now).Error; err != nil {
		return nil, apperr.Storage("stamp last login", err)
	}
	u.LastLogin = &now
	s.m.IncAuthAttempt("success")
	return &u, nil
}

type LoginResult struct {
	Token     string              `json:"token"`
	ExpiresAt time.Time           `json:"expiresAt"`
	User      *models.UserProfile `json:"user"`
}

// Login authenticates and opens a session.
func (s *Service) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	u, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return nil, err
	}
	token, claims, err := s.signer.Sign(u)
	if err != nil {
		return nil, err
	}
	sess := models.Session{JTI: claims.JWTID, UserID: u.ID, ExpiresAt: claims.ExpiresAt}
	if err := s.p.DB(ctx).Create(&sess).Error; err != nil {
		return nil, apperr.Storage("create session", err)
	}
	s.lg.Infow("login", "user_id", u.ID, "username", u.Username)
	return &LoginResult{Token: token, ExpiresAt: claims.ExpiresAt, User: u}, nil
}

// Logout revokes the session behind rawToken. Missing, malformed and already
// revoked tokens are not errors.
func (s *Service) Logout(ctx context.Context, rawToken string) error {
	if rawToken == "" {
		return nil
	}
	claims, err := s.signer.Verify(rawToken)
	if err != nil {
		return nil
	}
	now := time.Now().UTC()
	err = s.p.DB(ctx).Model(&models.Session{}).
		Where("jti = ? AND revoked_at IS NULL", claims.JWTID).
		Update("revoked_at", now).Error
	if err != nil {
		return apperr.Storage("revoke session", err)
	}
	s.pushRevocation(ctx, claims.JWTID, claims.ExpiresAt)
	s.lg.Infow("logout", "user_id", claims.UserID)
	return nil
}

// VerifySession checks the token signature and that its session is live.
func (s *Service) VerifySession(ctx context.Context, rawToken string) (Claims, error) {
	claims, err := s.signer.Verify(rawToken)
	if err != nil {
		return Claims{}, apperr.ErrNotAuthenticated
	}
	if s.revoker != nil {
		revoked, err := s.revoker.IsRevoked(ctx, claims.JWTID)
		if err != nil {
			s.lg.Warnw("revocation list unavailable", "err", err)
		} else if revoked {
			return Claims{}, apperr.ErrNotAuthenticated
		}
	}
	var sess models.Session
	err = s.p.DB(ctx).First(&sess, "jti = ?", claims.JWTID).Error
	switch {
	case store.IsNotFound(err):
		return Claims{}, apperr.ErrNotAuthenticated
	case err != nil:
		return Claims{}, apperr.Storage("load session", err)
	}
	if sess.RevokedAt != nil || time.Now().After(sess.ExpiresAt) || sess.UserID != claims.UserID {
		return Claims{}, apperr.ErrNotAuthenticated
	}
	return claims, nil
}

// CurrentUser reloads the profile of the caller on ctx.
func (s *Service) CurrentUser(ctx context.Context) (*models.UserProfile, error) {
	claims, ok := FromContext(ctx)
	if !ok {
		return nil, apperr.ErrNotAuthenticated
	}
	var u models.UserProfile
	err := s.p.DB(ctx).First(&u, claims.UserID).Error
	switch {
	case store.IsNotFound(err):
		return nil, apperr.ErrNotAuthenticated
	case err != nil:
		return nil, apperr.Storage("load current user", err)
	}
	return &u, nil
}

// RevokeUserSessions ends every live session of userID through tx, so it
// commits or rolls back with the caller's change.
func (s *Service) RevokeUserSessions(ctx context.Context, tx *gorm.DB, userID uint) error {
	var live []models.Session
	now := time.Now().UTC()
	if err := tx.Where("user_id = ? AND revoked_at IS NULL AND expires_at > ?", userID, now).Find(&live).Error; err != nil {
		return apperr.Storage("list user sessions", err)
	}
	if len(live) == 0 {
		return nil
	}
	err := tx.Model(&models.Session{}).
		Where("user_id = ? AND revoked_at IS NULL", userID).
		Update("revoked_at", now).Error
	if err != nil {
		return apperr.Storage("revoke user sessions", err)
	}
	for _, sess := range live {
		s.pushRevocation(ctx, sess.JTI, sess.ExpiresAt)
	}
	s.lg.Infow("sessions revoked", "user_id", userID, "count", len(live))
	return nil
}

// PurgeExpiredSessions removes sessions that can no longer authenticate.
func (s *Service) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	res := s.p.DB(ctx).Where("expires_at < ?", time.Now().UTC()).Delete(&models.Session{})
	if res.Error != nil {
		return 0, apperr.Storage("purge sessions", res.Error)
	}
	return res.RowsAffected, nil
}

func (s *Service) pushRevocation(ctx context.Context, jti string, expiresAt time.Time) {
	if s.revoker == nil {
		return
	}
	if err := s.revoker.Revoke(ctx, jti, time.Until(expiresAt)); err != nil && !errors.Is(err, context.Canceled) {
		s.lg.Warnw("revocation list write failed", "jti", jti, "err", err)
	}
}
