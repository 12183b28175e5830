package auth

import (
	"errors"
	"strconv"
	"time"

	"cvportal/internal/models"
	"cvportal/internal/rbac"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid token")

type tokenClaims struct {
	Username   string `json:"username"`
	Role       string `json:"role"`
	Department string `json:"department,omitempty"`
	Position   string `json:"position,omitempty"`
	jwt.RegisteredClaims
}

// Signer issues and verifies HS256 session tokens.
type Signer struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

func NewSigner(secret string, ttl time.Duration) *Signer {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Signer{key: []byte(secret), ttl: ttl, now: time.Now}
}

func (s *Signer) TTL() time.Duration { return s.ttl }

// Sign returns a token for u with a fresh jti.
func (s *Signer) Sign(u *models.UserProfile) (string, Claims, error) {
	now := s.now()
	c := Claims{
		UserID:     u.ID,
		Username:   u.Username,
		Role:       u.Role,
		Department: u.Department,
		Position:   u.Position,
		JWTID:      uuid.NewString(),
		ExpiresAt:  now.Add(s.ttl).Truncate(time.Second),
	}
	tc := tokenClaims{
		Username:   c.Username,
		Role:       string(c.Role),
		Department: c.Department,
		Position:   c.Position,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(u.ID), 10),
			ID:        c.JWTID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(c.ExpiresAt),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, tc)
	signed, err := token.SignedString(s.key)
	if err != nil {
		return "", Claims{}, err
	}
	return signed, c, nil
}

func (s *Signer) Verify(tokenStr string) (Claims, error) {
	var tc tokenClaims
	tok, err := jwt.ParseWithClaims(tokenStr, &tc, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.key, nil
	}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithTimeFunc(s.now))
	if err != nil || !tok.Valid {
		return Claims{}, ErrInvalidToken
	}
	id, err := strconv.ParseUint(tc.Subject, 10, 64)
	if err != nil || tc.ID == "" || tc.ExpiresAt == nil {
		return Claims{}, ErrInvalidToken
	}
	return Claims{
		UserID:     uint(id),
		Username:   tc.Username,
		Role:       rbac.Role(tc.Role),
		Department: tc.Department,
		Position:   tc.Position,
		JWTID:      tc.ID,
		ExpiresAt:  tc.ExpiresAt.Time,
	}, nil
}
