package auth

import (
	"context"
	"time"

	"cvportal/internal/rbac"
)

type ctxKey string

const (
	userKey ctxKey = "userClaims"
)

// Claims is the identity carried by a session token.
type Claims struct {
	UserID     uint
	Username   string
	Role       rbac.Role
	Department string
	Position   string
	JWTID      string
	ExpiresAt  time.Time
}

func (c Claims) Actor() rbac.Actor {
	return rbac.Actor{ID: c.UserID, Username: c.Username, Role: c.Role}
}

func WithClaims(ctx context.Context, c Claims) context.Context {
	return context.WithValue(ctx, userKey, c)
}

// FromContext returns the caller's claims; ok is false on unauthenticated
// requests.
func FromContext(ctx context.Context) (Claims, bool) {
	c, ok := ctx.Value(userKey).(Claims)
	return c, ok
}

// ActorFrom returns the caller as seen by services. An unauthenticated context
// yields a role-less actor that every capability check rejects.
func ActorFrom(ctx context.Context) rbac.Actor {
	c, _ := FromContext(ctx)
	return c.Actor()
}
