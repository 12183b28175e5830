// Package services holds what the lifecycle services share.
package services

import (
	"cvportal/internal/metrics"
	"cvportal/internal/rbac"

	"go.uber.org/zap"
)

// Guard runs the capability check every service performs before validation
// or storage, counting and logging denials.
type Guard struct {
	m  *metrics.Metrics
	lg *zap.SugaredLogger
}

func NewGuard(m *metrics.Metrics, lg *zap.SugaredLogger) Guard {
	return Guard{m: m, lg: lg}
}

func (g Guard) Check(actor rbac.Actor, c rbac.Capability) error {
	if err := rbac.Require(actor, c); err != nil {
		g.m.IncForbidden(string(c))
		g.lg.Warnw("forbidden", "user", actor.Username, "role", actor.Role, "capability", c)
		return err
	}
	return nil
}
