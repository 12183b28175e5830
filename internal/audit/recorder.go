// Package audit is the version history: every CV record and user profile
// mutation appends one immutable entry inside the mutation's transaction.
package audit

import (
	"context"
	"sync"
	"time"

	"cvportal/internal/apperr"
	"cvportal/internal/models"
	"cvportal/internal/rbac"
	"cvportal/internal/store"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	TableCVRecords    = "cv_records"
	TableUserProfiles = "user_profiles"

	DefaultLimit = 50
	MaxLimit     = 500
)

// Ties on timestamp are broken by insertion order.
var newestFirst = clause.OrderBy{Columns: []clause.OrderByColumn{
	{Column: clause.Column{Name: "timestamp"}, Desc: true},
	{Column: clause.Column{Name: "id"}, Desc: true},
}}

// readCapability gates history reads per tracked table.
var readCapability = map[string]rbac.Capability{
	TableCVRecords:    rbac.CanViewAllCVs,
	TableUserProfiles: rbac.CanAccessUserProfiles,
}

// Entry is what a service hands to Record. Old is ignored for CREATE and New
// for DELETE.
type Entry struct {
	Action      models.HistoryAction
	Table       string
	RecordID    uint
	Actor       rbac.Actor
	Old         models.Snapshot
	New         models.Snapshot
	Description string
}

type Recorder struct {
	p  *store.Provider
	lg *zap.SugaredLogger

	mu    sync.Mutex
	last  time.Time
	clock func() time.Time
}

func NewRecorder(p *store.Provider, lg *zap.SugaredLogger) *Recorder {
	return &Recorder{p: p, lg: lg, clock: time.Now}
}

// now is strictly increasing at microsecond resolution, which every supported
// database preserves.
func (r *Recorder) now() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	t := r.clock().UTC().Truncate(time.Microsecond)
	if !t.After(r.last) {
		t = r.last.Add(time.Microsecond)
	}
	r.last = t
	return t
}

// Record writes e through tx. Any failure comes back as *apperr.AuditWriteError
// so the caller's transaction rolls back.
func (r *Recorder) Record(tx *gorm.DB, e Entry) error {
	row := models.VersionHistoryEntry{
		Table:       e.Table,
		RecordID:    e.RecordID,
		Action:      e.Action,
		Username:    e.Actor.Username,
		Timestamp:   r.now(),
		Description: e.Description,
	}
	if e.Actor.ID != 0 {
		id := e.Actor.ID
		row.UserID = &id
	}
	switch e.Action {
	case models.ActionCreate:
		row.NewValues = e.New
	case models.ActionUpdate:
		row.OldValues = e.Old
		row.NewValues = e.New
		row.ChangedFields = Diff(e.Old, e.New)
	case models.ActionDelete:
		row.OldValues = e.Old
	default:
		return &apperr.AuditWriteError{Err: apperr.Invalid("action", "unknown history action")}
	}
	if row.Username == "" {
		row.Username = rbac.System.Username
	}
	if err := tx.Create(&row).Error; err != nil {
		r.lg.Errorw("history write failed", "table", e.Table, "record_id", e.RecordID, "action", e.Action, "err", err)
		return &apperr.AuditWriteError{Err: err}
	}
	return nil
}

// ForRecord returns the history of one record, newest first.
func (r *Recorder) ForRecord(ctx context.Context, actor rbac.Actor, table string, recordID uint) ([]models.VersionHistoryEntry, error) {
	capability, ok := readCapability[table]
	if !ok {
		return nil, apperr.Invalid("table", "unknown table")
	}
	if err := rbac.Require(actor, capability); err != nil {
		return nil, err
	}
	var out []models.VersionHistoryEntry
	err := r.p.DB(ctx).
		Where("table_name = ? AND record_id = ?", table, recordID).
		Order(newestFirst).
		Find(&out).Error
	if err != nil {
		return nil, apperr.Storage("history for record", err)
	}
	return out, nil
}

// Recent returns the latest entries across all tables. limit <= 0 selects
// DefaultLimit; larger values are capped at MaxLimit.
func (r *Recorder) Recent(ctx context.Context, actor rbac.Actor, limit int) ([]models.VersionHistoryEntry, error) {
	if err := rbac.Require(actor, rbac.CanAccessUserProfiles); err != nil {
		return nil, err
	}
	var out []models.VersionHistoryEntry
	err := r.p.DB(ctx).
		Order(newestFirst).
		Limit(ClampLimit(limit)).
		Find(&out).Error
	if err != nil {
		return nil, apperr.Storage("recent history", err)
	}
	return out, nil
}

func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultLimit
	case limit > MaxLimit:
		return MaxLimit
	}
	return limit
}
