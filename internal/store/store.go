// Package store owns the database handle. A Provider is built once in main and
// passed to every component that persists data.
package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"cvportal/internal/config"
	"cvportal/internal/models"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Provider struct {
	db     *gorm.DB
	driver string
	lg     *zap.SugaredLogger
}

// Open connects to Postgres when DATABASE_URL is set and falls back to the
// embedded SQLite file otherwise.
func Open(cfg config.Config, lg *zap.SugaredLogger) (*Provider, error) {
	gcfg := &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	}
	if cfg.DatabaseURL != "" {
		db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), gcfg)
		if err != nil {
			return nil, fmt.Errorf("postgres connect: %w", err)
		}
		p := &Provider{db: db, driver: "postgres", lg: lg}
		if err := p.tunePool(25, 10); err != nil {
			return nil, err
		}
		lg.Infow("storage ready", "driver", p.driver)
		return p, nil
	}
	return OpenSQLite(cfg.SQLitePath, gcfg, lg)
}

// OpenSQLite opens a file database, or an isolated in-memory one for ":memory:".
func OpenSQLite(path string, gcfg *gorm.Config, lg *zap.SugaredLogger) (*Provider, error) {
	if path == "" {
		return nil, errors.New("sqlite path is empty")
	}
	if gcfg == nil {
		gcfg = &gorm.Config{
			Logger:         logger.Default.LogMode(logger.Silent),
			TranslateError: true,
			NowFunc:        func() time.Time { return time.Now().UTC() },
		}
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}
	db, err := gorm.Open(sqlite.Open(path+"?_foreign_keys=on&_busy_timeout=5000"), gcfg)
	if err != nil {
		return nil, fmt.Errorf("sqlite open: %w", err)
	}
	p := &Provider{db: db, driver: "sqlite", lg: lg}
	// SQLite serializes writers anyway; one connection also keeps an in-memory
	// database alive and shared for the provider's lifetime.
	if err := p.tunePool(1, 1); err != nil {
		return nil, err
	}
	lg.Infow("storage ready", "driver", p.driver, "path", path)
	return p, nil
}

// NewMemory returns a migrated in-memory provider.
func NewMemory(lg *zap.SugaredLogger) (*Provider, error) {
	p, err := OpenSQLite(":memory:", nil, lg)
	if err != nil {
		return nil, err
	}
	if err := p.Migrate(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Provider) tunePool(maxOpen, maxIdle int) error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return fmt.Errorf("get sql db: %w", err)
	}
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(maxIdle)
	if p.driver != "sqlite" {
		sqlDB.SetConnMaxLifetime(5 * time.Minute)
	}
	return nil
}

func (p *Provider) Driver() string { return p.driver }

// DB returns a session bound to ctx. Never call it inside Transaction: use the
// tx handed to the callback.
func (p *Provider) DB(ctx context.Context) *gorm.DB {
	return p.db.WithContext(ctx)
}

// Transaction runs fn atomically; any error rolls everything back.
func (p *Provider) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return p.db.WithContext(ctx).Transaction(fn)
}

func (p *Provider) Migrate() error {
	if err := p.db.AutoMigrate(
		&models.UserProfile{},
		&models.Session{},
		&models.CVRecord{},
		&models.VersionHistoryEntry{},
		&models.Position{},
		&models.Qualification{},
		&models.Tender{},
	); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	return nil
}

func (p *Provider) Ping(ctx context.Context) error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (p *Provider) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// IsDuplicate reports a unique-constraint violation.
func IsDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

// IsNotFound reports a missing row from First/Take.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// SearchAny narrows q to rows where any of cols contains term, ignoring case.
// Wildcard characters in term match literally. A blank term leaves q as is.
func SearchAny(q *gorm.DB, term string, cols ...string) *gorm.DB {
	term = strings.TrimSpace(term)
	if term == "" || len(cols) == 0 {
		return q
	}
	pattern := "%" + likeEscaper.Replace(strings.ToLower(term)) + "%"
	conds := make([]string, len(cols))
	args := make([]any, len(cols))
	for i, c := range cols {
		conds[i] = "LOWER(" + c + ") LIKE ? ESCAPE '\\'"
		args[i] = pattern
	}
	return q.Where(strings.Join(conds, " OR "), args...)
}
