package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cvportal/internal/audit"
	"cvportal/internal/auth"
	"cvportal/internal/blob"
	"cvportal/internal/config"
	"cvportal/internal/httpserver"
	"cvportal/internal/logger"
	"cvportal/internal/metrics"
	"cvportal/internal/services/catalog"
	"cvportal/internal/services/cvrecords"
	"cvportal/internal/services/tenders"
	"cvportal/internal/services/users"
	"cvportal/internal/store"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()
	lg := logger.New(cfg.LogLevel)
	defer lg.Sync()
	if err := cfg.Validate(); err != nil {
		lg.Fatalw("invalid configuration", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p, err := store.Open(cfg, lg)
	if err != nil {
		lg.Fatalw("db connect failed", "error", err)
	}
	defer p.Close()
	if err := p.Migrate(); err != nil {
		lg.Fatalw("automigrate failed", "error", err)
	}

	m := metrics.New()
	var revoker auth.Revoker
	if cfg.RedisURL != "" {
		rdb, err := auth.OpenRedis(ctx, cfg.RedisURL)
		if err != nil {
			lg.Fatalw("redis connect failed", "error", err)
		}
		defer closeRedis(rdb, lg)
		revoker = auth.NewRedisRevoker(rdb)
	}
	authSvc := auth.NewService(p, auth.NewSigner(cfg.JWTSecret, cfg.JWTExpiresIn), revoker, m, lg)
	if n, err := authSvc.PurgeExpiredSessions(ctx); err != nil {
		lg.Warnw("purge expired sessions failed", "error", err)
	} else if n > 0 {
		lg.Infow("purged expired sessions", "count", n)
	}

	blobs, err := blob.New(ctx, cfg)
	if err != nil {
		lg.Fatalw("blob store init failed", "error", err)
	}
	rec := audit.NewRecorder(p, lg)
	cvSvc := cvrecords.NewService(p, rec, blobs, m, lg)
	userSvc := users.NewService(p, rec, authSvc, m, lg)
	catalogSvc := catalog.NewService(p, m, lg)
	tenderSvc := tenders.NewService(p, m, lg)

	seedAdmin(ctx, cfg, userSvc, lg)
	if err := catalogSvc.Seed(ctx); err != nil {
		lg.Fatalw("catalog seed failed", "error", err)
	}

	router := httpserver.NewRouter(httpserver.Deps{
		Auth:           authSvc,
		CVs:            cvSvc,
		Users:          userSvc,
		History:        rec,
		Catalog:        catalogSvc,
		Tenders:        tenderSvc,
		Store:          p,
		Metrics:        m,
		MaxUploadBytes: cfg.MaxUploadBytes(),
		Logger:         lg,
	})
	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		lg.Infow("listening", "port", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Errorw("server stopped", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		lg.Warnw("graceful shutdown failed", "error", err)
	}
	lg.Infow("stopped")
}

func seedAdmin(ctx context.Context, cfg config.Config, svc *users.Service, lg *zap.SugaredLogger) {
	password := cfg.AdminPassword
	if password == "" {
		password = uuid.NewString()
	}
	created, err := svc.EnsureAdmin(ctx, cfg.AdminUsername, cfg.AdminEmail, password)
	if err != nil {
		lg.Fatalw("admin seed failed", "error", err)
	}
	if created && cfg.AdminPassword == "" {
		lg.Warnw("ADMIN_PASSWORD not set, generated a one-time admin password", "username", cfg.AdminUsername, "password", password)
	}
}

func closeRedis(rdb *redis.Client, lg *zap.SugaredLogger) {
	if err := rdb.Close(); err != nil {
		lg.Warnw("redis close failed", "error", err)
	}
}
