package httpserver

import (
	"net/http"

	"cvportal/internal/audit"
	"cvportal/internal/auth"
	"cvportal/internal/httpserver/handlers"
	"cvportal/internal/metrics"
	"cvportal/internal/rbac"
	"cvportal/internal/services"
	"cvportal/internal/services/catalog"
	"cvportal/internal/services/cvrecords"
	"cvportal/internal/services/tenders"
	"cvportal/internal/services/users"
	"cvportal/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

type Deps struct {
	Auth           *auth.Service
	CVs            *cvrecords.Service
	Users          *users.Service
	History        *audit.Recorder
	Catalog        *catalog.Service
	Tenders        *tenders.Service
	Store          *store.Provider
	Metrics        *metrics.Metrics
	MaxUploadBytes int64
	Logger         *zap.SugaredLogger
}

func NewRouter(d Deps) http.Handler {
	lg := d.Logger
	guard := services.NewGuard(d.Metrics, lg)
	need := func(c rbac.Capability) func(http.Handler) http.Handler {
		return handlers.Require(guard, c, lg)
	}
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer, middleware.Logger)

	r.Post("/auth/login", handlers.Login(d.Auth, lg))
	r.Post("/auth/logout", handlers.Logout(d.Auth, lg))
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := d.Store.Ping(r.Context()); err != nil {
			lg.Warnw("health check failed", "err", err)
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	r.Method(http.MethodGet, "/metrics", d.Metrics.Handler())

	r.Group(func(protected chi.Router) {
		protected.Use(auth.JWTAuth(d.Auth))
		protected.Get("/auth/user", handlers.Me(d.Auth, lg))
		protected.Get("/auth/capabilities", handlers.Capabilities())

		protected.Route("/cv-records", func(cv chi.Router) {
			cv.Get("/", handlers.ListCVRecords(d.CVs, lg))
			cv.With(need(rbac.CanCaptureRecords)).Post("/", handlers.CreateCVRecord(d.CVs, d.MaxUploadBytes, lg))
			cv.Get("/export/csv", handlers.ExportCVRecords(d.CVs, lg))
			cv.Get("/{id}", handlers.GetCVRecord(d.CVs, lg))
			cv.With(need(rbac.CanEditCVs)).Put("/{id}", handlers.UpdateCVRecord(d.CVs, d.MaxUploadBytes, lg))
			cv.With(need(rbac.CanEditCVs)).Patch("/{id}", handlers.UpdateCVRecord(d.CVs, d.MaxUploadBytes, lg))
			cv.With(need(rbac.CanDeleteCVs)).Delete("/{id}", handlers.DeleteCVRecord(d.CVs, lg))
			cv.Get("/{id}/file", handlers.DownloadCVFile(d.CVs, lg))
			cv.Get("/{id}/file/info", handlers.CVFileInfo(d.CVs, lg))
			cv.Get("/{id}/file/text", handlers.CVFileText(d.CVs, lg))
		})

		protected.Route("/user-profiles", func(u chi.Router) {
			u.Get("/", handlers.ListUserProfiles(d.Users, lg))
			u.With(need(rbac.CanCreateUsers)).Post("/", handlers.CreateUserProfile(d.Users, lg))
			u.Get("/{id}", handlers.GetUserProfile(d.Users, lg))
			u.With(need(rbac.CanEditUsers)).Put("/{id}", handlers.UpdateUserProfile(d.Users, lg))
			u.With(need(rbac.CanEditUsers)).Patch("/{id}", handlers.UpdateUserProfile(d.Users, lg))
			u.With(need(rbac.CanDeleteUsers)).Delete("/{id}", handlers.DeleteUserProfile(d.Users, lg))
		})

		protected.Get("/version-history", handlers.RecentHistory(d.History, lg))
		protected.Get("/version-history/{table}/{id}", handlers.RecordHistory(d.History, lg))

		protected.Route("/positions", func(p chi.Router) {
			p.Get("/", handlers.ListPositions(d.Catalog, lg))
			p.With(need(rbac.CanManagePositions)).Post("/", handlers.CreatePosition(d.Catalog, lg))
			p.With(need(rbac.CanManagePositions)).Put("/{id}", handlers.UpdatePosition(d.Catalog, lg))
			p.With(need(rbac.CanDeletePositions)).Delete("/{id}", handlers.DeletePosition(d.Catalog, lg))
		})
		protected.Route("/qualifications", func(q chi.Router) {
			q.Get("/", handlers.ListQualifications(d.Catalog, lg))
			q.With(need(rbac.CanManageQualifications)).Post("/", handlers.CreateQualification(d.Catalog, lg))
			q.With(need(rbac.CanManageQualifications)).Put("/{id}", handlers.UpdateQualification(d.Catalog, lg))
			q.With(need(rbac.CanDeleteQualifications)).Delete("/{id}", handlers.DeleteQualification(d.Catalog, lg))
		})
		protected.Route("/tenders", func(t chi.Router) {
			t.Use(need(rbac.CanManageTenders))
			t.Get("/", handlers.ListTenders(d.Tenders, lg))
			t.Post("/", handlers.CreateTender(d.Tenders, lg))
			t.Get("/{id}", handlers.GetTender(d.Tenders, lg))
			t.Put("/{id}", handlers.UpdateTender(d.Tenders, lg))
			t.Delete("/{id}", handlers.DeleteTender(d.Tenders, lg))
		})

		protected.Get("/reference/languages", handlers.ReferenceLanguages())
		protected.Get("/reference/qualification-types", handlers.ReferenceQualificationTypes())
		protected.Get("/reference/departments", handlers.ReferenceDepartments())

		protected.Get("/views/{name}", handlers.View())
	})
	return r
}
