package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/burhani-guards/guards-api/internal/domain"
	platformclock "github.com/burhani-guards/guards-api/internal/platform/clock"
	"github.com/burhani-guards/guards-api/internal/ports/out/clock"
	"github.com/burhani-guards/guards-api/internal/ports/out/idempotency"
)

// RouterOptions configures the infrastructure around the API routes.
type RouterOptions struct {
	// AuthMiddleware guards every bearer endpoint. Required.
	AuthMiddleware func(http.Handler) http.Handler

	Logger   *slog.Logger
	Observer HTTPObserver
	// Metrics, when set, is served unauthenticated at /metrics.
	Metrics http.Handler
	// UploadDir, when set, is served read-only under /uploads/.
	UploadDir string

	// Idempotency, when set, enables Idempotency-Key replay on the create endpoints.
	Idempotency idempotency.Store
	Clock       clock.Clock
}

// NewRouterWithOptions constructs the API HTTP router.
func NewRouterWithOptions(s *Server, opts RouterOptions) http.Handler {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	authMW := opts.AuthMiddleware
	if authMW == nil {
		authMW = denyAll
	}
	clk := opts.Clock
	if clk == nil {
		clk = platformclock.NewSystemClock()
	}
	idem := Idempotent(opts.Idempotency, clk, log)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(AccessLog(log, opts.Observer))
	r.Use(middleware.Recoverer)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, "NOT_FOUND", "route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed", nil)
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics)
	}
	if opts.UploadDir != "" {
		r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(opts.UploadDir))))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/login", s.Login)
		r.Post("/admin/login", s.LoginAdmin)
		r.Post("/captain/login", s.LoginCaptain)
		r.Post("/change-password", s.ChangePassword)
		r.Post("/captain/change-password", s.ChangeCaptainPassword)

		r.Group(func(r chi.Router) {
			r.Use(authMW)

			r.Post("/logout", s.Logout)
			r.Get("/user-profile", s.GetUserProfile)
			r.Post("/update-profile", s.UpdateProfile)
			r.Post("/user-profile/image", s.UploadProfileImage)

			r.Route("/users", func(r chi.Router) {
				r.Get("/", s.ListUsers)
				r.Get("/jamiyat-jamaat", s.JamiyatJamaatCounts)
				r.Get("/{id}", s.GetUser)

				r.Group(func(r chi.Router) {
					r.Use(RequireRole(domain.RoleResourceAdmin))
					r.With(idem).Post("/", s.AddUser)
					r.Put("/{id}", s.EditUser)
					r.Delete("/{id}", s.DeleteUser)
				})
			})

			r.Route("/miqaat", func(r chi.Router) {
				r.Get("/", s.ListMiqaats)
				r.Get("/member/{memberId}", s.ListMiqaatsForCurrentUser)
				r.Get("/{id}", s.GetMiqaat)
				r.Patch("/{id}/member/{memberId}/status", s.UpdateMemberMiqaatStatus)

				r.With(RequireRole(domain.RoleCaptain), idem).Post("/", s.CreateMiqaat)
				r.With(RequireRole(domain.RoleResourceAdmin)).Patch("/{id}/approval", s.UpdateMiqaatApproval)
				r.Group(func(r chi.Router) {
					r.Use(RequireRole(domain.RoleCaptain, domain.RoleResourceAdmin))
					r.Put("/{id}", s.UpdateMiqaat)
					r.Delete("/{id}", s.DeleteMiqaat)
					r.Get("/{id}/members", s.ListMiqaatMembers)
				})
			})
		})
	})
	return r
}

func denyAll(http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "authentication is not configured", nil)
	})
}
