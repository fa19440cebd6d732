package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/access-management/internal/audit"
	"github.com/frahmantamala/access-management/internal/auth"
	"github.com/frahmantamala/access-management/internal/department"
	"github.com/frahmantamala/access-management/internal/menu"
	"github.com/frahmantamala/access-management/internal/permission"
	"github.com/frahmantamala/access-management/internal/request"
	"github.com/frahmantamala/access-management/internal/role"
	"github.com/frahmantamala/access-management/internal/transport/middleware"
	"github.com/frahmantamala/access-management/internal/transport/swagger"
	"github.com/frahmantamala/access-management/internal/user"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
)

// Handlers bundles every feature handler the router mounts.
type Handlers struct {
	Auth       *auth.Handler
	User       *user.Handler
	Role       *role.Handler
	Permission *permission.Handler
	Department *department.Handler
	Menu       *menu.Handler
	Request    *request.Handler
	Audit      *audit.Handler
}

// RegisterAllRoutes mounts the full API under /api/v1. Sign-in and
// forgot-password are public; everything else needs a valid token, and the
// management surface additionally passes the admin-only gate.
func RegisterAllRoutes(router *chi.Mux, db *sql.DB, h Handlers, authMW *auth.Middleware, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	router.Use(middleware.CORS)
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.RecoveryMiddleware(logger))

	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		r.Post("/sign_in", h.Auth.SignIn)
		r.Post("/auth/forgot_password", h.Auth.ForgotPassword)

		r.Group(func(pr chi.Router) {
			pr.Use(authMW.Authenticate)

			pr.Post("/auth/set_password", h.Auth.SetPassword)

			// Own effective access; available to every authenticated user.
			pr.Get("/users/permissions", h.User.MyAccess)

			// Access requests: submit and list are for everyone, review is
			// admin-only.
			pr.Route("/requests", func(rr chi.Router) {
				rr.Post("/", h.Request.Submit)
				rr.Get("/", h.Request.List)

				rr.Group(func(ar chi.Router) {
					ar.Use(authMW.AdminOnly)
					ar.Patch("/{id}/approve", h.Request.Approve)
					ar.Patch("/{id}/reject", h.Request.Reject)
				})
			})

			// Management surface, admin-only.
			pr.Group(func(ar chi.Router) {
				ar.Use(authMW.AdminOnly)

				ar.Route("/users", func(ur chi.Router) {
					ur.Get("/", h.User.List)
					ur.Post("/", h.User.Create)
					ur.Get("/{id}", h.User.Get)
					ur.Patch("/{id}", h.User.Update)
					ur.Delete("/{id}", h.User.Delete)
				})

				ar.Route("/roles", func(rr chi.Router) {
					rr.Get("/", h.Role.List)
					rr.Post("/", h.Role.Create)
					rr.Get("/{id}", h.Role.Get)
					rr.Put("/{id}", h.Role.Update)
					rr.Delete("/{id}", h.Role.Delete)
				})

				ar.Route("/permissions", func(pmr chi.Router) {
					pmr.Get("/", h.Permission.List)
					pmr.Post("/", h.Permission.Create)
					pmr.Get("/{id}", h.Permission.Get)
					pmr.Put("/{id}", h.Permission.Update)
					pmr.Delete("/{id}", h.Permission.Delete)
				})

				ar.Route("/departments", func(dr chi.Router) {
					dr.Get("/", h.Department.List)
					dr.Post("/", h.Department.Create)
					dr.Get("/{id}", h.Department.Get)
					dr.Put("/{id}", h.Department.Update)
					dr.Delete("/{id}", h.Department.Delete)
				})

				ar.Route("/menus", func(mr chi.Router) {
					mr.Get("/", h.Menu.List)
					mr.Post("/", h.Menu.Create)
					mr.Put("/{id}", h.Menu.Update)
					mr.Delete("/{id}", h.Menu.Delete)
				})

				ar.Get("/audit_logs", h.Audit.List)
			})
		})
	})
}
