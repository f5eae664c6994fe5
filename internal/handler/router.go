package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shibinnakam/cochin-backoffice/internal/domain"
	"github.com/shibinnakam/cochin-backoffice/pkg/health"
	"github.com/shibinnakam/cochin-backoffice/pkg/middleware"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Auth    *AuthHandler
	OAuth   *OAuthHandler
	Cart    *CartHandler
	Order   *OrderHandler
	Payment *PaymentHandler
	Staff   *StaffHandler
	HR      *HRHandler
	Guard   *Guard
	Health  *health.Handler
}

// NewRouter builds the HTTP router with the full middleware chain and the
// /api/v1 surface.
func NewRouter(h Handlers, allowedOrigins []string, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(CORS(allowedOrigins))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.PrometheusMetrics("backoffice"))

	r.Get("/healthz", h.Health.LivenessHandler())
	r.Get("/readyz", h.Health.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.Auth.Register)
			r.Post("/login", h.Auth.Login)
			r.Post("/forgot-password", h.Auth.ForgotPassword)
			r.Post("/reset-password", h.Auth.ResetPassword)
			r.Get("/google", h.OAuth.Start)
			r.Get("/google/callback", h.OAuth.Callback)

			r.Group(func(r chi.Router) {
				r.Use(h.Guard.RequireAuth)

				r.With(h.Guard.RequireSelfOrAdmin("id")).Get("/user/{id}", h.Auth.GetUser)
				r.With(h.Guard.RequireSelfOrAdmin("id")).Put("/user/update/{id}", h.Auth.UpdateUser)
				r.With(h.Guard.RequireRole(domain.RoleAdmin)).Patch("/user/{id}/verify", h.Auth.SetVerification)
				r.With(h.Guard.RequireRole(domain.RoleAdmin)).Get("/users", h.Auth.ListUsers)
				r.With(h.Guard.RequireRole(domain.RoleAdmin)).Get("/users/count", h.Auth.CountUsers)
			})
		})

		r.Route("/cart", func(r chi.Router) {
			r.Use(h.Guard.RequireAuth)

			r.Get("/", h.Cart.Get)
			r.Post("/add", h.Cart.Add)
			r.Put("/update", h.Cart.Update)
			r.Delete("/remove/{productId}", h.Cart.Remove)
			r.Delete("/", h.Cart.Clear)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Use(h.Guard.RequireAuth)

			r.With(h.Guard.RequireSelfOrAdmin("userId")).Post("/place/{userId}", h.Order.Place)
			r.With(h.Guard.RequireSelfOrAdmin("userId")).Get("/user/{userId}", h.Order.List)
			r.Get("/{id}", h.Order.Get)
		})

		r.Route("/payment", func(r chi.Router) {
			r.Use(h.Guard.RequireAuth)

			r.Post("/create-order", h.Payment.CreateOrder)
			r.Post("/verify", h.Payment.Verify)
		})

		r.Route("/staff", func(r chi.Router) {
			// The invite token is the credential for registration.
			r.Post("/register", h.Staff.Register)
			r.Get("/check-submitted/{token}", h.Staff.CheckSubmitted)

			r.Group(func(r chi.Router) {
				r.Use(h.Guard.RequireAuth)

				r.With(h.Guard.RequireRole(domain.RoleStaff, domain.RoleAdmin)).Get("/me", h.Staff.Me)
				r.With(h.Guard.RequireRole(domain.RoleStaff, domain.RoleAdmin)).Put("/update", h.Staff.Update)

				r.Group(func(r chi.Router) {
					r.Use(h.Guard.RequireRole(domain.RoleAdmin))

					r.Post("/invite", h.Staff.Invite)
					r.Post("/approve/{id}", h.Staff.Approve)
					r.Patch("/status/{id}", h.Staff.SetStatus)
					r.Get("/", h.Staff.List)
					r.Get("/count", h.Staff.Count)
					r.Get("/stats", h.Staff.Stats)
					r.Delete("/{id}", h.Staff.Delete)
				})
			})
		})

		r.Route("/resignations", func(r chi.Router) {
			r.Use(h.Guard.RequireAuth)

			r.With(h.Guard.RequireRole(domain.RoleStaff)).Post("/", h.HR.ApplyResignation)
			r.With(h.Guard.RequireRole(domain.RoleAdmin)).Get("/", h.HR.ListResignations)
			r.With(h.Guard.RequireRole(domain.RoleAdmin)).Patch("/{id}/decision", h.HR.DecideResignation)
		})

		r.Route("/leaves", func(r chi.Router) {
			r.Use(h.Guard.RequireAuth)

			r.With(h.Guard.RequireRole(domain.RoleStaff, domain.RoleAdmin)).Post("/", h.HR.RequestLeave)
			r.With(h.Guard.RequireRole(domain.RoleStaff, domain.RoleAdmin)).Get("/my", h.HR.MyLeaves)
			r.With(h.Guard.RequireRole(domain.RoleStaff, domain.RoleAdmin)).Get("/stats", h.HR.LeaveStats)
			r.With(h.Guard.RequireRole(domain.RoleAdmin)).Get("/", h.HR.ListLeaves)
			r.With(h.Guard.RequireRole(domain.RoleAdmin)).Patch("/{id}/decision", h.HR.DecideLeave)
		})
	})

	return r
}
