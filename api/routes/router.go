package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/medfinder-backend/api/controllers"
	"github.com/angelmondragon/medfinder-backend/api/middleware"
	"github.com/angelmondragon/medfinder-backend/internal/auth"
	"github.com/angelmondragon/medfinder-backend/internal/medicines"
	"github.com/angelmondragon/medfinder-backend/internal/pharmacies"
	"github.com/angelmondragon/medfinder-backend/internal/realtime"
	"github.com/angelmondragon/medfinder-backend/internal/reservations"
	"github.com/angelmondragon/medfinder-backend/internal/stock"
	"github.com/angelmondragon/medfinder-backend/pkg/auth/session"
	"github.com/angelmondragon/medfinder-backend/pkg/config"
	"github.com/angelmondragon/medfinder-backend/pkg/enums"
	"github.com/angelmondragon/medfinder-backend/pkg/logger"
	pkgredis "github.com/angelmondragon/medfinder-backend/pkg/redis"
)

// RedisStore is the slice of the redis client the HTTP layer needs.
type RedisStore interface {
	pkgredis.IdempotencyStore
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
	Ping(ctx context.Context) error
}

// Dependencies carries everything the router wires. Redis, Sessions and
// Gatherer are optional; leave them nil when the feature is not configured.
type Dependencies struct {
	DB       controllers.Pinger
	Redis    RedisStore
	Sessions session.AccessSessionChecker
	Hub      *realtime.Hub
	Gatherer prometheus.Gatherer

	Auth         auth.Service
	Register     auth.RegisterService
	Medicines    medicines.Service
	Pharmacies   pharmacies.Service
	Reservations reservations.Service
	Stock        stock.Service
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, deps.Redis))
	})

	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	if deps.Hub != nil {
		r.Get("/hubs/stock", controllers.StockStream(deps.Hub, cfg.Realtime, logg))
	}

	requireAuth := middleware.Auth(cfg.JWT, deps.Sessions, logg)
	requireAdmin := middleware.RequireRole(logg, enums.UserRoleAdmin)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(middleware.AuthRateLimit(middleware.LoginRateLimitPolicy(cfg.AuthRateLimit), deps.Redis, logg)).
				Post("/login", controllers.AuthLogin(deps.Auth, logg))
			r.With(middleware.AuthRateLimit(middleware.RegisterRateLimitPolicy(cfg.AuthRateLimit), deps.Redis, logg)).
				Post("/register", controllers.AuthRegister(deps.Register, deps.Auth, logg))

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Post("/logout", controllers.AuthLogout(deps.Auth, logg))
				r.Get("/me", controllers.AuthMe(deps.Auth, logg))
			})
		})

		r.Route("/medicines", func(r chi.Router) {
			r.Get("/search", controllers.MedicinesSearch(deps.Medicines, logg))
			r.Get("/alternatives", controllers.MedicineAlternativesByKeyword(deps.Medicines, logg))
			r.Get("/{medicineId}/alternatives", controllers.MedicineAlternatives(deps.Medicines, logg))
		})

		r.Route("/pharmacies", func(r chi.Router) {
			r.Get("/", controllers.PharmaciesList(deps.Pharmacies, logg))
			r.Get("/{pharmacyId}", controllers.PharmacyGet(deps.Pharmacies, logg))
		})

		r.Route("/reservations", func(r chi.Router) {
			r.Use(requireAuth)
			r.With(middleware.Idempotency(deps.Redis, logg)).
				Post("/", controllers.ReservationCreate(deps.Reservations, logg))
			r.Get("/me", controllers.ReservationsMine(deps.Reservations, logg))

			r.Group(func(r chi.Router) {
				r.Use(requireAdmin)
				r.Post("/{reservationId}/approve", controllers.ReservationApprove(deps.Reservations, logg))
				r.Post("/{reservationId}/reject", controllers.ReservationReject(deps.Reservations, logg))
			})
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(requireAuth, requireAdmin)
			r.Get("/reservations/pending", controllers.AdminPendingReservations(deps.Reservations, logg))
			r.Get("/stock", controllers.AdminStockList(deps.Stock, logg))
			r.Put("/stock", controllers.AdminStockUpdate(deps.Stock, logg))
		})
	})

	return r
}
