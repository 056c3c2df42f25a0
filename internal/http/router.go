package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	redisadapter "github.com/robertarktes/tourinfo/internal/adapters/redis"
	"github.com/robertarktes/tourinfo/internal/observability"
	"github.com/robertarktes/tourinfo/internal/rateLimit"
)

func SetupRouter(h *Handlers, logger observability.Logger, rl *rateLimit.RateLimiter, cache *redisadapter.Cache) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(RequestIDMiddleware)
	r.Use(LoggerMiddleware(logger))
	r.Use(MetricsMiddleware)
	r.Use(TracingMiddleware)
	r.Use(VisitMiddleware(cache))
	r.Use(RateLimitMiddleware(rl))

	r.Post("/v1/reservations", h.CreateReservation)
	r.Get("/v1/reservations/{id}", h.GetReservation)
	r.Patch("/v1/reservations/{id}/status", h.UpdateReservationStatus)
	r.Get("/v1/stats", h.Stats)
	r.Get("/v1/notifications", h.ListNotifications)
	r.Get("/v1/notifications/unread-count", h.UnreadCount)
	r.Post("/v1/notifications/{id}/read", h.MarkNotificationRead)
	r.Delete("/v1/notifications/{id}", h.DeleteNotification)
	r.Get("/v1/admin/notices", h.AdminNotices)
	r.Get("/v1/healthz", h.Healthz)
	r.Get("/v1/readyz", h.Readyz)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	return r
}
