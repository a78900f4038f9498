package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"mesaclub/reservas/internal/api"
	"mesaclub/reservas/internal/config"
	"mesaclub/reservas/internal/db"
	"mesaclub/reservas/internal/logging"
	"mesaclub/reservas/internal/middleware"
)

// RegisterRoutes builds the chi router with the global middleware stack
// and all API routes. The prometheus /metrics endpoint is mounted on the
// outer mux, not here.
func RegisterRoutes(cfg config.Config, deps *api.Dependencies, upSince time.Time) http.Handler {
	r := chi.NewRouter()

	// global middleware
	r.Use(middleware.RequestIDMiddleware)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://localhost:5173"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	logging.Info("Router initialized with metrics and logging middleware")

	// health check
	r.Get("/healthCheck", api.HealthCheckHandler(db.DB, upSince))

	RegisterAPIRoutes(r, cfg, deps)

	return r
}
