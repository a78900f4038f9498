package routes

import (
	"github.com/go-chi/chi/v5"

	"mesaclub/reservas/internal/api"
	"mesaclub/reservas/internal/config"
	"mesaclub/reservas/internal/constants"
	"mesaclub/reservas/internal/middleware"
)

// RegisterAPIRoutes registers all API v1 routes and handlers.
// This keeps API route registration separate from the main router setup.
func RegisterAPIRoutes(r chi.Router, cfg config.Config, deps *api.Dependencies) {
	svcs := deps.Services
	metricsReg := deps.Metrics

	r.Route("/api/v1", func(v1 chi.Router) {
		v1.Use(middleware.MetricsMiddleware(metricsReg))
		v1.Use(middleware.AuthMiddleware(cfg.JWTSecret)) // global: all workflow routes need an authenticated actor

		// Reservations
		v1.Group(func(relator chi.Router) {
			relator.Use(middleware.RequireRole(constants.RoleRelator))
			relator.Post("/reservations", api.CreateReservationHandler(svcs.Reservations, metricsReg))
			relator.Post("/reservations/{id}/cancel", api.CancelReservationHandler(svcs.Reservations))
			relator.Patch("/reservations/{id}", api.UpdateReservationHandler(svcs.Reservations))
		})
		v1.Get("/reservations/{id}", api.GetReservationHandler(svcs.Reservations))

		// Approvals
		v1.Group(func(approver chi.Router) {
			approver.Use(middleware.RequireRole(constants.RoleApprover))
			approver.Get("/approvals/pending", api.PendingApprovalsHandler(svcs.Approvals))
			approver.Post("/approvals/{id}/decide", api.DecideApprovalHandler(svcs.Approvals, metricsReg))
		})

		// Entry validation, rate limited per door device
		v1.Group(func(validator chi.Router) {
			validator.Use(middleware.RequireRole(constants.RoleValidator))
			validator.With(middleware.RateLimitMiddleware).Post("/validator/scan", api.ScanHandler(svcs.Validator, metricsReg))
			validator.Get("/validator/stats", api.ValidatorStatsHandler(svcs.Validator))
		})

		// Transfers
		v1.Group(func(relator chi.Router) {
			relator.Use(middleware.RequireRole(constants.RoleRelator, constants.RoleApprover))
			relator.Post("/transfers", api.ExecuteTransferHandler(svcs.Transfers, metricsReg))
			relator.Get("/transfers/history/{id}", api.TransferHistoryHandler(svcs.Transfers))
		})

		// Additional passes
		v1.Group(func(passes chi.Router) {
			passes.Use(middleware.RequireRole(constants.RoleRelator, constants.RoleApprover))
			passes.Post("/passes", api.CreatePassHandler(svcs.Passes))
			passes.Post("/passes/{id}/revoke", api.RevokePassHandler(svcs.Passes))
			passes.Get("/passes/{id}/qr", api.PassQRHandler(svcs.Passes))
		})
	})
}
