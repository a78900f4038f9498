package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"mesaclub/reservas/internal/common"
	"mesaclub/reservas/internal/metrics"
	"mesaclub/reservas/internal/models/dtos"
	gormModels "mesaclub/reservas/internal/models/gorm"
	"mesaclub/reservas/internal/services"
)

// ReservationWorkflow is the service surface the reservation handlers
// depend on.
type ReservationWorkflow interface {
	Create(ctx context.Context, actor services.Actor, req *dtos.CreateReservationReq) (*dtos.CreateReservationResp, error)
	Cancel(ctx context.Context, actor services.Actor, reservationID string) error
	Update(ctx context.Context, actor services.Actor, reservationID string, req *dtos.UpdateReservationReq) error
	Get(ctx context.Context, reservationID string) (*gormModels.Reservation, error)
}

// CreateReservationHandler handles POST /api/v1/reservations
func CreateReservationHandler(svc ReservationWorkflow, metricsReg *metrics.MetricsRegistry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		actor, ok := actorFromRequest(r)
		if !ok {
			common.RespondError(w, initTime, nil, "Unauthorized: missing claims", http.StatusUnauthorized)
			return
		}

		var req dtos.CreateReservationReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			common.RespondError(w, initTime, err, "Invalid request body", http.StatusBadRequest)
			return
		}

		resp, err := svc.Create(r.Context(), actor, &req)
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}

		if metricsReg != nil {
			metricsReg.ReservationsCreatedTotal.Inc()
		}

		common.RespondSuccess(w, initTime, "Reserva creada", resp, http.StatusCreated)
	}
}

// CancelReservationHandler handles POST /api/v1/reservations/{id}/cancel
func CancelReservationHandler(svc ReservationWorkflow) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		actor, ok := actorFromRequest(r)
		if !ok {
			common.RespondError(w, initTime, nil, "Unauthorized: missing claims", http.StatusUnauthorized)
			return
		}

		reservationID := chi.URLParam(r, "id")
		if err := svc.Cancel(r.Context(), actor, reservationID); err != nil {
			respondServiceError(w, initTime, err)
			return
		}

		common.RespondSuccess(w, initTime, "Reserva cancelada", nil)
	}
}

// UpdateReservationHandler handles PATCH /api/v1/reservations/{id}
func UpdateReservationHandler(svc ReservationWorkflow) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		actor, ok := actorFromRequest(r)
		if !ok {
			common.RespondError(w, initTime, nil, "Unauthorized: missing claims", http.StatusUnauthorized)
			return
		}

		var req dtos.UpdateReservationReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			common.RespondError(w, initTime, err, "Invalid request body", http.StatusBadRequest)
			return
		}

		reservationID := chi.URLParam(r, "id")
		if err := svc.Update(r.Context(), actor, reservationID, &req); err != nil {
			respondServiceError(w, initTime, err)
			return
		}

		common.RespondSuccess(w, initTime, "Reserva actualizada", nil)
	}
}

// GetReservationHandler handles GET /api/v1/reservations/{id}
func GetReservationHandler(svc ReservationWorkflow) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		reservationID := chi.URLParam(r, "id")
		reservation, err := svc.Get(r.Context(), reservationID)
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}

		common.RespondSuccess(w, initTime, "", reservationDetail(reservation))
	}
}

func reservationDetail(r *gormModels.Reservation) map[string]any {
	guests := make([]dtos.GuestView, len(r.Guests))
	validated := 0
	for i, g := range r.Guests {
		guests[i] = dtos.GuestView{
			ID:          g.ID,
			Name:        g.Name,
			CI:          g.CI,
			QRCode:      g.QRCode,
			QRValidated: g.QRValidated,
			ValidatedAt: g.ValidatedAt,
		}
		if g.QRValidated {
			validated++
		}
	}

	passes := make([]dtos.PassView, len(r.AdditionalPasses))
	for i := range r.AdditionalPasses {
		p := &r.AdditionalPasses[i]
		passes[i] = dtos.PassView{
			ID:            p.ID,
			ReservationID: p.ReservationID,
			GuestName:     p.GuestName,
			GuestCI:       p.GuestCI,
			QRCode:        p.QRCode,
			Status:        string(p.Status),
			Reason:        p.Reason,
			QRValidated:   p.QRValidated,
			ValidatedAt:   p.ValidatedAt,
		}
		if p.QRValidated {
			validated++
		}
	}

	return map[string]any{
		"id":               r.ID,
		"eventId":          r.EventID,
		"sectorId":         r.SectorID,
		"tableType":        string(r.TableType),
		"tableClass":       string(r.TableClass),
		"status":           string(r.Status),
		"relatorMainId":    r.RelatorMainID,
		"responsibleName":  r.ResponsibleName,
		"responsiblePhone": r.ResponsiblePhone,
		"notes":            r.Notes,
		"guests":           guests,
		"additionalPasses": passes,
		"activePassCount":  r.ActivePassCount(),
		"validatedCount":   validated,
		"createdAt":        r.CreatedAt,
	}
}
