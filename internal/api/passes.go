package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"mesaclub/reservas/internal/common"
	"mesaclub/reservas/internal/models/dtos"
	"mesaclub/reservas/internal/services"
)

// PassWorkflow is the service surface the additional-pass handlers
// depend on.
type PassWorkflow interface {
	Create(ctx context.Context, actor services.Actor, req *dtos.CreatePassReq) (*dtos.PassView, error)
	Revoke(ctx context.Context, actor services.Actor, passID string, req *dtos.RevokePassReq) (*dtos.PassView, error)
	QRImage(ctx context.Context, passID string) (*dtos.PassQRResp, error)
}

// CreatePassHandler handles POST /api/v1/passes
func CreatePassHandler(svc PassWorkflow) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		actor, ok := actorFromRequest(r)
		if !ok {
			common.RespondError(w, initTime, nil, "Unauthorized: missing claims", http.StatusUnauthorized)
			return
		}

		var req dtos.CreatePassReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			common.RespondError(w, initTime, err, "Invalid request body", http.StatusBadRequest)
			return
		}

		resp, err := svc.Create(r.Context(), actor, &req)
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}

		common.RespondSuccess(w, initTime, "Pase creado", resp, http.StatusCreated)
	}
}

// RevokePassHandler handles POST /api/v1/passes/{id}/revoke
func RevokePassHandler(svc PassWorkflow) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		actor, ok := actorFromRequest(r)
		if !ok {
			common.RespondError(w, initTime, nil, "Unauthorized: missing claims", http.StatusUnauthorized)
			return
		}

		var req dtos.RevokePassReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			common.RespondError(w, initTime, err, "Invalid request body", http.StatusBadRequest)
			return
		}

		passID := chi.URLParam(r, "id")
		resp, err := svc.Revoke(r.Context(), actor, passID, &req)
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}

		common.RespondSuccess(w, initTime, "Pase revocado", resp)
	}
}

// PassQRHandler handles GET /api/v1/passes/{id}/qr
func PassQRHandler(svc PassWorkflow) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		passID := chi.URLParam(r, "id")
		resp, err := svc.QRImage(r.Context(), passID)
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}

		common.RespondSuccess(w, initTime, "", resp)
	}
}
