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
	"mesaclub/reservas/internal/services"
)

// TransferWorkflow is the service surface the transfer handlers depend on.
type TransferWorkflow interface {
	Execute(ctx context.Context, actor services.Actor, req *dtos.TransferReq) (*dtos.TransferResp, error)
	History(ctx context.Context, reservationID string) ([]dtos.TransferHistoryEntry, error)
}

// ExecuteTransferHandler handles POST /api/v1/transfers
func ExecuteTransferHandler(svc TransferWorkflow, metricsReg *metrics.MetricsRegistry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		actor, ok := actorFromRequest(r)
		if !ok {
			common.RespondError(w, initTime, nil, "Unauthorized: missing claims", http.StatusUnauthorized)
			return
		}

		var req dtos.TransferReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			common.RespondError(w, initTime, err, "Invalid request body", http.StatusBadRequest)
			return
		}

		resp, err := svc.Execute(r.Context(), actor, &req)
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}

		if metricsReg != nil {
			metricsReg.TransfersExecutedTotal.WithLabelValues(resp.TransferType).Inc()
		}

		common.RespondSuccess(w, initTime, "Transferencia ejecutada", resp)
	}
}

// TransferHistoryHandler handles GET /api/v1/transfers/history/{id}
func TransferHistoryHandler(svc TransferWorkflow) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		reservationID := chi.URLParam(r, "id")
		entries, err := svc.History(r.Context(), reservationID)
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}

		common.RespondSuccess(w, initTime, "", entries)
	}
}
