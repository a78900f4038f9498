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

// ApprovalWorkflow is the service surface the approval handlers depend on.
type ApprovalWorkflow interface {
	Decide(ctx context.Context, actor services.Actor, approvalID string, req *dtos.DecideApprovalReq) (*dtos.DecisionResp, error)
	Pending(ctx context.Context, actor services.Actor) ([]dtos.PendingApprovalView, error)
}

// PendingApprovalsHandler handles GET /api/v1/approvals/pending
func PendingApprovalsHandler(svc ApprovalWorkflow) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		actor, ok := actorFromRequest(r)
		if !ok {
			common.RespondError(w, initTime, nil, "Unauthorized: missing claims", http.StatusUnauthorized)
			return
		}

		views, err := svc.Pending(r.Context(), actor)
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}

		common.RespondSuccess(w, initTime, "", views)
	}
}

// DecideApprovalHandler handles POST /api/v1/approvals/{id}/decide
func DecideApprovalHandler(svc ApprovalWorkflow, metricsReg *metrics.MetricsRegistry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		actor, ok := actorFromRequest(r)
		if !ok {
			common.RespondError(w, initTime, nil, "Unauthorized: missing claims", http.StatusUnauthorized)
			return
		}

		var req dtos.DecideApprovalReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			common.RespondError(w, initTime, err, "Invalid request body", http.StatusBadRequest)
			return
		}

		approvalID := chi.URLParam(r, "id")
		resp, err := svc.Decide(r.Context(), actor, approvalID, &req)
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}

		if metricsReg != nil {
			metricsReg.ApprovalsDecidedTotal.WithLabelValues(req.Decision).Inc()
		}

		common.RespondSuccess(w, initTime, "Decisión registrada", resp)
	}
}
