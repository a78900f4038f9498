package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"mesaclub/reservas/internal/common"
	"mesaclub/reservas/internal/constants"
	"mesaclub/reservas/internal/metrics"
	"mesaclub/reservas/internal/models/dtos"
	"mesaclub/reservas/internal/services"
)

// ValidatorWorkflow is the service surface the door handlers depend on.
type ValidatorWorkflow interface {
	Scan(ctx context.Context, actor services.Actor, qrCode string) (*dtos.ScanResp, error)
	Stats(ctx context.Context, actor services.Actor) (*dtos.ValidatorStatsResp, error)
}

// ScanHandler handles POST /api/v1/validator/scan
func ScanHandler(svc ValidatorWorkflow, metricsReg *metrics.MetricsRegistry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		actor, ok := actorFromRequest(r)
		if !ok {
			common.RespondError(w, initTime, nil, "Unauthorized: missing claims", http.StatusUnauthorized)
			return
		}

		var req dtos.ScanReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			common.RespondError(w, initTime, err, "Invalid request body", http.StatusBadRequest)
			return
		}

		resp, err := svc.Scan(r.Context(), actor, req.QRCode)
		if err != nil {
			if metricsReg != nil {
				metricsReg.ScansTotal.WithLabelValues("rejected").Inc()
			}
			respondServiceError(w, initTime, err)
			return
		}

		if metricsReg != nil {
			metricsReg.ScansTotal.WithLabelValues("accepted").Inc()
		}

		common.RespondSuccess(w, initTime, constants.MsgAccessGranted, resp)
	}
}

// ValidatorStatsHandler handles GET /api/v1/validator/stats
func ValidatorStatsHandler(svc ValidatorWorkflow) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		actor, ok := actorFromRequest(r)
		if !ok {
			common.RespondError(w, initTime, nil, "Unauthorized: missing claims", http.StatusUnauthorized)
			return
		}

		resp, err := svc.Stats(r.Context(), actor)
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}

		common.RespondSuccess(w, initTime, "", resp)
	}
}
