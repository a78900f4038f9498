package api

import (
	"errors"
	"net/http"
	"time"

	"mesaclub/reservas/internal/auth"
	"mesaclub/reservas/internal/common"
	"mesaclub/reservas/internal/services"
)

// actorFromRequest builds the service-layer actor from the JWT claims.
func actorFromRequest(r *http.Request) (services.Actor, bool) {
	claims := auth.GetUserClaims(r.Context())
	if claims == nil {
		return services.Actor{}, false
	}
	return services.Actor{
		ID:    claims.UserID(),
		Role:  claims.Role(),
		Email: claims.Email(),
	}, true
}

// respondServiceError maps a WorkflowError to its HTTP status and field
// list; anything else is a 500.
func respondServiceError(w http.ResponseWriter, initTime time.Time, err error) {
	var werr *services.WorkflowError
	if errors.As(err, &werr) {
		if len(werr.Fields) > 0 {
			common.RespondErrorFields(w, initTime, werr.Message, werr.Fields)
			return
		}
		common.RespondError(w, initTime, werr, werr.Message, werr.HTTPStatus())
		return
	}
	common.RespondError(w, initTime, err, "Error interno del servidor", http.StatusInternalServerError)
}
