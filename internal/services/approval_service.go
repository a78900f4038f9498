package services

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"mesaclub/reservas/internal/constants"
	"mesaclub/reservas/internal/db/repositories"
	"mesaclub/reservas/internal/models/dtos"
	gormModels "mesaclub/reservas/internal/models/gorm"
)

// ApprovalService processes approve/reject decisions on routed
// reservations and serves the approver's inbox.
type ApprovalService struct {
	db        *gorm.DB
	notifier  Notifier
	reporting *repositories.ReportingRepository
}

func NewApprovalService(db *gorm.DB, notifier Notifier, reporting *repositories.ReportingRepository) *ApprovalService {
	return &ApprovalService{db: db, notifier: notifier, reporting: reporting}
}

// Pending lists the actor's open approvals, newest first.
func (svc *ApprovalService) Pending(ctx context.Context, actor Actor) ([]dtos.PendingApprovalView, error) {
	rows, err := svc.reporting.PendingApprovals(ctx, actor.ID)
	if err != nil {
		return nil, err
	}

	views := make([]dtos.PendingApprovalView, 0, len(rows))
	for _, row := range rows {
		views = append(views, dtos.PendingApprovalView{
			ID:              row.ID,
			ReservationID:   row.ReservationID,
			EventID:         row.EventID,
			SectorID:        row.SectorID,
			TableType:       row.TableType,
			ResponsibleName: row.ResponsibleName,
			RelatorMainID:   row.RelatorMainID,
			CreatedAt:       row.CreatedAt,
		})
	}
	return views, nil
}

// Decide applies the verdict atomically with the reservation's status
// flip. Only the assigned approver or an admin may decide; a decided
// approval is terminal.
func (svc *ApprovalService) Decide(ctx context.Context, actor Actor, approvalID string, req *dtos.DecideApprovalReq) (*dtos.DecisionResp, error) {
	if req.Decision != "APPROVE" && req.Decision != "REJECT" {
		return nil, NewValidationError("Decisión inválida", "decision")
	}
	if req.Decision == "REJECT" && len(req.Comments) < constants.MinCommentLen {
		return nil, NewValidationError("El motivo de rechazo es obligatorio", "comments")
	}

	var approval gormModels.Approval
	err := svc.db.WithContext(ctx).Where("id = ?", approvalID).First(&approval).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, NewNotFoundError(constants.MsgApprovalNotFound)
		}
		return nil, fmt.Errorf("failed to load approval: %w", err)
	}

	if approval.ApproverID != actor.ID && !actor.IsAdmin() {
		return nil, NewForbiddenError(constants.MsgForbidden)
	}

	if approval.Status != constants.ApprovalPending {
		return nil, NewConflictError(constants.MsgApprovalDecided)
	}

	var reservation gormModels.Reservation
	err = svc.db.WithContext(ctx).
		Preload("Guests").
		Preload("Event").
		Preload("Sector").
		Preload("RelatorMain").
		Where("id = ?", approval.ReservationID).
		First(&reservation).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load reservation: %w", err)
	}

	newApprovalStatus := constants.ApprovalApproved
	newReservationStatus := constants.ReservationApproved
	action := constants.ActionApproveReservation
	if req.Decision == "REJECT" {
		newApprovalStatus = constants.ApprovalRejected
		newReservationStatus = constants.ReservationRejected
		action = constants.ActionRejectReservation
	}

	now := time.Now()
	oldStatus := reservation.Status

	err = svc.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Conditional update so two racing decisions cannot both win.
		res := tx.Model(&gormModels.Approval{}).
			Where("id = ? AND status = ?", approval.ID, constants.ApprovalPending).
			Updates(map[string]interface{}{
				"status":      newApprovalStatus,
				"comments":    req.Comments,
				"approved_at": now,
			})
		if res.Error != nil {
			return fmt.Errorf("failed to decide approval: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return NewConflictError(constants.MsgApprovalDecided)
		}

		// Bare model: the loaded reservation carries preloaded
		// associations gorm would otherwise write back.
		err := tx.Model(&gormModels.Reservation{}).
			Where("id = ?", reservation.ID).
			Update("status", newReservationStatus).Error
		if err != nil {
			return fmt.Errorf("failed to update reservation status: %w", err)
		}

		return writeAudit(tx, actor.ID, action, "approval", approval.ID, &reservation.ID,
			map[string]interface{}{"status": string(oldStatus)},
			map[string]interface{}{"status": string(newReservationStatus), "comments": req.Comments},
		)
	})
	if err != nil {
		return nil, err
	}

	if req.Decision == "APPROVE" {
		svc.notifier.ReservationApproved(ctx, reservation.RelatorMain.Email, reservation.Event.Name, reservation.Sector.Name, reservation.Guests, reservation.RelatorMainID, reservation.ID)
	} else {
		svc.notifier.ReservationRejected(ctx, reservation.RelatorMain.Email, req.Comments, reservation.RelatorMainID, reservation.ID)
	}

	return &dtos.DecisionResp{
		ApprovalID:        approval.ID,
		ReservationID:     reservation.ID,
		ReservationStatus: string(newReservationStatus),
	}, nil
}
