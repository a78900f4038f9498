package services

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/gorm"

	"mesaclub/reservas/internal/common"
	"mesaclub/reservas/internal/constants"
	"mesaclub/reservas/internal/db/repositories"
	"mesaclub/reservas/internal/logging"
	"mesaclub/reservas/internal/models/dtos"
	gormModels "mesaclub/reservas/internal/models/gorm"
)

// TransferService applies structural mutations to approved reservations.
// Every kind runs in one transaction and appends an audit row with the
// old and new structural values plus the caller's reason.
type TransferService struct {
	db        *gorm.DB
	minter    *common.QRMinter
	notifier  Notifier
	reporting *repositories.ReportingRepository
}

func NewTransferService(db *gorm.DB, minter *common.QRMinter, notifier Notifier, reporting *repositories.ReportingRepository) *TransferService {
	return &TransferService{db: db, minter: minter, notifier: notifier, reporting: reporting}
}

// Execute dispatches on the transfer kind after the shared gates:
// reason length, ownership and APPROVED status.
func (svc *TransferService) Execute(ctx context.Context, actor Actor, req *dtos.TransferReq) (*dtos.TransferResp, error) {
	kind := constants.TransferType(req.TransferType)
	if !kind.Valid() {
		return nil, NewValidationError("Tipo de transferencia inválido", "transferType")
	}
	if len(req.Reason) < constants.MinReasonLen {
		return nil, NewValidationError("La razón debe tener al menos 10 caracteres", "reason")
	}

	var reservation gormModels.Reservation
	err := svc.db.WithContext(ctx).
		Preload("Guests").
		Preload("Sector").
		Preload("RelatorMain").
		Where("id = ?", req.ReservationID).
		First(&reservation).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, NewNotFoundError(constants.MsgReservationNotFound)
		}
		return nil, fmt.Errorf("failed to load reservation: %w", err)
	}

	if reservation.RelatorMainID != actor.ID && !actor.IsAdmin() {
		return nil, NewForbiddenError(constants.MsgForbidden)
	}

	if reservation.Status != constants.ReservationApproved {
		return nil, NewPreconditionError(constants.MsgOnlyApproved)
	}

	var resp *dtos.TransferResp
	switch kind {
	case constants.TransferSector:
		resp, err = svc.transferSector(ctx, actor, &reservation, req)
	case constants.TransferEvent:
		resp, err = svc.transferEvent(ctx, actor, &reservation, req)
	case constants.TransferRelator:
		resp, err = svc.transferRelator(ctx, actor, &reservation, req)
	case constants.TransferTableType:
		resp, err = svc.changeTableType(ctx, actor, &reservation, req)
	case constants.TransferMerge:
		resp, err = svc.merge(ctx, actor, &reservation, req)
	case constants.TransferSplit:
		resp, err = svc.split(ctx, actor, &reservation, req)
	}
	if err != nil {
		return nil, err
	}

	if req.NotifyUsers {
		svc.notifier.ReservationTransferred(ctx, reservation.RelatorMain.Email, string(kind), req.Reason, reservation.RelatorMainID, reservation.ID)
	}

	return resp, nil
}

// transferSector moves the reservation to another sector. If the target
// requires approval and the source did not, the reservation drops back
// to PENDING and a new approval is routed.
func (svc *TransferService) transferSector(ctx context.Context, actor Actor, reservation *gormModels.Reservation, req *dtos.TransferReq) (*dtos.TransferResp, error) {
	if req.NewSectorID == nil {
		return nil, NewValidationError("Sector destino requerido", "newSectorId")
	}

	var target gormModels.Sector
	err := svc.db.WithContext(ctx).Preload("Approvers", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	}).Where("id = ? AND is_active = ?", *req.NewSectorID, true).First(&target).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, NewNotFoundError(constants.MsgSectorNotFound)
		}
		return nil, fmt.Errorf("failed to load target sector: %w", err)
	}

	oldData := reservationSnapshot(reservation)
	newStatus := reservation.Status
	if target.RequiresApproval && !reservation.Sector.RequiresApproval {
		newStatus = constants.ReservationPending
	}

	err = svc.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Update through a bare model: the loaded struct carries preloaded
		// associations gorm would otherwise write back over the new values.
		err := tx.Model(&gormModels.Reservation{}).
			Where("id = ?", reservation.ID).
			Updates(map[string]interface{}{
				"sector_id": target.ID,
				"status":    newStatus,
			}).Error
		if err != nil {
			return fmt.Errorf("failed to move sector: %w", err)
		}

		if newStatus == constants.ReservationPending {
			if len(target.Approvers) > 0 {
				approval := gormModels.Approval{
					ReservationID: reservation.ID,
					ApproverID:    target.Approvers[0].UserID,
					Status:        constants.ApprovalPending,
				}
				if err := tx.Create(&approval).Error; err != nil {
					return fmt.Errorf("failed to route approval: %w", err)
				}
			} else {
				logging.Warn("Sector transfer left reservation pending with no approver",
					"reservation_id", reservation.ID,
					"sector_id", target.ID,
				)
			}
		}

		newData := reservationSnapshot(reservation)
		newData["sector_id"] = target.ID
		newData["status"] = string(newStatus)
		newData["reason"] = req.Reason

		return writeAudit(tx, actor.ID, constants.ActionTransferSector, "reservation", reservation.ID, &reservation.ID, oldData, newData)
	})
	if err != nil {
		return nil, err
	}

	return &dtos.TransferResp{
		TransferType:  string(constants.TransferSector),
		ReservationID: reservation.ID,
		Status:        string(newStatus),
	}, nil
}

// transferEvent moves the reservation to another event. Attendance must
// be re-proven: every guest gets a fresh QR token with validation
// cleared, and the reservation drops back to PENDING unconditionally.
func (svc *TransferService) transferEvent(ctx context.Context, actor Actor, reservation *gormModels.Reservation, req *dtos.TransferReq) (*dtos.TransferResp, error) {
	if req.NewEventID == nil {
		return nil, NewValidationError("Evento destino requerido", "newEventId")
	}

	var target gormModels.Event
	err := svc.db.WithContext(ctx).Where("id = ? AND is_active = ?", *req.NewEventID, true).First(&target).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, NewNotFoundError(constants.MsgEventNotFound)
		}
		return nil, fmt.Errorf("failed to load target event: %w", err)
	}

	var configured int64
	err = svc.db.WithContext(ctx).Model(&gormModels.EventSector{}).
		Where("event_id = ? AND sector_id = ?", target.ID, reservation.SectorID).
		Count(&configured).Error
	if err != nil {
		return nil, fmt.Errorf("failed to check event sector: %w", err)
	}
	if configured == 0 {
		return nil, NewNotFoundError(constants.MsgSectorNotFound)
	}

	oldData := reservationSnapshot(reservation)

	err = svc.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&gormModels.Reservation{}).
			Where("id = ?", reservation.ID).
			Updates(map[string]interface{}{
				"event_id": target.ID,
				"status":   constants.ReservationPending,
			}).Error
		if err != nil {
			return fmt.Errorf("failed to move event: %w", err)
		}

		for i := range reservation.Guests {
			g := &reservation.Guests[i]
			err := tx.Model(&gormModels.Guest{}).
				Where("id = ?", g.ID).
				Updates(map[string]interface{}{
					"qr_code":      svc.minter.MintGuestToken(),
					"qr_validated": false,
					"validated_at": nil,
				}).Error
			if err != nil {
				return fmt.Errorf("failed to regenerate guest QR: %w", err)
			}
		}

		newData := reservationSnapshot(reservation)
		newData["event_id"] = target.ID
		newData["status"] = string(constants.ReservationPending)
		newData["reason"] = req.Reason
		newData["qrs_regenerated"] = len(reservation.Guests)

		return writeAudit(tx, actor.ID, constants.ActionTransferEvent, "reservation", reservation.ID, &reservation.ID, oldData, newData)
	})
	if err != nil {
		return nil, err
	}

	return &dtos.TransferResp{
		TransferType:   string(constants.TransferEvent),
		ReservationID:  reservation.ID,
		Status:         string(constants.ReservationPending),
		RegeneratedQRs: true,
	}, nil
}

func (svc *TransferService) transferRelator(ctx context.Context, actor Actor, reservation *gormModels.Reservation, req *dtos.TransferReq) (*dtos.TransferResp, error) {
	if req.NewRelatorID == nil {
		return nil, NewValidationError("Relacionador destino requerido", "newRelatorId")
	}

	var relator gormModels.User
	err := svc.db.WithContext(ctx).
		Where("id = ? AND role = ? AND is_active = ?", *req.NewRelatorID, constants.RoleRelator, true).
		First(&relator).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, NewNotFoundError("Relacionador no válido")
		}
		return nil, fmt.Errorf("failed to load relator: %w", err)
	}

	oldData := reservationSnapshot(reservation)

	err = svc.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&gormModels.Reservation{}).
			Where("id = ?", reservation.ID).
			Update("relator_main_id", relator.ID).Error
		if err != nil {
			return fmt.Errorf("failed to reassign relator: %w", err)
		}

		newData := reservationSnapshot(reservation)
		newData["relator_main_id"] = relator.ID
		newData["reason"] = req.Reason

		return writeAudit(tx, actor.ID, constants.ActionTransferRelator, "reservation", reservation.ID, &reservation.ID, oldData, newData)
	})
	if err != nil {
		return nil, err
	}

	return &dtos.TransferResp{
		TransferType:  string(constants.TransferRelator),
		ReservationID: reservation.ID,
		Status:        string(reservation.Status),
	}, nil
}

// changeTableType swaps the table product in place. The occupied seat
// count (guests plus active passes) must fit the new capacity.
func (svc *TransferService) changeTableType(ctx context.Context, actor Actor, reservation *gormModels.Reservation, req *dtos.TransferReq) (*dtos.TransferResp, error) {
	if req.NewTableType == nil {
		return nil, NewValidationError("Tipo de mesa destino requerido", "newTableType")
	}
	newType := constants.TableType(*req.NewTableType)
	if !newType.Valid() {
		return nil, NewValidationError("Tipo de mesa inválido", "newTableType")
	}

	oldData := reservationSnapshot(reservation)

	err := svc.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		occupied, err := lockedSeatCount(tx, reservation.ID)
		if err != nil {
			return err
		}
		if occupied > newType.Capacity() {
			return NewCapacityError(constants.MsgCapacityExceeded)
		}

		err = tx.Model(&gormModels.Reservation{}).
			Where("id = ?", reservation.ID).
			Update("table_type", newType).Error
		if err != nil {
			return fmt.Errorf("failed to change table type: %w", err)
		}

		newData := reservationSnapshot(reservation)
		newData["table_type"] = string(newType)
		newData["reason"] = req.Reason

		return writeAudit(tx, actor.ID, constants.ActionChangeTableType, "reservation", reservation.ID, &reservation.ID, oldData, newData)
	})
	if err != nil {
		return nil, err
	}

	return &dtos.TransferResp{
		TransferType:  string(constants.TransferTableType),
		ReservationID: reservation.ID,
		Status:        string(reservation.Status),
	}, nil
}

// merge moves every guest from the source into the target reservation
// and cancels the source. Both must belong to the same event.
func (svc *TransferService) merge(ctx context.Context, actor Actor, source *gormModels.Reservation, req *dtos.TransferReq) (*dtos.TransferResp, error) {
	if req.MergeWithReservationID == nil {
		return nil, NewValidationError("Reserva destino requerida", "mergeWithReservationId")
	}

	var target gormModels.Reservation
	err := svc.db.WithContext(ctx).
		Where("id = ?", *req.MergeWithReservationID).
		First(&target).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, NewNotFoundError(constants.MsgReservationNotFound)
		}
		return nil, fmt.Errorf("failed to load target reservation: %w", err)
	}

	if target.EventID != source.EventID {
		return nil, NewValidationError("Las reservas deben pertenecer al mismo evento", "mergeWithReservationId")
	}
	if target.Status != constants.ReservationApproved {
		return nil, NewPreconditionError(constants.MsgOnlyApproved)
	}

	oldData := reservationSnapshot(source)

	err = svc.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		targetOccupied, err := lockedSeatCount(tx, target.ID)
		if err != nil {
			return err
		}

		var sourceGuests int64
		err = tx.Model(&gormModels.Guest{}).
			Where("reservation_id = ?", source.ID).
			Count(&sourceGuests).Error
		if err != nil {
			return fmt.Errorf("failed to count guests: %w", err)
		}

		if targetOccupied+int(sourceGuests) > target.TableType.Capacity() {
			return NewCapacityError(constants.MsgCapacityExceeded)
		}

		err = tx.Model(&gormModels.Guest{}).
			Where("reservation_id = ?", source.ID).
			Update("reservation_id", target.ID).Error
		if err != nil {
			return fmt.Errorf("failed to move guests: %w", err)
		}

		err = tx.Model(&gormModels.Reservation{}).
			Where("id = ?", source.ID).
			Update("status", constants.ReservationCancelled).Error
		if err != nil {
			return fmt.Errorf("failed to cancel source reservation: %w", err)
		}

		newData := reservationSnapshot(source)
		newData["status"] = string(constants.ReservationCancelled)
		newData["merged_into"] = target.ID
		newData["guests_moved"] = int(sourceGuests)
		newData["reason"] = req.Reason

		return writeAudit(tx, actor.ID, constants.ActionMergeReservations, "reservation", source.ID, &source.ID, oldData, newData)
	})
	if err != nil {
		return nil, err
	}

	return &dtos.TransferResp{
		TransferType:     string(constants.TransferMerge),
		ReservationID:    source.ID,
		NewReservationID: &target.ID,
		Status:           string(constants.ReservationCancelled),
	}, nil
}

// split moves a proper subset of the guests onto a fresh PENDING
// reservation with the same event, sector and table product.
func (svc *TransferService) split(ctx context.Context, actor Actor, source *gormModels.Reservation, req *dtos.TransferReq) (*dtos.TransferResp, error) {
	if len(req.SplitGuestIDs) == 0 {
		return nil, NewValidationError("Debe seleccionar al menos un invitado", "splitGuestIds")
	}
	if len(req.SplitGuestIDs) >= len(source.Guests) {
		return nil, NewValidationError("No se puede dividir la reserva completa", "splitGuestIds")
	}

	ownGuests := make(map[string]bool, len(source.Guests))
	for _, g := range source.Guests {
		ownGuests[g.ID] = true
	}
	for _, id := range req.SplitGuestIDs {
		if !ownGuests[id] {
			return nil, NewValidationError("Invitado no pertenece a la reserva", "splitGuestIds")
		}
	}

	responsibleName := source.ResponsibleName
	if req.NewResponsibleName != nil && *req.NewResponsibleName != "" {
		responsibleName = *req.NewResponsibleName
	}

	split := gormModels.Reservation{
		EventID:         source.EventID,
		SectorID:        source.SectorID,
		TableType:       source.TableType,
		TableClass:      source.TableClass,
		PaymentType:     source.PaymentType,
		Status:          constants.ReservationPending,
		RelatorMainID:   source.RelatorMainID,
		ResponsibleName: responsibleName,
	}

	oldData := reservationSnapshot(source)

	err := svc.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&split).Error; err != nil {
			return fmt.Errorf("failed to create split reservation: %w", err)
		}

		err := tx.Model(&gormModels.Guest{}).
			Where("id IN ?", req.SplitGuestIDs).
			Update("reservation_id", split.ID).Error
		if err != nil {
			return fmt.Errorf("failed to reassign guests: %w", err)
		}

		newData := reservationSnapshot(source)
		newData["split_reservation_id"] = split.ID
		newData["guests_moved"] = len(req.SplitGuestIDs)
		newData["reason"] = req.Reason

		return writeAudit(tx, actor.ID, constants.ActionSplitReservation, "reservation", source.ID, &source.ID, oldData, newData)
	})
	if err != nil {
		return nil, err
	}

	return &dtos.TransferResp{
		TransferType:     string(constants.TransferSplit),
		ReservationID:    source.ID,
		NewReservationID: &split.ID,
		Status:           string(source.Status),
	}, nil
}

// History lists the audit trail of transfer actions on a reservation,
// newest first, via the reporting read path.
func (svc *TransferService) History(ctx context.Context, reservationID string) ([]dtos.TransferHistoryEntry, error) {
	rows, err := svc.reporting.TransferHistory(ctx, reservationID)
	if err != nil {
		return nil, err
	}

	entries := make([]dtos.TransferHistoryEntry, 0, len(rows))
	for _, row := range rows {
		entry := dtos.TransferHistoryEntry{
			ID:        row.ID,
			UserID:    row.UserID,
			Action:    row.Action,
			CreatedAt: row.CreatedAt,
		}
		if len(row.OldData) > 0 {
			_ = json.Unmarshal(row.OldData, &entry.OldData)
		}
		if len(row.NewData) > 0 {
			_ = json.Unmarshal(row.NewData, &entry.NewData)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
