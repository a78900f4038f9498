package services

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"mesaclub/reservas/internal/common"
	"mesaclub/reservas/internal/constants"
	"mesaclub/reservas/internal/models/dtos"
	gormModels "mesaclub/reservas/internal/models/gorm"
)

// PassService issues and revokes additional passes for approved
// reservations.
type PassService struct {
	db       *gorm.DB
	minter   *common.QRMinter
	notifier Notifier
}

func NewPassService(db *gorm.DB, minter *common.QRMinter, notifier Notifier) *PassService {
	return &PassService{db: db, minter: minter, notifier: notifier}
}

// Create issues a pass while the reservation is APPROVED and the seat
// count (guests plus active passes) still fits the table capacity.
func (svc *PassService) Create(ctx context.Context, actor Actor, req *dtos.CreatePassReq) (*dtos.PassView, error) {
	var fields []string
	if len(req.GuestName) < 2 {
		fields = append(fields, "guestName")
	}
	if len(req.GuestCI) < 5 {
		fields = append(fields, "guestCI")
	}
	if len(req.Reason) < constants.MinReasonLen {
		fields = append(fields, "reason")
	}
	if len(fields) > 0 {
		return nil, NewValidationError("Datos de pase inválidos", fields...)
	}

	var reservation gormModels.Reservation
	err := svc.db.WithContext(ctx).
		Preload("Event").
		Preload("RelatorMain").
		Where("id = ?", req.ReservationID).
		First(&reservation).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, NewNotFoundError(constants.MsgReservationNotFound)
		}
		return nil, fmt.Errorf("failed to load reservation: %w", err)
	}

	if reservation.RelatorMainID != actor.ID && !actor.IsAdmin() && actor.Role != constants.RoleApprover {
		return nil, NewForbiddenError(constants.MsgForbidden)
	}

	if reservation.Status != constants.ReservationApproved {
		return nil, NewPreconditionError(constants.MsgOnlyApproved)
	}

	pass := gormModels.AdditionalPass{
		ReservationID: reservation.ID,
		GuestName:     req.GuestName,
		GuestCI:       req.GuestCI,
		GuestPhone:    req.GuestPhone,
		QRCode:        svc.minter.MintPassToken(),
		Reason:        req.Reason,
		Status:        constants.PassActive,
		CreatedByID:   actor.ID,
	}

	err = svc.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Capacity is checked under the row lock so two concurrent
		// creations cannot both take the last seat.
		occupied, err := lockedSeatCount(tx, reservation.ID)
		if err != nil {
			return err
		}
		if occupied+1 > reservation.TableType.Capacity() {
			return NewCapacityError(constants.MsgCapacityExceeded)
		}

		if err := tx.Create(&pass).Error; err != nil {
			return fmt.Errorf("failed to create pass: %w", err)
		}

		return writeAudit(tx, actor.ID, constants.ActionCreateAdditionalPass, "additional_pass", pass.ID, &reservation.ID, nil, map[string]interface{}{
			"guest_name": pass.GuestName,
			"reason":     pass.Reason,
		})
	})
	if err != nil {
		return nil, err
	}

	svc.notifier.PassCreated(ctx, reservation.RelatorMain.Email, pass.GuestName, reservation.Event.Name, pass.QRCode)

	return passView(&pass), nil
}

// Revoke frees the pass's seat. Blocked once the pass was validated at
// the door.
func (svc *PassService) Revoke(ctx context.Context, actor Actor, passID string, req *dtos.RevokePassReq) (*dtos.PassView, error) {
	if len(req.Reason) < constants.MinReasonLen {
		return nil, NewValidationError("La razón debe tener al menos 10 caracteres", "reason")
	}

	if !actor.IsAdmin() && actor.Role != constants.RoleApprover {
		return nil, NewForbiddenError(constants.MsgForbidden)
	}

	var pass gormModels.AdditionalPass
	err := svc.db.WithContext(ctx).Where("id = ?", passID).First(&pass).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, NewNotFoundError(constants.MsgPassNotFound)
		}
		return nil, fmt.Errorf("failed to load pass: %w", err)
	}

	if pass.QRValidated || pass.Status == constants.PassUsed {
		return nil, NewConflictError(constants.MsgPassUsed)
	}
	if pass.Status == constants.PassRevoked {
		return nil, NewConflictError(constants.MsgPassRevoked)
	}

	err = svc.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&gormModels.AdditionalPass{}).
			Where("id = ? AND status = ? AND qr_validated = ?", pass.ID, constants.PassActive, false).
			Update("status", constants.PassRevoked)
		if res.Error != nil {
			return fmt.Errorf("failed to revoke pass: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return NewConflictError(constants.MsgPassUsed)
		}

		return writeAudit(tx, actor.ID, constants.ActionRevokeAdditionalPass, "additional_pass", pass.ID, &pass.ReservationID,
			map[string]interface{}{"status": string(constants.PassActive)},
			map[string]interface{}{"status": string(constants.PassRevoked), "reason": req.Reason},
		)
	})
	if err != nil {
		return nil, err
	}

	pass.Status = constants.PassRevoked
	return passView(&pass), nil
}

// QRImage renders the pass token as a PNG data URL for reprints.
func (svc *PassService) QRImage(ctx context.Context, passID string) (*dtos.PassQRResp, error) {
	var pass gormModels.AdditionalPass
	err := svc.db.WithContext(ctx).Where("id = ?", passID).First(&pass).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, NewNotFoundError(constants.MsgPassNotFound)
		}
		return nil, fmt.Errorf("failed to load pass: %w", err)
	}

	img, err := common.RenderPNG(pass.QRCode, 256)
	if err != nil {
		return nil, err
	}

	return &dtos.PassQRResp{
		QRCode:    pass.QRCode,
		QRImage:   img,
		GuestName: pass.GuestName,
		GuestCI:   pass.GuestCI,
	}, nil
}

func passView(pass *gormModels.AdditionalPass) *dtos.PassView {
	return &dtos.PassView{
		ID:            pass.ID,
		ReservationID: pass.ReservationID,
		GuestName:     pass.GuestName,
		GuestCI:       pass.GuestCI,
		QRCode:        pass.QRCode,
		Status:        string(pass.Status),
		Reason:        pass.Reason,
		QRValidated:   pass.QRValidated,
		ValidatedAt:   pass.ValidatedAt,
	}
}
