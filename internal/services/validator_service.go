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

// ValidatorService redeems entry credentials at the door. Redemption is
// exactly-once: the flip of qr_validated is a single conditional write,
// so concurrent scans of a duplicated QR image produce one success and
// the rest observe a conflict.
type ValidatorService struct {
	db        *gorm.DB
	reporting *repositories.ReportingRepository
}

func NewValidatorService(db *gorm.DB, reporting *repositories.ReportingRepository) *ValidatorService {
	return &ValidatorService{db: db, reporting: reporting}
}

// Scan looks the code up among guests first, then additional passes.
// QR codes are unique across both tables, so at most one can match.
func (svc *ValidatorService) Scan(ctx context.Context, actor Actor, qrCode string) (*dtos.ScanResp, error) {
	if qrCode == "" {
		return nil, NewValidationError(constants.MsgQRInvalid, "qrCode")
	}

	var guest gormModels.Guest
	err := svc.db.WithContext(ctx).Where("qr_code = ?", qrCode).First(&guest).Error
	if err == nil {
		return svc.redeemGuest(ctx, actor, &guest)
	}
	if err != gorm.ErrRecordNotFound {
		return nil, fmt.Errorf("failed to look up guest: %w", err)
	}

	var pass gormModels.AdditionalPass
	err = svc.db.WithContext(ctx).Where("qr_code = ?", qrCode).First(&pass).Error
	if err == nil {
		return svc.redeemPass(ctx, actor, &pass)
	}
	if err != gorm.ErrRecordNotFound {
		return nil, fmt.Errorf("failed to look up pass: %w", err)
	}

	return nil, NewNotFoundError(constants.MsgQRInvalid)
}

func (svc *ValidatorService) redeemGuest(ctx context.Context, actor Actor, guest *gormModels.Guest) (*dtos.ScanResp, error) {
	if guest.QRValidated {
		return nil, alreadyUsedError(guest.ValidatedAt)
	}

	reservation, werr := svc.loadApprovedReservation(ctx, guest.ReservationID)
	if werr != nil {
		return nil, werr
	}

	now := time.Now()

	err := svc.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&gormModels.Guest{}).
			Where("id = ? AND qr_validated = ?", guest.ID, false).
			Updates(map[string]interface{}{
				"qr_validated": true,
				"validated_at": now,
			})
		if res.Error != nil {
			return fmt.Errorf("failed to redeem guest QR: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return alreadyUsedError(guest.ValidatedAt)
		}

		return writeAudit(tx, actor.ID, constants.ActionValidateQR, "guest", guest.ID, &reservation.ID, nil, map[string]interface{}{
			"guest_name":   guest.Name,
			"validated_at": now.Format(time.RFC3339),
		})
	})
	if err != nil {
		return nil, err
	}

	return &dtos.ScanResp{
		GuestName:        guest.Name,
		GuestCI:          guest.CI,
		IsAdditionalPass: false,
		ReservationID:    reservation.ID,
		ResponsibleName:  reservation.ResponsibleName,
		TableType:        string(reservation.TableType),
		SectorName:       reservation.Sector.Name,
		EventName:        reservation.Event.Name,
		ValidatedAt:      now,
	}, nil
}

func (svc *ValidatorService) redeemPass(ctx context.Context, actor Actor, pass *gormModels.AdditionalPass) (*dtos.ScanResp, error) {
	switch {
	case pass.Status == constants.PassRevoked:
		return nil, NewConflictError(constants.MsgPassRevoked)
	case pass.QRValidated || pass.Status == constants.PassUsed:
		return nil, alreadyUsedError(pass.ValidatedAt)
	}

	reservation, werr := svc.loadApprovedReservation(ctx, pass.ReservationID)
	if werr != nil {
		return nil, werr
	}

	now := time.Now()

	err := svc.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&gormModels.AdditionalPass{}).
			Where("id = ? AND qr_validated = ? AND status = ?", pass.ID, false, constants.PassActive).
			Updates(map[string]interface{}{
				"qr_validated": true,
				"validated_at": now,
				"status":       constants.PassUsed,
			})
		if res.Error != nil {
			return fmt.Errorf("failed to redeem pass QR: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return alreadyUsedError(pass.ValidatedAt)
		}

		return writeAudit(tx, actor.ID, constants.ActionValidateAdditionalPass, "additional_pass", pass.ID, &reservation.ID, nil, map[string]interface{}{
			"guest_name":   pass.GuestName,
			"validated_at": now.Format(time.RFC3339),
		})
	})
	if err != nil {
		return nil, err
	}

	return &dtos.ScanResp{
		GuestName:        pass.GuestName,
		GuestCI:          pass.GuestCI,
		IsAdditionalPass: true,
		ReservationID:    reservation.ID,
		ResponsibleName:  reservation.ResponsibleName,
		TableType:        string(reservation.TableType),
		SectorName:       reservation.Sector.Name,
		EventName:        reservation.Event.Name,
		ValidatedAt:      now,
	}, nil
}

func (svc *ValidatorService) loadApprovedReservation(ctx context.Context, reservationID string) (*gormModels.Reservation, *WorkflowError) {
	var reservation gormModels.Reservation
	err := svc.db.WithContext(ctx).
		Preload("Event").
		Preload("Sector").
		Where("id = ?", reservationID).
		First(&reservation).Error
	if err != nil {
		return nil, NewNotFoundError(constants.MsgReservationNotFound)
	}
	if reservation.Status != constants.ReservationApproved {
		return nil, NewPreconditionError(constants.MsgReservationNotApproved)
	}
	return &reservation, nil
}

// Stats aggregates validation counters for the door dashboard via the
// reporting read path.
func (svc *ValidatorService) Stats(ctx context.Context, actor Actor) (*dtos.ValidatorStatsResp, error) {
	totals, err := svc.reporting.ValidatorTotals(ctx)
	if err != nil {
		return nil, err
	}

	today, err := svc.reporting.ValidationsToday(ctx, actor.ID)
	if err != nil {
		return nil, err
	}

	last, err := svc.reporting.LastValidation(ctx, actor.ID)
	if err != nil {
		return nil, err
	}

	return &dtos.ValidatorStatsResp{
		GuestsValidated:    totals.GuestsValidated,
		PassesValidated:    totals.PassesValidated,
		MyValidationsToday: today,
		LastValidation:     last,
	}, nil
}

func alreadyUsedError(validatedAt *time.Time) *WorkflowError {
	msg := constants.MsgQRAlreadyUsed
	if validatedAt != nil {
		msg = fmt.Sprintf("%s (%s)", msg, validatedAt.Format("02/01/2006 15:04"))
	}
	return NewConflictError(msg)
}
