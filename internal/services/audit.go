package services

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"mesaclub/reservas/internal/constants"
	gormModels "mesaclub/reservas/internal/models/gorm"
)

// writeAudit appends one audit row inside the caller's transaction. The
// row commits or rolls back together with the mutation it records.
func writeAudit(tx *gorm.DB, actorID string, action constants.AuditAction, entity, entityID string, reservationID *string, oldData, newData map[string]interface{}) error {
	row := gormModels.AuditLog{
		UserID:        actorID,
		Action:        action,
		Entity:        entity,
		EntityID:      entityID,
		ReservationID: reservationID,
		OldData:       oldData,
		NewData:       newData,
	}
	if err := tx.Create(&row).Error; err != nil {
		return fmt.Errorf("failed to write audit row: %w", err)
	}
	return nil
}

// lockedSeatCount locks the reservation row and counts its occupied
// seats (guests plus active passes) inside the caller's transaction, so
// concurrent capacity checks serialize on the row instead of racing.
func lockedSeatCount(tx *gorm.DB, reservationID string) (int, error) {
	var locked gormModels.Reservation
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", reservationID).
		First(&locked).Error
	if err != nil {
		return 0, fmt.Errorf("failed to lock reservation: %w", err)
	}

	var guests int64
	err = tx.Model(&gormModels.Guest{}).
		Where("reservation_id = ?", reservationID).
		Count(&guests).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count guests: %w", err)
	}

	var passes int64
	err = tx.Model(&gormModels.AdditionalPass{}).
		Where("reservation_id = ? AND status = ?", reservationID, constants.PassActive).
		Count(&passes).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count passes: %w", err)
	}

	return int(guests + passes), nil
}

// reservationSnapshot captures the structural fields the transfer audit
// trail diffs against.
func reservationSnapshot(r *gormModels.Reservation) map[string]interface{} {
	return map[string]interface{}{
		"event_id":         r.EventID,
		"sector_id":        r.SectorID,
		"table_type":       string(r.TableType),
		"status":           string(r.Status),
		"relator_main_id":  r.RelatorMainID,
		"responsible_name": r.ResponsibleName,
	}
}
