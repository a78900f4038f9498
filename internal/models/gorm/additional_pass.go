package gorm

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"mesaclub/reservas/internal/constants"
)

// AdditionalPass is a supplementary entry credential issued after a
// reservation is approved, for a person outside the original guest list.
type AdditionalPass struct {
	ID            string               `gorm:"column:id;primaryKey;type:uuid"`
	ReservationID string               `gorm:"column:reservation_id;type:uuid;index"`
	GuestName     string               `gorm:"column:guest_name"`
	GuestCI       string               `gorm:"column:guest_ci"`
	GuestPhone    *string              `gorm:"column:guest_phone"`
	QRCode        string               `gorm:"column:qr_code;uniqueIndex"`
	Reason        string               `gorm:"column:reason"`
	Status        constants.PassStatus `gorm:"column:status;type:pass_status;default:ACTIVE;index"`
	QRValidated   bool                 `gorm:"column:qr_validated;default:false"`
	ValidatedAt   *time.Time           `gorm:"column:validated_at"`
	CreatedByID   string               `gorm:"column:created_by_id;type:uuid"`
	CreatedAt     time.Time            `gorm:"column:created_at;autoCreateTime"`

	// Relationships
	Reservation Reservation `gorm:"foreignKey:ReservationID"`
	CreatedBy   User        `gorm:"foreignKey:CreatedByID"`
}

// TableName specifies the table name for GORM
func (AdditionalPass) TableName() string {
	return "additional_passes"
}

func (p *AdditionalPass) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
