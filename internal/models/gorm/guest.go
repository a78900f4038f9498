package gorm

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Guest is one invitee attached to a reservation. QRCode is globally
// unique across guests and additional passes; QRValidated flips
// false→true exactly once. Only an event transfer resets it, together
// with a fresh token.
type Guest struct {
	ID            string     `gorm:"column:id;primaryKey;type:uuid"`
	ReservationID string     `gorm:"column:reservation_id;type:uuid;index"`
	Name          string     `gorm:"column:name"`
	CI            string     `gorm:"column:ci"`
	Phone         *string    `gorm:"column:phone"`
	Email         *string    `gorm:"column:email"`
	QRCode        string     `gorm:"column:qr_code;uniqueIndex"`
	QRValidated   bool       `gorm:"column:qr_validated;default:false"`
	ValidatedAt   *time.Time `gorm:"column:validated_at"`
	CreatedAt     time.Time  `gorm:"column:created_at;autoCreateTime"`

	// Relationships
	Reservation Reservation `gorm:"foreignKey:ReservationID"`
}

// TableName specifies the table name for GORM
func (Guest) TableName() string {
	return "guests"
}

func (g *Guest) BeforeCreate(tx *gorm.DB) error {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	return nil
}
