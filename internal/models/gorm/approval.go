package gorm

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"mesaclub/reservas/internal/constants"
)

// Approval is one approver's verdict on a reservation. A decided
// approval is terminal; at most one live PENDING approval exists per
// reservation that requires one.
type Approval struct {
	ID            string                   `gorm:"column:id;primaryKey;type:uuid"`
	ReservationID string                   `gorm:"column:reservation_id;type:uuid;index"`
	ApproverID    string                   `gorm:"column:approver_id;type:uuid;index"`
	Status        constants.ApprovalStatus `gorm:"column:status;type:approval_status;default:PENDING"`
	Comments      *string                  `gorm:"column:comments"`
	ApprovedAt    *time.Time               `gorm:"column:approved_at"`
	CreatedAt     time.Time                `gorm:"column:created_at;autoCreateTime"`

	// Relationships
	Reservation Reservation `gorm:"foreignKey:ReservationID"`
	Approver    User        `gorm:"foreignKey:ApproverID"`
}

// TableName specifies the table name for GORM
func (Approval) TableName() string {
	return "approvals"
}

func (a *Approval) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
