package gorm

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"mesaclub/reservas/internal/constants"
)

// Reservation is one table booking for one event/sector. It is never
// hard-deleted; cancellation is a status transition.
type Reservation struct {
	ID               string                      `gorm:"column:id;primaryKey;type:uuid"`
	EventID          string                      `gorm:"column:event_id;type:uuid;index"`
	SectorID         string                      `gorm:"column:sector_id;type:uuid;index"`
	TableType        constants.TableType         `gorm:"column:table_type;type:table_type"`
	TableClass       constants.TableClass        `gorm:"column:table_class;type:table_class;default:RESERVATION"`
	PaymentType      constants.PaymentType       `gorm:"column:payment_type;type:payment_type"`
	PaymentAmount    decimal.NullDecimal         `gorm:"column:payment_amount;type:numeric(10,2)"`
	Status           constants.ReservationStatus `gorm:"column:status;type:reservation_status;default:PENDING;index"`
	RelatorMainID    string                      `gorm:"column:relator_main_id;type:uuid;index"`
	RelatorSaleID    *string                     `gorm:"column:relator_sale_id;type:uuid"`
	ResponsibleName  string                      `gorm:"column:responsible_name"`
	ResponsiblePhone *string                     `gorm:"column:responsible_phone"`
	Notes            *string                     `gorm:"column:notes"`
	CreatedAt        time.Time                   `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time                   `gorm:"column:updated_at;autoUpdateTime"`

	// Relationships
	Event            Event            `gorm:"foreignKey:EventID"`
	Sector           Sector           `gorm:"foreignKey:SectorID"`
	RelatorMain      User             `gorm:"foreignKey:RelatorMainID"`
	Guests           []Guest          `gorm:"foreignKey:ReservationID"`
	AdditionalPasses []AdditionalPass `gorm:"foreignKey:ReservationID"`
	Approvals        []Approval       `gorm:"foreignKey:ReservationID"`
}

// TableName specifies the table name for GORM
func (Reservation) TableName() string {
	return "reservations"
}

func (r *Reservation) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// ActivePassCount counts loaded passes that still occupy a seat.
// Revoked and used passes free their slot.
func (r *Reservation) ActivePassCount() int {
	n := 0
	for _, p := range r.AdditionalPasses {
		if p.Status == constants.PassActive {
			n++
		}
	}
	return n
}
