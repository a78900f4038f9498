package gorm

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Event struct {
	ID        string    `gorm:"column:id;primaryKey;type:uuid"`
	Name      string    `gorm:"column:name"`
	EventDate time.Time `gorm:"column:event_date"`
	IsActive  bool      `gorm:"column:is_active;default:true"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`

	// Relationships
	EventSectors []EventSector `gorm:"foreignKey:EventID"`
}

// TableName specifies the table name for GORM
func (Event) TableName() string {
	return "events"
}

func (e *Event) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}

// EventSector marks a sector as configured (sellable) for an event.
type EventSector struct {
	ID       string `gorm:"column:id;primaryKey;type:uuid"`
	EventID  string `gorm:"column:event_id;type:uuid;uniqueIndex:idx_event_sector"`
	SectorID string `gorm:"column:sector_id;type:uuid;uniqueIndex:idx_event_sector"`

	// Relationships
	Event  Event  `gorm:"foreignKey:EventID"`
	Sector Sector `gorm:"foreignKey:SectorID"`
}

func (EventSector) TableName() string {
	return "event_sectors"
}

func (es *EventSector) BeforeCreate(tx *gorm.DB) error {
	if es.ID == "" {
		es.ID = uuid.NewString()
	}
	return nil
}
