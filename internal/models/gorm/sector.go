package gorm

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Sector struct {
	ID               string    `gorm:"column:id;primaryKey;type:uuid"`
	Name             string    `gorm:"column:name"`
	Code             string    `gorm:"column:code;uniqueIndex"`
	Description      *string   `gorm:"column:description"`
	Capacity         int       `gorm:"column:capacity"`
	RequiresApproval bool      `gorm:"column:requires_approval;default:false"`
	IsActive         bool      `gorm:"column:is_active;default:true"`
	CreatedAt        time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time `gorm:"column:updated_at;autoUpdateTime"`

	// Relationships
	Approvers []SectorApprover `gorm:"foreignKey:SectorID"`
}

// TableName specifies the table name for GORM
func (Sector) TableName() string {
	return "sectors"
}

func (s *Sector) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// SectorApprover is one entry in a sector's ordered approver list.
// Position 0 is the approver new reservations are routed to.
type SectorApprover struct {
	ID       string `gorm:"column:id;primaryKey;type:uuid"`
	SectorID string `gorm:"column:sector_id;type:uuid;uniqueIndex:idx_sector_approver"`
	UserID   string `gorm:"column:user_id;type:uuid;uniqueIndex:idx_sector_approver"`
	Position int    `gorm:"column:position;default:0"`

	// Relationships
	User User `gorm:"foreignKey:UserID"`
}

func (SectorApprover) TableName() string {
	return "sector_approvers"
}

func (sa *SectorApprover) BeforeCreate(tx *gorm.DB) error {
	if sa.ID == "" {
		sa.ID = uuid.NewString()
	}
	return nil
}
