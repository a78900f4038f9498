package gorm

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"mesaclub/reservas/internal/constants"
)

type User struct {
	ID        string             `gorm:"column:id;primaryKey;type:uuid"`
	Name      string             `gorm:"column:name"`
	Email     string             `gorm:"column:email;uniqueIndex"`
	Phone     *string            `gorm:"column:phone"`
	Role      constants.UserRole `gorm:"column:role;type:user_role"`
	IsActive  bool               `gorm:"column:is_active;default:true"`
	CreatedAt time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (User) TableName() string {
	return "users"
}

// BeforeCreate assigns the id. UUIDs are minted in the application so
// the schema carries no dialect-specific defaults.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
