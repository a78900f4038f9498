package gorm

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"mesaclub/reservas/internal/constants"
)

// AuditLog is the append-only record of every state-changing operation.
// EntityID is a weak reference; ReservationID links validation and
// transfer rows back to the reservation they touched.
type AuditLog struct {
	ID            string                `gorm:"column:id;primaryKey;type:uuid"`
	UserID        string                `gorm:"column:user_id;type:uuid;index"`
	Action        constants.AuditAction `gorm:"column:action;index"`
	Entity        string                `gorm:"column:entity"`
	EntityID      string                `gorm:"column:entity_id;index"`
	ReservationID *string               `gorm:"column:reservation_id;type:uuid;index"`
	OldData       JSONB                 `gorm:"column:old_data;type:jsonb"`
	NewData       JSONB                 `gorm:"column:new_data;type:jsonb"`
	CreatedAt     time.Time             `gorm:"column:created_at;autoCreateTime;index"`
}

// TableName specifies the table name for GORM
func (AuditLog) TableName() string {
	return "audit_logs"
}

func (l *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}

// JSONB is a custom type for JSONB fields
type JSONB map[string]interface{}

// Scan implements the sql.Scanner interface for JSONB
func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = make(map[string]interface{})
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}

	result := make(map[string]interface{})
	if err := json.Unmarshal(bytes, &result); err != nil {
		return err
	}

	*j = result
	return nil
}

// Value implements the driver.Valuer interface for JSONB
func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}
