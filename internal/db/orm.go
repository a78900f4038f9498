package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	gormModels "mesaclub/reservas/internal/models/gorm"
)

var PgDB *gorm.DB

// InitPostgresORM connects the GORM handle used by the workflow write path.
func InitPostgresORM(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})

	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	PgDB = db
	return db, nil
}

// AutoMigrate creates the workflow tables. Used by dev bootstrap and tests;
// production schemas are managed by migrations.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&gormModels.User{},
		&gormModels.Event{},
		&gormModels.Sector{},
		&gormModels.SectorApprover{},
		&gormModels.EventSector{},
		&gormModels.Reservation{},
		&gormModels.Guest{},
		&gormModels.AdditionalPass{},
		&gormModels.Approval{},
		&gormModels.AuditLog{},
	)
}
