package postgres

import (
	"fmt"

	"lastmile/internal/adapters/out/postgres/driverrepo"
	"lastmile/internal/adapters/out/postgres/incidentrepo"
	"lastmile/internal/adapters/out/postgres/orderrepo"
	"lastmile/internal/adapters/out/postgres/proofstore"
	"lastmile/internal/adapters/out/postgres/settingsrepo"

	"gorm.io/gorm"
)

// AutoMigrate creates or updates every table used by the adapters.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&driverrepo.DriverDTO{},
		&orderrepo.OrderDTO{},
		&incidentrepo.IncidentDTO{},
		&settingsrepo.SettingDTO{},
		&proofstore.ProofDTO{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
