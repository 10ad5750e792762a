// Package settingsrepo stores operator settings as key/value rows.
package settingsrepo

import (
	"context"
	"errors"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const depotKey = "depot"

// SettingDTO holds one location-valued setting.
type SettingDTO struct {
	Key     string `gorm:"primaryKey"`
	Lat     float64
	Lng     float64
	Address string
}

func (SettingDTO) TableName() string {
	return "settings"
}

// GormSettingsRepository implements ports.SettingsRepository using GORM.
type GormSettingsRepository struct {
	db *gorm.DB
}

func NewGormSettingsRepository(db *gorm.DB) *GormSettingsRepository {
	return &GormSettingsRepository{db: db}
}

func (r *GormSettingsRepository) GetDepot(ctx context.Context) (kernel.Location, error) {
	var dto SettingDTO
	if err := r.db.WithContext(ctx).First(&dto, "key = ?", depotKey).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return kernel.Location{}, errs.NewObjectNotFoundError("setting", depotKey)
		}
		return kernel.Location{}, err
	}
	return kernel.NewLocation(dto.Lat, dto.Lng, dto.Address)
}

func (r *GormSettingsRepository) SetDepot(ctx context.Context, depot kernel.Location) error {
	if err := depot.Validate(); err != nil {
		return err
	}
	dto := SettingDTO{Key: depotKey, Lat: depot.Lat(), Lng: depot.Lng(), Address: depot.Address()}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&dto).Error
}
