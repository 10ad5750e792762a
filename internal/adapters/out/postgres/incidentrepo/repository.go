package incidentrepo

import (
	"context"

	"lastmile/internal/core/domain/model/incident"
	"lastmile/internal/core/domain/model/kernel"

	"gorm.io/gorm"
)

// GormIncidentRepository implements ports.IncidentRepository using GORM.
type GormIncidentRepository struct {
	db *gorm.DB
}

func NewGormIncidentRepository(db *gorm.DB) *GormIncidentRepository {
	return &GormIncidentRepository{db: db}
}

func (r *GormIncidentRepository) Add(ctx context.Context, record *incident.Incident) error {
	dto := fromDomain(record)
	return r.db.WithContext(ctx).Create(&dto).Error
}

// GetAll returns incidents newest first.
func (r *GormIncidentRepository) GetAll(ctx context.Context) ([]*incident.Incident, error) {
	return r.find(r.db.WithContext(ctx))
}

func (r *GormIncidentRepository) GetByOrder(ctx context.Context, orderID kernel.UUID) ([]*incident.Incident, error) {
	return r.find(r.db.WithContext(ctx).Where("order_id = ?", orderID.Bytes()))
}

func (r *GormIncidentRepository) find(query *gorm.DB) ([]*incident.Incident, error) {
	var dtos []IncidentDTO
	if err := query.Order("reported_at DESC").Order("seq DESC").Find(&dtos).Error; err != nil {
		return nil, err
	}

	records := make([]*incident.Incident, 0, len(dtos))
	for _, dto := range dtos {
		record, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}
