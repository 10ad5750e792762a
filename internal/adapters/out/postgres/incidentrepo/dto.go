// Package incidentrepo persists the append-only incident log.
package incidentrepo

import (
	"time"

	"lastmile/internal/core/domain/model/incident"
	"lastmile/internal/core/domain/model/kernel"

	"github.com/google/uuid"
)

type IncidentDTO struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Seq         int64     `gorm:"autoIncrement;<-:create"`
	OrderID     uuid.UUID `gorm:"type:uuid;index;not null"`
	DriverID    uuid.UUID `gorm:"type:uuid;not null"`
	Kind        int       `gorm:"not null"`
	Reason      string    `gorm:"not null"`
	ReportedAt  time.Time `gorm:"index;not null"`
	LocationLat float64
	LocationLng float64
}

func (IncidentDTO) TableName() string {
	return "incidents"
}

func fromDomain(i *incident.Incident) IncidentDTO {
	return IncidentDTO{
		ID:          i.ID().Bytes(),
		OrderID:     i.OrderID().Bytes(),
		DriverID:    i.DriverID().Bytes(),
		Kind:        int(i.Kind()),
		Reason:      i.Reason(),
		ReportedAt:  i.ReportedAt(),
		LocationLat: i.Location().Lat(),
		LocationLng: i.Location().Lng(),
	}
}

func toDomain(dto IncidentDTO) (*incident.Incident, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	orderID, err := kernel.UUIDFromBytes(dto.OrderID[:])
	if err != nil {
		return nil, err
	}
	driverID, err := kernel.UUIDFromBytes(dto.DriverID[:])
	if err != nil {
		return nil, err
	}
	location, err := kernel.NewPosition(dto.LocationLat, dto.LocationLng)
	if err != nil {
		return nil, err
	}
	return incident.NewIncident(id, orderID, driverID, incident.Kind(dto.Kind), dto.Reason, dto.ReportedAt, location)
}
