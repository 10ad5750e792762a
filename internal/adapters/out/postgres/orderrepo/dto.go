// Package orderrepo provides data transfer objects and mapping functions for order persistence.
// This package implements the repository pattern for the order domain aggregate, handling
// the conversion between domain entities and database representations.
package orderrepo

import (
	"time"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/model/order"

	"github.com/google/uuid"
)

// OrderDTO represents the database structure for persisting order aggregates.
// Seq keeps creation order stable; it is written once by the database.
type OrderDTO struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Seq         int64      `gorm:"autoIncrement;<-:create"`
	Customer    string     `gorm:"not null"`
	Address     string     `gorm:"not null"`
	Notes       string
	LocationLat *float64
	LocationLng *float64
	Status      int        `gorm:"index;not null"`
	DriverID    *uuid.UUID `gorm:"type:uuid;index"`
	Priority    int        `gorm:"not null"`
	CreatedAt   time.Time  `gorm:"not null"`
	DeliveredAt *time.Time
	ProofRef    string
}

// TableName specifies the database table name for order entities.
func (OrderDTO) TableName() string {
	return "orders"
}

func fromDomain(o *order.Order) OrderDTO {
	s := o.Snapshot()
	dto := OrderDTO{
		ID:          s.ID.Bytes(),
		Customer:    s.Customer,
		Address:     s.Address,
		Notes:       s.Notes,
		Status:      int(s.Status),
		Priority:    int(s.Priority),
		CreatedAt:   s.CreatedAt,
		DeliveredAt: s.DeliveredAt,
		ProofRef:    s.ProofRef,
	}
	if s.Location != nil {
		lat, lng := s.Location.Lat(), s.Location.Lng()
		dto.LocationLat, dto.LocationLng = &lat, &lng
	}
	if s.DriverID != nil {
		raw := s.DriverID.Bytes()
		dto.DriverID = &raw
	}
	return dto
}

// toDomain reconstructs the aggregate with RestoreOrder, which re-checks
// every invariant.
func toDomain(dto OrderDTO) (*order.Order, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	s := order.Snapshot{
		ID:          id,
		Customer:    dto.Customer,
		Address:     dto.Address,
		Notes:       dto.Notes,
		Status:      order.Status(dto.Status),
		Priority:    order.Priority(dto.Priority),
		CreatedAt:   dto.CreatedAt,
		DeliveredAt: dto.DeliveredAt,
		ProofRef:    dto.ProofRef,
	}

	if dto.LocationLat != nil && dto.LocationLng != nil {
		loc, locErr := kernel.NewLocation(*dto.LocationLat, *dto.LocationLng, dto.Address)
		if locErr != nil {
			return nil, locErr
		}
		s.Location = &loc
	}

	if dto.DriverID != nil {
		driverID, driverErr := kernel.UUIDFromBytes((*dto.DriverID)[:])
		if driverErr != nil {
			return nil, driverErr
		}
		s.DriverID = &driverID
	}

	return order.RestoreOrder(s)
}
