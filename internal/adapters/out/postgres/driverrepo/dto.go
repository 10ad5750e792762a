// Package driverrepo maps driver aggregates, including their route and
// simulated position, to the drivers table.
package driverrepo

import (
	"time"

	"lastmile/internal/core/domain/model/driver"
	"lastmile/internal/core/domain/model/kernel"

	"github.com/google/uuid"
)

// DriverDTO is the row of a driver. The route is stored as a JSON array.
type DriverDTO struct {
	ID                 uuid.UUID `gorm:"type:uuid;primaryKey"`
	Seq                int64     `gorm:"autoIncrement;<-:create"`
	Name               string    `gorm:"not null"`
	Pin                string
	Status             int `gorm:"index;not null"`
	PositionLat        *float64
	PositionLng        *float64
	Route              []RouteStopDTO `gorm:"type:jsonb;serializer:json"`
	RouteConfirmed     bool
	LastLocationUpdate *time.Time
}

func (DriverDTO) TableName() string {
	return "drivers"
}

// RouteStopDTO is one element of the JSON route.
type RouteStopDTO struct {
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	Address string  `json:"address"`
}

func fromDomain(d *driver.Driver) DriverDTO {
	s := d.Snapshot()
	dto := DriverDTO{
		ID:                 s.ID.Bytes(),
		Name:               s.Name,
		Pin:                s.Pin,
		Status:             int(s.Status),
		Route:              make([]RouteStopDTO, 0, len(s.Route)),
		RouteConfirmed:     s.RouteConfirmed,
		LastLocationUpdate: s.LastLocationUpdate,
	}
	if s.Position != nil {
		lat, lng := s.Position.Lat(), s.Position.Lng()
		dto.PositionLat, dto.PositionLng = &lat, &lng
	}
	for _, stop := range s.Route {
		dto.Route = append(dto.Route, RouteStopDTO{Lat: stop.Lat(), Lng: stop.Lng(), Address: stop.Address()})
	}
	return dto
}

func toDomain(dto DriverDTO) (*driver.Driver, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	s := driver.Snapshot{
		ID:                 id,
		Name:               dto.Name,
		Pin:                dto.Pin,
		Status:             driver.Status(dto.Status),
		RouteConfirmed:     dto.RouteConfirmed,
		LastLocationUpdate: dto.LastLocationUpdate,
	}

	if dto.PositionLat != nil && dto.PositionLng != nil {
		p, posErr := kernel.NewPosition(*dto.PositionLat, *dto.PositionLng)
		if posErr != nil {
			return nil, posErr
		}
		s.Position = &p
	}

	for _, stop := range dto.Route {
		loc, locErr := kernel.NewLocation(stop.Lat, stop.Lng, stop.Address)
		if locErr != nil {
			return nil, locErr
		}
		s.Route = append(s.Route, loc)
	}

	return driver.RestoreDriver(s)
}
