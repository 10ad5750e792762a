// Package redis keeps short-lived operator state in Redis: route drafts and
// cached geocoding answers.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/model/order"
	"lastmile/internal/core/domain/model/route"
	"lastmile/internal/core/ports"

	goredis "github.com/redis/go-redis/v9"
)

// DefaultDraftTTL bounds how long an abandoned draft survives.
const DefaultDraftTTL = 24 * time.Hour

func draftKey(driverID kernel.UUID) string {
	return fmt.Sprintf("lastmile:route-draft:%s", driverID)
}

type draftDTO struct {
	DriverID  string    `json:"driverId"`
	Stops     []stopDTO `json:"stops"`
	Optimized bool      `json:"optimized"`
	Warning   string    `json:"warning,omitempty"`
}

type stopDTO struct {
	OrderID  string  `json:"orderId"`
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
	Address  string  `json:"address"`
	Priority int     `json:"priority"`
}

// DraftStore implements ports.RouteDraftStore.
type DraftStore struct {
	client goredis.UniversalClient
	ttl    time.Duration
}

func NewDraftStore(client goredis.UniversalClient, ttl time.Duration) *DraftStore {
	if ttl <= 0 {
		ttl = DefaultDraftTTL
	}
	return &DraftStore{client: client, ttl: ttl}
}

func (s *DraftStore) Get(ctx context.Context, driverID kernel.UUID) (*route.Draft, error) {
	data, err := s.client.Get(ctx, draftKey(driverID)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, fmt.Errorf("%w: driver %s", ports.ErrDraftNotFound, driverID)
	}
	if err != nil {
		return nil, err
	}

	var dto draftDTO
	if err = json.Unmarshal(data, &dto); err != nil {
		return nil, fmt.Errorf("decode route draft: %w", err)
	}
	return dto.toDomain()
}

// Save overwrites the draft and refreshes its TTL.
func (s *DraftStore) Save(ctx context.Context, draft *route.Draft) error {
	data, err := json.Marshal(draftFromDomain(draft))
	if err != nil {
		return err
	}
	return s.client.Set(ctx, draftKey(draft.DriverID), data, s.ttl).Err()
}

func (s *DraftStore) Delete(ctx context.Context, driverID kernel.UUID) error {
	return s.client.Del(ctx, draftKey(driverID)).Err()
}

func draftFromDomain(d *route.Draft) draftDTO {
	dto := draftDTO{
		DriverID:  d.DriverID.String(),
		Stops:     make([]stopDTO, 0, len(d.Stops)),
		Optimized: d.Optimized,
		Warning:   d.Warning,
	}
	for _, s := range d.Stops {
		dto.Stops = append(dto.Stops, stopDTO{
			OrderID:  s.OrderID.String(),
			Lat:      s.Location.Lat(),
			Lng:      s.Location.Lng(),
			Address:  s.Location.Address(),
			Priority: int(s.Priority),
		})
	}
	return dto
}

func (dto draftDTO) toDomain() (*route.Draft, error) {
	driverID, err := kernel.UUIDFromString(dto.DriverID)
	if err != nil {
		return nil, err
	}

	stops := make([]route.Stop, 0, len(dto.Stops))
	for _, s := range dto.Stops {
		orderID, idErr := kernel.UUIDFromString(s.OrderID)
		if idErr != nil {
			return nil, idErr
		}
		location, locErr := kernel.NewLocation(s.Lat, s.Lng, s.Address)
		if locErr != nil {
			return nil, locErr
		}
		stops = append(stops, route.Stop{OrderID: orderID, Location: location, Priority: order.Priority(s.Priority)})
	}

	draft, err := route.NewDraft(driverID, stops)
	if err != nil {
		return nil, err
	}
	draft.Optimized = dto.Optimized
	draft.Warning = dto.Warning
	return draft, nil
}
