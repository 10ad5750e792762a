package kernel

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"lastmile/internal/pkg/errs"
	"lastmile/internal/pkg/guard"
)

const (
	MinLatitude  = -90.0
	MaxLatitude  = 90.0
	MinLongitude = -180.0
	MaxLongitude = 180.0
)

var (
	ErrPositionIsNotConstructed = errs.NewValueIsRequiredError(
		"position must be created via NewPosition")
	ErrLocationIsNotConstructed = errs.NewValueIsRequiredError(
		"location must be created via NewLocation")
	ErrAddressIsRequired = errs.NewValueIsRequiredError("address")
)

// Position is a latitude/longitude sample in decimal degrees.
type Position struct { //nolint:recvcheck // setters use pointer receivers
	lat   float64
	lng   float64
	guard guard.ConstructorGuard
}

func NewPosition(lat, lng float64) (Position, error) {
	p := Position{guard: guard.NewConstructorGuard()}
	if err := errors.Join(p.setLat(lat), p.setLng(lng)); err != nil {
		return Position{}, err
	}
	return p, nil
}

// MustNewPosition is NewPosition for literals known to be valid. It panics otherwise.
func MustNewPosition(lat, lng float64) Position {
	p, err := NewPosition(lat, lng)
	if err != nil {
		panic(err)
	}
	return p
}

func (p Position) Validate() error {
	return p.guard.Validate(ErrPositionIsNotConstructed)
}

func (p Position) Lat() float64 {
	return p.lat
}

func (p Position) Lng() float64 {
	return p.lng
}

// IsEqual reports exact coordinate equality.
func (p Position) IsEqual(other Position) bool {
	return p.lat == other.lat && p.lng == other.lng
}

// DistanceTo returns the great-circle distance in kilometers.
func (p Position) DistanceTo(other Position) float64 {
	return HaversineKm(p, other)
}

// StepTowards moves at most maxKm along the straight line to target.
// When maxKm covers the remaining distance the result is exactly target,
// so a step never overshoots.
func (p Position) StepTowards(target Position, maxKm float64) Position {
	total := HaversineKm(p, target)
	if maxKm >= total {
		return target
	}
	if maxKm <= 0 {
		return p
	}

	fraction := maxKm / total
	return Position{
		lat:   p.lat + (target.lat-p.lat)*fraction,
		lng:   p.lng + (target.lng-p.lng)*fraction,
		guard: guard.NewConstructorGuard(),
	}
}

func (p Position) String() string {
	return fmt.Sprintf("%.6f,%.6f", p.lat, p.lng)
}

func (p *Position) setLat(lat float64) error {
	if math.IsNaN(lat) || lat < MinLatitude || lat > MaxLatitude {
		return errs.NewValueIsOutOfRangeError("lat", lat, MinLatitude, MaxLatitude)
	}
	p.lat = lat
	return nil
}

func (p *Position) setLng(lng float64) error {
	if math.IsNaN(lng) || lng < MinLongitude || lng > MaxLongitude {
		return errs.NewValueIsOutOfRangeError("lng", lng, MinLongitude, MaxLongitude)
	}
	p.lng = lng
	return nil
}

// Location is a resolved stop: a Position plus the address it was resolved from.
// It has no identity beyond its coordinates.
type Location struct {
	position Position
	address  string
	guard    guard.ConstructorGuard
}

func NewLocation(lat, lng float64, address string) (Location, error) {
	position, posErr := NewPosition(lat, lng)

	address = strings.TrimSpace(address)
	var addrErr error
	if address == "" {
		addrErr = ErrAddressIsRequired
	}

	if err := errors.Join(posErr, addrErr); err != nil {
		return Location{}, err
	}

	return Location{
		position: position,
		address:  address,
		guard:    guard.NewConstructorGuard(),
	}, nil
}

func (l Location) Validate() error {
	return l.guard.Validate(ErrLocationIsNotConstructed)
}

func (l Location) Position() Position {
	return l.position
}

func (l Location) Lat() float64 {
	return l.position.lat
}

func (l Location) Lng() float64 {
	return l.position.lng
}

func (l Location) Address() string {
	return l.address
}

// IsEqual compares coordinates only.
func (l Location) IsEqual(other Location) bool {
	return l.position.IsEqual(other.position)
}

func (l Location) DistanceTo(p Position) float64 {
	return HaversineKm(l.position, p)
}

func (l Location) String() string {
	return fmt.Sprintf("%s (%s)", l.address, l.position)
}
