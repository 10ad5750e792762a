package driver

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/pkg/errs"
	"lastmile/internal/pkg/guard"
)

var (
	ErrNameIsRequired         = errs.NewValueIsRequiredError("name")
	ErrDriverIsNotConstructed = errors.New("driver must be created via NewDriver or RestoreDriver")
	ErrDriverIsNotActive      = errs.NewValueIsInvalidErrorWithCause("driver status", errors.New("driver is not active"))
	ErrPinIsInvalid           = errs.NewValueIsInvalidErrorWithCause("pin", errors.New("pin must be exactly 4 digits"))
)

var pinPattern = regexp.MustCompile(`^\d{4}$`)

// Driver is the aggregate root for a shift worker and the route they carry.
//
// Business rules:
//   - Must have a valid UUID and a non-empty name
//   - The optional PIN is exactly four digits
//   - route holds the stops in planned visiting order
//   - routeConfirmed becomes true only through ConfirmRoute and false only through ClearRoute
//
// Example:
//
//	d, err := driver.NewDriver(kernel.NewUUID(), "Lucía", "1234")
//	d.Activate(now)
type Driver struct {
	id                 kernel.UUID
	name               string
	pin                string
	status             Status
	position           *kernel.Position
	route              []kernel.Location
	routeConfirmed     bool
	lastLocationUpdate *time.Time

	events []kernel.DomainEvent
	guard  guard.ConstructorGuard
}

// Snapshot is the flat state of a Driver used by persistence adapters.
type Snapshot struct {
	ID                 kernel.UUID
	Name               string
	Pin                string
	Status             Status
	Position           *kernel.Position
	Route              []kernel.Location
	RouteConfirmed     bool
	LastLocationUpdate *time.Time
}

// NewDriver creates an Inactive driver with no position and an empty route.
func NewDriver(id kernel.UUID, name, pin string) (*Driver, error) {
	d := &Driver{
		status: Inactive,
		guard:  guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		d.setID(id),
		d.setName(name),
		d.setPin(pin),
	); err != nil {
		return nil, err
	}

	return d, nil
}

// RestoreDriver rebuilds a driver from persisted state.
func RestoreDriver(s Snapshot) (*Driver, error) {
	d := &Driver{
		guard:          guard.NewConstructorGuard(),
		routeConfirmed: s.RouteConfirmed,
	}

	var posErr error
	if s.Position != nil {
		posErr = s.Position.Validate()
	}

	var routeErr error
	for i, stop := range s.Route {
		if err := stop.Validate(); err != nil {
			routeErr = errors.Join(routeErr, fmt.Errorf("route stop %d: %w", i, err))
		}
	}

	if err := errors.Join(
		d.setID(s.ID),
		d.setName(s.Name),
		d.setPin(s.Pin),
		s.Status.Validate(),
		posErr,
		routeErr,
	); err != nil {
		return nil, err
	}

	d.status = s.Status
	if s.Position != nil {
		p := *s.Position
		d.position = &p
	}
	d.route = slices.Clone(s.Route)
	if s.LastLocationUpdate != nil {
		at := *s.LastLocationUpdate
		d.lastLocationUpdate = &at
	}

	return d, nil
}

// Snapshot returns a deep copy of the driver state.
func (d *Driver) Snapshot() Snapshot {
	s := Snapshot{
		ID:             d.id,
		Name:           d.name,
		Pin:            d.pin,
		Status:         d.status,
		Route:          slices.Clone(d.route),
		RouteConfirmed: d.routeConfirmed,
	}
	if d.position != nil {
		p := *d.position
		s.Position = &p
	}
	if d.lastLocationUpdate != nil {
		at := *d.lastLocationUpdate
		s.LastLocationUpdate = &at
	}
	return s
}

func (d *Driver) Validate() error {
	if d == nil {
		return ErrDriverIsNotConstructed
	}
	return d.guard.Validate(ErrDriverIsNotConstructed)
}

func (d *Driver) IsEqual(other *Driver) bool {
	return other != nil && d.id.IsEqual(other.id)
}

func (d *Driver) ID() kernel.UUID {
	return d.id
}

func (d *Driver) Name() string {
	return d.name
}

func (d *Driver) Pin() string {
	return d.pin
}

func (d *Driver) Status() Status {
	return d.status
}

func (d *Driver) IsActive() bool {
	return d.status == Active
}

// Position returns the last known position and whether one exists.
func (d *Driver) Position() (kernel.Position, bool) {
	if d.position == nil {
		return kernel.Position{}, false
	}
	return *d.position, true
}

// Route returns a copy of the planned stops.
func (d *Driver) Route() []kernel.Location {
	return slices.Clone(d.route)
}

func (d *Driver) HasRoute() bool {
	return len(d.route) > 0
}

func (d *Driver) RouteConfirmed() bool {
	return d.routeConfirmed
}

// LastLocationUpdate returns when the position last changed.
func (d *Driver) LastLocationUpdate() (time.Time, bool) {
	if d.lastLocationUpdate == nil {
		return time.Time{}, false
	}
	return *d.lastLocationUpdate, true
}

func (d *Driver) Activate() {
	d.status = Active
}

func (d *Driver) Deactivate() {
	d.status = Inactive
}

// ToggleStatus flips Active and Inactive and returns the new status.
func (d *Driver) ToggleStatus() Status {
	if d.status == Active {
		d.Deactivate()
	} else {
		d.Activate()
	}
	return d.status
}

// ValidateActive is used by operations reserved for drivers on shift.
func (d *Driver) ValidateActive() error {
	if !d.IsActive() {
		return ErrDriverIsNotActive
	}
	return nil
}

// ConfirmRoute replaces the whole route and marks it confirmed.
func (d *Driver) ConfirmRoute(route []kernel.Location, at time.Time) error {
	for i, stop := range route {
		if err := stop.Validate(); err != nil {
			return fmt.Errorf("route stop %d: %w", i, err)
		}
	}
	d.route = slices.Clone(route)
	d.routeConfirmed = true
	d.events = append(d.events, RouteChanged{DriverID: d.id, Stops: len(route), Confirmed: true, At: at})
	return nil
}

// ClearRoute empties the route and resets the confirmation flag.
func (d *Driver) ClearRoute(at time.Time) {
	d.route = nil
	d.routeConfirmed = false
	d.events = append(d.events, RouteChanged{DriverID: d.id, At: at})
}

// UpdatePosition moves the driver. It returns false, leaving lastLocationUpdate
// untouched, when the position would not change.
func (d *Driver) UpdatePosition(p kernel.Position, at time.Time) (bool, error) {
	if err := p.Validate(); err != nil {
		return false, err
	}
	if d.position != nil && d.position.IsEqual(p) {
		return false, nil
	}
	d.position = &p
	d.lastLocationUpdate = &at
	d.events = append(d.events, PositionChanged{DriverID: d.id, Position: p, At: at})
	return true, nil
}

func (d *Driver) DomainEvents() []kernel.DomainEvent {
	return d.events
}

func (d *Driver) ClearDomainEvents() {
	d.events = nil
}

func (d *Driver) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	d.id = id
	return nil
}

func (d *Driver) setName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrNameIsRequired
	}
	d.name = name
	return nil
}

func (d *Driver) setPin(pin string) error {
	pin = strings.TrimSpace(pin)
	if pin != "" && !pinPattern.MatchString(pin) {
		return ErrPinIsInvalid
	}
	d.pin = pin
	return nil
}
