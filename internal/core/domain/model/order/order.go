package order

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/pkg/errs"
)

var (
	// ErrOrderIsNotConstructed is returned when an Order was not created through
	// NewOrder or RestoreOrder.
	ErrOrderIsNotConstructed = errors.New("order must be created via NewOrder or RestoreOrder")

	// ErrOrderHasNoLocation is returned when assigning an order whose address was never resolved.
	ErrOrderHasNoLocation = errs.NewValueIsRequiredError("order location")

	ErrCustomerIsRequired = errs.NewValueIsRequiredError("customer")
)

// Order represents a delivery order. It is the aggregate root that manages the
// order lifecycle from creation through assignment and travel to delivery.
//
// Order follows these invariants:
//   - Must have a valid unique identifier and a non-empty customer name
//   - driverID is set if and only if status is Assigned, EnRoute, or Delivered
//   - deliveredAt is set if and only if status is Delivered
//   - Only orders with a Location can leave PendingAssignment
//
// Every transition records a StatusChanged event, drained by the persistence
// layer after a successful commit.
type Order struct {
	id          kernel.UUID
	customer    string
	address     string
	notes       string
	location    *kernel.Location
	status      Status
	driverID    *kernel.UUID
	priority    Priority
	createdAt   time.Time
	deliveredAt *time.Time
	proofRef    string

	events []kernel.DomainEvent

	isConstructed bool
}

// Snapshot is the flat state of an Order used by persistence adapters.
type Snapshot struct {
	ID          kernel.UUID
	Customer    string
	Address     string
	Notes       string
	Location    *kernel.Location
	Status      Status
	DriverID    *kernel.UUID
	Priority    Priority
	CreatedAt   time.Time
	DeliveredAt *time.Time
	ProofRef    string
}

// NewOrder creates a PendingAssignment order at a resolved location. The
// order's address becomes the location's (formatted) address.
//
// Example:
//
//	location, _ := kernel.NewLocation(36.13, -5.45, "Calle Real 1, Algeciras")
//	o, err := order.NewOrder(kernel.NewUUID(), "Ana", "ring twice", location, order.PriorityHigh, now)
func NewOrder(
	id kernel.UUID,
	customer, notes string,
	location kernel.Location,
	priority Priority,
	createdAt time.Time,
) (*Order, error) {
	o := &Order{
		status:        PendingAssignment,
		notes:         strings.TrimSpace(notes),
		createdAt:     createdAt,
		isConstructed: true,
	}

	if err := errors.Join(
		o.setID(id),
		o.setCustomer(customer),
		o.setLocation(location),
		o.setPriority(priority),
	); err != nil {
		return nil, err
	}

	return o, nil
}

// RestoreOrder rebuilds an order from persisted state, checking every
// cross-field invariant so a corrupt row never becomes a live aggregate.
func RestoreOrder(s Snapshot) (*Order, error) {
	o := &Order{
		address:       strings.TrimSpace(s.Address),
		notes:         s.Notes,
		createdAt:     s.CreatedAt,
		proofRef:      s.ProofRef,
		isConstructed: true,
	}

	var locErr error
	if s.Location != nil {
		locErr = o.setLocation(*s.Location)
	}

	if err := errors.Join(
		o.setID(s.ID),
		o.setCustomer(s.Customer),
		locErr,
		o.setPriority(s.Priority),
		s.Status.Validate(),
		s.Status.ValidateCanHaveDriver(s.DriverID != nil),
		validateDeliveredAt(s.Status, s.DeliveredAt),
		validateLocationForStatus(s.Status, s.Location),
	); err != nil {
		return nil, err
	}

	if s.DriverID != nil {
		if err := s.DriverID.Validate(); err != nil {
			return nil, err
		}
		driverID := *s.DriverID
		o.driverID = &driverID
	}
	if s.DeliveredAt != nil {
		deliveredAt := *s.DeliveredAt
		o.deliveredAt = &deliveredAt
	}
	o.status = s.Status

	return o, nil
}

// Snapshot returns a copy of the order state.
func (o *Order) Snapshot() Snapshot {
	s := Snapshot{
		ID:        o.id,
		Customer:  o.customer,
		Address:   o.address,
		Notes:     o.notes,
		Status:    o.status,
		Priority:  o.priority,
		CreatedAt: o.createdAt,
		ProofRef:  o.proofRef,
	}
	if o.location != nil {
		l := *o.location
		s.Location = &l
	}
	if o.driverID != nil {
		id := *o.driverID
		s.DriverID = &id
	}
	if o.deliveredAt != nil {
		at := *o.deliveredAt
		s.DeliveredAt = &at
	}
	return s
}

// Validate ensures the Order was constructed through NewOrder or RestoreOrder.
func (o *Order) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOrderIsNotConstructed
	}
	return nil
}

func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

func (o *Order) ID() kernel.UUID {
	return o.id
}

func (o *Order) Customer() string {
	return o.customer
}

func (o *Order) Address() string {
	return o.address
}

func (o *Order) Notes() string {
	return o.notes
}

// Location returns the resolved delivery location and whether one exists.
func (o *Order) Location() (kernel.Location, bool) {
	if o.location == nil {
		return kernel.Location{}, false
	}
	return *o.location, true
}

func (o *Order) Status() Status {
	return o.status
}

// DriverID returns the assigned driver, or nil while PendingAssignment.
func (o *Order) DriverID() *kernel.UUID {
	if o.driverID == nil {
		return nil
	}
	id := *o.driverID
	return &id
}

// IsAssignedTo reports whether the order belongs to driverID.
func (o *Order) IsAssignedTo(driverID kernel.UUID) bool {
	return o.driverID != nil && o.driverID.IsEqual(driverID)
}

func (o *Order) Priority() Priority {
	return o.priority
}

func (o *Order) CreatedAt() time.Time {
	return o.createdAt
}

// DeliveredAt returns the delivery time and whether the order was delivered.
func (o *Order) DeliveredAt() (time.Time, bool) {
	if o.deliveredAt == nil {
		return time.Time{}, false
	}
	return *o.deliveredAt, true
}

func (o *Order) ProofRef() string {
	return o.proofRef
}

// Assign hands the order to a driver: PendingAssignment -> Assigned.
// The order must already have a resolved Location.
func (o *Order) Assign(driverID kernel.UUID, at time.Time) error {
	if err := driverID.Validate(); err != nil {
		return err
	}
	if o.location == nil {
		return ErrOrderHasNoLocation
	}

	newStatus, err := o.status.Assign()
	if err != nil {
		return err
	}

	o.driverID = &driverID
	o.transition(newStatus, at)
	return nil
}

// StartRoute marks the order as the driver's current destination: Assigned -> EnRoute.
func (o *Order) StartRoute(at time.Time) error {
	newStatus, err := o.status.StartRoute()
	if err != nil {
		return err
	}

	o.transition(newStatus, at)
	return nil
}

// Deliver finalizes the order: EnRoute -> Delivered, recording the time and
// the proof-of-delivery reference.
func (o *Order) Deliver(proofRef string, at time.Time) error {
	newStatus, err := o.status.Deliver()
	if err != nil {
		return err
	}

	o.transition(newStatus, at)
	o.deliveredAt = &at
	o.proofRef = strings.TrimSpace(proofRef)
	return nil
}

// Edit replaces customer data and the resolved location of a pending order.
func (o *Order) Edit(customer, notes string, location kernel.Location) error {
	if err := o.status.ValidateEditable(); err != nil {
		return err
	}

	next := *o
	if err := errors.Join(next.setCustomer(customer), next.setLocation(location)); err != nil {
		return err
	}

	o.customer = next.customer
	o.address = next.address
	o.location = next.location
	o.notes = strings.TrimSpace(notes)
	return nil
}

// ChangePriority is allowed while PendingAssignment or Assigned.
func (o *Order) ChangePriority(priority Priority) error {
	if err := o.status.ValidatePriorityChange(); err != nil {
		return err
	}
	return o.setPriority(priority)
}

// ValidateDeletable allows deletion only while PendingAssignment.
func (o *Order) ValidateDeletable() error {
	return o.status.ValidateEditable()
}

// Age returns how long ago the order was created.
func (o *Order) Age(now time.Time) time.Duration {
	return now.Sub(o.createdAt)
}

func (o *Order) DomainEvents() []kernel.DomainEvent {
	return o.events
}

func (o *Order) ClearDomainEvents() {
	o.events = nil
}

func (o *Order) transition(to Status, at time.Time) {
	event := StatusChanged{
		OrderID: o.id,
		From:    o.status,
		To:      to,
		At:      at,
	}
	if o.driverID != nil {
		event.DriverID = o.DriverID()
	}
	o.status = to
	o.events = append(o.events, event)
}

func (o *Order) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	o.id = id
	return nil
}

func (o *Order) setCustomer(customer string) error {
	customer = strings.TrimSpace(customer)
	if customer == "" {
		return ErrCustomerIsRequired
	}
	o.customer = customer
	return nil
}

func (o *Order) setLocation(location kernel.Location) error {
	if err := location.Validate(); err != nil {
		return err
	}
	o.location = &location
	o.address = location.Address()
	return nil
}

func (o *Order) setPriority(priority Priority) error {
	if err := priority.Validate(); err != nil {
		return err
	}
	o.priority = priority
	return nil
}

func validateDeliveredAt(status Status, deliveredAt *time.Time) error {
	if (status == Delivered) != (deliveredAt != nil) {
		return errs.NewValueIsInvalidErrorWithCause(
			"deliveredAt",
			fmt.Errorf("deliveredAt must be set exactly when status is %s, status is %s", Delivered, status),
		)
	}
	return nil
}

func validateLocationForStatus(status Status, location *kernel.Location) error {
	if status != PendingAssignment && status.Validate() == nil && location == nil {
		return ErrOrderHasNoLocation
	}
	return nil
}
