package order

import (
	"fmt"
	"strings"

	"lastmile/internal/pkg/errs"
)

// Status represents the lifecycle state of an order.
//
// State transitions:
//
//	PendingAssignment ──> Assigned ──> EnRoute ──> Delivered
//
// There are no backward edges. Every transition method switches over all
// statuses so adding a state forces a compile-time review of each edge.
type Status int

const (
	// Unknown represents an invalid or undefined status.
	Unknown Status = iota

	// PendingAssignment is the initial status; the order has no driver.
	PendingAssignment

	// Assigned means the order belongs to a driver's route and waits to be started.
	Assigned

	// EnRoute means the driver is travelling to this order. At most one per driver.
	EnRoute

	// Delivered is terminal.
	Delivered
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:           "unknown",
		PendingAssignment: "pending_assignment",
		Assigned:          "assigned",
		EnRoute:           "en_route",
		Delivered:         "delivered",
	}
}

func getValidStatusStrings() map[Status]string {
	//nolint:exhaustive // Unknown is intentionally excluded as it's invalid
	return map[Status]string{
		PendingAssignment: "pending_assignment",
		Assigned:          "assigned",
		EnRoute:           "en_route",
		Delivered:         "delivered",
	}
}

// ParseStatus converts the persisted or wire representation back into a Status.
func ParseStatus(s string) (Status, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	for status, str := range getValidStatusStrings() {
		if str == normalized {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%q is not a valid status", s))
}

// Validate checks that s is one of the four lifecycle states.
func (s Status) Validate() error {
	if _, ok := getValidStatusStrings()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("status is invalid", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// String implements fmt.Stringer and is safe for invalid values.
func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "unknown"
}

// IsTerminal reports whether no further transition is possible.
func (s Status) IsTerminal() bool {
	return s == Delivered
}

// RequiresDriver reports whether an order in this status must have a driver.
func (s Status) RequiresDriver() bool {
	switch s {
	case Assigned, EnRoute, Delivered:
		return true
	case Unknown, PendingAssignment:
		return false
	}
	return false
}

// ValidateCanHaveDriver checks the assignedTo-iff-status invariant.
func (s Status) ValidateCanHaveDriver(hasDriver bool) error {
	if hasDriver && !s.RequiresDriver() {
		return errs.NewValueIsInvalidErrorWithCause(
			"status is invalid",
			fmt.Errorf("%s is not a valid status to have a driver", s),
		)
	}
	if !hasDriver && s.RequiresDriver() {
		return errs.NewValueIsInvalidErrorWithCause(
			"status is invalid",
			fmt.Errorf("%s is not a valid status to have no driver", s),
		)
	}
	return nil
}

// Assign transitions PendingAssignment -> Assigned.
func (s Status) Assign() (Status, error) {
	switch s {
	case PendingAssignment:
		return Assigned, nil
	case Unknown, Assigned, EnRoute, Delivered:
	}
	return Unknown, transitionError(s, "assign")
}

// StartRoute transitions Assigned -> EnRoute.
func (s Status) StartRoute() (Status, error) {
	switch s {
	case Assigned:
		return EnRoute, nil
	case Unknown, PendingAssignment, EnRoute, Delivered:
	}
	return Unknown, transitionError(s, "start route")
}

// Deliver transitions EnRoute -> Delivered.
func (s Status) Deliver() (Status, error) {
	switch s {
	case EnRoute:
		return Delivered, nil
	case Unknown, PendingAssignment, Assigned, Delivered:
	}
	return Unknown, transitionError(s, "deliver")
}

// ValidateEditable allows edits and deletion only before assignment.
func (s Status) ValidateEditable() error {
	switch s {
	case PendingAssignment:
		return nil
	case Unknown, Assigned, EnRoute, Delivered:
	}
	return transitionError(s, "edit")
}

// ValidatePriorityChange allows a priority change until the order is started.
func (s Status) ValidatePriorityChange() error {
	switch s {
	case PendingAssignment, Assigned:
		return nil
	case Unknown, EnRoute, Delivered:
	}
	return transitionError(s, "change priority")
}

func transitionError(s Status, action string) error {
	return errs.NewValueIsInvalidErrorWithCause(
		"status is invalid",
		fmt.Errorf("%s is not a valid status to %s", s, action),
	)
}
