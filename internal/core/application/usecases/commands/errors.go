package commands

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/pkg/errs"
)

var (
	// ErrAssignmentConflict means the state changed between the validation
	// and the commit phases of an assignment. Nothing was changed.
	ErrAssignmentConflict = errors.New("assignment conflict: orders or driver changed, retry")

	ErrRouteAlreadyStarted   = errs.NewValueIsInvalidErrorWithCause("route", errors.New("driver already has an order en route"))
	ErrNoAssignedOrders      = errs.NewValueIsInvalidErrorWithCause("route", errors.New("driver has no assigned orders"))
	ErrProofIsRequired       = errs.NewValueIsRequiredError("proof of delivery")
	ErrOrderNotEnRoute       = errs.NewValueIsInvalidErrorWithCause("order status", errors.New("order is not en route"))
	ErrOrderNotOfDriver      = errs.NewValueIsInvalidErrorWithCause("order", errors.New("order is not assigned to this driver"))
	ErrReasonIsRequired      = errs.NewValueIsRequiredError("incident reason")
	ErrDraftIsStale          = errors.New("route draft is stale: assigned orders changed, reopen the draft")
	ErrResolutionIsInvalid   = errs.NewValueIsInvalidErrorWithCause("resolution", errors.New("must be none, force or incident"))
	ErrNameIsRequired        = errs.NewValueIsRequiredError("name")
	ErrAddressIsRequired     = errs.NewValueIsRequiredError("address")
	ErrCustomerIsRequired    = errs.NewValueIsRequiredError("customer")
	ErrOrderIDsAreRequired   = errs.NewValueIsRequiredError("order ids")
	ErrOrderIDsAreDuplicated = errs.NewValueIsInvalidErrorWithCause("order ids", errors.New("duplicate order id"))
)

// Resolution is the caller's decision for a delivery outside the stale window.
type Resolution string

const (
	ResolutionNone     Resolution = ""
	ResolutionForce    Resolution = "force"
	ResolutionIncident Resolution = "incident"
)

func ParseResolution(s string) (Resolution, error) {
	switch r := Resolution(strings.ToLower(strings.TrimSpace(s))); r {
	case ResolutionNone, ResolutionForce, ResolutionIncident:
		return r, nil
	}
	if strings.EqualFold(strings.TrimSpace(s), "none") {
		return ResolutionNone, nil
	}
	return ResolutionNone, ErrResolutionIsInvalid
}

// StaleDeliveryError asks the caller to decide between forcing the delivery
// and filing an incident. The proof was already stored; retrying with ProofRef
// avoids uploading it again.
type StaleDeliveryError struct {
	OrderID  kernel.UUID
	Elapsed  time.Duration
	ProofRef string
}

func (e *StaleDeliveryError) Error() string {
	return fmt.Sprintf("order %s was created %s ago: choose force or incident", e.OrderID, e.Elapsed.Round(time.Minute))
}

// PositionUnavailableError is retryable.
type PositionUnavailableError struct {
	DriverID kernel.UUID
	Cause    error
}

func (e *PositionUnavailableError) Error() string {
	return fmt.Sprintf("position of driver %s unavailable: %v", e.DriverID, e.Cause)
}

func (e *PositionUnavailableError) Unwrap() error {
	return e.Cause
}
