package services

import (
	"context"
	"fmt"
	"strings"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/ports"
	"lastmile/internal/pkg/errs"
)

const (
	WarningGeocoderUnavailable = "geocoding service unavailable"
	WarningAddressNotFound     = "address not found"
	WarningOutsideServiceArea  = "address is outside the service area"
)

var ErrAddressIsRequired = errs.NewValueIsRequiredError("address")

// AddressRejectedError means an address could not be turned into a Location.
// No order is created or edited with a rejected address.
type AddressRejectedError struct {
	Address string
	Warning string
	Cause   error
}

func (e *AddressRejectedError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("address %q rejected: %s: %v", e.Address, e.Warning, e.Cause)
	}
	return fmt.Sprintf("address %q rejected: %s", e.Address, e.Warning)
}

func (e *AddressRejectedError) Unwrap() error {
	return e.Cause
}

// ServiceArea bounds where orders may be delivered. A zero RadiusKm disables
// the distance check and an empty Locality disables the locality check.
type ServiceArea struct {
	Center   kernel.Position
	RadiusKm float64
	Locality string
}

// AddressResolver geocodes addresses and enforces the service area.
type AddressResolver struct {
	geocoder ports.Geocoder
	area     ServiceArea
}

func NewAddressResolver(geocoder ports.Geocoder, area ServiceArea) AddressResolver {
	return AddressResolver{geocoder: geocoder, area: area}
}

// Resolve returns a Location carrying the provider's formatted address.
func (r AddressResolver) Resolve(ctx context.Context, address string) (kernel.Location, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return kernel.Location{}, ErrAddressIsRequired
	}
	if r.geocoder == nil {
		return kernel.Location{}, &AddressRejectedError{
			Address: address, Warning: WarningGeocoderUnavailable, Cause: ports.ErrNotConfigured,
		}
	}

	result, err := r.geocoder.Resolve(ctx, address)
	if err != nil {
		return kernel.Location{}, &AddressRejectedError{Address: address, Warning: WarningGeocoderUnavailable, Cause: err}
	}
	if !result.Valid {
		warning := result.Warning
		if warning == "" {
			warning = WarningAddressNotFound
		}
		return kernel.Location{}, &AddressRejectedError{Address: address, Warning: warning}
	}

	formatted := result.FormattedAddress
	if strings.TrimSpace(formatted) == "" {
		formatted = address
	}
	location, err := kernel.NewLocation(result.Lat, result.Lng, formatted)
	if err != nil {
		return kernel.Location{}, &AddressRejectedError{Address: address, Warning: WarningAddressNotFound, Cause: err}
	}

	if !r.inServiceArea(location, result.Locality) {
		return kernel.Location{}, &AddressRejectedError{Address: address, Warning: WarningOutsideServiceArea}
	}
	return location, nil
}

func (r AddressResolver) inServiceArea(location kernel.Location, locality string) bool {
	if r.area.Locality != "" && !strings.EqualFold(strings.TrimSpace(locality), r.area.Locality) {
		return false
	}
	if r.area.RadiusKm > 0 && r.area.Center.Validate() == nil &&
		location.DistanceTo(r.area.Center) > r.area.RadiusKm {
		return false
	}
	return true
}
