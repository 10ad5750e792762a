package queries

import (
	"errors"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/pkg/guard"
)

var ErrGetDriverStopsQueryIsNotConstructed = errors.New(
	"GetDriverStopsQuery must be created via NewGetDriverStopsQuery constructor",
)

// GetDriverStopsQuery returns one driver's orders in route sequence: the
// driver's view of their shift.
type GetDriverStopsQuery struct {
	driverID kernel.UUID

	guard guard.ConstructorGuard
}

func NewGetDriverStopsQuery(driverID kernel.UUID) (GetDriverStopsQuery, error) {
	if err := driverID.Validate(); err != nil {
		return GetDriverStopsQuery{}, err
	}
	return GetDriverStopsQuery{driverID: driverID, guard: guard.NewConstructorGuard()}, nil
}

func (q GetDriverStopsQuery) Validate() error {
	return q.guard.Validate(ErrGetDriverStopsQueryIsNotConstructed)
}

func (q GetDriverStopsQuery) DriverID() kernel.UUID {
	return q.driverID
}
