package queries

import (
	"errors"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/pkg/guard"
)

var ErrGetIncidentsQueryIsNotConstructed = errors.New(
	"GetIncidentsQuery must be created via NewGetIncidentsQuery constructor",
)

// GetIncidentsQuery lists incidents newest first, optionally for one order.
type GetIncidentsQuery struct {
	orderID *kernel.UUID

	guard guard.ConstructorGuard
}

func NewGetIncidentsQuery(orderID *kernel.UUID) (GetIncidentsQuery, error) {
	if orderID != nil {
		if err := orderID.Validate(); err != nil {
			return GetIncidentsQuery{}, err
		}
	}
	return GetIncidentsQuery{orderID: orderID, guard: guard.NewConstructorGuard()}, nil
}

func (q GetIncidentsQuery) Validate() error {
	return q.guard.Validate(ErrGetIncidentsQueryIsNotConstructed)
}

func (q GetIncidentsQuery) OrderID() *kernel.UUID {
	return q.orderID
}
