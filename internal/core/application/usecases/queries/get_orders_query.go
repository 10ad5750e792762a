package queries

import (
	"errors"

	"lastmile/internal/core/domain/model/order"
	"lastmile/internal/pkg/guard"
)

var ErrGetOrdersQueryIsNotConstructed = errors.New(
	"GetOrdersQuery must be created via NewGetOrdersQuery constructor",
)

// GetOrdersQuery lists orders in creation order, optionally only those in
// one status.
type GetOrdersQuery struct {
	status *order.Status

	guard guard.ConstructorGuard
}

// NewGetOrdersQuery accepts the status name used on the wire; an empty
// string lists every order.
func NewGetOrdersQuery(status string) (GetOrdersQuery, error) {
	q := GetOrdersQuery{guard: guard.NewConstructorGuard()}
	if status == "" {
		return q, nil
	}
	parsed, err := order.ParseStatus(status)
	if err != nil {
		return GetOrdersQuery{}, err
	}
	q.status = &parsed
	return q, nil
}

func (q GetOrdersQuery) Validate() error {
	return q.guard.Validate(ErrGetOrdersQueryIsNotConstructed)
}

func (q GetOrdersQuery) Status() (order.Status, bool) {
	if q.status == nil {
		return order.Unknown, false
	}
	return *q.status, true
}
