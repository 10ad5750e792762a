package queries

import (
	"context"

	"lastmile/internal/core/domain/model/order"
	"lastmile/internal/core/ports"
)

type GetOrdersQueryHandler struct {
	uowFactory ports.UnitOfWorkFactory
}

func NewGetOrdersQueryHandler(uowFactory ports.UnitOfWorkFactory) GetOrdersQueryHandler {
	return GetOrdersQueryHandler{uowFactory: uowFactory}
}

func (h GetOrdersQueryHandler) Handle(ctx context.Context, query GetOrdersQuery) ([]OrderView, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	var orders []*order.Order
	err := read(ctx, h.uowFactory, func(uow ports.UnitOfWork) error {
		var err error
		if status, ok := query.Status(); ok {
			orders, err = uow.OrderRepository().GetByStatus(ctx, status)
		} else {
			orders, err = uow.OrderRepository().GetAll(ctx)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return orderViews(orders), nil
}
