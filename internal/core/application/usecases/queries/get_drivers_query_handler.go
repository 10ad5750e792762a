package queries

import (
	"context"

	"lastmile/internal/core/ports"
)

type GetDriversQueryHandler struct {
	uowFactory ports.UnitOfWorkFactory
}

func NewGetDriversQueryHandler(uowFactory ports.UnitOfWorkFactory) GetDriversQueryHandler {
	return GetDriversQueryHandler{uowFactory: uowFactory}
}

func (h GetDriversQueryHandler) Handle(ctx context.Context, query GetDriversQuery) ([]DriverView, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	views := make([]DriverView, 0)
	err := read(ctx, h.uowFactory, func(uow ports.UnitOfWork) error {
		drivers, err := uow.DriverRepository().GetAll(ctx)
		if err != nil {
			return err
		}
		for _, d := range drivers {
			views = append(views, driverView(d))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return views, nil
}
