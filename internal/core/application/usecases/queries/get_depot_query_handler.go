package queries

import (
	"context"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/ports"
)

// GetDepotQueryHandler returns the current depot. It takes no query value.
type GetDepotQueryHandler struct {
	uowFactory ports.UnitOfWorkFactory
}

func NewGetDepotQueryHandler(uowFactory ports.UnitOfWorkFactory) GetDepotQueryHandler {
	return GetDepotQueryHandler{uowFactory: uowFactory}
}

func (h GetDepotQueryHandler) Handle(ctx context.Context) (kernel.Location, error) {
	var depot kernel.Location
	err := read(ctx, h.uowFactory, func(uow ports.UnitOfWork) error {
		var err error
		depot, err = uow.SettingsRepository().GetDepot(ctx)
		return err
	})
	return depot, err
}
