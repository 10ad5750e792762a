package commands

import (
	"context"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/services"
)

type ChangeDepotCommandHandler struct {
	uowFactory SettingsUoWFactory
	resolver   services.AddressResolver
}

func NewChangeDepotCommandHandler(uowFactory SettingsUoWFactory, resolver services.AddressResolver) ChangeDepotCommandHandler {
	return ChangeDepotCommandHandler{uowFactory: uowFactory, resolver: resolver}
}

// Handle returns the resolved depot.
func (h *ChangeDepotCommandHandler) Handle(ctx context.Context, cmd ChangeDepotCommand) (kernel.Location, error) {
	if err := cmd.Validate(); err != nil {
		return kernel.Location{}, err
	}

	depot, err := h.resolver.Resolve(ctx, cmd.Address())
	if err != nil {
		return kernel.Location{}, err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return kernel.Location{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err = uow.SettingsRepository().SetDepot(ctx, depot); err != nil {
		return kernel.Location{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return kernel.Location{}, err
	}
	return depot, nil
}
