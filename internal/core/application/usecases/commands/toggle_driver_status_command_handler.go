package commands

import (
	"context"

	"lastmile/internal/core/domain/model/driver"
)

type ToggleDriverStatusCommandHandler struct {
	uowFactory DriverUoWFactory
}

func NewToggleDriverStatusCommandHandler(uowFactory DriverUoWFactory) ToggleDriverStatusCommandHandler {
	return ToggleDriverStatusCommandHandler{uowFactory: uowFactory}
}

// Handle returns the driver's new status.
func (h *ToggleDriverStatusCommandHandler) Handle(
	ctx context.Context,
	cmd ToggleDriverStatusCommand,
) (driver.Status, error) {
	if err := cmd.Validate(); err != nil {
		return driver.Unknown, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return driver.Unknown, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	repo := uow.DriverRepository()
	d, err := repo.Get(ctx, cmd.DriverID())
	if err != nil {
		return driver.Unknown, err
	}

	status := d.ToggleStatus()
	if err = repo.Update(ctx, d); err != nil {
		return driver.Unknown, err
	}

	if err = uow.Commit(ctx); err != nil {
		return driver.Unknown, err
	}
	return status, nil
}
