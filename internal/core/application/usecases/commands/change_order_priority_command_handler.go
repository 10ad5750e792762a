package commands

import (
	"context"
)

type ChangeOrderPriorityCommandHandler struct {
	uowFactory OrderUoWFactory
}

func NewChangeOrderPriorityCommandHandler(uowFactory OrderUoWFactory) ChangeOrderPriorityCommandHandler {
	return ChangeOrderPriorityCommandHandler{uowFactory: uowFactory}
}

// Handle changes the stored priority only. The driver's route is resequenced
// when the operator next optimizes or confirms it.
func (h *ChangeOrderPriorityCommandHandler) Handle(ctx context.Context, cmd ChangeOrderPriorityCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	repo := uow.OrderRepository()
	o, err := repo.Get(ctx, cmd.OrderID())
	if err != nil {
		return err
	}
	if err = o.ChangePriority(cmd.Priority()); err != nil {
		return err
	}
	if err = repo.Update(ctx, o); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
