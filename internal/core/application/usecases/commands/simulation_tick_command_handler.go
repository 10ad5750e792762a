package commands

import (
	"context"

	"lastmile/internal/core/domain/services"

	"github.com/facebookgo/clock"
)

// TickResult counts what one pass changed.
type TickResult struct {
	Drivers int
	Started int
	Moved   int
}

func (r TickResult) Changed() bool {
	return r.Started > 0 || r.Moved > 0
}

// SimulationTickCommandHandler applies services.GeofenceSimulator to every
// Active driver inside a single unit of work. The pass is atomic: it commits
// only when something changed and any error rolls the whole pass back.
type SimulationTickCommandHandler struct {
	uowFactory UoWFactory
	simulator  services.GeofenceSimulator
	clock      clock.Clock
}

func NewSimulationTickCommandHandler(
	uowFactory UoWFactory,
	simulator services.GeofenceSimulator,
	clk clock.Clock,
) SimulationTickCommandHandler {
	return SimulationTickCommandHandler{
		uowFactory: uowFactory,
		simulator:  simulator,
		clock:      clk,
	}
}

func (h *SimulationTickCommandHandler) Handle(ctx context.Context, cmd SimulationTickCommand) (TickResult, error) {
	if err := cmd.Validate(); err != nil {
		return TickResult{}, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return TickResult{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	depot, err := uow.SettingsRepository().GetDepot(ctx)
	if err != nil {
		return TickResult{}, err
	}

	driverRepo := uow.DriverRepository()
	orderRepo := uow.OrderRepository()

	drivers, err := driverRepo.GetAllActive(ctx)
	if err != nil {
		return TickResult{}, err
	}

	now := h.clock.Now()
	result := TickResult{Drivers: len(drivers)}

	for _, d := range drivers {
		orders, getErr := orderRepo.GetByDriver(ctx, d.ID())
		if getErr != nil {
			return TickResult{}, getErr
		}

		step, stepErr := h.simulator.Step(d, orders, depot, now)
		if stepErr != nil {
			return TickResult{}, stepErr
		}

		if step.Started != nil {
			if err = orderRepo.Update(ctx, step.Started); err != nil {
				return TickResult{}, err
			}
			result.Started++
		}
		if step.Moved {
			if err = driverRepo.Update(ctx, d); err != nil {
				return TickResult{}, err
			}
			result.Moved++
		}
	}

	if !result.Changed() {
		return result, nil
	}

	if err = uow.Commit(ctx); err != nil {
		return TickResult{}, err
	}
	return result, nil
}
