package http

import (
	"net/http"

	"lastmile/internal/core/application/usecases/commands"
	"lastmile/internal/core/application/usecases/queries"
	"lastmile/internal/core/domain/model/kernel"

	"github.com/labstack/echo/v4"
)

// GetDrivers handles GET /api/v1/drivers.
func (s *Server) GetDrivers(ctx echo.Context) error {
	views, err := s.h.GetDrivers.Handle(ctx.Request().Context(), queries.NewGetDriversQuery())
	if err != nil {
		return s.writeError(ctx, err)
	}

	response := make([]Driver, 0, len(views))
	for _, v := range views {
		response = append(response, driverOf(v))
	}
	return ctx.JSON(http.StatusOK, response)
}

// CreateDriver handles POST /api/v1/drivers.
func (s *Server) CreateDriver(ctx echo.Context) error {
	var body NewDriver
	if err := ctx.Bind(&body); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	driverID := kernel.NewUUID()
	cmd, err := commands.NewCreateDriverCommand(driverID, body.Name, body.Pin)
	if err != nil {
		return s.writeError(ctx, err)
	}
	if err = s.h.CreateDriver.Handle(ctx.Request().Context(), cmd); err != nil {
		return s.writeError(ctx, err)
	}

	return ctx.JSON(http.StatusCreated, CreatedResponse{ID: driverID.Bytes()})
}

// ToggleDriverStatus handles POST /api/v1/drivers/:driverId/toggle-status.
func (s *Server) ToggleDriverStatus(ctx echo.Context) error {
	driverID, err := pathUUID(ctx, "driverId")
	if err != nil {
		return badRequest(ctx, "Invalid driver id")
	}
	cmd, err := commands.NewToggleDriverStatusCommand(driverID)
	if err != nil {
		return s.writeError(ctx, err)
	}

	status, err := s.h.ToggleDriverStatus.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return s.writeError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, ToggleStatusResponse{Status: status.String()})
}

// GetDriverStops handles GET /api/v1/drivers/:driverId/stops.
func (s *Server) GetDriverStops(ctx echo.Context) error {
	driverID, err := pathUUID(ctx, "driverId")
	if err != nil {
		return badRequest(ctx, "Invalid driver id")
	}
	query, err := queries.NewGetDriverStopsQuery(driverID)
	if err != nil {
		return s.writeError(ctx, err)
	}

	view, err := s.h.GetDriverStops.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.writeError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, DriverStops{
		Driver:       driverOf(view.Driver),
		Stops:        ordersOf(view.Stops),
		Next:         uuidPtr(view.Next),
		AllDelivered: view.AllDelivered,
	})
}
