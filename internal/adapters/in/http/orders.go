package http

import (
	"net/http"

	"lastmile/internal/core/application/usecases/commands"
	"lastmile/internal/core/application/usecases/queries"
	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/model/order"

	"github.com/labstack/echo/v4"
)

// GetOrders handles GET /api/v1/orders?status=.
func (s *Server) GetOrders(ctx echo.Context) error {
	query, err := queries.NewGetOrdersQuery(ctx.QueryParam("status"))
	if err != nil {
		return s.writeError(ctx, err)
	}

	views, err := s.h.GetOrders.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.writeError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, ordersOf(views))
}

// CreateOrder handles POST /api/v1/orders. The address is geocoded; an
// unusable address answers 400 with the geocoder's warning.
func (s *Server) CreateOrder(ctx echo.Context) error {
	var body NewOrder
	if err := ctx.Bind(&body); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	priority, err := order.ParsePriority(body.Priority)
	if err != nil {
		return s.writeError(ctx, err)
	}

	orderID := kernel.NewUUID()
	cmd, err := commands.NewCreateOrderCommand(orderID, body.Customer, body.Address, body.Notes, priority)
	if err != nil {
		return s.writeError(ctx, err)
	}
	if err = s.h.CreateOrder.Handle(ctx.Request().Context(), cmd); err != nil {
		return s.writeError(ctx, err)
	}

	return ctx.JSON(http.StatusCreated, CreatedResponse{ID: orderID.Bytes()})
}

// EditOrder handles PUT /api/v1/orders/:orderId.
func (s *Server) EditOrder(ctx echo.Context) error {
	orderID, err := pathUUID(ctx, "orderId")
	if err != nil {
		return badRequest(ctx, "Invalid order id")
	}
	var body EditOrder
	if err = ctx.Bind(&body); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	cmd, err := commands.NewEditOrderCommand(orderID, body.Customer, body.Address, body.Notes)
	if err != nil {
		return s.writeError(ctx, err)
	}
	if err = s.h.EditOrder.Handle(ctx.Request().Context(), cmd); err != nil {
		return s.writeError(ctx, err)
	}
	return ctx.NoContent(http.StatusNoContent)
}

// DeleteOrder handles DELETE /api/v1/orders/:orderId.
func (s *Server) DeleteOrder(ctx echo.Context) error {
	orderID, err := pathUUID(ctx, "orderId")
	if err != nil {
		return badRequest(ctx, "Invalid order id")
	}
	cmd, err := commands.NewDeleteOrderCommand(orderID)
	if err != nil {
		return s.writeError(ctx, err)
	}
	if err = s.h.DeleteOrder.Handle(ctx.Request().Context(), cmd); err != nil {
		return s.writeError(ctx, err)
	}
	return ctx.NoContent(http.StatusNoContent)
}

// ChangeOrderPriority handles PUT /api/v1/orders/:orderId/priority.
func (s *Server) ChangeOrderPriority(ctx echo.Context) error {
	orderID, err := pathUUID(ctx, "orderId")
	if err != nil {
		return badRequest(ctx, "Invalid order id")
	}
	var body ChangePriority
	if err = ctx.Bind(&body); err != nil {
		return badRequest(ctx, "Invalid request body")
	}
	priority, err := order.ParsePriority(body.Priority)
	if err != nil {
		return s.writeError(ctx, err)
	}

	cmd, err := commands.NewChangeOrderPriorityCommand(orderID, priority)
	if err != nil {
		return s.writeError(ctx, err)
	}
	if err = s.h.ChangeOrderPriority.Handle(ctx.Request().Context(), cmd); err != nil {
		return s.writeError(ctx, err)
	}
	return ctx.NoContent(http.StatusNoContent)
}

// GetIncidents handles GET /api/v1/incidents?orderId=.
func (s *Server) GetIncidents(ctx echo.Context) error {
	var orderID *kernel.UUID
	if raw := ctx.QueryParam("orderId"); raw != "" {
		id, err := kernel.UUIDFromString(raw)
		if err != nil {
			return badRequest(ctx, "Invalid order id")
		}
		orderID = &id
	}

	query, err := queries.NewGetIncidentsQuery(orderID)
	if err != nil {
		return s.writeError(ctx, err)
	}
	views, err := s.h.GetIncidents.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.writeError(ctx, err)
	}

	response := make([]Incident, 0, len(views))
	for _, v := range views {
		response = append(response, Incident{
			ID:         v.ID.Bytes(),
			OrderID:    v.OrderID.Bytes(),
			DriverID:   v.DriverID.Bytes(),
			Kind:       v.Kind.String(),
			Reason:     v.Reason,
			ReportedAt: v.ReportedAt,
			Location:   positionOf(v.Location),
		})
	}
	return ctx.JSON(http.StatusOK, response)
}

// GetDepot handles GET /api/v1/settings/depot.
func (s *Server) GetDepot(ctx echo.Context) error {
	depot, err := s.h.GetDepot.Handle(ctx.Request().Context())
	if err != nil {
		return s.writeError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, locationOf(depot))
}

// ChangeDepot handles PUT /api/v1/settings/depot.
func (s *Server) ChangeDepot(ctx echo.Context) error {
	var body ChangeDepot
	if err := ctx.Bind(&body); err != nil {
		return badRequest(ctx, "Invalid request body")
	}
	cmd, err := commands.NewChangeDepotCommand(body.Address)
	if err != nil {
		return s.writeError(ctx, err)
	}

	depot, err := s.h.ChangeDepot.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return s.writeError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, locationOf(depot))
}
