package http

import (
	"context"
	"net/http"

	"lastmile/internal/adapters/out/position"
	"lastmile/internal/core/application/usecases/commands"
	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/model/order"
	"lastmile/internal/core/domain/model/route"
	"lastmile/internal/core/ports"

	"github.com/labstack/echo/v4"
)

// AssignOrders handles POST /api/v1/drivers/:driverId/assignments.
func (s *Server) AssignOrders(ctx echo.Context) error {
	driverID, err := pathUUID(ctx, "driverId")
	if err != nil {
		return badRequest(ctx, "Invalid driver id")
	}
	var body AssignOrders
	if err = ctx.Bind(&body); err != nil {
		return badRequest(ctx, "Invalid request body")
	}
	orderIDs, err := uuids(body.OrderIDs)
	if err != nil {
		return badRequest(ctx, "Invalid order id")
	}

	cmd, err := commands.NewAssignOrdersCommand(driverID, orderIDs)
	if err != nil {
		return s.writeError(ctx, err)
	}
	result, err := s.h.AssignOrders.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return s.writeError(ctx, err)
	}

	response := AssignOrdersResponse{
		Stops:          stopsOf(result.Stops),
		Optimized:      result.Optimized,
		OldestSelected: uuidPtr(result.OldestSelected),
	}
	if result.Warning != nil {
		response.Warning = result.Warning.Error()
	}
	return ctx.JSON(http.StatusOK, response)
}

// StartRoute handles POST /api/v1/drivers/:driverId/route/start.
func (s *Server) StartRoute(ctx echo.Context) error {
	driverID, err := pathUUID(ctx, "driverId")
	if err != nil {
		return badRequest(ctx, "Invalid driver id")
	}
	cmd, err := commands.NewStartRouteCommand(driverID)
	if err != nil {
		return s.writeError(ctx, err)
	}

	orderID, err := s.h.StartRoute.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return s.writeError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, StartRouteResponse{OrderID: orderID.Bytes()})
}

// MarkDelivered handles POST /api/v1/drivers/:driverId/orders/:orderId/deliver.
//
// A stale order answers 409 with requiresDecision; the client retries with
// resolution "force" or "incident" and the returned proofRef.
func (s *Server) MarkDelivered(ctx echo.Context) error {
	driverID, err := pathUUID(ctx, "driverId")
	if err != nil {
		return badRequest(ctx, "Invalid driver id")
	}
	orderID, err := pathUUID(ctx, "orderId")
	if err != nil {
		return badRequest(ctx, "Invalid order id")
	}
	var body MarkDelivered
	if err = ctx.Bind(&body); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	resolution, err := commands.ParseResolution(body.Resolution)
	if err != nil {
		return s.writeError(ctx, err)
	}
	cmd, err := commands.NewMarkDeliveredCommand(
		driverID,
		orderID,
		ports.Proof{Data: body.Proof, ContentType: body.ProofContentType},
		body.ProofRef,
		resolution,
		body.IncidentReason,
	)
	if err != nil {
		return s.writeError(ctx, err)
	}

	reqCtx, err := withReportedPosition(ctx.Request().Context(), body.Lat, body.Lng)
	if err != nil {
		return s.writeError(ctx, err)
	}
	result, err := s.h.MarkDelivered.Handle(reqCtx, cmd)
	if err != nil {
		return s.writeError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, MarkDeliveredResponse{
		Delivered:   result.Delivered,
		ProofRef:    result.ProofRef,
		IncidentID:  uuidPtr(result.IncidentID),
		NextOrderID: uuidPtr(result.NextOrderID),
	})
}

// ReportIncident handles POST /api/v1/drivers/:driverId/orders/:orderId/incidents.
func (s *Server) ReportIncident(ctx echo.Context) error {
	driverID, err := pathUUID(ctx, "driverId")
	if err != nil {
		return badRequest(ctx, "Invalid driver id")
	}
	orderID, err := pathUUID(ctx, "orderId")
	if err != nil {
		return badRequest(ctx, "Invalid order id")
	}
	var body NewIncident
	if err = ctx.Bind(&body); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	incidentID := kernel.NewUUID()
	cmd, err := commands.NewReportIncidentCommand(incidentID, driverID, orderID, body.Reason)
	if err != nil {
		return s.writeError(ctx, err)
	}
	if err = s.h.ReportIncident.Handle(ctx.Request().Context(), cmd); err != nil {
		return s.writeError(ctx, err)
	}
	return ctx.JSON(http.StatusCreated, CreatedResponse{ID: incidentID.Bytes()})
}

// FinishShift handles POST /api/v1/drivers/:driverId/shift/finish.
func (s *Server) FinishShift(ctx echo.Context) error {
	driverID, err := pathUUID(ctx, "driverId")
	if err != nil {
		return badRequest(ctx, "Invalid driver id")
	}
	var body FinishShift
	if err = ctx.Bind(&body); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	cmd, err := commands.NewFinishShiftCommand(driverID)
	if err != nil {
		return s.writeError(ctx, err)
	}
	reqCtx, err := withReportedPosition(ctx.Request().Context(), body.Lat, body.Lng)
	if err != nil {
		return s.writeError(ctx, err)
	}
	if err = s.h.FinishShift.Handle(reqCtx, cmd); err != nil {
		return s.writeError(ctx, err)
	}
	return ctx.NoContent(http.StatusNoContent)
}

// SimulationTick handles POST /api/v1/simulation/tick and runs one pass
// immediately.
func (s *Server) SimulationTick(ctx echo.Context) error {
	result, err := s.h.SimulationTick.Handle(ctx.Request().Context(), commands.NewSimulationTickCommand())
	if err != nil {
		return s.writeError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, TickResponse{Drivers: result.Drivers, Started: result.Started, Moved: result.Moved})
}

// OpenRouteDraft handles POST /api/v1/drivers/:driverId/route-draft.
func (s *Server) OpenRouteDraft(ctx echo.Context) error {
	return s.draftCall(ctx, http.StatusCreated, s.h.RouteDrafts.Open)
}

// GetRouteDraft handles GET /api/v1/drivers/:driverId/route-draft.
func (s *Server) GetRouteDraft(ctx echo.Context) error {
	return s.draftCall(ctx, http.StatusOK, s.h.RouteDrafts.Get)
}

// OptimizeRouteDraft handles POST /api/v1/drivers/:driverId/route-draft/optimize.
func (s *Server) OptimizeRouteDraft(ctx echo.Context) error {
	return s.draftCall(ctx, http.StatusOK, s.h.RouteDrafts.Optimize)
}

// DiscardRouteDraft handles DELETE /api/v1/drivers/:driverId/route-draft.
func (s *Server) DiscardRouteDraft(ctx echo.Context) error {
	cmd, ok, err := s.draftCommand(ctx)
	if !ok {
		return err
	}
	if err = s.h.RouteDrafts.Discard(ctx.Request().Context(), cmd); err != nil {
		return s.writeError(ctx, err)
	}
	return ctx.NoContent(http.StatusNoContent)
}

// ConfirmRouteDraft handles POST /api/v1/drivers/:driverId/route-draft/confirm.
func (s *Server) ConfirmRouteDraft(ctx echo.Context) error {
	cmd, ok, err := s.draftCommand(ctx)
	if !ok {
		return err
	}
	stops, err := s.h.RouteDrafts.Confirm(ctx.Request().Context(), cmd)
	if err != nil {
		return s.writeError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, stopsOf(stops))
}

// MoveRouteDraftStop handles POST /api/v1/drivers/:driverId/route-draft/move.
func (s *Server) MoveRouteDraftStop(ctx echo.Context) error {
	driverID, err := pathUUID(ctx, "driverId")
	if err != nil {
		return badRequest(ctx, "Invalid driver id")
	}
	var body MoveStop
	if err = ctx.Bind(&body); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	cmd, err := commands.NewMoveRouteDraftStopCommand(driverID, body.Index, route.Direction(body.Direction))
	if err != nil {
		return s.writeError(ctx, err)
	}
	draft, err := s.h.RouteDrafts.Move(ctx.Request().Context(), cmd)
	if err != nil {
		return s.writeError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, draftOf(draft))
}

// SetRouteDraftPriority handles POST /api/v1/drivers/:driverId/route-draft/priority.
func (s *Server) SetRouteDraftPriority(ctx echo.Context) error {
	driverID, err := pathUUID(ctx, "driverId")
	if err != nil {
		return badRequest(ctx, "Invalid driver id")
	}
	var body DraftPriority
	if err = ctx.Bind(&body); err != nil {
		return badRequest(ctx, "Invalid request body")
	}
	orderID, err := kernel.UUIDFromBytes(body.OrderID[:])
	if err != nil {
		return badRequest(ctx, "Invalid order id")
	}
	priority, err := order.ParsePriority(body.Priority)
	if err != nil {
		return s.writeError(ctx, err)
	}

	cmd, err := commands.NewSetRouteDraftPriorityCommand(driverID, orderID, priority)
	if err != nil {
		return s.writeError(ctx, err)
	}
	draft, err := s.h.RouteDrafts.SetPriority(ctx.Request().Context(), cmd)
	if err != nil {
		return s.writeError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, draftOf(draft))
}

// draftCommand reads the driver id. When ok is false the error response
// was already written and err is the result of writing it.
func (s *Server) draftCommand(ctx echo.Context) (cmd commands.RouteDraftCommand, ok bool, err error) {
	driverID, err := pathUUID(ctx, "driverId")
	if err != nil {
		return cmd, false, badRequest(ctx, "Invalid driver id")
	}
	cmd, err = commands.NewRouteDraftCommand(driverID)
	if err != nil {
		return cmd, false, s.writeError(ctx, err)
	}
	return cmd, true, nil
}

func (s *Server) draftCall(
	ctx echo.Context,
	status int,
	call func(context.Context, commands.RouteDraftCommand) (*route.Draft, error),
) error {
	cmd, ok, err := s.draftCommand(ctx)
	if !ok {
		return err
	}

	draft, err := call(ctx.Request().Context(), cmd)
	if err != nil {
		return s.writeError(ctx, err)
	}
	return ctx.JSON(status, draftOf(draft))
}

// withReportedPosition attaches the device position sent with the request.
func withReportedPosition(ctx context.Context, lat, lng *float64) (context.Context, error) {
	if lat == nil || lng == nil {
		return ctx, nil
	}
	p, err := kernel.NewPosition(*lat, *lng)
	if err != nil {
		return ctx, err
	}
	return position.WithPosition(ctx, p), nil
}
