package http

import (
	"errors"
	"net/http"

	"lastmile/internal/core/application/usecases/commands"
	"lastmile/internal/core/domain/model/route"
	"lastmile/internal/core/domain/services"
	"lastmile/internal/core/ports"
	"lastmile/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// writeError maps a use case error to its HTTP answer.
func (s *Server) writeError(ctx echo.Context, err error) error {
	body := errorBody(err)
	if body.Code >= http.StatusInternalServerError && body.Code != http.StatusServiceUnavailable {
		s.logger.ErrorContext(ctx.Request().Context(), "request failed",
			"method", ctx.Request().Method, "path", ctx.Path(), "error", err)
	}
	return ctx.JSON(body.Code, body)
}

func errorBody(err error) Error {
	var (
		geofence    *services.GeofenceViolationError
		stale       *commands.StaleDeliveryError
		unavailable *commands.PositionUnavailableError
		rejected    *services.AddressRejectedError
	)

	switch {
	case errors.As(err, &geofence):
		distance := geofence.DistanceMeters()
		limit := int(geofence.Limit*1000 + 0.5)
		return Error{
			Code:           http.StatusUnprocessableEntity,
			Message:        err.Error(),
			Kind:           string(geofence.Kind),
			DistanceMeters: &distance,
			LimitMeters:    &limit,
		}
	case errors.As(err, &stale):
		minutes := int(stale.Elapsed.Minutes())
		return Error{
			Code:             http.StatusConflict,
			Message:          err.Error(),
			RequiresDecision: true,
			ProofRef:         stale.ProofRef,
			ElapsedMinutes:   &minutes,
		}
	case errors.As(err, &unavailable):
		return Error{Code: http.StatusServiceUnavailable, Message: err.Error(), Retryable: true}
	case errors.As(err, &rejected):
		return Error{Code: http.StatusBadRequest, Message: err.Error(), Warning: rejected.Warning}
	case errors.Is(err, commands.ErrAssignmentConflict), errors.Is(err, commands.ErrDraftIsStale):
		return Error{Code: http.StatusConflict, Message: err.Error(), Retryable: true}
	case errors.Is(err, errs.ErrObjectNotFound),
		errors.Is(err, ports.ErrDraftNotFound),
		errors.Is(err, route.ErrStopNotFound):
		return Error{Code: http.StatusNotFound, Message: err.Error()}
	case errors.Is(err, errs.ErrValueIsInvalid),
		errors.Is(err, errs.ErrValueIsRequired),
		errors.Is(err, errs.ErrValueIsOutOfRange):
		return Error{Code: http.StatusBadRequest, Message: err.Error()}
	default:
		return Error{Code: http.StatusInternalServerError, Message: "internal error"}
	}
}

func badRequest(ctx echo.Context, message string) error {
	return ctx.JSON(http.StatusBadRequest, Error{Code: http.StatusBadRequest, Message: message})
}
