// Package http exposes the dispatch use cases over a JSON API, the live event
// feed over a websocket and the Prometheus metrics.
package http

import (
	"log/slog"
	"net/http"

	"lastmile/internal/core/application/usecases/commands"
	"lastmile/internal/core/application/usecases/queries"
	"lastmile/internal/metrics"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handlers groups the use cases served by the API.
type Handlers struct {
	// Command handlers
	CreateDriver        commands.CreateDriverCommandHandler
	ToggleDriverStatus  commands.ToggleDriverStatusCommandHandler
	CreateOrder         commands.CreateOrderCommandHandler
	EditOrder           commands.EditOrderCommandHandler
	DeleteOrder         commands.DeleteOrderCommandHandler
	ChangeOrderPriority commands.ChangeOrderPriorityCommandHandler
	AssignOrders        commands.AssignOrdersCommandHandler
	StartRoute          commands.StartRouteCommandHandler
	MarkDelivered       commands.MarkDeliveredCommandHandler
	FinishShift         commands.FinishShiftCommandHandler
	ReportIncident      commands.ReportIncidentCommandHandler
	ChangeDepot         commands.ChangeDepotCommandHandler
	SimulationTick      commands.SimulationTickCommandHandler
	RouteDrafts         commands.RouteDraftHandlers

	// Query handlers
	GetDrivers     queries.GetDriversQueryHandler
	GetOrders      queries.GetOrdersQueryHandler
	GetDriverStops queries.GetDriverStopsQueryHandler
	GetIncidents   queries.GetIncidentsQueryHandler
	GetDepot       queries.GetDepotQueryHandler
}

// Server coordinates between HTTP handlers and application use cases.
type Server struct {
	h      Handlers
	feed   EventFeed
	logger *slog.Logger
}

// NewServer creates the server. feed may be nil, which disables /ws/events.
func NewServer(handlers Handlers, feed EventFeed, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		h:      handlers,
		feed:   feed,
		logger: logger.With("component", "http"),
	}
}

// NewEcho builds the echo instance with every route registered.
func (s *Server) NewEcho() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(metricsMiddleware)
	s.Register(e)
	return e
}

func (s *Server) Register(e *echo.Echo) {
	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "Healthy")
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})))
	if s.feed != nil {
		e.GET("/ws/events", s.LiveEvents)
	}

	api := e.Group("/api/v1")

	api.GET("/drivers", s.GetDrivers)
	api.POST("/drivers", s.CreateDriver)
	api.POST("/drivers/:driverId/toggle-status", s.ToggleDriverStatus)
	api.GET("/drivers/:driverId/stops", s.GetDriverStops)
	api.POST("/drivers/:driverId/assignments", s.AssignOrders)
	api.POST("/drivers/:driverId/route/start", s.StartRoute)
	api.POST("/drivers/:driverId/orders/:orderId/deliver", s.MarkDelivered)
	api.POST("/drivers/:driverId/orders/:orderId/incidents", s.ReportIncident)
	api.POST("/drivers/:driverId/shift/finish", s.FinishShift)

	api.POST("/drivers/:driverId/route-draft", s.OpenRouteDraft)
	api.GET("/drivers/:driverId/route-draft", s.GetRouteDraft)
	api.DELETE("/drivers/:driverId/route-draft", s.DiscardRouteDraft)
	api.POST("/drivers/:driverId/route-draft/move", s.MoveRouteDraftStop)
	api.POST("/drivers/:driverId/route-draft/priority", s.SetRouteDraftPriority)
	api.POST("/drivers/:driverId/route-draft/optimize", s.OptimizeRouteDraft)
	api.POST("/drivers/:driverId/route-draft/confirm", s.ConfirmRouteDraft)

	api.GET("/orders", s.GetOrders)
	api.POST("/orders", s.CreateOrder)
	api.PUT("/orders/:orderId", s.EditOrder)
	api.DELETE("/orders/:orderId", s.DeleteOrder)
	api.PUT("/orders/:orderId/priority", s.ChangeOrderPriority)

	api.GET("/incidents", s.GetIncidents)

	api.GET("/settings/depot", s.GetDepot)
	api.PUT("/settings/depot", s.ChangeDepot)

	api.POST("/simulation/tick", s.SimulationTick)
}
