package http

import (
	"time"

	"lastmile/internal/core/application/usecases/queries"
	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/model/route"

	"github.com/google/uuid"
)

// Error is the body of every non-2xx response.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`

	// Geofence violations.
	Kind           string `json:"kind,omitempty"`
	DistanceMeters *int   `json:"distanceMeters,omitempty"`
	LimitMeters    *int   `json:"limitMeters,omitempty"`

	// Stale deliveries.
	RequiresDecision bool   `json:"requiresDecision,omitempty"`
	ProofRef         string `json:"proofRef,omitempty"`
	ElapsedMinutes   *int   `json:"elapsedMinutes,omitempty"`

	Retryable bool   `json:"retryable,omitempty"`
	Warning   string `json:"warning,omitempty"`
}

type Location struct {
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	Address string  `json:"address,omitempty"`
}

func locationOf(l kernel.Location) Location {
	return Location{Lat: l.Lat(), Lng: l.Lng(), Address: l.Address()}
}

func locations(ls []kernel.Location) []Location {
	out := make([]Location, 0, len(ls))
	for _, l := range ls {
		out = append(out, locationOf(l))
	}
	return out
}

type Position struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func positionOf(p kernel.Position) Position {
	return Position{Lat: p.Lat(), Lng: p.Lng()}
}

type NewDriver struct {
	Name string `json:"name"`
	Pin  string `json:"pin"`
}

type Driver struct {
	ID                 uuid.UUID  `json:"id"`
	Name               string     `json:"name"`
	Status             string     `json:"status"`
	Position           *Position  `json:"position,omitempty"`
	Route              []Location `json:"route"`
	RouteConfirmed     bool       `json:"routeConfirmed"`
	LastLocationUpdate *time.Time `json:"lastLocationUpdate,omitempty"`
}

func driverOf(v queries.DriverView) Driver {
	d := Driver{
		ID:                 v.ID.Bytes(),
		Name:               v.Name,
		Status:             v.Status.String(),
		Route:              locations(v.Route),
		RouteConfirmed:     v.RouteConfirmed,
		LastLocationUpdate: v.LastLocationUpdate,
	}
	if v.Position != nil {
		p := positionOf(*v.Position)
		d.Position = &p
	}
	return d
}

type ToggleStatusResponse struct {
	Status string `json:"status"`
}

type NewOrder struct {
	Customer string `json:"customer"`
	Address  string `json:"address"`
	Notes    string `json:"notes"`
	Priority string `json:"priority"`
}

type EditOrder struct {
	Customer string `json:"customer"`
	Address  string `json:"address"`
	Notes    string `json:"notes"`
}

type ChangePriority struct {
	Priority string `json:"priority"`
}

type Order struct {
	ID          uuid.UUID  `json:"id"`
	Customer    string     `json:"customer"`
	Address     string     `json:"address"`
	Notes       string     `json:"notes,omitempty"`
	Location    *Location  `json:"location,omitempty"`
	Status      string     `json:"status"`
	DriverID    *uuid.UUID `json:"driverId,omitempty"`
	Priority    string     `json:"priority"`
	CreatedAt   time.Time  `json:"createdAt"`
	DeliveredAt *time.Time `json:"deliveredAt,omitempty"`
	ProofRef    string     `json:"proofRef,omitempty"`
}

func orderOf(v queries.OrderView) Order {
	o := Order{
		ID:          v.ID.Bytes(),
		Customer:    v.Customer,
		Address:     v.Address,
		Notes:       v.Notes,
		Status:      v.Status.String(),
		Priority:    v.Priority.String(),
		CreatedAt:   v.CreatedAt,
		DeliveredAt: v.DeliveredAt,
		ProofRef:    v.ProofRef,
	}
	if v.Location != nil {
		l := locationOf(*v.Location)
		o.Location = &l
	}
	if v.DriverID != nil {
		id := v.DriverID.Bytes()
		o.DriverID = &id
	}
	return o
}

func ordersOf(views []queries.OrderView) []Order {
	out := make([]Order, 0, len(views))
	for _, v := range views {
		out = append(out, orderOf(v))
	}
	return out
}

type DriverStops struct {
	Driver       Driver     `json:"driver"`
	Stops        []Order    `json:"stops"`
	Next         *uuid.UUID `json:"next,omitempty"`
	AllDelivered bool       `json:"allDelivered"`
}

type AssignOrders struct {
	OrderIDs []uuid.UUID `json:"orderIds"`
}

type Stop struct {
	OrderID  uuid.UUID `json:"orderId"`
	Location Location  `json:"location"`
	Priority string    `json:"priority"`
}

func stopsOf(stops []route.Stop) []Stop {
	out := make([]Stop, 0, len(stops))
	for _, s := range stops {
		out = append(out, Stop{OrderID: s.OrderID.Bytes(), Location: locationOf(s.Location), Priority: s.Priority.String()})
	}
	return out
}

type AssignOrdersResponse struct {
	Stops          []Stop     `json:"stops"`
	Optimized      bool       `json:"optimized"`
	Warning        string     `json:"warning,omitempty"`
	OldestSelected *uuid.UUID `json:"oldestSelected,omitempty"`
}

type StartRouteResponse struct {
	OrderID uuid.UUID `json:"orderId"`
}

// MarkDelivered carries the proof (base64 in JSON) or the reference of a
// proof stored by an earlier attempt. Lat/Lng, when both are set, is the
// device position reported with the request.
type MarkDelivered struct {
	Proof            []byte   `json:"proof"`
	ProofContentType string   `json:"proofContentType"`
	ProofRef         string   `json:"proofRef"`
	Resolution       string   `json:"resolution"`
	IncidentReason   string   `json:"incidentReason"`
	Lat              *float64 `json:"lat"`
	Lng              *float64 `json:"lng"`
}

type MarkDeliveredResponse struct {
	Delivered   bool       `json:"delivered"`
	ProofRef    string     `json:"proofRef"`
	IncidentID  *uuid.UUID `json:"incidentId,omitempty"`
	NextOrderID *uuid.UUID `json:"nextOrderId,omitempty"`
}

type FinishShift struct {
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
}

type NewIncident struct {
	Reason string `json:"reason"`
}

type Incident struct {
	ID         uuid.UUID `json:"id"`
	OrderID    uuid.UUID `json:"orderId"`
	DriverID   uuid.UUID `json:"driverId"`
	Kind       string    `json:"kind"`
	Reason     string    `json:"reason"`
	ReportedAt time.Time `json:"reportedAt"`
	Location   Position  `json:"location"`
}

type CreatedResponse struct {
	ID uuid.UUID `json:"id"`
}

type RouteDraft struct {
	DriverID  uuid.UUID `json:"driverId"`
	Stops     []Stop    `json:"stops"`
	Optimized bool      `json:"optimized"`
	Warning   string    `json:"warning,omitempty"`
}

func draftOf(d *route.Draft) RouteDraft {
	return RouteDraft{DriverID: d.DriverID.Bytes(), Stops: stopsOf(d.Stops), Optimized: d.Optimized, Warning: d.Warning}
}

type MoveStop struct {
	Index     int    `json:"index"`
	Direction string `json:"direction"`
}

type DraftPriority struct {
	OrderID  uuid.UUID `json:"orderId"`
	Priority string    `json:"priority"`
}

type ChangeDepot struct {
	Address string `json:"address"`
}

type TickResponse struct {
	Drivers int `json:"drivers"`
	Started int `json:"started"`
	Moved   int `json:"moved"`
}
