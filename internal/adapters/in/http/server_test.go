package http_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	httpin "lastmile/internal/adapters/in/http"
	"lastmile/internal/adapters/out/eventbus"
	"lastmile/internal/adapters/out/memory"
	"lastmile/internal/adapters/out/position"
	"lastmile/internal/core/application/usecases/commands"
	"lastmile/internal/core/application/usecases/queries"
	"lastmile/internal/core/domain/model/driver"
	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/model/order"
	"lastmile/internal/core/domain/services"
	"lastmile/internal/core/ports"
	"lastmile/internal/metrics"

	"github.com/facebookgo/clock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const kmPerDegreeLat = 111.19492664455873

type GeocoderMock struct{ mock.Mock }

func (m *GeocoderMock) Resolve(ctx context.Context, address string) (ports.GeocodeResult, error) {
	args := m.Called(ctx, address)
	return args.Get(0).(ports.GeocodeResult), args.Error(1)
}

type uowFactory func() commands.UoW

func (f uowFactory) Create() commands.UoW { return f() }

type driverUoWFactory func() commands.DriverUoW

func (f driverUoWFactory) Create() commands.DriverUoW { return f() }

type orderUoWFactory func() commands.OrderUoW

func (f orderUoWFactory) Create() commands.OrderUoW { return f() }

type settingsUoWFactory func() commands.SettingsUoW

func (f settingsUoWFactory) Create() commands.SettingsUoW { return f() }

type ServerTestSuite struct {
	suite.Suite

	store    *memory.Store
	clock    *clock.Mock
	geocoder *GeocoderMock
	depot    kernel.Location
	srv      *httptest.Server
}

func TestServerTestSuite(t *testing.T) {
	suite.Run(t, new(ServerTestSuite))
}

func (s *ServerTestSuite) SetupTest() {
	metrics.Register()

	bus := eventbus.New(nil)
	s.store = memory.NewStore(bus, nil)
	s.clock = clock.NewMock()
	s.clock.Set(time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC))
	s.geocoder = &GeocoderMock{}

	var err error
	s.depot, err = kernel.NewLocation(36.1408, -5.4471, "P.º Victoria Eugenia, 17, Algeciras")
	s.Require().NoError(err)
	s.tx(func(uow ports.UnitOfWork) {
		s.Require().NoError(uow.SettingsRepository().SetDepot(context.Background(), s.depot))
	})

	all := uowFactory(func() commands.UoW { return s.store.Create() })
	drivers := driverUoWFactory(func() commands.DriverUoW { return s.store.Create() })
	orders := orderUoWFactory(func() commands.OrderUoW { return s.store.Create() })
	settings := settingsUoWFactory(func() commands.SettingsUoW { return s.store.Create() })

	resolver := services.NewAddressResolver(s.geocoder, services.ServiceArea{})
	optimizer := services.NewRouteOptimizer(nil, time.Second)
	sampler := position.NewSampler(nil)
	proofs := memory.NewProofStore()

	handlers := httpin.Handlers{
		CreateDriver:        commands.NewCreateDriverCommandHandler(drivers),
		ToggleDriverStatus:  commands.NewToggleDriverStatusCommandHandler(drivers),
		CreateOrder:         commands.NewCreateOrderCommandHandler(orders, resolver, s.clock),
		EditOrder:           commands.NewEditOrderCommandHandler(orders, resolver),
		DeleteOrder:         commands.NewDeleteOrderCommandHandler(orders),
		ChangeOrderPriority: commands.NewChangeOrderPriorityCommandHandler(orders),
		AssignOrders:        commands.NewAssignOrdersCommandHandler(all, optimizer, s.clock),
		StartRoute:          commands.NewStartRouteCommandHandler(all, s.clock),
		MarkDelivered:       commands.NewMarkDeliveredCommandHandler(all, sampler, proofs, s.clock),
		FinishShift:         commands.NewFinishShiftCommandHandler(all, sampler, s.clock),
		ReportIncident:      commands.NewReportIncidentCommandHandler(all, s.clock),
		ChangeDepot:         commands.NewChangeDepotCommandHandler(settings, resolver),
		SimulationTick:      commands.NewSimulationTickCommandHandler(all, services.NewGeofenceSimulator(0), s.clock),
		RouteDrafts:         commands.NewRouteDraftHandlers(all, memory.NewDraftStore(), optimizer, s.clock),
		GetDrivers:          queries.NewGetDriversQueryHandler(s.store),
		GetOrders:           queries.NewGetOrdersQueryHandler(s.store),
		GetDriverStops:      queries.NewGetDriverStopsQueryHandler(s.store),
		GetIncidents:        queries.NewGetIncidentsQueryHandler(s.store),
		GetDepot:            queries.NewGetDepotQueryHandler(s.store),
	}

	server := httpin.NewServer(handlers, bus, nil)
	s.srv = httptest.NewServer(server.NewEcho())
}

func (s *ServerTestSuite) TearDownTest() {
	s.srv.Close()
}

func (s *ServerTestSuite) tx(fn func(uow ports.UnitOfWork)) {
	uow := s.store.Create()
	s.Require().NoError(uow.Begin(context.Background()))
	fn(uow)
	s.Require().NoError(uow.Commit(context.Background()))
}

func (s *ServerTestSuite) do(method, path, body string) (*http.Response, map[string]any) {
	req, err := http.NewRequest(method, s.srv.URL+path, strings.NewReader(body))
	s.Require().NoError(err)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	var decoded map[string]any
	if resp.StatusCode != http.StatusNoContent {
		_ = json.NewDecoder(resp.Body).Decode(&decoded)
	}
	return resp, decoded
}

func (s *ServerTestSuite) list(path string) []map[string]any {
	resp, err := http.Get(s.srv.URL + path)
	s.Require().NoError(err)
	defer resp.Body.Close()
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	var items []map[string]any
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&items))
	return items
}

func (s *ServerTestSuite) north(km float64, address string) kernel.Location {
	l, err := kernel.NewLocation(s.depot.Lat()+km/kmPerDegreeLat, s.depot.Lng(), address)
	s.Require().NoError(err)
	return l
}

// enRouteOrder stores an active driver carrying one EnRoute order at l.
func (s *ServerTestSuite) enRouteOrder(l kernel.Location) (*driver.Driver, *order.Order) {
	d, err := driver.NewDriver(kernel.NewUUID(), "Lucía", "")
	s.Require().NoError(err)
	d.Activate()
	o, err := order.NewOrder(kernel.NewUUID(), "Ana", "", l, order.PriorityMedium, s.clock.Now())
	s.Require().NoError(err)
	s.Require().NoError(o.Assign(d.ID(), s.clock.Now()))
	s.Require().NoError(o.StartRoute(s.clock.Now()))
	s.Require().NoError(d.ConfirmRoute([]kernel.Location{l}, s.clock.Now()))

	s.tx(func(uow ports.UnitOfWork) {
		s.Require().NoError(uow.DriverRepository().Add(context.Background(), d))
		s.Require().NoError(uow.OrderRepository().Add(context.Background(), o))
	})
	return d, o
}

func deliverBody(lat, lng float64) string {
	proof := base64.StdEncoding.EncodeToString([]byte("photo"))
	b, _ := json.Marshal(map[string]any{"proof": proof, "proofContentType": "image/jpeg", "lat": lat, "lng": lng})
	return string(b)
}

func (s *ServerTestSuite) Test_Health() {
	resp, err := http.Get(s.srv.URL + "/health")
	s.Require().NoError(err)
	defer resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)
}

func (s *ServerTestSuite) Test_Metrics() {
	s.do(http.MethodGet, "/api/v1/drivers", "")

	resp, err := http.Get(s.srv.URL + "/metrics")
	s.Require().NoError(err)
	defer resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	s.Contains(string(raw), `lastmile_http_requests_total{method="GET",route="/api/v1/drivers",status="200"}`)
}

func (s *ServerTestSuite) Test_CreateAndListDrivers() {
	resp, body := s.do(http.MethodPost, "/api/v1/drivers", `{"name":"Lucía","pin":"1234"}`)
	s.Require().Equal(http.StatusCreated, resp.StatusCode)
	id, _ := body["id"].(string)
	s.Require().NotEmpty(id)

	resp, body = s.do(http.MethodPost, "/api/v1/drivers/"+id+"/toggle-status", "")
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.Equal("active", body["status"])

	drivers := s.list("/api/v1/drivers")
	s.Require().Len(drivers, 1)
	s.Equal("Lucía", drivers[0]["name"])
	s.Equal("active", drivers[0]["status"])
}

func (s *ServerTestSuite) Test_CreateDriver_MissingName() {
	resp, body := s.do(http.MethodPost, "/api/v1/drivers", `{"name":"  "}`)
	s.Equal(http.StatusBadRequest, resp.StatusCode)
	s.NotEmpty(body["message"])
}

func (s *ServerTestSuite) Test_ToggleUnknownDriver() {
	resp, _ := s.do(http.MethodPost, "/api/v1/drivers/"+kernel.NewUUID().String()+"/toggle-status", "")
	s.Equal(http.StatusNotFound, resp.StatusCode)
}

func (s *ServerTestSuite) Test_InvalidPathID() {
	resp, body := s.do(http.MethodGet, "/api/v1/drivers/not-a-uuid/stops", "")
	s.Equal(http.StatusBadRequest, resp.StatusCode)
	s.Equal("Invalid driver id", body["message"])
}

func (s *ServerTestSuite) Test_CreateOrder() {
	s.geocoder.On("Resolve", mock.Anything, "Calle Real 1").Return(ports.GeocodeResult{
		Valid:            true,
		FormattedAddress: "Calle Real, 1, Algeciras",
		Lat:              36.13,
		Lng:              -5.45,
		Locality:         "Algeciras",
	}, nil).Once()

	resp, _ := s.do(http.MethodPost, "/api/v1/orders", `{"customer":"Ana","address":"Calle Real 1","priority":"high"}`)
	s.Require().Equal(http.StatusCreated, resp.StatusCode)

	orders := s.list("/api/v1/orders?status=pending_assignment")
	s.Require().Len(orders, 1)
	s.Equal("Calle Real, 1, Algeciras", orders[0]["address"])
	s.Equal("high", orders[0]["priority"])
	s.Equal("pending_assignment", orders[0]["status"])
	s.geocoder.AssertExpectations(s.T())
}

func (s *ServerTestSuite) Test_CreateOrder_AddressRejected() {
	s.geocoder.On("Resolve", mock.Anything, "nowhere").Return(ports.GeocodeResult{
		Valid:   false,
		Warning: "address not found",
	}, nil).Once()

	resp, body := s.do(http.MethodPost, "/api/v1/orders", `{"customer":"Ana","address":"nowhere"}`)
	s.Equal(http.StatusBadRequest, resp.StatusCode)
	s.Equal("address not found", body["warning"])

	s.Empty(s.list("/api/v1/orders"))
}

func (s *ServerTestSuite) Test_GetOrders_UnknownStatus() {
	resp, _ := s.do(http.MethodGet, "/api/v1/orders?status=lost", "")
	s.Equal(http.StatusBadRequest, resp.StatusCode)
}

func (s *ServerTestSuite) Test_MarkDelivered_TooFar() {
	target := s.north(3, "Calle Ancha 2")
	d, o := s.enRouteOrder(target)
	far := s.north(2, "")

	resp, body := s.do(http.MethodPost,
		"/api/v1/drivers/"+d.ID().String()+"/orders/"+o.ID().String()+"/deliver",
		deliverBody(far.Lat(), far.Lng()))

	s.Require().Equal(http.StatusUnprocessableEntity, resp.StatusCode)
	s.Equal("too_far", body["kind"])
	s.InDelta(1000, body["distanceMeters"], 2)
	s.InDelta(500, body["limitMeters"], 0)
}

func (s *ServerTestSuite) Test_MarkDelivered_NoPosition() {
	d, o := s.enRouteOrder(s.north(3, "Calle Ancha 2"))

	proof := base64.StdEncoding.EncodeToString([]byte("photo"))
	resp, body := s.do(http.MethodPost,
		"/api/v1/drivers/"+d.ID().String()+"/orders/"+o.ID().String()+"/deliver",
		`{"proof":"`+proof+`"}`)

	s.Equal(http.StatusServiceUnavailable, resp.StatusCode)
	s.Equal(true, body["retryable"])
}

func (s *ServerTestSuite) Test_MarkDelivered_StaleThenForce() {
	target := s.north(3, "Calle Ancha 2")
	d, o := s.enRouteOrder(target)
	s.clock.Add(3 * time.Hour)
	path := "/api/v1/drivers/" + d.ID().String() + "/orders/" + o.ID().String() + "/deliver"

	resp, body := s.do(http.MethodPost, path, deliverBody(target.Lat(), target.Lng()))
	s.Require().Equal(http.StatusConflict, resp.StatusCode)
	s.Equal(true, body["requiresDecision"])
	proofRef, _ := body["proofRef"].(string)
	s.Require().NotEmpty(proofRef)

	retry, _ := json.Marshal(map[string]any{
		"proofRef": proofRef, "resolution": "force", "lat": target.Lat(), "lng": target.Lng(),
	})
	resp, body = s.do(http.MethodPost, path, string(retry))
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.Equal(true, body["delivered"])
	s.Equal(proofRef, body["proofRef"])

	stopsResp, stops := s.do(http.MethodGet, "/api/v1/drivers/"+d.ID().String()+"/stops", "")
	s.Require().Equal(http.StatusOK, stopsResp.StatusCode)
	s.Equal(true, stops["allDelivered"])
}

func (s *ServerTestSuite) Test_FinishShift_NotAtBase() {
	d, _ := s.enRouteOrder(s.north(3, "Calle Ancha 2"))
	away := s.north(1, "")

	b, _ := json.Marshal(map[string]any{"lat": away.Lat(), "lng": away.Lng()})
	resp, body := s.do(http.MethodPost, "/api/v1/drivers/"+d.ID().String()+"/shift/finish", string(b))

	s.Equal(http.StatusUnprocessableEntity, resp.StatusCode)
	s.Equal("not_at_base", body["kind"])
}

func (s *ServerTestSuite) Test_FinishShift_AtBase() {
	d, _ := s.enRouteOrder(s.north(3, "Calle Ancha 2"))

	b, _ := json.Marshal(map[string]any{"lat": s.depot.Lat(), "lng": s.depot.Lng()})
	resp, _ := s.do(http.MethodPost, "/api/v1/drivers/"+d.ID().String()+"/shift/finish", string(b))
	s.Require().Equal(http.StatusNoContent, resp.StatusCode)

	_, body := s.do(http.MethodGet, "/api/v1/drivers/"+d.ID().String()+"/stops", "")
	driverBody, _ := body["driver"].(map[string]any)
	s.Empty(driverBody["route"])
}

func (s *ServerTestSuite) Test_DraftNotFound() {
	d, _ := s.enRouteOrder(s.north(3, "Calle Ancha 2"))
	resp, _ := s.do(http.MethodGet, "/api/v1/drivers/"+d.ID().String()+"/route-draft", "")
	s.Equal(http.StatusNotFound, resp.StatusCode)
}

func (s *ServerTestSuite) Test_SimulationTick() {
	s.enRouteOrder(s.north(3, "Calle Ancha 2"))

	resp, body := s.do(http.MethodPost, "/api/v1/simulation/tick", "")
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.InDelta(1, body["drivers"], 0)
}

func TestRegister_WithoutFeed(t *testing.T) {
	e := echo.New()
	srv := httpin.NewServer(httpin.Handlers{}, nil, nil)
	srv.Register(e)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ws/events", nil)
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNotFound, rec.Code)
}
