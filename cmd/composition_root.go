package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	httpin "lastmile/internal/adapters/in/http"
	"lastmile/internal/adapters/out/eventbus"
	"lastmile/internal/adapters/out/googlemaps"
	"lastmile/internal/adapters/out/kafka"
	"lastmile/internal/adapters/out/memory"
	"lastmile/internal/adapters/out/mqtt"
	"lastmile/internal/adapters/out/position"
	"lastmile/internal/adapters/out/postgres"
	"lastmile/internal/adapters/out/postgres/proofstore"
	"lastmile/internal/adapters/out/redis"
	"lastmile/internal/core/application/usecases/commands"
	"lastmile/internal/core/application/usecases/queries"
	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/services"
	"lastmile/internal/core/ports"
	"lastmile/internal/jobs"
	"lastmile/internal/pkg/errs"

	"github.com/facebookgo/clock"
	goredis "github.com/redis/go-redis/v9"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type CompositionRoot struct {
	cfg    Config
	clock  clock.Clock
	logger *slog.Logger

	uowFactory ports.UnitOfWorkFactory
	bus        *eventbus.Bus
	proofs     ports.ProofStore
	drafts     ports.RouteDraftStore
	sampler    ports.PositionSampler
	resolver   services.AddressResolver
	optimizer  services.RouteOptimizer

	closers []func() error
}

// NewCompositionRoot connects every configured adapter. Optional adapters
// (redis, kafka, mqtt, google maps) are left out when their settings are
// empty; the service then runs on in-memory or degraded equivalents.
func NewCompositionRoot(ctx context.Context, cfg Config, logger *slog.Logger) (*CompositionRoot, error) {
	c := &CompositionRoot{
		cfg:    cfg,
		clock:  clock.New(),
		logger: logger,
		bus:    eventbus.New(logger),
	}

	if err := c.connectStorage(); err != nil {
		return nil, c.fail(err)
	}
	if err := c.connectEvents(); err != nil {
		return nil, c.fail(err)
	}
	geocoder, err := c.connectMaps()
	if err != nil {
		return nil, c.fail(err)
	}
	if err = c.connectTelemetry(ctx); err != nil {
		return nil, c.fail(err)
	}

	center, err := kernel.NewPosition(cfg.ServiceAreaLat, cfg.ServiceAreaLng)
	if err != nil {
		return nil, c.fail(fmt.Errorf("invalid service area center: %w", err))
	}
	c.resolver = services.NewAddressResolver(geocoder, services.ServiceArea{
		Center:   center,
		RadiusKm: cfg.ServiceAreaRadiusKm,
		Locality: cfg.ServiceAreaLocality,
	})

	if err = c.ensureDepot(ctx); err != nil {
		return nil, c.fail(err)
	}
	return c, nil
}

func (c *CompositionRoot) connectStorage() error {
	switch c.cfg.Storage {
	case StoragePostgres:
		db, err := gorm.Open(gormpostgres.Open(c.cfg.DSN()), &gorm.Config{})
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		if err = postgres.AutoMigrate(db); err != nil {
			return err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		c.closers = append(c.closers, sqlDB.Close)

		c.uowFactory = postgres.NewGormUnitOfWorkFactory(db, c.bus, c.logger)
		c.proofs = proofstore.NewStore(db)
		c.logger.Info("Using postgres storage", "host", c.cfg.DBHost, "db", c.cfg.DBName)
	default:
		c.uowFactory = memory.NewStore(c.bus, c.logger)
		c.proofs = memory.NewProofStore()
		c.logger.Info("Using in-memory storage")
	}

	c.drafts = memory.NewDraftStore()
	return nil
}

func (c *CompositionRoot) connectEvents() error {
	if c.cfg.KafkaHost == "" {
		return nil
	}
	publisher, err := kafka.NewPublisher(strings.Split(c.cfg.KafkaHost, ","), c.cfg.KafkaOrderChangedTopic, c.logger)
	if err != nil {
		return err
	}
	c.closers = append(c.closers, publisher.Close)
	c.bus.Attach(publisher)
	return nil
}

// connectMaps builds the geocoder chain and the optimizer. Redis, when
// configured, caches geocoding answers and holds route drafts.
func (c *CompositionRoot) connectMaps() (ports.Geocoder, error) {
	client := googlemaps.NewClient(googlemaps.Config{
		APIKey:            c.cfg.GoogleMapsAPIKey,
		BaseURL:           c.cfg.GoogleMapsBaseURL,
		Components:        c.cfg.GoogleMapsComponents,
		RequestsPerSecond: c.cfg.GoogleMapsRPS,
		Timeout:           c.cfg.OptimizerTimeout,
	}, c.logger)

	if client.Configured() {
		c.optimizer = services.NewRouteOptimizer(googlemaps.NewOptimizer(client), c.cfg.OptimizerTimeout)
	} else {
		c.logger.Warn("GOOGLE_MAPS_API_KEY is empty: geocoding is unavailable and routes keep their input order")
		c.optimizer = services.NewRouteOptimizer(nil, c.cfg.OptimizerTimeout)
	}

	var geocoder ports.Geocoder = googlemaps.NewGeocoder(client)
	if c.cfg.RedisURL == "" {
		return geocoder, nil
	}

	opts, err := goredis.ParseURL(c.cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	rdb := goredis.NewClient(opts)
	c.closers = append(c.closers, rdb.Close)

	c.drafts = redis.NewDraftStore(rdb, 0)
	return redis.NewGeocodeCache(geocoder, rdb, 0, c.logger), nil
}

// connectTelemetry wires the position sampler: the request-supplied position
// first, then the latest MQTT fix when a broker is configured.
func (c *CompositionRoot) connectTelemetry(ctx context.Context) error {
	if c.cfg.MQTTBroker == "" {
		c.sampler = position.NewSampler(nil)
		return nil
	}

	sampler := mqtt.NewSampler(mqtt.Config{
		Broker:   c.cfg.MQTTBroker,
		ClientID: c.cfg.MQTTClientID,
		Topic:    c.cfg.MQTTPositionTopic,
		MaxAge:   c.cfg.PositionMaxAge,
	}, c.clock, c.logger)
	if err := sampler.Connect(ctx); err != nil {
		return err
	}
	c.closers = append(c.closers, func() error {
		sampler.Close()
		return nil
	})
	c.sampler = position.NewSampler(sampler)
	return nil
}

// ensureDepot stores the configured depot unless one was saved before.
func (c *CompositionRoot) ensureDepot(ctx context.Context) error {
	uow := c.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	_, err := uow.SettingsRepository().GetDepot(ctx)
	if err == nil {
		return nil
	}
	if !errors.Is(err, errs.ErrObjectNotFound) {
		return err
	}

	depot, err := kernel.NewLocation(c.cfg.DepotLat, c.cfg.DepotLng, c.cfg.DepotAddress)
	if err != nil {
		return fmt.Errorf("invalid depot configuration: %w", err)
	}
	if err = uow.SettingsRepository().SetDepot(ctx, depot); err != nil {
		return err
	}
	return uow.Commit(ctx)
}

// Seed applies the configured seed file, if any.
func (c *CompositionRoot) Seed(ctx context.Context) error {
	if c.cfg.SeedFile == "" {
		return nil
	}
	seed, err := LoadSeed(c.cfg.SeedFile)
	if err != nil {
		return err
	}
	applied, err := ApplySeed(ctx, c.uowFactory, seed, c.clock.Now())
	if err != nil {
		return err
	}
	if applied {
		c.logger.InfoContext(ctx, "Seed applied", "file", c.cfg.SeedFile,
			"drivers", len(seed.Drivers), "orders", len(seed.Orders))
	}
	return nil
}

// Close releases every connection opened by the root.
func (c *CompositionRoot) Close() error {
	var problems []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			problems = append(problems, err)
		}
	}
	c.closers = nil
	return errors.Join(problems...)
}

func (c *CompositionRoot) fail(err error) error {
	return errors.Join(err, c.Close())
}

func (c *CompositionRoot) EventFeed() *eventbus.Bus {
	return c.bus
}

func (c *CompositionRoot) uow() commands.UoWFactory {
	return FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) driverUoW() commands.DriverUoWFactory {
	return FuncDriverUoWFactory(func() commands.DriverUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) orderUoW() commands.OrderUoWFactory {
	return FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) settingsUoW() commands.SettingsUoWFactory {
	return FuncSettingsUoWFactory(func() commands.SettingsUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) CreateCreateDriverCommandHandler() commands.CreateDriverCommandHandler {
	return commands.NewCreateDriverCommandHandler(c.driverUoW())
}

func (c *CompositionRoot) CreateToggleDriverStatusCommandHandler() commands.ToggleDriverStatusCommandHandler {
	return commands.NewToggleDriverStatusCommandHandler(c.driverUoW())
}

func (c *CompositionRoot) CreateCreateOrderCommandHandler() commands.CreateOrderCommandHandler {
	return commands.NewCreateOrderCommandHandler(c.orderUoW(), c.resolver, c.clock)
}

func (c *CompositionRoot) CreateEditOrderCommandHandler() commands.EditOrderCommandHandler {
	return commands.NewEditOrderCommandHandler(c.orderUoW(), c.resolver)
}

func (c *CompositionRoot) CreateDeleteOrderCommandHandler() commands.DeleteOrderCommandHandler {
	return commands.NewDeleteOrderCommandHandler(c.orderUoW())
}

func (c *CompositionRoot) CreateChangeOrderPriorityCommandHandler() commands.ChangeOrderPriorityCommandHandler {
	return commands.NewChangeOrderPriorityCommandHandler(c.orderUoW())
}

func (c *CompositionRoot) CreateAssignOrdersCommandHandler() commands.AssignOrdersCommandHandler {
	return commands.NewAssignOrdersCommandHandler(c.uow(), c.optimizer, c.clock)
}

func (c *CompositionRoot) CreateStartRouteCommandHandler() commands.StartRouteCommandHandler {
	return commands.NewStartRouteCommandHandler(c.uow(), c.clock)
}

func (c *CompositionRoot) CreateMarkDeliveredCommandHandler() commands.MarkDeliveredCommandHandler {
	return commands.NewMarkDeliveredCommandHandler(c.uow(), c.sampler, c.proofs, c.clock)
}

func (c *CompositionRoot) CreateFinishShiftCommandHandler() commands.FinishShiftCommandHandler {
	return commands.NewFinishShiftCommandHandler(c.uow(), c.sampler, c.clock)
}

func (c *CompositionRoot) CreateReportIncidentCommandHandler() commands.ReportIncidentCommandHandler {
	return commands.NewReportIncidentCommandHandler(c.uow(), c.clock)
}

func (c *CompositionRoot) CreateChangeDepotCommandHandler() commands.ChangeDepotCommandHandler {
	return commands.NewChangeDepotCommandHandler(c.settingsUoW(), c.resolver)
}

func (c *CompositionRoot) CreateSimulationTickCommandHandler() commands.SimulationTickCommandHandler {
	return commands.NewSimulationTickCommandHandler(c.uow(), services.NewGeofenceSimulator(c.cfg.TickInterval), c.clock)
}

func (c *CompositionRoot) CreateRouteDraftHandlers() commands.RouteDraftHandlers {
	return commands.NewRouteDraftHandlers(c.uow(), c.drafts, c.optimizer, c.clock)
}

func (c *CompositionRoot) CreateGetDriversQueryHandler() queries.GetDriversQueryHandler {
	return queries.NewGetDriversQueryHandler(c.uowFactory)
}

func (c *CompositionRoot) CreateGetOrdersQueryHandler() queries.GetOrdersQueryHandler {
	return queries.NewGetOrdersQueryHandler(c.uowFactory)
}

func (c *CompositionRoot) CreateGetDriverStopsQueryHandler() queries.GetDriverStopsQueryHandler {
	return queries.NewGetDriverStopsQueryHandler(c.uowFactory)
}

func (c *CompositionRoot) CreateGetIncidentsQueryHandler() queries.GetIncidentsQueryHandler {
	return queries.NewGetIncidentsQueryHandler(c.uowFactory)
}

func (c *CompositionRoot) CreateGetDepotQueryHandler() queries.GetDepotQueryHandler {
	return queries.NewGetDepotQueryHandler(c.uowFactory)
}

// HTTPHandlers collects every use case served by the API.
func (c *CompositionRoot) HTTPHandlers() httpin.Handlers {
	return httpin.Handlers{
		CreateDriver:        c.CreateCreateDriverCommandHandler(),
		ToggleDriverStatus:  c.CreateToggleDriverStatusCommandHandler(),
		CreateOrder:         c.CreateCreateOrderCommandHandler(),
		EditOrder:           c.CreateEditOrderCommandHandler(),
		DeleteOrder:         c.CreateDeleteOrderCommandHandler(),
		ChangeOrderPriority: c.CreateChangeOrderPriorityCommandHandler(),
		AssignOrders:        c.CreateAssignOrdersCommandHandler(),
		StartRoute:          c.CreateStartRouteCommandHandler(),
		MarkDelivered:       c.CreateMarkDeliveredCommandHandler(),
		FinishShift:         c.CreateFinishShiftCommandHandler(),
		ReportIncident:      c.CreateReportIncidentCommandHandler(),
		ChangeDepot:         c.CreateChangeDepotCommandHandler(),
		SimulationTick:      c.CreateSimulationTickCommandHandler(),
		RouteDrafts:         c.CreateRouteDraftHandlers(),
		GetDrivers:          c.CreateGetDriversQueryHandler(),
		GetOrders:           c.CreateGetOrdersQueryHandler(),
		GetDriverStops:      c.CreateGetDriverStopsQueryHandler(),
		GetIncidents:        c.CreateGetIncidentsQueryHandler(),
		GetDepot:            c.CreateGetDepotQueryHandler(),
	}
}

// CreateJobManager schedules the simulation tick.
func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	handler := c.CreateSimulationTickCommandHandler()
	return jobs.NewJobManager(&handler, c.cfg.TickInterval, c.logger)
}

type FuncDriverUoWFactory func() commands.DriverUoW

func (f FuncDriverUoWFactory) Create() commands.DriverUoW {
	return f()
}

type FuncOrderUoWFactory func() commands.OrderUoW

func (f FuncOrderUoWFactory) Create() commands.OrderUoW {
	return f()
}

type FuncSettingsUoWFactory func() commands.SettingsUoW

func (f FuncSettingsUoWFactory) Create() commands.SettingsUoW {
	return f()
}

type FuncUoWFactory func() commands.UoW

func (f FuncUoWFactory) Create() commands.UoW {
	return f()
}
