package postgres_test

import (
	"context"
	"sync"
	"testing"
	"time"

	postgres_adapter "lastmile/internal/adapters/out/postgres"
	"lastmile/internal/adapters/out/postgres/proofstore"
	"lastmile/internal/core/domain/model/driver"
	"lastmile/internal/core/domain/model/incident"
	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/model/order"
	"lastmile/internal/core/ports"
	"lastmile/internal/pkg/errs"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gorm_postgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []kernel.DomainEvent
}

func (p *recordingPublisher) Publish(_ context.Context, events []kernel.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return nil
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

// UnitOfWorkIntegrationTestSuite runs the unit of work against a real
// PostgreSQL database.
type UnitOfWorkIntegrationTestSuite struct {
	suite.Suite
	container *postgres.PostgresContainer
	db        *gorm.DB
	publisher *recordingPublisher
	factory   ports.UnitOfWorkFactory
}

func TestUnitOfWorkIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(UnitOfWorkIntegrationTestSuite))
}

func (suite *UnitOfWorkIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(30*time.Second)),
	)
	suite.Require().NoError(err)
	suite.container = container

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := gorm.Open(gorm_postgres.Open(dsn), &gorm.Config{})
	suite.Require().NoError(err)
	suite.db = db

	suite.Require().NoError(postgres_adapter.AutoMigrate(db))
}

// SetupTest truncates every table and builds a fresh factory.
func (suite *UnitOfWorkIntegrationTestSuite) SetupTest() {
	err := suite.db.Exec("TRUNCATE TABLE drivers, orders, incidents, settings, proofs").Error
	suite.Require().NoError(err)

	suite.publisher = &recordingPublisher{}
	suite.factory = postgres_adapter.NewGormUnitOfWorkFactory(suite.db, suite.publisher, nil)
}

func (suite *UnitOfWorkIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *UnitOfWorkIntegrationTestSuite) newOrder() *order.Order {
	loc, err := kernel.NewLocation(36.1408, -5.4471, "Calle Real 1, Algeciras")
	suite.Require().NoError(err)
	o, err := order.NewOrder(kernel.NewUUID(), "Ana", "", loc, order.PriorityMedium, time.Now().UTC())
	suite.Require().NoError(err)
	return o
}

func (suite *UnitOfWorkIntegrationTestSuite) TestTransactionLifecycle() {
	ctx := context.Background()
	uow := suite.factory.Create()

	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.Begin(ctx), "Begin on an active unit of work is a no-op")
	suite.Require().NoError(uow.Commit(ctx))

	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.Rollback(ctx))
}

func (suite *UnitOfWorkIntegrationTestSuite) TestTransactionErrors() {
	ctx := context.Background()
	uow := suite.factory.Create()

	suite.Require().ErrorIs(uow.Commit(ctx), gorm.ErrInvalidTransaction)
	suite.Require().ErrorIs(uow.Rollback(ctx), gorm.ErrInvalidTransaction)
}

func (suite *UnitOfWorkIntegrationTestSuite) TestCommitSpansRepositories() {
	ctx := context.Background()
	o := suite.newOrder()
	d, err := driver.NewDriver(kernel.NewUUID(), "Luis", "")
	suite.Require().NoError(err)

	uow := suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.OrderRepository().Add(ctx, o))
	suite.Require().NoError(uow.DriverRepository().Add(ctx, d))
	suite.Require().NoError(uow.Commit(ctx))

	read := suite.factory.Create()
	suite.Require().NoError(read.Begin(ctx))
	defer func() { _ = read.Rollback(ctx) }()

	_, err = read.OrderRepository().Get(ctx, o.ID())
	suite.Require().NoError(err)
	_, err = read.DriverRepository().Get(ctx, d.ID())
	suite.Require().NoError(err)
}

func (suite *UnitOfWorkIntegrationTestSuite) TestRollbackDiscardsChangesAndEvents() {
	ctx := context.Background()
	o := suite.newOrder()

	uow := suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.OrderRepository().Add(ctx, o))
	suite.Require().NoError(o.Assign(kernel.NewUUID(), time.Now()))
	suite.Require().NoError(uow.OrderRepository().Update(ctx, o))
	suite.Require().NoError(uow.Rollback(ctx))

	var count int64
	suite.Require().NoError(suite.db.Table("orders").Count(&count).Error)
	suite.Zero(count)
	suite.Zero(suite.publisher.count())
}

func (suite *UnitOfWorkIntegrationTestSuite) TestEventsArePublishedAfterCommit() {
	ctx := context.Background()
	o := suite.newOrder()

	uow := suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.OrderRepository().Add(ctx, o))
	suite.Require().NoError(o.Assign(kernel.NewUUID(), time.Now()))
	suite.Require().NoError(uow.OrderRepository().Update(ctx, o))
	suite.Zero(suite.publisher.count(), "nothing is published before commit")
	suite.Require().NoError(uow.Commit(ctx))

	suite.Equal(1, suite.publisher.count())
	suite.Empty(o.DomainEvents())
}

func (suite *UnitOfWorkIntegrationTestSuite) TestWritersAreSerialized() {
	ctx := context.Background()
	first := suite.factory.Create()
	suite.Require().NoError(first.Begin(ctx))

	waitCtx, cancel := context.WithTimeout(ctx, 200*time.Millisecond)
	defer cancel()
	second := suite.factory.Create()
	suite.Require().ErrorIs(second.Begin(waitCtx), context.DeadlineExceeded)

	suite.Require().NoError(first.Commit(ctx))
	suite.Require().NoError(second.Begin(ctx))
	suite.Require().NoError(second.Rollback(ctx))
}

func (suite *UnitOfWorkIntegrationTestSuite) TestIncidentsNewestFirst() {
	ctx := context.Background()
	orderID := kernel.NewUUID()
	at := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	pos := kernel.MustNewPosition(36.14, -5.44)

	uow := suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))
	for i, reason := range []string{"older", "newer"} {
		record, err := incident.NewIncident(kernel.NewUUID(), orderID, kernel.NewUUID(),
			incident.Manual, reason, at.Add(time.Duration(i)*time.Minute), pos)
		suite.Require().NoError(err)
		suite.Require().NoError(uow.IncidentRepository().Add(ctx, record))
	}
	other, err := incident.NewIncident(kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(),
		incident.Automatic, "other order", at, pos)
	suite.Require().NoError(err)
	suite.Require().NoError(uow.IncidentRepository().Add(ctx, other))
	suite.Require().NoError(uow.Commit(ctx))

	read := suite.factory.Create()
	suite.Require().NoError(read.Begin(ctx))
	defer func() { _ = read.Rollback(ctx) }()

	all, err := read.IncidentRepository().GetAll(ctx)
	suite.Require().NoError(err)
	suite.Len(all, 3)
	suite.Equal("newer", all[0].Reason())

	byOrder, err := read.IncidentRepository().GetByOrder(ctx, orderID)
	suite.Require().NoError(err)
	suite.Require().Len(byOrder, 2)
	suite.Equal("newer", byOrder[0].Reason())
	suite.Equal("older", byOrder[1].Reason())
	suite.Equal(incident.Manual, byOrder[1].Kind())
}

func (suite *UnitOfWorkIntegrationTestSuite) TestDepotUpsert() {
	ctx := context.Background()
	uow := suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))
	defer func() { _ = uow.Rollback(ctx) }()

	settings := uow.SettingsRepository()
	_, err := settings.GetDepot(ctx)
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)

	first, err := kernel.NewLocation(36.1408, -5.4471, "Depot A")
	suite.Require().NoError(err)
	second, err := kernel.NewLocation(36.13, -5.45, "Depot B")
	suite.Require().NoError(err)

	suite.Require().NoError(settings.SetDepot(ctx, first))
	suite.Require().NoError(settings.SetDepot(ctx, second))

	got, err := settings.GetDepot(ctx)
	suite.Require().NoError(err)
	suite.Equal("Depot B", got.Address())
	suite.True(second.IsEqual(got))
}

func (suite *UnitOfWorkIntegrationTestSuite) TestProofStore() {
	ctx := context.Background()
	store := proofstore.NewStore(suite.db)

	ref, err := store.Save(ctx, kernel.NewUUID(), ports.Proof{Data: []byte("jpeg"), ContentType: "image/jpeg"}, time.Now())
	suite.Require().NoError(err)
	suite.Contains(ref, "postgres://proofs/")

	proof, err := store.Load(ctx, ref)
	suite.Require().NoError(err)
	suite.Equal([]byte("jpeg"), proof.Data)
	suite.Equal("image/jpeg", proof.ContentType)

	_, err = store.Save(ctx, kernel.NewUUID(), ports.Proof{}, time.Now())
	suite.Require().ErrorIs(err, errs.ErrValueIsRequired)

	_, err = store.Load(ctx, "memory://proofs/x")
	suite.Require().ErrorIs(err, errs.ErrValueIsInvalid)
}
