package commands_test

import (
	"context"
	"errors"
	"testing"

	"lastmile/internal/core/application/usecases/commands"
	"lastmile/internal/core/domain/model/driver"
	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/ports"
	"lastmile/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type DriverRepositoryMock struct{ mock.Mock }

func (m *DriverRepositoryMock) Add(ctx context.Context, d *driver.Driver) error {
	return m.Called(ctx, d).Error(0)
}

func (m *DriverRepositoryMock) Update(ctx context.Context, d *driver.Driver) error {
	return m.Called(ctx, d).Error(0)
}

func (m *DriverRepositoryMock) Get(ctx context.Context, id kernel.UUID) (*driver.Driver, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*driver.Driver), args.Error(1)
}

func (m *DriverRepositoryMock) GetAll(ctx context.Context) ([]*driver.Driver, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*driver.Driver), args.Error(1)
}

func (m *DriverRepositoryMock) GetAllActive(ctx context.Context) ([]*driver.Driver, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*driver.Driver), args.Error(1)
}

type DriverUoWMock struct{ mock.Mock }

func (m *DriverUoWMock) Begin(ctx context.Context) error    { return m.Called(ctx).Error(0) }
func (m *DriverUoWMock) Commit(ctx context.Context) error   { return m.Called(ctx).Error(0) }
func (m *DriverUoWMock) Rollback(ctx context.Context) error { return m.Called(ctx).Error(0) }

func (m *DriverUoWMock) DriverRepository() ports.DriverRepository {
	return m.Called().Get(0).(ports.DriverRepository)
}

type DriverUoWFactoryMock struct{ mock.Mock }

func (m *DriverUoWFactoryMock) Create() commands.DriverUoW {
	return m.Called().Get(0).(commands.DriverUoW)
}

func TestCreateDriverCommandHandler_CommitsNewInactiveDriver(t *testing.T) {
	ctx := t.Context()
	repo := &DriverRepositoryMock{}
	uow := &DriverUoWMock{}
	factory := &DriverUoWFactoryMock{}

	factory.On("Create").Return(uow)
	uow.On("DriverRepository").Return(repo)
	mock.InOrder(
		uow.On("Begin", ctx).Return(nil),
		repo.On("Add", ctx, mock.MatchedBy(func(d *driver.Driver) bool {
			return d.Name() == "Lucía" && d.Pin() == "0420" && d.Status() == driver.Inactive
		})).Return(nil),
		uow.On("Commit", ctx).Return(nil),
		uow.On("Rollback", ctx).Return(errors.New("no active transaction")),
	)

	cmd, err := commands.NewCreateDriverCommand(kernel.NewUUID(), " Lucía ", "0420")
	require.NoError(t, err)

	handler := commands.NewCreateDriverCommandHandler(factory)
	require.NoError(t, handler.Handle(ctx, cmd))

	repo.AssertExpectations(t)
	uow.AssertExpectations(t)
}

func TestCreateDriverCommandHandler_RepositoryErrorRollsBack(t *testing.T) {
	ctx := t.Context()
	repo := &DriverRepositoryMock{}
	uow := &DriverUoWMock{}
	factory := &DriverUoWFactoryMock{}

	factory.On("Create").Return(uow)
	uow.On("DriverRepository").Return(repo)
	uow.On("Begin", ctx).Return(nil)
	repo.On("Add", ctx, mock.Anything).Return(errors.New("duplicate"))
	uow.On("Rollback", ctx).Return(nil)

	cmd, err := commands.NewCreateDriverCommand(kernel.NewUUID(), "Lucía", "")
	require.NoError(t, err)

	handler := commands.NewCreateDriverCommandHandler(factory)
	assert.Error(t, handler.Handle(ctx, cmd))

	uow.AssertNotCalled(t, "Commit", ctx)
	uow.AssertCalled(t, "Rollback", ctx)
}

func TestCreateDriverCommandHandler_InvalidPin(t *testing.T) {
	w := newWorld(t)
	handler := commands.NewCreateDriverCommandHandler(w.driverUoW())

	cmd, err := commands.NewCreateDriverCommand(kernel.NewUUID(), "Lucía", "12a4")
	require.NoError(t, err)

	assert.ErrorIs(t, handler.Handle(t.Context(), cmd), driver.ErrPinIsInvalid)
}

func TestNewCreateDriverCommand(t *testing.T) {
	_, err := commands.NewCreateDriverCommand(kernel.NewUUID(), "  ", "")
	assert.ErrorIs(t, err, commands.ErrNameIsRequired)

	_, err = commands.NewCreateDriverCommand(kernel.UUID{}, "Lucía", "")
	assert.ErrorIs(t, err, errs.ErrValueIsRequired)

	var zero commands.CreateDriverCommand
	assert.ErrorIs(t, zero.Validate(), commands.ErrCreateDriverCommandIsNotConstructed)
}

func TestToggleDriverStatusCommandHandler_Handle(t *testing.T) {
	w := newWorld(t)
	d := w.addDriver(false)
	handler := commands.NewToggleDriverStatusCommandHandler(w.driverUoW())

	cmd, err := commands.NewToggleDriverStatusCommand(d.ID())
	require.NoError(t, err)

	status, err := handler.Handle(t.Context(), cmd)
	require.NoError(t, err)
	assert.Equal(t, driver.Active, status)
	assert.True(t, w.driver(d.ID()).IsActive())

	status, err = handler.Handle(t.Context(), cmd)
	require.NoError(t, err)
	assert.Equal(t, driver.Inactive, status)

	missing, err := commands.NewToggleDriverStatusCommand(kernel.NewUUID())
	require.NoError(t, err)
	_, err = handler.Handle(t.Context(), missing)
	assert.ErrorIs(t, err, errs.ErrObjectNotFound)
}
