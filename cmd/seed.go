package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"lastmile/internal/core/domain/model/driver"
	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/model/order"
	"lastmile/internal/core/ports"
	"lastmile/internal/pkg/errs"

	"gopkg.in/yaml.v3"
)

// Seed is the content of the optional YAML seed file. Orders carry their
// coordinates so loading never calls the geocoder.
type Seed struct {
	Drivers []SeedDriver `yaml:"drivers"`
	Orders  []SeedOrder  `yaml:"orders"`
}

type SeedDriver struct {
	Name   string `yaml:"name"`
	Pin    string `yaml:"pin"`
	Active bool   `yaml:"active"`
}

type SeedOrder struct {
	Customer string  `yaml:"customer"`
	Address  string  `yaml:"address"`
	Notes    string  `yaml:"notes"`
	Lat      float64 `yaml:"lat"`
	Lng      float64 `yaml:"lng"`
	Priority string  `yaml:"priority"`
	// Age backdates createdAt, e.g. "3h" for an order that will need a stale
	// delivery decision.
	Age time.Duration `yaml:"age"`
}

// LoadSeed parses a seed file.
func LoadSeed(path string) (Seed, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Seed{}, fmt.Errorf("read seed file: %w", err)
	}

	var seed Seed
	if err = yaml.Unmarshal(raw, &seed); err != nil {
		return Seed{}, fmt.Errorf("parse seed file %s: %w", path, err)
	}
	return seed, nil
}

// ApplySeed stores the seed in one unit of work. A store that already holds
// drivers or orders is left untouched and applied reports false.
func ApplySeed(ctx context.Context, uowFactory ports.UnitOfWorkFactory, seed Seed, now time.Time) (applied bool, err error) {
	drivers, orders, err := buildSeed(seed, now)
	if err != nil {
		return false, err
	}

	uow := uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return false, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	existingDrivers, err := uow.DriverRepository().GetAll(ctx)
	if err != nil {
		return false, err
	}
	existingOrders, err := uow.OrderRepository().GetAll(ctx)
	if err != nil {
		return false, err
	}
	if len(existingDrivers) > 0 || len(existingOrders) > 0 {
		return false, nil
	}

	for _, d := range drivers {
		if err = uow.DriverRepository().Add(ctx, d); err != nil {
			return false, err
		}
	}
	for _, o := range orders {
		if err = uow.OrderRepository().Add(ctx, o); err != nil {
			return false, err
		}
	}

	if err = uow.Commit(ctx); err != nil {
		return false, err
	}
	return true, nil
}

func buildSeed(seed Seed, now time.Time) ([]*driver.Driver, []*order.Order, error) {
	var problems []error

	drivers := make([]*driver.Driver, 0, len(seed.Drivers))
	for i, sd := range seed.Drivers {
		d, err := driver.NewDriver(kernel.NewUUID(), sd.Name, sd.Pin)
		if err != nil {
			problems = append(problems, fmt.Errorf("drivers[%d]: %w", i, err))
			continue
		}
		if sd.Active {
			d.Activate()
		}
		drivers = append(drivers, d)
	}

	orders := make([]*order.Order, 0, len(seed.Orders))
	for i, so := range seed.Orders {
		if so.Age < 0 {
			problems = append(problems, fmt.Errorf("orders[%d]: %w", i, errs.NewValueIsOutOfRangeError("age", so.Age, 0, "unbounded")))
			continue
		}
		o, err := seedOrder(so, now.Add(-so.Age))
		if err != nil {
			problems = append(problems, fmt.Errorf("orders[%d]: %w", i, err))
			continue
		}
		orders = append(orders, o)
	}

	if err := errors.Join(problems...); err != nil {
		return nil, nil, err
	}
	return drivers, orders, nil
}

func seedOrder(so SeedOrder, createdAt time.Time) (*order.Order, error) {
	location, err := kernel.NewLocation(so.Lat, so.Lng, so.Address)
	if err != nil {
		return nil, err
	}
	priority, err := order.ParsePriority(so.Priority)
	if err != nil {
		return nil, err
	}
	return order.NewOrder(kernel.NewUUID(), so.Customer, so.Notes, location, priority, createdAt)
}
