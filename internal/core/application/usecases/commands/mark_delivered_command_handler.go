package commands

import (
	"context"
	"time"

	"lastmile/internal/core/domain/model/incident"
	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/model/order"
	"lastmile/internal/core/domain/services"
	"lastmile/internal/core/ports"
	"lastmile/internal/metrics"

	"github.com/facebookgo/clock"
)

// MarkDeliveredResult tells what the workflow finally did.
type MarkDeliveredResult struct {
	// Delivered is false when the stale order was closed with an incident instead.
	Delivered  bool
	ProofRef   string
	IncidentID *kernel.UUID
	// NextOrderID is the order promoted to EnRoute, if any.
	NextOrderID *kernel.UUID
}

// MarkDeliveredCommandHandler runs the delivery confirmation workflow:
//
//  1. sample the driver's position (retryable failure)
//  2. reject when farther than services.DeliveryGeofenceKm from the order
//  3. store the proof, unless a reference from an earlier attempt is given
//  4. if the order is older than services.StaleDeliveryWindow, require a
//     resolution: force delivers anyway, incident files an automatic
//     incident and leaves the order EnRoute
//  5. deliver and promote the driver's next Assigned order
//
// Steps 1 to 3 happen outside the unit of work; the order is re-validated
// under the lock before anything changes.
type MarkDeliveredCommandHandler struct {
	uowFactory UoWFactory
	sampler    ports.PositionSampler
	proofs     ports.ProofStore
	policy     services.DeliveryPolicy
	sequencer  services.RouteSequencer
	clock      clock.Clock
}

func NewMarkDeliveredCommandHandler(
	uowFactory UoWFactory,
	sampler ports.PositionSampler,
	proofs ports.ProofStore,
	clk clock.Clock,
) MarkDeliveredCommandHandler {
	return MarkDeliveredCommandHandler{
		uowFactory: uowFactory,
		sampler:    sampler,
		proofs:     proofs,
		policy:     services.NewDeliveryPolicy(),
		sequencer:  services.NewRouteSequencer(),
		clock:      clk,
	}
}

func (h *MarkDeliveredCommandHandler) Handle(
	ctx context.Context,
	cmd MarkDeliveredCommand,
) (MarkDeliveredResult, error) {
	if err := cmd.Validate(); err != nil {
		return MarkDeliveredResult{}, err
	}

	sample, err := h.sampler.CurrentPosition(ctx, cmd.DriverID())
	if err != nil {
		return MarkDeliveredResult{}, &PositionUnavailableError{DriverID: cmd.DriverID(), Cause: err}
	}

	target, err := h.deliveryTarget(ctx, cmd)
	if err != nil {
		return MarkDeliveredResult{}, err
	}

	if err = h.policy.CheckDeliveryDistance(sample, target); err != nil {
		metrics.GeofenceRejections.WithLabelValues(string(services.GeofenceTooFar)).Inc()
		return MarkDeliveredResult{}, err
	}

	proofRef := cmd.ProofRef()
	if proofRef == "" {
		proofRef, err = h.proofs.Save(ctx, cmd.OrderID(), cmd.Proof(), h.clock.Now())
		if err != nil {
			return MarkDeliveredResult{}, err
		}
	}

	return h.finalize(ctx, cmd, sample, proofRef)
}

// deliveryTarget reads the order location under the lock and releases it.
func (h *MarkDeliveredCommandHandler) deliveryTarget(
	ctx context.Context,
	cmd MarkDeliveredCommand,
) (kernel.Location, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return kernel.Location{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	o, err := h.loadEnRoute(ctx, uow, cmd)
	if err != nil {
		return kernel.Location{}, err
	}
	location, ok := o.Location()
	if !ok {
		return kernel.Location{}, order.ErrOrderHasNoLocation
	}
	return location, nil
}

func (h *MarkDeliveredCommandHandler) finalize(
	ctx context.Context,
	cmd MarkDeliveredCommand,
	sample kernel.Position,
	proofRef string,
) (MarkDeliveredResult, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return MarkDeliveredResult{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	o, err := h.loadEnRoute(ctx, uow, cmd)
	if err != nil {
		return MarkDeliveredResult{}, err
	}

	now := h.clock.Now()
	if elapsed, stale := h.policy.IsStale(o, now); stale {
		switch cmd.Resolution() {
		case ResolutionNone:
			return MarkDeliveredResult{}, &StaleDeliveryError{OrderID: o.ID(), Elapsed: elapsed, ProofRef: proofRef}
		case ResolutionIncident:
			return h.fileIncident(ctx, uow, cmd, sample, proofRef, now)
		case ResolutionForce:
		}
	}

	if err = o.Deliver(proofRef, now); err != nil {
		return MarkDeliveredResult{}, err
	}

	orderRepo := uow.OrderRepository()
	if err = orderRepo.Update(ctx, o); err != nil {
		return MarkDeliveredResult{}, err
	}

	result := MarkDeliveredResult{Delivered: true, ProofRef: proofRef}

	d, err := uow.DriverRepository().Get(ctx, cmd.DriverID())
	if err != nil {
		return MarkDeliveredResult{}, err
	}
	orders, err := orderRepo.GetByDriver(ctx, d.ID())
	if err != nil {
		return MarkDeliveredResult{}, err
	}
	if next := h.sequencer.NextAssigned(withoutOrder(orders, o.ID()), d.Route()); next != nil {
		if err = next.StartRoute(now); err != nil {
			return MarkDeliveredResult{}, err
		}
		if err = orderRepo.Update(ctx, next); err != nil {
			return MarkDeliveredResult{}, err
		}
		id := next.ID()
		result.NextOrderID = &id
	}

	if err = uow.Commit(ctx); err != nil {
		return MarkDeliveredResult{}, err
	}
	return result, nil
}

func (h *MarkDeliveredCommandHandler) fileIncident(
	ctx context.Context,
	uow UoW,
	cmd MarkDeliveredCommand,
	sample kernel.Position,
	proofRef string,
	now time.Time,
) (MarkDeliveredResult, error) {
	record, err := incident.NewIncident(
		kernel.NewUUID(), cmd.OrderID(), cmd.DriverID(), incident.Automatic, cmd.IncidentReason(), now, sample,
	)
	if err != nil {
		return MarkDeliveredResult{}, err
	}
	if err = uow.IncidentRepository().Add(ctx, record); err != nil {
		return MarkDeliveredResult{}, err
	}
	if err = uow.Commit(ctx); err != nil {
		return MarkDeliveredResult{}, err
	}

	id := record.ID()
	return MarkDeliveredResult{ProofRef: proofRef, IncidentID: &id}, nil
}

// loadEnRoute returns the order if it is EnRoute and belongs to the driver.
func (h *MarkDeliveredCommandHandler) loadEnRoute(
	ctx context.Context,
	uow UoW,
	cmd MarkDeliveredCommand,
) (*order.Order, error) {
	o, err := uow.OrderRepository().Get(ctx, cmd.OrderID())
	if err != nil {
		return nil, err
	}
	if !o.IsAssignedTo(cmd.DriverID()) {
		return nil, ErrOrderNotOfDriver
	}
	if o.Status() != order.EnRoute {
		return nil, ErrOrderNotEnRoute
	}
	return o, nil
}

func withoutOrder(orders []*order.Order, id kernel.UUID) []*order.Order {
	out := make([]*order.Order, 0, len(orders))
	for _, o := range orders {
		if !o.ID().IsEqual(id) {
			out = append(out, o)
		}
	}
	return out
}
