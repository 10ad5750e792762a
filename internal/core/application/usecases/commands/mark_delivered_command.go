package commands

import (
	"errors"
	"strings"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/ports"
	"lastmile/internal/pkg/guard"
)

var ErrMarkDeliveredCommandIsNotConstructed = errors.New(
	"MarkDeliveredCommand must be created via NewMarkDeliveredCommand constructor",
)

// MarkDeliveredCommand is the driver's confirmation that an EnRoute order was
// handed over. It carries either a new proof payload or the reference of a
// proof stored by an earlier attempt, and the decision for stale orders.
type MarkDeliveredCommand struct { //nolint:recvcheck //using for validation
	driverID       kernel.UUID
	orderID        kernel.UUID
	proof          ports.Proof
	proofRef       string
	resolution     Resolution
	incidentReason string

	guard guard.ConstructorGuard
}

func NewMarkDeliveredCommand(
	driverID, orderID kernel.UUID,
	proof ports.Proof,
	proofRef string,
	resolution Resolution,
	incidentReason string,
) (MarkDeliveredCommand, error) {
	command := MarkDeliveredCommand{
		proof:          proof,
		proofRef:       strings.TrimSpace(proofRef),
		incidentReason: strings.TrimSpace(incidentReason),
		guard:          guard.NewConstructorGuard(),
	}

	var proofErr error
	if len(proof.Data) == 0 && command.proofRef == "" {
		proofErr = ErrProofIsRequired
	}

	if err := errors.Join(
		driverID.Validate(),
		orderID.Validate(),
		proofErr,
		command.setResolution(resolution),
	); err != nil {
		return MarkDeliveredCommand{}, err
	}
	command.driverID = driverID
	command.orderID = orderID

	return command, nil
}

func (c MarkDeliveredCommand) Validate() error {
	return c.guard.Validate(ErrMarkDeliveredCommandIsNotConstructed)
}

func (c MarkDeliveredCommand) DriverID() kernel.UUID {
	return c.driverID
}

func (c MarkDeliveredCommand) OrderID() kernel.UUID {
	return c.orderID
}

func (c MarkDeliveredCommand) Proof() ports.Proof {
	return c.proof
}

func (c MarkDeliveredCommand) ProofRef() string {
	return c.proofRef
}

func (c MarkDeliveredCommand) Resolution() Resolution {
	return c.resolution
}

func (c MarkDeliveredCommand) IncidentReason() string {
	return c.incidentReason
}

func (c *MarkDeliveredCommand) setResolution(r Resolution) error {
	switch r {
	case ResolutionNone, ResolutionForce:
	case ResolutionIncident:
		if c.incidentReason == "" {
			return ErrReasonIsRequired
		}
	default:
		return ErrResolutionIsInvalid
	}
	c.resolution = r
	return nil
}
