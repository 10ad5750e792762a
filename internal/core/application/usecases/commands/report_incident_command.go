package commands

import (
	"errors"
	"strings"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/pkg/guard"
)

var ErrReportIncidentCommandIsNotConstructed = errors.New(
	"ReportIncidentCommand must be created via NewReportIncidentCommand constructor",
)

// ReportIncidentCommand files a manual incident against the driver's EnRoute order.
type ReportIncidentCommand struct {
	incidentID kernel.UUID
	driverID   kernel.UUID
	orderID    kernel.UUID
	reason     string

	guard guard.ConstructorGuard
}

func NewReportIncidentCommand(incidentID, driverID, orderID kernel.UUID, reason string) (ReportIncidentCommand, error) {
	reason = strings.TrimSpace(reason)
	var reasonErr error
	if reason == "" {
		reasonErr = ErrReasonIsRequired
	}

	if err := errors.Join(incidentID.Validate(), driverID.Validate(), orderID.Validate(), reasonErr); err != nil {
		return ReportIncidentCommand{}, err
	}

	return ReportIncidentCommand{
		incidentID: incidentID,
		driverID:   driverID,
		orderID:    orderID,
		reason:     reason,
		guard:      guard.NewConstructorGuard(),
	}, nil
}

func (c ReportIncidentCommand) Validate() error {
	return c.guard.Validate(ErrReportIncidentCommandIsNotConstructed)
}

func (c ReportIncidentCommand) IncidentID() kernel.UUID {
	return c.incidentID
}

func (c ReportIncidentCommand) DriverID() kernel.UUID {
	return c.driverID
}

func (c ReportIncidentCommand) OrderID() kernel.UUID {
	return c.orderID
}

func (c ReportIncidentCommand) Reason() string {
	return c.reason
}
