// Package incident models append-only records of problems reported during a delivery.
package incident

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/pkg/errs"
)

var ErrReasonIsRequired = errs.NewValueIsRequiredError("reason")

// Kind tells whether the system or the driver raised the incident.
type Kind int

const (
	KindUnknown Kind = iota
	// Automatic incidents are raised by the delivery workflow, e.g. a stale delivery.
	Automatic
	// Manual incidents are reported explicitly by the driver.
	Manual
)

func getKindStrings() map[Kind]string {
	//nolint:exhaustive // KindUnknown is intentionally excluded as it's invalid
	return map[Kind]string{
		Automatic: "automatic",
		Manual:    "manual",
	}
}

func ParseKind(s string) (Kind, error) {
	for k, str := range getKindStrings() {
		if str == strings.ToLower(strings.TrimSpace(s)) {
			return k, nil
		}
	}
	return KindUnknown, errs.NewValueIsInvalidErrorWithCause("incident kind", fmt.Errorf("%q is not a valid kind", s))
}

func (k Kind) Validate() error {
	if _, ok := getKindStrings()[k]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("incident kind", fmt.Errorf("%d is not a valid kind", k))
	}
	return nil
}

func (k Kind) String() string {
	if str, ok := getKindStrings()[k]; ok {
		return str
	}
	return "unknown"
}

// Incident is immutable once created.
type Incident struct {
	id         kernel.UUID
	orderID    kernel.UUID
	driverID   kernel.UUID
	kind       Kind
	reason     string
	reportedAt time.Time
	location   kernel.Position
}

// NewIncident validates every field. It is also used to restore persisted incidents.
func NewIncident(
	id, orderID, driverID kernel.UUID,
	kind Kind,
	reason string,
	reportedAt time.Time,
	location kernel.Position,
) (*Incident, error) {
	reason = strings.TrimSpace(reason)
	var reasonErr error
	if reason == "" {
		reasonErr = ErrReasonIsRequired
	}

	if err := errors.Join(
		id.Validate(),
		orderID.Validate(),
		driverID.Validate(),
		kind.Validate(),
		reasonErr,
		location.Validate(),
	); err != nil {
		return nil, err
	}

	return &Incident{
		id:         id,
		orderID:    orderID,
		driverID:   driverID,
		kind:       kind,
		reason:     reason,
		reportedAt: reportedAt,
		location:   location,
	}, nil
}

func (i *Incident) ID() kernel.UUID           { return i.id }
func (i *Incident) OrderID() kernel.UUID      { return i.orderID }
func (i *Incident) DriverID() kernel.UUID     { return i.driverID }
func (i *Incident) Kind() Kind                { return i.kind }
func (i *Incident) Reason() string            { return i.reason }
func (i *Incident) ReportedAt() time.Time     { return i.reportedAt }
func (i *Incident) Location() kernel.Position { return i.location }
