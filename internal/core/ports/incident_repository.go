package ports

import (
	"context"

	"lastmile/internal/core/domain/model/incident"
	"lastmile/internal/core/domain/model/kernel"
)

// IncidentRepository is append only.
type IncidentRepository interface {
	Add(ctx context.Context, record *incident.Incident) error

	// GetAll returns incidents newest first.
	GetAll(ctx context.Context) ([]*incident.Incident, error)

	GetByOrder(ctx context.Context, orderID kernel.UUID) ([]*incident.Incident, error)
}
