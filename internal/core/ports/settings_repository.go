package ports

import (
	"context"

	"lastmile/internal/core/domain/model/kernel"
)

// SettingsRepository stores operator-level settings.
type SettingsRepository interface {
	// GetDepot returns errs.ObjectNotFoundError until a depot is set.
	GetDepot(ctx context.Context) (kernel.Location, error)
	SetDepot(ctx context.Context, depot kernel.Location) error
}
