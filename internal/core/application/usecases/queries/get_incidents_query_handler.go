package queries

import (
	"context"
	"time"

	"lastmile/internal/core/domain/model/incident"
	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/ports"
)

type IncidentView struct {
	ID         kernel.UUID
	OrderID    kernel.UUID
	DriverID   kernel.UUID
	Kind       incident.Kind
	Reason     string
	ReportedAt time.Time
	Location   kernel.Position
}

type GetIncidentsQueryHandler struct {
	uowFactory ports.UnitOfWorkFactory
}

func NewGetIncidentsQueryHandler(uowFactory ports.UnitOfWorkFactory) GetIncidentsQueryHandler {
	return GetIncidentsQueryHandler{uowFactory: uowFactory}
}

func (h GetIncidentsQueryHandler) Handle(ctx context.Context, query GetIncidentsQuery) ([]IncidentView, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	var records []*incident.Incident
	err := read(ctx, h.uowFactory, func(uow ports.UnitOfWork) error {
		var err error
		if id := query.OrderID(); id != nil {
			records, err = uow.IncidentRepository().GetByOrder(ctx, *id)
		} else {
			records, err = uow.IncidentRepository().GetAll(ctx)
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	views := make([]IncidentView, 0, len(records))
	for _, r := range records {
		views = append(views, IncidentView{
			ID:         r.ID(),
			OrderID:    r.OrderID(),
			DriverID:   r.DriverID(),
			Kind:       r.Kind(),
			Reason:     r.Reason(),
			ReportedAt: r.ReportedAt(),
			Location:   r.Location(),
		})
	}
	return views, nil
}
