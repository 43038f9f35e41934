package queries

import (
	"context"
	"time"

	"dispatch/internal/core/domain/model/kernel"
)

type OnlineCourierView struct {
	Phone             kernel.PhoneNumber
	Location          kernel.Location
	LocationUpdatedAt *time.Time
	ActiveOrders      int
}

// GetOnlineCouriersQueryHandler returns online couriers ordered by phone, each with
// the number of orders it is working on.
type GetOnlineCouriersQueryHandler struct {
	repos RepositoriesFactory
}

func NewGetOnlineCouriersQueryHandler(repos RepositoriesFactory) GetOnlineCouriersQueryHandler {
	return GetOnlineCouriersQueryHandler{repos: repos}
}

func (h GetOnlineCouriersQueryHandler) Handle(ctx context.Context, query GetOnlineCouriersQuery) ([]OnlineCourierView, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	repos := h.repos.Create()
	couriers, err := repos.CourierRepository().FindOnline(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]OnlineCourierView, 0, len(couriers))
	for _, c := range couriers {
		active, err := repos.OrderRepository().FindActiveByCourier(ctx, c.Phone())
		if err != nil {
			return nil, err
		}
		views = append(views, OnlineCourierView{
			Phone:             c.Phone(),
			Location:          c.Location(),
			LocationUpdatedAt: c.LocationUpdatedAt(),
			ActiveOrders:      len(active),
		})
	}
	return views, nil
}
