package queries

import (
	"context"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/services"
)

// GetVisibleOrdersQueryResponse is one projection of the pending feed.
// OnRoute annotates Orders and is informational only.
type GetVisibleOrdersQueryResponse struct {
	Orders       []*order.Order
	OnRoute      map[kernel.UUID]bool
	ActiveOrders []*order.Order
}

// GetVisibleOrdersQueryHandler reads the pending set and the courier's active set
// from one read-only snapshot and runs services.ProjectFeed over them once.
//
// Example:
//
//	handler := NewGetVisibleOrdersQueryHandler(repos, services.NewRouteFilter(), services.ProjectionOptions{})
//	view, err := handler.Handle(ctx, query)
type GetVisibleOrdersQueryHandler struct {
	repos   RepositoriesFactory
	filter  services.RouteFilter
	options services.ProjectionOptions
}

func NewGetVisibleOrdersQueryHandler(
	repos RepositoriesFactory,
	filter services.RouteFilter,
	options services.ProjectionOptions,
) GetVisibleOrdersQueryHandler {
	return GetVisibleOrdersQueryHandler{repos: repos, filter: filter, options: options}
}

func (h GetVisibleOrdersQueryHandler) Handle(
	ctx context.Context,
	query GetVisibleOrdersQuery,
) (GetVisibleOrdersQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetVisibleOrdersQueryResponse{}, err
	}

	repos := h.repos.Create()
	if err := repos.BeginReadOnly(ctx); err != nil {
		return GetVisibleOrdersQueryResponse{}, err
	}
	defer func() { _ = repos.Rollback(context.WithoutCancel(ctx)) }()

	orderRepo := repos.OrderRepository()

	pending, err := orderRepo.FindPending(ctx)
	if err != nil {
		return GetVisibleOrdersQueryResponse{}, err
	}
	active, err := orderRepo.FindActiveByCourier(ctx, query.Courier())
	if err != nil {
		return GetVisibleOrdersQueryResponse{}, err
	}

	p := services.ProjectFeed(h.filter, pending, active, h.options)
	return GetVisibleOrdersQueryResponse{
		Orders:       p.Orders,
		OnRoute:      p.OnRoute,
		ActiveOrders: active,
	}, nil
}
