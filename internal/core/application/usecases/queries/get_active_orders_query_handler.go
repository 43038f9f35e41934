package queries

import (
	"context"
	"math"
	"time"

	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"
)

// ActiveOrderView is an active order with its cancellation countdown.
// CancelSecondsRemaining is rounded up, so a cancelable order never shows 0.
type ActiveOrderView struct {
	Order                  *order.Order
	Cancelable             bool
	CancelSecondsRemaining int
}

// GetActiveOrdersQueryHandler returns the courier's orders in courier or delivering
// status, oldest acceptance first.
type GetActiveOrdersQueryHandler struct {
	repos  RepositoriesFactory
	clock  ports.Clock
	window time.Duration
}

// NewGetActiveOrdersQueryHandler creates the handler. A non-positive window falls back
// to order.DefaultCancellationWindow.
func NewGetActiveOrdersQueryHandler(repos RepositoriesFactory, clock ports.Clock, window time.Duration) GetActiveOrdersQueryHandler {
	if window <= 0 {
		window = order.DefaultCancellationWindow
	}
	return GetActiveOrdersQueryHandler{repos: repos, clock: clock, window: window}
}

func (h GetActiveOrdersQueryHandler) Handle(ctx context.Context, query GetActiveOrdersQuery) ([]ActiveOrderView, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	active, err := h.repos.Create().OrderRepository().FindActiveByCourier(ctx, query.Courier())
	if err != nil {
		return nil, err
	}

	now := h.clock.Now()
	views := make([]ActiveOrderView, 0, len(active))
	for _, o := range active {
		views = append(views, ActiveOrderView{
			Order:                  o,
			Cancelable:             o.CanCancel(now, h.window),
			CancelSecondsRemaining: ceilSeconds(o.CancelTimeRemaining(now, h.window)),
		})
	}
	return views, nil
}

func ceilSeconds(d time.Duration) int {
	return int(math.Ceil(d.Seconds()))
}
