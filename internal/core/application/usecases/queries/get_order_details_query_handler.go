package queries

import (
	"context"
	"errors"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/model/restaurant"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
)

// ProductDetails is one order line priced from the menu.
// Known is false for products missing from the menu; those carry a zero price.
type ProductDetails struct {
	ProductID string
	Title     string
	Img       string
	Category  string
	Count     int
	UnitPrice kernel.Money
	LineTotal kernel.Money
	Known     bool
}

// OrderDetails is the read model behind the order card.
//
// MenuTotal sums the menu-priced lines and may differ from the order's own Price.
// RestaurantDistanceKm is nil when either location is unknown.
type OrderDetails struct {
	Order                  *order.Order
	RestaurantName         string
	Products               []ProductDetails
	MenuTotal              kernel.Money
	ItemsTotal             kernel.Money
	Total                  kernel.Money
	RestaurantDistanceKm   *float64
	Cancelable             bool
	CancelSecondsRemaining int
}

type GetOrderDetailsQueryHandler struct {
	repos  RepositoriesFactory
	clock  ports.Clock
	window time.Duration
}

func NewGetOrderDetailsQueryHandler(repos RepositoriesFactory, clock ports.Clock, window time.Duration) GetOrderDetailsQueryHandler {
	if window <= 0 {
		window = order.DefaultCancellationWindow
	}
	return GetOrderDetailsQueryHandler{repos: repos, clock: clock, window: window}
}

// Handle returns *errs.ObjectNotFoundError when the order does not exist. A missing
// restaurant is not an error: every product is then reported as unknown.
func (h GetOrderDetailsQueryHandler) Handle(ctx context.Context, query GetOrderDetailsQuery) (OrderDetails, error) {
	if err := query.Validate(); err != nil {
		return OrderDetails{}, err
	}

	repos := h.repos.Create()

	o, err := repos.OrderRepository().Get(ctx, query.OrderID())
	if err != nil {
		return OrderDetails{}, err
	}

	r, err := repos.RestaurantRepository().Get(ctx, o.RestaurantID())
	if err != nil && !errors.Is(err, errs.ErrObjectNotFound) {
		return OrderDetails{}, err
	}

	now := h.clock.Now()
	details := OrderDetails{
		Order:                  o,
		MenuTotal:              kernel.ZeroMoney,
		ItemsTotal:             o.ItemsTotal(),
		Total:                  o.Total(),
		Cancelable:             o.CanCancel(now, h.window),
		CancelSecondsRemaining: ceilSeconds(o.CancelTimeRemaining(now, h.window)),
	}

	for _, line := range o.Products() {
		item := restaurant.MenuItem{ID: line.ProductID(), Title: restaurant.UnknownProductTitle, Price: kernel.ZeroMoney}
		known := false
		if r != nil {
			item, known = r.FindMenuItem(line.ProductID())
		}

		lineTotal := item.Price.Mul(line.Count())
		details.Products = append(details.Products, ProductDetails{
			ProductID: line.ProductID(),
			Title:     item.Title,
			Img:       item.Img,
			Category:  item.Category,
			Count:     line.Count(),
			UnitPrice: item.Price,
			LineTotal: lineTotal,
			Known:     known,
		})
		details.MenuTotal = details.MenuTotal.Add(lineTotal)
	}

	if r != nil {
		details.RestaurantName = r.Name()
		if km, ok := r.Location().DistanceTo(o.Location()); ok {
			details.RestaurantDistanceKm = &km
		}
	}

	return details, nil
}
