package http

import (
	"dispatch/internal/adapters/message"
	"dispatch/internal/core/application/feed"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/generated/servers"

	"github.com/shopspring/decimal"
)

// fromNewOrder converts the request body into the orders.created payload. Amounts
// arrive as JSON numbers or decimal strings and are read without going through float.
func fromNewOrder(body servers.NewOrder) (message.OrderCreated, error) {
	price, err := fromMoney(body.Price)
	if err != nil {
		return message.OrderCreated{}, err
	}
	servicePrice, err := fromMoney(body.ServicePrice)
	if err != nil {
		return message.OrderCreated{}, err
	}
	deliveryPrice, err := fromMoney(body.DeliveryPrice)
	if err != nil {
		return message.OrderCreated{}, err
	}

	res := message.OrderCreated{
		ID:            body.Id.String(),
		RestaurantID:  body.RestaurantId.String(),
		Price:         price,
		ServicePrice:  servicePrice,
		DeliveryPrice: deliveryPrice,
		Products:      make([]message.ProductLine, 0, len(body.Products)),
	}
	if body.Location != nil {
		res.Location = &message.Location{Lat: body.Location.Lat, Long: body.Location.Long}
	}
	for _, p := range body.Products {
		res.Products = append(res.Products, message.ProductLine{ID: p.Id, Count: p.Count})
	}
	return res, nil
}

func fromMoney(m servers.Money) (decimal.Decimal, error) {
	raw, err := m.MarshalJSON()
	if err != nil {
		return decimal.Decimal{}, err
	}
	var d decimal.Decimal
	if err = d.UnmarshalJSON(raw); err != nil {
		return decimal.Decimal{}, err
	}
	return d, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func toLocation(l kernel.Location) *servers.Location {
	if !l.IsKnown() {
		return nil
	}
	return &servers.Location{Lat: l.Lat(), Long: l.Long()}
}

func toOrder(o *order.Order) servers.Order {
	prices := o.Prices()
	res := servers.Order{
		Id:            o.ID().Bytes(),
		RestaurantId:  o.RestaurantID().Bytes(),
		Status:        servers.OrderStatus(o.Status().String()),
		Location:      toLocation(o.Location()),
		AcceptedAt:    o.AcceptedAt(),
		Price:         prices.Price.Decimal().String(),
		ServicePrice:  prices.ServicePrice.Decimal().String(),
		DeliveryPrice: prices.DeliveryPrice.Decimal().String(),
		Products:      make([]servers.ProductLine, 0, len(o.Products())),
	}
	if c := o.Courier(); c != nil {
		phone := c.String()
		res.CourierPhone = &phone
	}
	for _, p := range o.Products() {
		res.Products = append(res.Products, servers.ProductLine{Id: p.ProductID(), Count: p.Count()})
	}
	return res
}

func toOrders(orders []*order.Order) []servers.Order {
	res := make([]servers.Order, 0, len(orders))
	for _, o := range orders {
		res = append(res, toOrder(o))
	}
	return res
}

func toFeedOrders(orders []*order.Order, onRoute map[kernel.UUID]bool) []servers.FeedOrder {
	res := make([]servers.FeedOrder, 0, len(orders))
	for _, o := range orders {
		v := toOrder(o)
		res = append(res, servers.FeedOrder{
			Id:            v.Id,
			RestaurantId:  v.RestaurantId,
			Status:        v.Status,
			CourierPhone:  v.CourierPhone,
			Location:      v.Location,
			AcceptedAt:    v.AcceptedAt,
			Price:         v.Price,
			ServicePrice:  v.ServicePrice,
			DeliveryPrice: v.DeliveryPrice,
			Products:      v.Products,
			OnRoute:       onRoute[o.ID()],
		})
	}
	return res
}

func toVisibleOrders(orders []*order.Order, onRoute map[kernel.UUID]bool, active []*order.Order) servers.VisibleOrders {
	return servers.VisibleOrders{
		Orders:       toFeedOrders(orders, onRoute),
		ActiveOrders: toOrders(active),
	}
}

func toFeedSnapshot(s feed.Snapshot) servers.FeedSnapshot {
	return servers.FeedSnapshot{
		Orders:       toFeedOrders(s.Orders, s.OnRoute),
		ActiveOrders: toOrders(s.ActiveOrders),
		Version:      int64(s.Version),
		CourierPhone: s.CourierPhone.String(),
		ComputedAt:   s.ComputedAt,
	}
}

func toActiveOrders(views []queries.ActiveOrderView) []servers.ActiveOrder {
	res := make([]servers.ActiveOrder, 0, len(views))
	for _, v := range views {
		o := toOrder(v.Order)
		res = append(res, servers.ActiveOrder{
			Id:                     o.Id,
			RestaurantId:           o.RestaurantId,
			Status:                 o.Status,
			CourierPhone:           o.CourierPhone,
			Location:               o.Location,
			AcceptedAt:             o.AcceptedAt,
			Price:                  o.Price,
			ServicePrice:           o.ServicePrice,
			DeliveryPrice:          o.DeliveryPrice,
			Products:               o.Products,
			Cancelable:             v.Cancelable,
			CancelSecondsRemaining: v.CancelSecondsRemaining,
		})
	}
	return res
}

func toOrderDetails(d queries.OrderDetails) servers.OrderDetails {
	res := servers.OrderDetails{
		Order:                  toOrder(d.Order),
		RestaurantName:         optional(d.RestaurantName),
		Products:               make([]servers.ProductDetails, 0, len(d.Products)),
		MenuTotal:              d.MenuTotal.Decimal().String(),
		ItemsTotal:             d.ItemsTotal.Decimal().String(),
		Total:                  d.Total.Decimal().String(),
		RestaurantDistanceKm:   d.RestaurantDistanceKm,
		Cancelable:             d.Cancelable,
		CancelSecondsRemaining: d.CancelSecondsRemaining,
	}
	for _, p := range d.Products {
		res.Products = append(res.Products, servers.ProductDetails{
			Id:        p.ProductID,
			Title:     p.Title,
			Img:       optional(p.Img),
			Category:  optional(p.Category),
			Count:     p.Count,
			UnitPrice: p.UnitPrice.Decimal().String(),
			LineTotal: p.LineTotal.Decimal().String(),
			Known:     p.Known,
		})
	}
	return res
}

func toCourier(c *courier.Courier) servers.Courier {
	return servers.Courier{
		Phone:             c.Phone().String(),
		Location:          toLocation(c.Location()),
		LocationUpdatedAt: c.LocationUpdatedAt(),
		Online:            c.IsOnline(),
	}
}

func toOnlineCouriers(views []queries.OnlineCourierView) []servers.OnlineCourier {
	res := make([]servers.OnlineCourier, 0, len(views))
	for _, v := range views {
		res = append(res, servers.OnlineCourier{
			Phone:             v.Phone.String(),
			Location:          toLocation(v.Location),
			LocationUpdatedAt: v.LocationUpdatedAt,
			ActiveOrders:      v.ActiveOrders,
		})
	}
	return res
}
