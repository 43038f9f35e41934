package http_test

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"dispatch/api"
	httpin "dispatch/internal/adapters/in/http"
	"dispatch/internal/adapters/out/memory"
	"dispatch/internal/core/application/feed"
	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/restaurant"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/generated/servers"
	"dispatch/internal/pkg/retry"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"
)

const (
	courierPhone = "+998901234567"
	otherPhone   = "+998907654321"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type orderUoWFactory struct{ f *memory.UnitOfWorkFactory }

func (f orderUoWFactory) Create() commands.OrderUoW { return f.f.Create() }

type courierUoWFactory struct{ f *memory.UnitOfWorkFactory }

func (f courierUoWFactory) Create() commands.CourierUoW { return f.f.Create() }

type uowFactory struct{ f *memory.UnitOfWorkFactory }

func (f uowFactory) Create() commands.UoW { return f.f.Create() }

type repositories struct{ f *memory.UnitOfWorkFactory }

func (f repositories) Create() queries.Repositories { return f.f.Create() }

type ServerTestSuite struct {
	suite.Suite

	store    *memory.Store
	factory  *memory.UnitOfWorkFactory
	clock    *testClock
	registry *prometheus.Registry
	router   *echo.Echo
}

func TestServerTestSuite(t *testing.T) {
	suite.Run(t, new(ServerTestSuite))
}

func (s *ServerTestSuite) SetupTest() {
	s.store = memory.NewStore()
	s.factory = memory.NewUnitOfWorkFactory(s.store)
	s.clock = &testClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	s.registry = prometheus.NewRegistry()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	filter := services.NewRouteFilter()
	transitions := commands.DefaultTransitionSettings()
	claim := commands.DefaultClaimSettings()
	claim.Retry = retry.NoRetry()

	handlers := httpin.Handlers{
		CreateOrder: commands.NewCreateOrderCommandHandler(orderUoWFactory{s.factory}, nil, logger),
		ClaimOrder:  commands.NewClaimOrderCommandHandler(uowFactory{s.factory}, s.clock, claim, nil, logger),
		StartDelivering: commands.NewAdvanceToDeliveringCommandHandler(
			orderUoWFactory{s.factory}, s.clock, transitions, nil, logger),
		MarkDelivered: commands.NewMarkDeliveredCommandHandler(
			orderUoWFactory{s.factory}, s.clock, transitions, nil, logger),
		CancelOrder: commands.NewCancelOrderCommandHandler(
			orderUoWFactory{s.factory}, nil, s.clock, transitions, nil, logger),
		UpdateLocation: commands.NewUpdateCourierLocationCommandHandler(courierUoWFactory{s.factory}, s.clock),
		GetVisibleOrders: queries.NewGetVisibleOrdersQueryHandler(
			repositories{s.factory}, filter, services.ProjectionOptions{}),
		GetActiveOrders:   queries.NewGetActiveOrdersQueryHandler(repositories{s.factory}, s.clock, 0),
		GetOrderDetails:   queries.NewGetOrderDetailsQueryHandler(repositories{s.factory}, s.clock, 0),
		GetOnlineCouriers: queries.NewGetOnlineCouriersQueryHandler(repositories{s.factory}),
	}
	projector := feed.NewProjector(s.store, filter, services.ProjectionOptions{}, s.clock, nil, logger)

	router, err := httpin.NewRouter(s.T().Context(), httpin.NewServer(handlers, projector, logger), httpin.RouterConfig{
		Registry: s.registry,
		Logger:   logger,
	})
	s.Require().NoError(err)
	s.router = router
}

func (s *ServerTestSuite) do(method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *ServerTestSuite) decode(rec *httptest.ResponseRecorder, v any) {
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func (s *ServerTestSuite) createOrder(restaurantID string) string {
	id := kernel.NewUUID().String()
	rec := s.do(http.MethodPost, "/api/v1/orders", `{
		"id": "`+id+`",
		"restaurantId": "`+restaurantID+`",
		"location": {"lat": 41.3111, "long": 69.2797},
		"price": 32000,
		"servicePrice": "1000",
		"deliveryPrice": 3000,
		"products": [{"id": "plov", "count": 2}, {"id": "tea", "count": 1}]
	}`)
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	return id
}

func (s *ServerTestSuite) reportLocation(phone string) {
	rec := s.do(http.MethodPut, "/api/v1/couriers/"+phone+"/location", `{"lat": 41.3, "long": 69.28}`)
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
}

func (s *ServerTestSuite) claim(orderID, phone string) *httptest.ResponseRecorder {
	return s.do(http.MethodPost, "/api/v1/orders/"+orderID+"/claim", `{"courierPhone": "`+phone+`"}`)
}

func (s *ServerTestSuite) TestHealth() {
	rec := s.do(http.MethodGet, "/health", "")

	s.Equal(http.StatusOK, rec.Code)
	s.Equal("Healthy", rec.Body.String())
}

func (s *ServerTestSuite) TestCreateOrder() {
	id := s.createOrder(kernel.NewUUID().String())

	rec := s.do(http.MethodGet, "/api/v1/orders/"+id, "")
	s.Require().Equal(http.StatusOK, rec.Code)

	var details servers.OrderDetails
	s.decode(rec, &details)
	s.Equal(id, details.Order.Id.String())
	s.Equal(servers.OrderStatusSearchCourier, details.Order.Status)
	s.Nil(details.Order.CourierPhone)
	s.Equal("32000", details.Order.Price)
	s.Equal("1000", details.Order.ServicePrice)
	s.Len(details.Products, 2)
}

func (s *ServerTestSuite) TestRoutesCoverContract() {
	doc, err := api.Load(s.T().Context())
	s.Require().NoError(err)

	registered := map[string]bool{}
	for _, r := range s.router.Routes() {
		registered[r.Method+" "+r.Path] = true
	}

	placeholder := strings.NewReplacer("{phone}", ":phone", "{orderId}", ":orderId")
	for path, item := range doc.Paths.Map() {
		for method, op := range item.Operations() {
			s.True(registered[method+" "+placeholder.Replace(path)], "%s is not routed", op.OperationID)
		}
	}
}

func (s *ServerTestSuite) TestCreateOrder_DecimalStringAmounts() {
	id := kernel.NewUUID().String()
	body := `{"id": "` + id + `", "restaurantId": "` + kernel.NewUUID().String() + `",
		"price": "32000.55", "servicePrice": 1000, "deliveryPrice": "0", "products": [{"id": "plov", "count": 1}]}`

	rec := s.do(http.MethodPost, "/api/v1/orders", body)
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())

	var created servers.Order
	s.decode(rec, &created)
	s.Equal(id, created.Id.String())
	s.Equal("32000.55", created.Price)
	s.Equal("1000", created.ServicePrice)
	s.Equal("0", created.DeliveryPrice)
}

func (s *ServerTestSuite) TestCreateOrder_Duplicate() {
	id := kernel.NewUUID().String()
	body := `{"id": "` + id + `", "restaurantId": "` + kernel.NewUUID().String() + `",
		"price": 1, "servicePrice": 0, "deliveryPrice": 0, "products": [{"id": "plov", "count": 1}]}`

	s.Require().Equal(http.StatusCreated, s.do(http.MethodPost, "/api/v1/orders", body).Code)

	rec := s.do(http.MethodPost, "/api/v1/orders", body)
	s.Equal(http.StatusConflict, rec.Code, rec.Body.String())
}

func (s *ServerTestSuite) TestCreateOrder_InvalidBody() {
	testCases := []struct {
		name string
		body string
	}{
		{name: "no products", body: `{"id": "` + kernel.NewUUID().String() + `", "restaurantId": "` +
			kernel.NewUUID().String() + `", "price": 1, "servicePrice": 0, "deliveryPrice": 0, "products": []}`},
		{name: "negative price", body: `{"id": "` + kernel.NewUUID().String() + `", "restaurantId": "` +
			kernel.NewUUID().String() + `", "price": -1, "servicePrice": 0, "deliveryPrice": 0,
			"products": [{"id": "plov", "count": 1}]}`},
		{name: "zero count", body: `{"id": "` + kernel.NewUUID().String() + `", "restaurantId": "` +
			kernel.NewUUID().String() + `", "price": 1, "servicePrice": 0, "deliveryPrice": 0,
			"products": [{"id": "plov", "count": 0}]}`},
		{name: "malformed json", body: `{"id":`},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			rec := s.do(http.MethodPost, "/api/v1/orders", tc.body)

			s.Equal(http.StatusBadRequest, rec.Code, rec.Body.String())
			var body servers.Error
			s.decode(rec, &body)
			s.Equal(http.StatusBadRequest, body.Code)
		})
	}
}

func (s *ServerTestSuite) TestGetOrder_WithRestaurant() {
	restaurantLoc, err := kernel.NewLocation(41.3111, 69.2897)
	s.Require().NoError(err)
	price, err := kernel.MoneyFromInt(15000)
	s.Require().NoError(err)
	r, err := restaurant.NewRestaurant(kernel.NewUUID(), "Osh Markazi", restaurantLoc, []restaurant.MenuItem{
		{ID: "plov", Title: "Plov", Price: price, Category: "main"},
	})
	s.Require().NoError(err)
	s.Require().NoError(s.factory.Create().RestaurantRepository().Save(s.T().Context(), r))

	id := s.createOrder(r.ID().String())

	rec := s.do(http.MethodGet, "/api/v1/orders/"+id, "")
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	var details servers.OrderDetails
	s.decode(rec, &details)
	s.Require().NotNil(details.RestaurantName)
	s.Equal("Osh Markazi", *details.RestaurantName)
	s.Require().Len(details.Products, 2)
	s.Equal("Plov", details.Products[0].Title)
	s.True(details.Products[0].Known)
	s.Equal("30000", details.Products[0].LineTotal)
	s.Equal(restaurant.UnknownProductTitle, details.Products[1].Title)
	s.False(details.Products[1].Known)
	s.Equal("30000", details.MenuTotal)
	s.Require().NotNil(details.RestaurantDistanceKm)
	s.InDelta(0.8, *details.RestaurantDistanceKm, 0.05)
}

func (s *ServerTestSuite) TestGetOrder_Errors() {
	s.Equal(http.StatusNotFound, s.do(http.MethodGet, "/api/v1/orders/"+kernel.NewUUID().String(), "").Code)
	s.Equal(http.StatusBadRequest, s.do(http.MethodGet, "/api/v1/orders/not-a-uuid", "").Code)
}

func (s *ServerTestSuite) TestUpdateCourierLocation() {
	rec := s.do(http.MethodPut, "/api/v1/couriers/"+courierPhone+"/location", `{"lat": 41.3, "long": 69.28}`)
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	var c servers.Courier
	s.decode(rec, &c)
	s.Equal(courierPhone, c.Phone)
	s.True(c.Online)
	s.Require().NotNil(c.Location)
	s.InDelta(41.3, c.Location.Lat, 1e-9)
	s.Require().NotNil(c.LocationUpdatedAt)
	s.True(s.clock.Now().Equal(*c.LocationUpdatedAt))

	rec = s.do(http.MethodGet, "/api/v1/couriers/online", "")
	s.Require().Equal(http.StatusOK, rec.Code)

	var online []servers.OnlineCourier
	s.decode(rec, &online)
	s.Require().Len(online, 1)
	s.Equal(courierPhone, online[0].Phone)
	s.Equal(0, online[0].ActiveOrders)
}

func (s *ServerTestSuite) TestUpdateCourierLocation_Invalid() {
	testCases := []struct {
		name  string
		phone string
		body  string
	}{
		{name: "latitude out of range", phone: courierPhone, body: `{"lat": 91, "long": 69.28}`},
		{name: "missing longitude", phone: courierPhone, body: `{"lat": 41.3}`},
		{name: "malformed phone", phone: "+99890abc4567", body: `{"lat": 41.3, "long": 69.28}`},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			rec := s.do(http.MethodPut, "/api/v1/couriers/"+tc.phone+"/location", tc.body)
			s.Equal(http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}
}

func (s *ServerTestSuite) TestClaimOrder() {
	id := s.createOrder(kernel.NewUUID().String())
	s.reportLocation(courierPhone)
	s.reportLocation(otherPhone)

	rec := s.claim(id, courierPhone)
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	var claimed servers.Order
	s.decode(rec, &claimed)
	s.Equal(servers.OrderStatusCourier, claimed.Status)
	s.Require().NotNil(claimed.CourierPhone)
	s.Equal(courierPhone, *claimed.CourierPhone)
	s.Require().NotNil(claimed.AcceptedAt)

	rec = s.claim(id, otherPhone)
	s.Equal(http.StatusConflict, rec.Code, rec.Body.String())
}

func (s *ServerTestSuite) TestClaimOrder_Errors() {
	id := s.createOrder(kernel.NewUUID().String())

	s.Run("courier never reported a location", func() {
		s.Equal(http.StatusPreconditionFailed, s.claim(id, courierPhone).Code)
	})

	s.Run("location is stale", func() {
		s.reportLocation(courierPhone)
		s.clock.Advance(commands.DefaultLocationMaxAge + time.Second)

		s.Equal(http.StatusPreconditionFailed, s.claim(id, courierPhone).Code)
	})

	s.Run("unknown order", func() {
		s.reportLocation(courierPhone)

		s.Equal(http.StatusNotFound, s.claim(kernel.NewUUID().String(), courierPhone).Code)
	})

	s.Run("missing courier phone", func() {
		rec := s.do(http.MethodPost, "/api/v1/orders/"+id+"/claim", `{}`)

		s.Equal(http.StatusBadRequest, rec.Code)
	})
}

func (s *ServerTestSuite) TestLifecycle() {
	id := s.createOrder(kernel.NewUUID().String())
	s.reportLocation(courierPhone)
	s.Require().Equal(http.StatusOK, s.claim(id, courierPhone).Code)

	s.clock.Advance(10 * time.Second)

	rec := s.do(http.MethodGet, "/api/v1/couriers/"+courierPhone+"/orders/active", "")
	s.Require().Equal(http.StatusOK, rec.Code)
	var active []servers.ActiveOrder
	s.decode(rec, &active)
	s.Require().Len(active, 1)
	s.True(active[0].Cancelable)
	s.Equal(20, active[0].CancelSecondsRemaining)

	rec = s.do(http.MethodPost, "/api/v1/orders/"+id+"/delivering", `{"courierPhone": "`+otherPhone+`"}`)
	s.Equal(http.StatusConflict, rec.Code, "another courier cannot advance the order")

	rec = s.do(http.MethodPost, "/api/v1/orders/"+id+"/delivering", `{"courierPhone": "`+courierPhone+`"}`)
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	var o servers.Order
	s.decode(rec, &o)
	s.Equal(servers.OrderStatusDelivering, o.Status)

	rec = s.do(http.MethodPost, "/api/v1/orders/"+id+"/delivered", "")
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	s.decode(rec, &o)
	s.Equal(servers.OrderStatusDelivered, o.Status)

	rec = s.do(http.MethodPost, "/api/v1/orders/"+id+"/delivered", "")
	s.Equal(http.StatusConflict, rec.Code)

	rec = s.do(http.MethodGet, "/api/v1/orders/"+id, "")
	var details servers.OrderDetails
	s.decode(rec, &details)
	s.Equal(servers.OrderStatusDelivered, details.Order.Status)
}

func (s *ServerTestSuite) TestCancelOrder_Window() {
	s.reportLocation(courierPhone)

	early := s.createOrder(kernel.NewUUID().String())
	s.Require().Equal(http.StatusOK, s.claim(early, courierPhone).Code)
	s.clock.Advance(29 * time.Second)

	rec := s.do(http.MethodPost, "/api/v1/orders/"+early+"/cancel", `{"courierPhone": "`+courierPhone+`"}`)
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	var o servers.Order
	s.decode(rec, &o)
	s.Equal(servers.OrderStatusSearchCourier, o.Status)
	s.Nil(o.CourierPhone)
	s.Nil(o.AcceptedAt)

	s.reportLocation(courierPhone)
	late := s.createOrder(kernel.NewUUID().String())
	s.Require().Equal(http.StatusOK, s.claim(late, courierPhone).Code)
	s.clock.Advance(31 * time.Second)

	rec = s.do(http.MethodPost, "/api/v1/orders/"+late+"/cancel", `{"courierPhone": "`+courierPhone+`"}`)
	s.Equal(http.StatusConflict, rec.Code, rec.Body.String())
}

func (s *ServerTestSuite) TestGetVisibleOrders() {
	first := s.createOrder(kernel.NewUUID().String())
	second := s.createOrder(kernel.NewUUID().String())

	rec := s.do(http.MethodGet, "/api/v1/couriers/"+courierPhone+"/orders/visible", "")
	s.Require().Equal(http.StatusOK, rec.Code)

	var visible servers.VisibleOrders
	s.decode(rec, &visible)
	s.Require().Len(visible.Orders, 2)
	s.Empty(visible.ActiveOrders)

	s.reportLocation(courierPhone)
	s.Require().Equal(http.StatusOK, s.claim(first, courierPhone).Code)

	rec = s.do(http.MethodGet, "/api/v1/couriers/"+courierPhone+"/orders/visible", "")
	s.decode(rec, &visible)
	s.Require().Len(visible.ActiveOrders, 1)
	s.Equal(first, visible.ActiveOrders[0].Id.String())
	s.Require().Len(visible.Orders, 1)
	s.Equal(second, visible.Orders[0].Id.String())
	s.True(visible.Orders[0].OnRoute, "both orders share a delivery address")
}

func (s *ServerTestSuite) TestStreamVisibleOrders() {
	srv := httptest.NewServer(s.router)
	defer srv.Close()

	id := s.createOrder(kernel.NewUUID().String())

	ctx, cancel := context.WithTimeout(s.T().Context(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		srv.URL+"/api/v1/couriers/"+courierPhone+"/orders/visible/stream", nil)
	s.Require().NoError(err)

	res, err := srv.Client().Do(req)
	s.Require().NoError(err)
	defer res.Body.Close()

	s.Require().Equal(http.StatusOK, res.StatusCode)
	s.Equal("text/event-stream", res.Header.Get(echo.HeaderContentType))

	events := make(chan servers.FeedSnapshot)
	go func() {
		defer close(events)
		scanner := bufio.NewScanner(res.Body)
		for scanner.Scan() {
			data, ok := strings.CutPrefix(scanner.Text(), "data: ")
			if !ok {
				continue
			}
			var snapshot servers.FeedSnapshot
			if json.Unmarshal([]byte(data), &snapshot) == nil {
				select {
				case events <- snapshot:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	first := s.nextSnapshot(events)
	s.Equal(courierPhone, first.CourierPhone)
	s.Require().Len(first.Orders, 1)
	s.Equal(id, first.Orders[0].Id.String())

	second := s.createOrder(kernel.NewUUID().String())

	var next servers.FeedSnapshot
	for len(next.Orders) < 2 {
		next = s.nextSnapshot(events)
		s.Greater(next.Version, first.Version)
	}
	ids := []string{next.Orders[0].Id.String(), next.Orders[1].Id.String()}
	s.ElementsMatch([]string{id, second}, ids)
}

func (s *ServerTestSuite) nextSnapshot(events <-chan servers.FeedSnapshot) servers.FeedSnapshot {
	select {
	case snapshot, ok := <-events:
		s.Require().True(ok, "stream ended")
		return snapshot
	case <-time.After(3 * time.Second):
		s.FailNow("no snapshot received")
		return servers.FeedSnapshot{}
	}
}

func (s *ServerTestSuite) TestMetrics() {
	s.do(http.MethodGet, "/api/v1/couriers/online", "")

	rec := s.do(http.MethodGet, "/metrics", "")

	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(),
		`dispatch_http_requests_total{method="GET",route="/api/v1/couriers/online",status="200"} 1`)
}

func (s *ServerTestSuite) TestSwagger() {
	rec := s.do(http.MethodGet, "/swagger/doc.json", "")

	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), `"ClaimOrder"`)
}
