package http

import (
	"log/slog"
	"net/http"
	"time"

	"dispatch/internal/core/application/feed"
	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/generated/servers"
	"dispatch/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

const defaultHeartbeat = 15 * time.Second

// Handlers groups the use cases served over HTTP.
type Handlers struct {
	CreateOrder       commands.CreateOrderCommandHandler
	ClaimOrder        commands.ClaimOrderCommandHandler
	StartDelivering   commands.AdvanceToDeliveringCommandHandler
	MarkDelivered     commands.MarkDeliveredCommandHandler
	CancelOrder       commands.CancelOrderCommandHandler
	UpdateLocation    commands.UpdateCourierLocationCommandHandler
	GetVisibleOrders  queries.GetVisibleOrdersQueryHandler
	GetActiveOrders   queries.GetActiveOrdersQueryHandler
	GetOrderDetails   queries.GetOrderDetailsQueryHandler
	GetOnlineCouriers queries.GetOnlineCouriersQueryHandler
}

// Server implements servers.ServerInterface for handling HTTP requests.
// It coordinates between HTTP handlers and application use cases.
type Server struct {
	handlers  Handlers
	projector *feed.Projector
	heartbeat time.Duration
	logger    *slog.Logger
}

// NewServer creates a new HTTP server. The projector backs the visible orders stream.
func NewServer(handlers Handlers, projector *feed.Projector, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		handlers:  handlers,
		projector: projector,
		heartbeat: defaultHeartbeat,
		logger:    logger.With("component", "http"),
	}
}

// GetOnlineCouriers handles GET /api/v1/couriers/online.
func (s *Server) GetOnlineCouriers(ctx echo.Context) error {
	views, err := s.handlers.GetOnlineCouriers.Handle(ctx.Request().Context(), queries.NewGetOnlineCouriersQuery())
	if err != nil {
		return writeError(ctx, s.logger, err)
	}
	return ctx.JSON(http.StatusOK, toOnlineCouriers(views))
}

// UpdateCourierLocation handles PUT /api/v1/couriers/{phone}/location.
func (s *Server) UpdateCourierLocation(ctx echo.Context, phone servers.Phone) error {
	courierPhone, err := kernel.NewPhoneNumber(phone)
	if err != nil {
		return writeError(ctx, s.logger, err)
	}

	var body servers.UpdateCourierLocationJSONRequestBody
	if err = ctx.Bind(&body); err != nil {
		return ctx.JSON(http.StatusBadRequest, servers.Error{
			Code:    http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	location, err := kernel.NewLocation(body.Lat, body.Long)
	if err != nil {
		return writeError(ctx, s.logger, err)
	}

	cmd, err := commands.NewUpdateCourierLocationCommand(courierPhone, location)
	if err != nil {
		return writeError(ctx, s.logger, err)
	}

	c, err := s.handlers.UpdateLocation.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return writeError(ctx, s.logger, err)
	}
	return ctx.JSON(http.StatusOK, toCourier(c))
}

// GetVisibleOrders handles GET /api/v1/couriers/{phone}/orders/visible.
func (s *Server) GetVisibleOrders(ctx echo.Context, phone servers.Phone) error {
	courierPhone, err := kernel.NewPhoneNumber(phone)
	if err != nil {
		return writeError(ctx, s.logger, err)
	}

	query, err := queries.NewGetVisibleOrdersQuery(courierPhone)
	if err != nil {
		return writeError(ctx, s.logger, err)
	}

	res, err := s.handlers.GetVisibleOrders.Handle(ctx.Request().Context(), query)
	if err != nil {
		return writeError(ctx, s.logger, err)
	}
	return ctx.JSON(http.StatusOK, toVisibleOrders(res.Orders, res.OnRoute, res.ActiveOrders))
}

// GetActiveOrders handles GET /api/v1/couriers/{phone}/orders/active.
func (s *Server) GetActiveOrders(ctx echo.Context, phone servers.Phone) error {
	courierPhone, err := kernel.NewPhoneNumber(phone)
	if err != nil {
		return writeError(ctx, s.logger, err)
	}

	query, err := queries.NewGetActiveOrdersQuery(courierPhone)
	if err != nil {
		return writeError(ctx, s.logger, err)
	}

	views, err := s.handlers.GetActiveOrders.Handle(ctx.Request().Context(), query)
	if err != nil {
		return writeError(ctx, s.logger, err)
	}
	return ctx.JSON(http.StatusOK, toActiveOrders(views))
}

// CreateOrder handles POST /api/v1/orders. The body has the same shape as the
// orders.created bus message.
func (s *Server) CreateOrder(ctx echo.Context) error {
	var body servers.CreateOrderJSONRequestBody
	if err := ctx.Bind(&body); err != nil {
		return ctx.JSON(http.StatusBadRequest, servers.Error{
			Code:    http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	payload, err := fromNewOrder(body)
	if err != nil {
		return writeError(ctx, s.logger, errs.NewValueIsInvalidErrorWithCause("order", err))
	}

	cmd, err := payload.ToCommand()
	if err != nil {
		return writeError(ctx, s.logger, errs.NewValueIsInvalidErrorWithCause("order", err))
	}

	o, err := s.handlers.CreateOrder.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return writeError(ctx, s.logger, err)
	}
	return ctx.JSON(http.StatusCreated, toOrder(o))
}

// GetOrder handles GET /api/v1/orders/{orderId}.
func (s *Server) GetOrder(ctx echo.Context, orderId servers.OrderID) error {
	id, err := kernel.UUIDFromBytes(orderId[:])
	if err != nil {
		return writeError(ctx, s.logger, errs.NewValueIsInvalidErrorWithCause("orderId", err))
	}

	query, err := queries.NewGetOrderDetailsQuery(id)
	if err != nil {
		return writeError(ctx, s.logger, err)
	}

	details, err := s.handlers.GetOrderDetails.Handle(ctx.Request().Context(), query)
	if err != nil {
		return writeError(ctx, s.logger, err)
	}
	return ctx.JSON(http.StatusOK, toOrderDetails(details))
}

// ClaimOrder handles POST /api/v1/orders/{orderId}/claim.
func (s *Server) ClaimOrder(ctx echo.Context, orderId servers.OrderID) error {
	id, err := kernel.UUIDFromBytes(orderId[:])
	if err != nil {
		return writeError(ctx, s.logger, errs.NewValueIsInvalidErrorWithCause("orderId", err))
	}

	var body servers.ClaimOrderJSONRequestBody
	if err = ctx.Bind(&body); err != nil {
		return ctx.JSON(http.StatusBadRequest, servers.Error{
			Code:    http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	courierPhone, err := kernel.NewPhoneNumber(body.CourierPhone)
	if err != nil {
		return writeError(ctx, s.logger, err)
	}

	cmd, err := commands.NewClaimOrderCommand(id, courierPhone)
	if err != nil {
		return writeError(ctx, s.logger, err)
	}

	o, err := s.handlers.ClaimOrder.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return writeError(ctx, s.logger, err)
	}
	return ctx.JSON(http.StatusOK, toOrder(o))
}

// StartDelivering handles POST /api/v1/orders/{orderId}/delivering.
func (s *Server) StartDelivering(ctx echo.Context, orderId servers.OrderID) error {
	id, courierPhone, err := s.bindTransition(ctx, orderId)
	if err != nil {
		return writeError(ctx, s.logger, err)
	}

	cmd, err := commands.NewAdvanceToDeliveringCommand(id, courierPhone)
	if err != nil {
		return writeError(ctx, s.logger, err)
	}

	o, err := s.handlers.StartDelivering.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return writeError(ctx, s.logger, err)
	}
	return ctx.JSON(http.StatusOK, toOrder(o))
}

// MarkDelivered handles POST /api/v1/orders/{orderId}/delivered.
func (s *Server) MarkDelivered(ctx echo.Context, orderId servers.OrderID) error {
	id, courierPhone, err := s.bindTransition(ctx, orderId)
	if err != nil {
		return writeError(ctx, s.logger, err)
	}

	cmd, err := commands.NewMarkDeliveredCommand(id, courierPhone)
	if err != nil {
		return writeError(ctx, s.logger, err)
	}

	o, err := s.handlers.MarkDelivered.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return writeError(ctx, s.logger, err)
	}
	return ctx.JSON(http.StatusOK, toOrder(o))
}

// CancelOrder handles POST /api/v1/orders/{orderId}/cancel.
func (s *Server) CancelOrder(ctx echo.Context, orderId servers.OrderID) error {
	id, courierPhone, err := s.bindTransition(ctx, orderId)
	if err != nil {
		return writeError(ctx, s.logger, err)
	}

	cmd, err := commands.NewCancelOrderCommand(id, courierPhone)
	if err != nil {
		return writeError(ctx, s.logger, err)
	}

	o, err := s.handlers.CancelOrder.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return writeError(ctx, s.logger, err)
	}
	return ctx.JSON(http.StatusOK, toOrder(o))
}

// bindTransition reads the optional acting courier. An empty body is allowed.
func (s *Server) bindTransition(ctx echo.Context, orderId servers.OrderID) (kernel.UUID, *kernel.PhoneNumber, error) {
	id, err := kernel.UUIDFromBytes(orderId[:])
	if err != nil {
		return kernel.UUID{}, nil, errs.NewValueIsInvalidErrorWithCause("orderId", err)
	}

	var body servers.TransitionRequest
	if ctx.Request().ContentLength != 0 {
		if err = ctx.Bind(&body); err != nil {
			return kernel.UUID{}, nil, errs.NewValueIsInvalidErrorWithCause("body", err)
		}
	}
	if body.CourierPhone == nil {
		return id, nil, nil
	}

	courierPhone, err := kernel.NewPhoneNumber(*body.CourierPhone)
	if err != nil {
		return kernel.UUID{}, nil, err
	}
	return id, &courierPhone, nil
}
