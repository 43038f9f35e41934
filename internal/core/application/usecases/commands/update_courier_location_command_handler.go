package commands

import (
	"context"
	"errors"

	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
)

// UpdateCourierLocationCommandHandler upserts the courier presence record: the courier
// is created on first report, and every report refreshes the location, stamps it with
// the server time and marks the courier online.
//
// Example:
//
//	handler := NewUpdateCourierLocationCommandHandler(uowFactory, clock)
//	if err := handler.Handle(ctx, cmd); err != nil {
//	    return fmt.Errorf("location update failed: %w", err)
//	}
type UpdateCourierLocationCommandHandler struct {
	uowFactory CourierUoWFactory
	clock      ports.Clock
}

func NewUpdateCourierLocationCommandHandler(uowFactory CourierUoWFactory, clock ports.Clock) UpdateCourierLocationCommandHandler {
	return UpdateCourierLocationCommandHandler{
		uowFactory: uowFactory,
		clock:      clock,
	}
}

// Handle returns the updated courier.
func (h UpdateCourierLocationCommandHandler) Handle(ctx context.Context, cmd UpdateCourierLocationCommand) (*courier.Courier, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, timeoutError(ctx, "begin location update", err)
	}
	defer rollback(ctx, uow)

	courierRepo := uow.CourierRepository()

	c, err := courierRepo.Get(ctx, cmd.Courier())
	if errors.Is(err, errs.ErrObjectNotFound) {
		c, err = courier.NewCourier(cmd.Courier())
	}
	if err != nil {
		return nil, timeoutError(ctx, "load courier", err)
	}

	if err = c.UpdateLocation(cmd.Location(), h.clock.Now()); err != nil {
		return nil, err
	}

	if err = courierRepo.Upsert(ctx, c); err != nil {
		return nil, timeoutError(ctx, "save courier", err)
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, timeoutError(ctx, "commit location update", err)
	}

	return c, nil
}
