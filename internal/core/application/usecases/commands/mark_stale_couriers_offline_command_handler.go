package commands

import (
	"context"

	"dispatch/internal/core/ports"
)

// MarkStaleCouriersOfflineCommandHandler flips couriers whose last location report is
// older than the command's max age to offline. Offline couriers get no alerts and
// cannot claim until they report again.
type MarkStaleCouriersOfflineCommandHandler struct {
	uowFactory CourierUoWFactory
	clock      ports.Clock
	metrics    ports.Metrics
}

func NewMarkStaleCouriersOfflineCommandHandler(
	uowFactory CourierUoWFactory,
	clock ports.Clock,
	metrics ports.Metrics,
) MarkStaleCouriersOfflineCommandHandler {
	return MarkStaleCouriersOfflineCommandHandler{
		uowFactory: uowFactory,
		clock:      clock,
		metrics:    metricsOrNop(metrics),
	}
}

// Handle returns how many couriers were marked offline.
func (h MarkStaleCouriersOfflineCommandHandler) Handle(ctx context.Context, cmd MarkStaleCouriersOfflineCommand) (int, error) {
	if err := cmd.Validate(); err != nil {
		return 0, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, timeoutError(ctx, "begin presence sweep", err)
	}
	defer rollback(ctx, uow)

	courierRepo := uow.CourierRepository()
	now := h.clock.Now()

	stale, err := courierRepo.FindStale(ctx, now.Add(-cmd.MaxAge()))
	if err != nil {
		return 0, timeoutError(ctx, "find stale couriers", err)
	}
	if len(stale) == 0 {
		return 0, nil
	}

	marked := 0
	for _, c := range stale {
		// the query runs on a snapshot; re-check against the same clock reading
		if !c.IsStale(now, cmd.MaxAge()) {
			continue
		}
		c.GoOffline()
		if err = courierRepo.Upsert(ctx, c); err != nil {
			return 0, timeoutError(ctx, "save courier", err)
		}
		marked++
	}

	if err = uow.Commit(ctx); err != nil {
		return 0, timeoutError(ctx, "commit presence sweep", err)
	}

	h.metrics.AddCouriersMarkedOffline(marked)
	return marked, nil
}
