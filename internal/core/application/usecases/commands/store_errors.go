package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
)

// timeoutError marks err as errs.ErrTimeout when the operation context ran out.
// Domain errors pass through untouched.
func timeoutError(ctx context.Context, op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, errs.ErrTimeout) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s: %w", errs.ErrTimeout, op, err)
	}
	return err
}

// conditionalWriteError converts a lost status race into the error the caller expects.
func conditionalWriteError(err error, onConflict func() error) error {
	if errors.Is(err, errs.ErrStatusPreconditionFail) {
		return onConflict()
	}
	return err
}

func rollback(ctx context.Context, tx TxManager) {
	// a committed transaction reports an error here; nothing to undo
	_ = tx.Rollback(context.WithoutCancel(ctx))
}

type nopMetrics struct{}

func (nopMetrics) ObserveClaim(string, time.Duration) {}
func (nopMetrics) IncTransition(string, string) {}
func (nopMetrics) IncFeedRecompute(bool) {}
func (nopMetrics) AddCourierAlerts(bool, int) {}
func (nopMetrics) AddCouriersMarkedOffline(int) {}

func metricsOrNop(m ports.Metrics) ports.Metrics {
	if m == nil {
		return nopMetrics{}
	}
	return m
}

func outcome(err error) string {
	if err != nil {
		return ports.OutcomeFailure
	}
	return ports.OutcomeSuccess
}
