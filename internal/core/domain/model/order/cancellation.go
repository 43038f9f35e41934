package order

import "time"

// DefaultCancellationWindow is how long after acceptance a courier may hand an order back.
const DefaultCancellationWindow = 30 * time.Second

// CanCancel reports whether an order accepted at acceptedAt may still be cancelled at now.
// The window is open while now - acceptedAt < window. A missing acceptance time closes it.
//
// Example:
//
//	accepted := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
//	order.CanCancel(accepted.Add(29*time.Second), &accepted, 30*time.Second) // true
//	order.CanCancel(accepted.Add(30*time.Second), &accepted, 30*time.Second) // false
func CanCancel(now time.Time, acceptedAt *time.Time, window time.Duration) bool {
	if acceptedAt == nil {
		return false
	}
	return now.Sub(*acceptedAt) < window
}

// CancelTimeRemaining returns how long the cancellation window stays open, or 0 once it closed.
// Clock skew that places acceptedAt in the future is clamped to the full window.
func CancelTimeRemaining(now time.Time, acceptedAt *time.Time, window time.Duration) time.Duration {
	if acceptedAt == nil {
		return 0
	}

	elapsed := now.Sub(*acceptedAt)
	if elapsed < 0 {
		return window
	}
	if elapsed >= window {
		return 0
	}
	return window - elapsed
}
