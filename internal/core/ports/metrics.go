package ports

import "time"

// Outcome labels shared by metrics.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Metrics records dispatch activity.
type Metrics interface {
	ObserveClaim(outcome string, duration time.Duration)
	IncTransition(transition, outcome string)
	IncFeedRecompute(courierBusy bool)
	AddCourierAlerts(onRoute bool, n int)
	AddCouriersMarkedOffline(n int)
}
