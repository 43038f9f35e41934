// Package jobs provides scheduled background tasks for the dispatch service.
//
// Jobs are cron-based, using github.com/robfig/cron/v3 with a seconds field.
//
// # Available Jobs
//
// CourierPresenceJob runs every 30 seconds by default and marks couriers offline
// when their last location report is older than the configured max age. Offline
// couriers receive no new order alerts and cannot claim until they report again.
//
// # Usage
//
//	jobManager := jobs.NewJobManager(markStaleHandler, jobs.PresenceSettings{}, logger)
//	if err := jobManager.StartAll(); err != nil {
//		return err
//	}
//	defer jobManager.StopAll()
//
// # Error Handling
//
// A failed sweep is logged and retried on the next tick. A sweep that overruns its
// tick makes the next tick skip.
package jobs
