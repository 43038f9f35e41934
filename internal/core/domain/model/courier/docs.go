// Package courier holds the Courier aggregate: a courier's identity, last known
// location and online flag.
//
// Key business rules:
//   - Couriers are identified by phone number
//   - A location update is an upsert that also marks the courier online
//   - Claims need a fresh location; stale couriers are swept offline by a job
package courier
