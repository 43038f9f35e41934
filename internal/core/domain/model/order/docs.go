// Package order holds the Order aggregate and its lifecycle state machine.
//
// The package includes:
//   - Order: the aggregate root with claim, delivery and cancel transitions
//   - Status: the state machine search_courier -> courier -> delivering -> delivered
//   - ProductLine: a menu item reference with a positive count
//   - CanCancel and CancelTimeRemaining: pure functions of (now, acceptedAt, window)
//
// Key business rules:
//   - An order has at most one courier, and has one exactly when it is not pending
//   - Only a pending order can be claimed; a claim records the acceptance time
//   - A claimed order can be handed back only while now - acceptedAt is below the window
//   - Delivered is terminal
//
// Transitions mutate the in-memory aggregate only. Persisting them with a
// status-conditioned write is the job of the application layer.
package order
