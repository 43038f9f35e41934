// Package services holds the domain services of order assignment.
//
// The package includes:
//   - RouteFilter: the route consolidation rule (2 km customer-to-customer)
//   - ProjectFeed: the pure projection from pending and active sets to the visible list
//   - OrderDispatcher: picks the couriers to alert about a new pending order
//
// Everything here is pure and safe for concurrent use.
package services
