// Package kernel holds the value objects shared by every aggregate of the dispatch domain.
//
// The package includes:
//   - UUID: identifier of orders and restaurants
//   - PhoneNumber: identifier of couriers
//   - Location: a geographic coordinate, with haversine distance in kilometres
//   - Money: exact non-negative amounts
//
// Distance helpers never fail. A missing or malformed coordinate makes the
// distance unknown and callers leave such pairs out of comparisons.
package kernel
