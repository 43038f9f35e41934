package kernel

import (
	"errors"
	"fmt"

	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

const (
	MinLatitude  = -90.0
	MaxLatitude  = 90.0
	MinLongitude = -180.0
	MaxLongitude = 180.0
)

// ErrLocationIsNotConstructed is returned when a zero Location is used.
// A zero Location stands for "no known coordinate" (for example an order without a delivery address).
var ErrLocationIsNotConstructed = errs.NewValueIsRequiredError("location must be created via NewLocation constructor")

// Location is an immutable geographic coordinate {lat, long} in decimal degrees.
//
// The zero value is valid to hold but fails Validate: it models an absent or
// malformed coordinate coming from an eventually consistent store. Every distance
// helper treats it as "unknown" instead of failing.
//
// Example:
//
//	loc, err := kernel.NewLocation(41.3111, 69.2797)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(loc) // Location(41.3111,69.2797)
type Location struct { //nolint:recvcheck //using for validation
	lat   float64
	long  float64
	guard guard.ConstructorGuard
}

// NewLocation validates and builds a Location.
//
// Parameters:
//   - lat: latitude in [MinLatitude..MaxLatitude], finite
//   - long: longitude in [MinLongitude..MaxLongitude], finite
//
// Returns:
//   - Location: the constructed value
//   - error: joined range errors for every invalid coordinate
func NewLocation(lat, long float64) (Location, error) {
	loc := Location{guard: guard.NewConstructorGuard()}

	if err := errors.Join(loc.setLat(lat), loc.setLong(long)); err != nil {
		return Location{}, err
	}

	return loc, nil
}

// Validate returns ErrLocationIsNotConstructed for the zero value.
func (l Location) Validate() error {
	return l.guard.Validate(ErrLocationIsNotConstructed)
}

// IsKnown reports whether l holds a real coordinate.
func (l Location) IsKnown() bool {
	return l.Validate() == nil
}

func (l Location) Lat() float64 {
	return l.lat
}

func (l Location) Long() float64 {
	return l.long
}

func (l Location) String() string {
	if !l.IsKnown() {
		return "Location(unknown)"
	}
	return fmt.Sprintf("Location(%.4f,%.4f)", l.lat, l.long)
}

// IsEqual compares coordinates of two constructed locations.
func (l Location) IsEqual(other Location) (bool, error) {
	if err := errors.Join(l.Validate(), other.Validate()); err != nil {
		return false, err
	}
	return l == other, nil
}

// DistanceTo returns the haversine distance in kilometres (one decimal place).
// ok is false when either location is unknown.
//
// Example:
//
//	d, ok := active.DeliveryLocation().DistanceTo(candidate.DeliveryLocation())
//	if !ok {
//	    continue // exclude from comparison
//	}
func (l Location) DistanceTo(other Location) (float64, bool) {
	if !l.IsKnown() || !other.IsKnown() {
		return 0, false
	}
	return DistanceKm(l.lat, l.long, other.lat, other.long)
}

func (l *Location) setLat(lat float64) error {
	if !isFinite(lat) || lat < MinLatitude || lat > MaxLatitude {
		return errs.NewValueIsOutOfRangeError("lat", lat, MinLatitude, MaxLatitude)
	}
	l.lat = lat
	return nil
}

func (l *Location) setLong(long float64) error {
	if !isFinite(long) || long < MinLongitude || long > MaxLongitude {
		return errs.NewValueIsOutOfRangeError("long", long, MinLongitude, MaxLongitude)
	}
	l.long = long
	return nil
}
