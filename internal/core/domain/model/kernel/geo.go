package kernel

import "math"

// EarthRadiusKm is the mean Earth radius used by DistanceKm.
const EarthRadiusKm = 6371.0

// DistanceKm returns the great-circle (haversine) distance in kilometres between
// (lat1, lon1) and (lat2, lon2), rounded to one decimal place.
//
// The second return value is false when any coordinate is NaN or infinite. Callers
// must treat that as "distance unknown" and leave the pair out of any comparison;
// it is not an error.
//
// DistanceKm is symmetric and DistanceKm(a, a) is 0.
//
// Example:
//
//	d, ok := kernel.DistanceKm(41.3000, 69.2000, 41.3010, 69.2005)
//	// d == 0.1, ok == true
func DistanceKm(lat1, lon1, lat2, lon2 float64) (float64, bool) {
	if !isFinite(lat1) || !isFinite(lon1) || !isFinite(lat2) || !isFinite(lon2) {
		return 0, false
	}

	dLat := degToRad(lat2 - lat1)
	dLon := degToRad(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(degToRad(lat1))*math.Cos(degToRad(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return roundToTenth(EarthRadiusKm * c), true
}

func degToRad(deg float64) float64 {
	return deg * math.Pi / 180
}

func roundToTenth(v float64) float64 {
	return math.Round(v*10) / 10
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
