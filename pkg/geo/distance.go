// Package geo holds straight-line distance helpers.
package geo

import "math"

const (
	earthRadiusKm = 6371.0
	kmToMiles     = 0.621371
)

// DistanceMiles returns the great-circle distance between two points in miles
// using the haversine formula.
func DistanceMiles(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLon := toRadians(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	// Rounding can push a just past 1 for antipodal points.
	a = math.Min(1, math.Max(0, a))
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c * kmToMiles
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
