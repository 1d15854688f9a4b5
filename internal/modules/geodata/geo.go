// Package geodata — geo.go contains pure geographic computation helpers.
package geodata

import "math"

const earthRadiusKm = 6371.0

// haversineM returns the great-circle distance in metres between two points
// specified in decimal degrees.
func haversineM(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := degreesToRadians(lat2 - lat1)
	dLng := degreesToRadians(lng2 - lng1)

	rLat1 := degreesToRadians(lat1)
	rLat2 := degreesToRadians(lat2)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rLat1)*math.Cos(rLat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c * 1000
}

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}

// quantize rounds a coordinate to 3 decimal degrees (~100 m), the grid the
// cache is keyed on.
func quantize(v float64) float64 {
	return math.Round(v*1000) / 1000
}
