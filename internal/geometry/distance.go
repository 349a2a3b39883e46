package geometry

import (
	"math"

	"editor.datatools.dev/internal/models"
)

const earthRadiusMeters = 6371008.8

// Haversine returns the great-circle distance between a and b in meters.
func Haversine(a, b models.Coordinate) float64 {
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return earthRadiusMeters * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// Length sums the haversine distance along a polyline.
func Length(line []models.Coordinate) float64 {
	total := 0.0
	for i := 1; i < len(line); i++ {
		total += Haversine(line[i-1], line[i])
	}
	return total
}
