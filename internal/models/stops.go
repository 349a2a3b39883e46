package models

// Stop is a fixed-location halt.
type Stop struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

func (s Stop) Coordinate() Coordinate {
	return Coordinate{Lon: s.Lon, Lat: s.Lat}
}

// Location is a flexible pick-up/drop-off zone described by a polygon ring.
type Location struct {
	ID      string       `json:"id"`
	Name    string       `json:"name"`
	Polygon []Coordinate `json:"polygon"`
}

// Centroid is the vertex mean of the polygon ring. A closing vertex equal to
// the first is ignored.
func (l Location) Centroid() (Coordinate, bool) {
	ring := l.Polygon
	if len(ring) > 1 && ring[0] == ring[len(ring)-1] {
		ring = ring[:len(ring)-1]
	}
	if len(ring) == 0 {
		return Coordinate{}, false
	}
	var sumLon, sumLat float64
	for _, c := range ring {
		sumLon += c.Lon
		sumLat += c.Lat
	}
	n := float64(len(ring))
	return Coordinate{Lon: sumLon / n, Lat: sumLat / n}, true
}

// LocationGroup is a named collection of locations.
type LocationGroup struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	LocationIDs []string `json:"locationIds"`
}
