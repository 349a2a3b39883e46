package models

import (
	"encoding/json"
	"fmt"
)

// Coordinate is a WGS84 position. It marshals as a GeoJSON-style [lon, lat] pair.
type Coordinate struct {
	Lon float64
	Lat float64
}

func (c Coordinate) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{c.Lon, c.Lat})
}

func (c *Coordinate) UnmarshalJSON(b []byte) error {
	var pair []float64
	if err := json.Unmarshal(b, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("coordinate must have 2 values, got %d", len(pair))
	}
	c.Lon, c.Lat = pair[0], pair[1]
	return nil
}

// Equal reports whether both coordinates are within epsilon degrees on each axis.
func (c Coordinate) Equal(other Coordinate, epsilon float64) bool {
	return abs(c.Lon-other.Lon) <= epsilon && abs(c.Lat-other.Lat) <= epsilon
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

// BoundingBox is [minLon, minLat, maxLon, maxLat].
type BoundingBox [4]float64

// Contains reports whether c lies inside the box, edges included.
func (b BoundingBox) Contains(c Coordinate) bool {
	return c.Lon >= b[0] && c.Lat >= b[1] && c.Lon <= b[2] && c.Lat <= b[3]
}
