package geometry

import (
	"math"

	"github.com/twpayne/go-polyline"

	"editor.datatools.dev/internal/models"
)

// Google encoded polyline precisions. Valhalla encodes at 6 digits.
const (
	PrecisionGoogle   = 5
	PrecisionValhalla = 6
)

func codec(precision int) polyline.Codec {
	return polyline.Codec{Dim: 2, Scale: math.Pow10(precision)}
}

// EncodePolyline encodes a lon/lat line as a lat,lon encoded polyline.
func EncodePolyline(line []models.Coordinate, precision int) string {
	coords := make([][]float64, len(line))
	for i, c := range line {
		coords[i] = []float64{c.Lat, c.Lon}
	}
	return string(codec(precision).EncodeCoords(nil, coords))
}

// DecodePolyline decodes a lat,lon encoded polyline into lon/lat coordinates.
func DecodePolyline(encoded string, precision int) ([]models.Coordinate, error) {
	coords, _, err := codec(precision).DecodeCoords([]byte(encoded))
	if err != nil {
		return nil, err
	}
	line := make([]models.Coordinate, len(coords))
	for i, c := range coords {
		line[i] = models.Coordinate{Lat: c[0], Lon: c[1]}
	}
	return line, nil
}
