package gtfs

import (
	"context"

	"editor.datatools.dev/internal/geometry"
	"editor.datatools.dev/internal/models"
)

// ShapePolylinePrecision is the precision of encoded shapes served by the API.
const ShapePolylinePrecision = 5

// Shape returns a stored shape as an encoded polyline.
func (manager *Manager) Shape(ctx context.Context, shapeID string) (models.ShapeEntry, error) {
	points, err := manager.GtfsDB.GetShapePoints(ctx, shapeID)
	if err != nil {
		return models.ShapeEntry{}, err
	}

	return models.ShapeEntry{
		ID:             shapeID,
		Points:         geometry.EncodePolyline(points, ShapePolylinePrecision),
		Length:         len(points),
		DistanceMeters: geometry.Length(points),
	}, nil
}

// GetRegionBounds returns the center and span of every known stop.
func (manager *Manager) GetRegionBounds() (lat, lon, latSpan, lonSpan float64) {
	manager.catalogMutex.RLock()
	defer manager.catalogMutex.RUnlock()

	var minLat, maxLat, minLon, maxLon float64
	first := true
	for _, stop := range manager.catalog.Stops {
		if first {
			minLat, maxLat = stop.Lat, stop.Lat
			minLon, maxLon = stop.Lon, stop.Lon
			first = false
			continue
		}
		minLat = min(minLat, stop.Lat)
		maxLat = max(maxLat, stop.Lat)
		minLon = min(minLon, stop.Lon)
		maxLon = max(maxLon, stop.Lon)
	}

	lat = (minLat + maxLat) / 2
	lon = (minLon + maxLon) / 2
	latSpan = maxLat - minLat
	lonSpan = maxLon - minLon

	return lat, lon, latSpan, lonSpan
}
