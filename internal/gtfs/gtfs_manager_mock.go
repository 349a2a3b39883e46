package gtfs

import (
	"context"

	"editor.datatools.dev/internal/models"
)

func (m *Manager) MockAddStop(id, name string, lat, lon float64) error {
	if err := m.GtfsDB.InsertStops(context.Background(), []models.Stop{{ID: id, Name: name, Lat: lat, Lon: lon}}); err != nil {
		return err
	}
	return m.RefreshCatalog(context.Background())
}

func (m *Manager) MockAddLocation(location models.Location) error {
	if err := m.GtfsDB.InsertLocations(context.Background(), []models.Location{location}); err != nil {
		return err
	}
	return m.RefreshCatalog(context.Background())
}

func (m *Manager) MockAddPattern(pattern models.Pattern) error {
	return m.GtfsDB.InsertPatterns(context.Background(), []models.Pattern{pattern})
}

func (m *Manager) MockAddTrip(trip models.Trip) error {
	return m.GtfsDB.InsertTrips(context.Background(), []models.Trip{trip})
}
