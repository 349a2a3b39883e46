package gtfs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"editor.datatools.dev/internal/models"
)

func TestReferencesForStopPattern(t *testing.T) {
	manager, _ := newTestManager(t, nil)

	pattern, err := manager.Pattern(context.Background(), "R1:1")
	require.NoError(t, err)

	refs := manager.References(pattern.Halts)
	require.Len(t, refs.Stops, 3)
	assert.Equal(t, "S1", refs.Stops[0].ID)
	assert.Equal(t, "Harbor Terminal", refs.Stops[0].Name)
	assert.Equal(t, "S3", refs.Stops[2].ID)
	assert.Empty(t, refs.Locations)
	assert.Empty(t, refs.LocationGroups)
}

func TestReferencesIncludeGroupMembers(t *testing.T) {
	manager, _ := newTestManager(t, nil)
	ctx := context.Background()

	zone := models.Location{
		ID:   "Z1",
		Name: "Harbor zone",
		Polygon: []models.Coordinate{
			{Lon: -122.34, Lat: 47.59}, {Lon: -122.32, Lat: 47.59},
			{Lon: -122.32, Lat: 47.61}, {Lon: -122.34, Lat: 47.61},
		},
	}
	require.NoError(t, manager.MockAddLocation(zone))
	require.NoError(t, manager.GtfsDB.InsertLocationGroups(ctx, []models.LocationGroup{
		{ID: "G1", Name: "Harbor", LocationIDs: []string{"Z1", "S2"}},
	}))
	require.NoError(t, manager.RefreshCatalog(ctx))

	refs := manager.References([]models.PatternHalt{
		{Ref: models.LocationGroupRef{LocationGroupID: "G1"}},
		{Ref: models.StopRef{StopID: "S2"}, DefaultTravelTime: 60},
		{Ref: models.StopRef{StopID: "missing"}, DefaultTravelTime: 60},
		{},
	})

	require.Len(t, refs.LocationGroups, 1)
	require.Len(t, refs.Locations, 1)
	require.Len(t, refs.Stops, 1)
	assert.Equal(t, "Z1", refs.Locations[0].ID)
	assert.Equal(t, "S2", refs.Stops[0].ID)
}

func TestRegionBounds(t *testing.T) {
	manager, _ := newTestManager(t, nil)

	lat, lon, latSpan, lonSpan := manager.GetRegionBounds()
	assert.InDelta(t, 47.605, lat, 1e-9)
	assert.InDelta(t, -122.320, lon, 1e-9)
	assert.InDelta(t, 0.010, latSpan, 1e-9)
	assert.InDelta(t, 0.020, lonSpan, 1e-9)
}
