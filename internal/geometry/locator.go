package geometry

import (
	"log/slog"

	"editor.datatools.dev/internal/models"
)

// Locator resolves a halt reference to a representative coordinate.
type Locator interface {
	Locate(ref models.HaltRef) (models.Coordinate, bool)
}

// LocatedHalt is a pattern halt with a resolved coordinate. Index is the
// halt's position in the pattern.
type LocatedHalt struct {
	Index int
	Ref   models.HaltRef
	Coord models.Coordinate
}

// LocateHalts resolves every halt in order. Halts that cannot be resolved are
// logged and skipped.
func LocateHalts(halts []models.PatternHalt, locator Locator, logger *slog.Logger) []LocatedHalt {
	located := make([]LocatedHalt, 0, len(halts))
	for i, h := range halts {
		if h.Ref == nil {
			warn(logger, "pattern halt has no reference", slog.Int("stop_sequence", i))
			continue
		}
		coord, ok := locator.Locate(h.Ref)
		if !ok {
			warn(logger, "unable to locate pattern halt",
				slog.Int("stop_sequence", i),
				slog.String("halt_kind", string(h.Ref.Kind())),
				slog.String("halt_id", h.Ref.RefID()))
			continue
		}
		located = append(located, LocatedHalt{Index: i, Ref: h.Ref, Coord: coord})
	}
	return located
}

// Coordinates returns the coordinates of located halts in order.
func Coordinates(located []LocatedHalt) []models.Coordinate {
	coords := make([]models.Coordinate, len(located))
	for i, l := range located {
		coords[i] = l.Coord
	}
	return coords
}

func warn(logger *slog.Logger, msg string, attrs ...any) {
	if logger == nil {
		return
	}
	logger.Warn(msg, append(attrs, slog.String("component", "geometry"))...)
}

// Catalog is an in-memory Locator over stops, locations and location groups.
type Catalog struct {
	Stops          map[string]models.Stop
	Locations      map[string]models.Location
	LocationGroups map[string]models.LocationGroup
}

func NewCatalog() *Catalog {
	return &Catalog{
		Stops:          make(map[string]models.Stop),
		Locations:      make(map[string]models.Location),
		LocationGroups: make(map[string]models.LocationGroup),
	}
}

func (c *Catalog) AddStop(s models.Stop)                   { c.Stops[s.ID] = s }
func (c *Catalog) AddLocation(l models.Location)           { c.Locations[l.ID] = l }
func (c *Catalog) AddLocationGroup(g models.LocationGroup) { c.LocationGroups[g.ID] = g }

func (c *Catalog) Locate(ref models.HaltRef) (models.Coordinate, bool) {
	switch r := ref.(type) {
	case models.StopRef:
		stop, ok := c.Stops[r.StopID]
		if !ok {
			return models.Coordinate{}, false
		}
		return stop.Coordinate(), true
	case models.LocationRef:
		loc, ok := c.Locations[r.LocationID]
		if !ok {
			return models.Coordinate{}, false
		}
		return loc.Centroid()
	case models.LocationGroupRef:
		group, ok := c.LocationGroups[r.LocationGroupID]
		if !ok {
			return models.Coordinate{}, false
		}
		return c.groupCentroid(group)
	case nil:
		return models.Coordinate{}, false
	default:
		return models.Coordinate{}, false
	}
}

// groupCentroid averages the centroids of the group's resolvable members.
// Members may be stops as well as locations.
func (c *Catalog) groupCentroid(group models.LocationGroup) (models.Coordinate, bool) {
	var sumLon, sumLat float64
	n := 0
	for _, id := range group.LocationIDs {
		var (
			coord models.Coordinate
			ok    bool
		)
		if loc, found := c.Locations[id]; found {
			coord, ok = loc.Centroid()
		} else if stop, found := c.Stops[id]; found {
			coord, ok = stop.Coordinate(), true
		}
		if !ok {
			continue
		}
		sumLon += coord.Lon
		sumLat += coord.Lat
		n++
	}
	if n == 0 {
		return models.Coordinate{}, false
	}
	return models.Coordinate{Lon: sumLon / float64(n), Lat: sumLat / float64(n)}, true
}
