package gtfs

import (
	"sort"

	"editor.datatools.dev/internal/models"
)

// References collects the stops, locations and location groups the halts
// point at. Members of referenced groups are included as well.
func (manager *Manager) References(halts []models.PatternHalt) models.ReferencesModel {
	manager.catalogMutex.RLock()
	defer manager.catalogMutex.RUnlock()

	refs := models.NewEmptyReferences()
	seenStops := make(map[string]bool)
	seenLocations := make(map[string]bool)
	seenGroups := make(map[string]bool)

	addStop := func(id string) bool {
		if seenStops[id] {
			return true
		}
		stop, ok := manager.catalog.Stops[id]
		if !ok {
			return false
		}
		seenStops[id] = true
		refs.Stops = append(refs.Stops, stop)
		return true
	}
	addLocation := func(id string) bool {
		if seenLocations[id] {
			return true
		}
		location, ok := manager.catalog.Locations[id]
		if !ok {
			return false
		}
		seenLocations[id] = true
		refs.Locations = append(refs.Locations, location)
		return true
	}

	for _, halt := range halts {
		switch ref := halt.Ref.(type) {
		case models.StopRef:
			addStop(ref.StopID)
		case models.LocationRef:
			addLocation(ref.LocationID)
		case models.LocationGroupRef:
			group, ok := manager.catalog.LocationGroups[ref.LocationGroupID]
			if !ok || seenGroups[group.ID] {
				continue
			}
			seenGroups[group.ID] = true
			refs.LocationGroups = append(refs.LocationGroups, group)
			for _, member := range group.LocationIDs {
				if !addLocation(member) {
					addStop(member)
				}
			}
		case nil:
		}
	}

	sort.Slice(refs.Stops, func(i, j int) bool { return refs.Stops[i].ID < refs.Stops[j].ID })
	sort.Slice(refs.Locations, func(i, j int) bool { return refs.Locations[i].ID < refs.Locations[j].ID })
	sort.Slice(refs.LocationGroups, func(i, j int) bool { return refs.LocationGroups[i].ID < refs.LocationGroups[j].ID })
	return refs
}
