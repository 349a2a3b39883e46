package models

// ReferencesModel carries the entities a response entry points at.
type ReferencesModel struct {
	Stops          []Stop          `json:"stops"`
	Locations      []Location      `json:"locations"`
	LocationGroups []LocationGroup `json:"locationGroups"`
}

// NewEmptyReferences creates a new empty References model with initialized empty slices
func NewEmptyReferences() ReferencesModel {
	return ReferencesModel{
		Stops:          []Stop{},
		Locations:      []Location{},
		LocationGroups: []LocationGroup{},
	}
}
