package models

import "errors"

var ErrFirstHaltTravelTime = errors.New("first halt in a pattern must have a default travel time of zero")

// Pattern is a distinct halt sequence plus the path geometry shared by its trips.
type Pattern struct {
	ID            string         `json:"id"`
	RouteID       string         `json:"routeId"`
	Name          string         `json:"name"`
	ShapeID       string         `json:"shapeId,omitempty"`
	Halts         []PatternHalt  `json:"patternHalts"`
	Shape         []Coordinate   `json:"shapePoints"`
	ControlPoints []ControlPoint `json:"controlPoints"`
}

// Validate checks the structural invariants of the halt sequence.
func (p Pattern) Validate() error {
	if len(p.Halts) > 0 && p.Halts[0].DefaultTravelTime != 0 {
		return ErrFirstHaltTravelTime
	}
	return nil
}

// TimepointsFrom counts halts at or after index that are timepoints.
func (p Pattern) TimepointsFrom(index int) int {
	count := 0
	for i := index; i >= 0 && i < len(p.Halts); i++ {
		if p.Halts[i].Timepoint {
			count++
		}
	}
	return count
}

// ReferencedHalts counts halts with a non-nil ref.
func (p Pattern) ReferencedHalts() int {
	count := 0
	for _, h := range p.Halts {
		if h.Ref != nil {
			count++
		}
	}
	return count
}

// HasShape reports whether the pattern has drawn geometry.
func (p Pattern) HasShape() bool {
	return len(p.Shape) > 0
}
