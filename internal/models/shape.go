package models

// ShapeEntry represents a shape entry for the API response
type ShapeEntry struct {
	ID             string  `json:"id"`
	Points         string  `json:"points"`
	Length         int     `json:"length"`
	Levels         string  `json:"levels"`
	DistanceMeters float64 `json:"distanceMeters"`
}

// ShapeFitIssue flags a stop control point drawn too far from its halt.
type ShapeFitIssue struct {
	ControlPointIndex int        `json:"controlPointIndex"`
	HaltIndex         int        `json:"stopSequence"`
	HaltKind          HaltKind   `json:"haltKind"`
	HaltID            string     `json:"haltId"`
	Distance          float64    `json:"distance"`
	ControlPoint      Coordinate `json:"controlPoint"`
	HaltCoordinate    Coordinate `json:"haltCoordinate"`
}

// ShapeIssuesEntry is the shape-fit report for a pattern.
type ShapeIssuesEntry struct {
	PatternID       string          `json:"patternId"`
	ThresholdMeters float64         `json:"thresholdMeters"`
	Issues          []ShapeFitIssue `json:"issues"`
	ZeroTravelTime  []int           `json:"zeroTravelTimeStopSequences"`
}

// NormalizeResultEntry reports how many trips were rewritten.
type NormalizeResultEntry struct {
	PatternID    string `json:"patternId"`
	StartIndex   int    `json:"startIndex"`
	Interpolated bool   `json:"interpolated"`
	TripsUpdated int    `json:"tripsUpdated"`
	Trips        []Trip `json:"trips"`
}
