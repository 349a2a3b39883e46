package geometry

import "editor.datatools.dev/internal/models"

// ExceedsThreshold reports whether a control point is implausibly far from
// its halt.
func ExceedsThreshold(controlPoint, halt models.Coordinate, thresholdMeters float64) bool {
	return Haversine(controlPoint, halt) > thresholdMeters
}

// ShapeFitIssues returns every stop control point farther than
// thresholdMeters from its halt. Control points whose halt cannot be located
// are not reported.
func ShapeFitIssues(controlPoints []models.ControlPoint, locator Locator, thresholdMeters float64) []models.ShapeFitIssue {
	issues := []models.ShapeFitIssue{}
	for i, cp := range controlPoints {
		if !cp.IsStop() {
			continue
		}
		haltCoord, ok := locator.Locate(cp.Halt)
		if !ok {
			continue
		}
		distance := Haversine(cp.Point, haltCoord)
		if distance <= thresholdMeters {
			continue
		}
		issues = append(issues, models.ShapeFitIssue{
			ControlPointIndex: i,
			HaltIndex:         cp.HaltIndex,
			HaltKind:          cp.Halt.Kind(),
			HaltID:            cp.Halt.RefID(),
			Distance:          distance,
			ControlPoint:      cp.Point,
			HaltCoordinate:    haltCoord,
		})
	}
	return issues
}
