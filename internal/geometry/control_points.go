package geometry

import "editor.datatools.dev/internal/models"

// ControlPointsFromSegments walks routed segments and located halts together.
// Segment i is expected to run from located[i] to located[i+1], so boundary k
// of the segment chain becomes a stop control point for located[k]. Interior
// vertices become free control points. A segment whose first vertex repeats
// the previous segment's last vertex does not produce a second point.
func ControlPointsFromSegments(located []LocatedHalt, segments [][]models.Coordinate) []models.ControlPoint {
	var (
		points   []models.ControlPoint
		distance float64
		last     models.Coordinate
		started  bool
	)

	emit := func(c models.Coordinate, boundary int) {
		if started {
			distance += Haversine(last, c)
		}
		last, started = c, true

		cp := models.ControlPoint{
			Point:     c,
			Distance:  distance,
			Kind:      models.ControlPointFree,
			HaltIndex: -1,
		}
		if boundary >= 0 && boundary < len(located) {
			cp.Kind = models.ControlPointStop
			cp.HaltIndex = located[boundary].Index
			cp.Halt = located[boundary].Ref
		}
		points = append(points, cp)
	}

	for i, segment := range segments {
		n := len(segment)
		if n == 0 {
			continue
		}
		if i == 0 {
			emit(segment[0], 0)
		} else if n > 1 && !segment[0].Equal(last, vertexEpsilon) {
			emit(segment[0], -1)
		}
		for j := 1; j < n-1; j++ {
			emit(segment[j], -1)
		}
		if n > 1 || i > 0 {
			emit(segment[n-1], i+1)
		} else {
			emit(segment[0], i+1)
		}
	}
	return points
}

// ControlPointsFromHalts anchors a stop control point on every located halt,
// with distances measured along straight lines between them.
func ControlPointsFromHalts(located []LocatedHalt) []models.ControlPoint {
	points := make([]models.ControlPoint, 0, len(located))
	distance := 0.0
	for i, l := range located {
		if i > 0 {
			distance += Haversine(located[i-1].Coord, l.Coord)
		}
		points = append(points, models.ControlPoint{
			Point:     l.Coord,
			Distance:  distance,
			Kind:      models.ControlPointStop,
			HaltIndex: l.Index,
			Halt:      l.Ref,
		})
	}
	return points
}
