package geometry

import "editor.datatools.dev/internal/models"

// vertexEpsilon is how close, in degrees, two vertices must be to count as
// the same point when joining segments. Roughly a centimeter.
const vertexEpsilon = 1e-7

// StraightSegments joins each consecutive pair of coordinates with a
// two-point segment.
func StraightSegments(coords []models.Coordinate) [][]models.Coordinate {
	if len(coords) < 2 {
		return nil
	}
	segments := make([][]models.Coordinate, 0, len(coords)-1)
	for i := 0; i < len(coords)-1; i++ {
		segments = append(segments, []models.Coordinate{coords[i], coords[i+1]})
	}
	return segments
}

// Flatten concatenates segments into one polyline, dropping a segment's
// first vertex when it repeats the previous segment's last vertex.
func Flatten(segments [][]models.Coordinate) []models.Coordinate {
	var line []models.Coordinate
	for _, segment := range segments {
		for j, c := range segment {
			if j == 0 && len(line) > 0 && line[len(line)-1].Equal(c, vertexEpsilon) {
				continue
			}
			line = append(line, c)
		}
	}
	return line
}

// NonEmpty drops segments with no vertices.
func NonEmpty(segments [][]models.Coordinate) [][]models.Coordinate {
	out := segments[:0:0]
	for _, s := range segments {
		if len(s) > 0 {
			out = append(out, s)
		}
	}
	return out
}
