package patterns

import (
	"errors"
	"fmt"

	"editor.datatools.dev/internal/models"
)

var ErrInvalidArgument = errors.New("invalid argument")

// NormalizeStopTimes recomputes arrival and departure times for every trip
// from startIndex to the end of the pattern. Times before startIndex are
// never changed, and the arrival at startIndex is kept as the anchor.
//
// With interpolate set, halts between consecutive timepoints are spread
// proportionally to their default times so every downstream timepoint keeps
// its existing time exactly.
//
// The input trips are not modified.
func NormalizeStopTimes(pattern models.Pattern, trips []models.Trip, startIndex int, interpolate bool) ([]models.Trip, error) {
	n := len(pattern.Halts)
	if startIndex < 0 || startIndex >= n {
		return nil, fmt.Errorf("%w: start index %d outside pattern with %d halts", ErrInvalidArgument, startIndex, n)
	}
	if interpolate && pattern.TimepointsFrom(startIndex) < 2 {
		return nil, fmt.Errorf("%w: interpolation needs at least two timepoints from index %d", ErrInvalidArgument, startIndex)
	}
	for _, trip := range trips {
		if len(trip.StopTimes) != n {
			return nil, fmt.Errorf("%w: trip %s has %d stop times for %d halts", ErrInvalidArgument, trip.ID, len(trip.StopTimes), n)
		}
	}

	out := make([]models.Trip, len(trips))
	for i, trip := range trips {
		out[i] = trip.Clone()
	}
	if startIndex == n-1 {
		return out, nil
	}

	for i := range out {
		original := trips[i].StopTimes
		times := out[i].StopTimes

		chain(pattern.Halts, times, startIndex)
		if interpolate {
			if err := interpolateTimepoints(pattern.Halts, times, original, startIndex); err != nil {
				return nil, fmt.Errorf("trip %s: %w", out[i].ID, err)
			}
		}
	}
	return out, nil
}

// arrivalOffset is the time from the previous departure to arrival at h.
func arrivalOffset(h models.PatternHalt) int {
	return h.DefaultTravelTime + h.DefaultDwellTime
}

// chain sets times[from] to depart at its arrival and derives every later
// halt from its predecessor's departure.
func chain(halts []models.PatternHalt, times []models.StopTime, from int) {
	times[from].Departure = times[from].Arrival
	chainAfter(halts, times, from)
}

func chainAfter(halts []models.PatternHalt, times []models.StopTime, from int) {
	for i := from + 1; i < len(halts); i++ {
		times[i].Arrival = times[i-1].Departure + arrivalOffset(halts[i])
		times[i].Departure = times[i].Arrival + halts[i].DefaultDwellTime
	}
}

// interpolateTimepoints pins every timepoint after start to its original
// time and spreads the halts between anchors. start is always an anchor.
// Halts after the last timepoint are chained from it.
func interpolateTimepoints(halts []models.PatternHalt, times, original []models.StopTime, start int) error {
	anchors := []int{start}
	for i := start + 1; i < len(halts); i++ {
		if halts[i].Timepoint {
			anchors = append(anchors, i)
			times[i].Arrival = original[i].Arrival
			times[i].Departure = original[i].Departure
		}
	}

	for k := 1; k < len(anchors); k++ {
		p, q := anchors[k-1], anchors[k]
		if err := spread(halts, times, p, q); err != nil {
			return err
		}
	}

	chainAfter(halts, times, anchors[len(anchors)-1])
	return nil
}

// spread assigns times to halts strictly between anchors p and q. Each time
// is rounded from its cumulative share of the elapsed time, so rounding
// never accumulates.
func spread(halts []models.PatternHalt, times []models.StopTime, p, q int) error {
	origin := times[p].Departure
	elapsed := times[q].Arrival - origin
	if elapsed < 0 {
		return fmt.Errorf("%w: timepoint at index %d is earlier than index %d", ErrInvalidArgument, q, p)
	}

	total := 0
	for j := p + 1; j <= q; j++ {
		total += arrivalOffset(halts[j])
		if j < q {
			total += halts[j].DefaultDwellTime
		}
	}

	travel := func(h models.PatternHalt) int { return arrivalOffset(h) }
	dwell := func(h models.PatternHalt) int { return h.DefaultDwellTime }
	if total == 0 {
		// Every default is zero: space the halts evenly.
		travel = func(models.PatternHalt) int { return 1 }
		dwell = func(models.PatternHalt) int { return 0 }
		total = q - p
	}

	at := func(cumulative int) int {
		return origin + (2*elapsed*cumulative+total)/(2*total)
	}

	cumulative := 0
	for j := p + 1; j < q; j++ {
		cumulative += travel(halts[j])
		times[j].Arrival = at(cumulative)
		cumulative += dwell(halts[j])
		times[j].Departure = at(cumulative)
	}
	return nil
}

// ZeroTravelTimeHalts lists halts after the first whose default travel time
// is zero. Such halts produce a bunched schedule.
func ZeroTravelTimeHalts(pattern models.Pattern) []int {
	indexes := []int{}
	for i := 1; i < len(pattern.Halts); i++ {
		if pattern.Halts[i].DefaultTravelTime == 0 {
			indexes = append(indexes, i)
		}
	}
	return indexes
}
