package models

import "fmt"

// StopTime holds offsets in seconds after midnight. Values past 86400 are
// next-day service.
type StopTime struct {
	Arrival   int  `json:"arrivalTime"`
	Departure int  `json:"departureTime"`
	Timepoint bool `json:"timepoint"`
}

// Trip is a scheduled run over a pattern. StopTimes is aligned by index with
// the pattern's halts.
type Trip struct {
	ID        string     `json:"tripId"`
	PatternID string     `json:"patternId"`
	ServiceID string     `json:"serviceId"`
	StopTimes []StopTime `json:"stopTimes"`
}

// Clone returns a deep copy of the trip.
func (t Trip) Clone() Trip {
	out := t
	out.StopTimes = append([]StopTime(nil), t.StopTimes...)
	return out
}

// FormatGTFSTime renders seconds after midnight as HH:MM:SS, hours unbounded.
func FormatGTFSTime(seconds int) string {
	sign := ""
	if seconds < 0 {
		sign = "-"
		seconds = -seconds
	}
	return fmt.Sprintf("%s%02d:%02d:%02d", sign, seconds/3600, (seconds%3600)/60, seconds%60)
}
