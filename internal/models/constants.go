package models

const (
	// PatternToStopDistanceThresholdMeters is how far a stop control point may
	// sit from its halt before the shape is flagged for review.
	PatternToStopDistanceThresholdMeters = 20.0

	// SecondsPerDay marks the start of next-day service.
	SecondsPerDay = 86400
)
