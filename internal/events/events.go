// Package events publishes pattern edit notifications so other services can
// refresh cached shapes and schedules.
package events

import (
	"time"

	"editor.datatools.dev/internal/models"
)

const (
	KindShapeUpdated        = "shape_updated"
	KindShapeDeleted        = "shape_deleted"
	KindStopTimesNormalized = "stop_times_normalized"
)

// Event is the JSON payload published for every committed edit.
type Event struct {
	Kind      string    `json:"kind"`
	PatternID string    `json:"patternId"`
	RouteID   string    `json:"routeId,omitempty"`
	Timestamp time.Time `json:"timestamp"`

	ShapeID       string `json:"shapeId,omitempty"`
	FollowStreets bool   `json:"followStreets,omitempty"`
	ControlPoints int    `json:"controlPoints,omitempty"`
	Generation    uint64 `json:"generation,omitempty"`

	StartIndex   int  `json:"startIndex,omitempty"`
	Interpolated bool `json:"interpolated,omitempty"`
	TripsUpdated int  `json:"tripsUpdated,omitempty"`
}

func NewEvent(kind string, pattern models.Pattern) Event {
	return Event{
		Kind:      kind,
		PatternID: pattern.ID,
		RouteID:   pattern.RouteID,
		ShapeID:   pattern.ShapeID,
		Timestamp: time.Now().UTC(),
	}
}

// Publisher delivers events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(e Event) error
	Close()
}

// NopPublisher drops every event. It is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(Event) error { return nil }
func (NopPublisher) Close()              {}
