package models

import (
	"encoding/json"
	"errors"
)

// HaltKind names the variant of a HaltRef.
type HaltKind string

const (
	HaltKindStop          HaltKind = "stop"
	HaltKindLocation      HaltKind = "location"
	HaltKindLocationGroup HaltKind = "locationGroup"
)

// HaltRef is what a pattern halt points at. The set of implementations is
// closed: StopRef, LocationRef and LocationGroupRef.
type HaltRef interface {
	Kind() HaltKind
	RefID() string
	isHaltRef()
}

// StopRef references a fixed stop from stops.txt.
type StopRef struct {
	StopID string
}

// LocationRef references a GTFS-Flex zone from locations.geojson.
type LocationRef struct {
	LocationID string
}

// LocationGroupRef references a named collection of stops/locations.
type LocationGroupRef struct {
	LocationGroupID string
}

func (r StopRef) Kind() HaltKind          { return HaltKindStop }
func (r LocationRef) Kind() HaltKind      { return HaltKindLocation }
func (r LocationGroupRef) Kind() HaltKind { return HaltKindLocationGroup }

func (r StopRef) RefID() string          { return r.StopID }
func (r LocationRef) RefID() string      { return r.LocationID }
func (r LocationGroupRef) RefID() string { return r.LocationGroupID }

func (StopRef) isHaltRef()          {}
func (LocationRef) isHaltRef()      {}
func (LocationGroupRef) isHaltRef() {}

// NewHaltRef builds the variant for kind. An empty id yields nil.
func NewHaltRef(kind HaltKind, id string) (HaltRef, error) {
	if id == "" {
		return nil, nil
	}
	switch kind {
	case HaltKindStop:
		return StopRef{StopID: id}, nil
	case HaltKindLocation:
		return LocationRef{LocationID: id}, nil
	case HaltKindLocationGroup:
		return LocationGroupRef{LocationGroupID: id}, nil
	default:
		return nil, errors.New("unknown halt kind: " + string(kind))
	}
}

var ErrAmbiguousHaltRef = errors.New("halt must reference at most one of stopId, locationId, locationGroupId")

// PatternHalt is one stopping point in a pattern's ordered sequence.
type PatternHalt struct {
	Ref               HaltRef
	DefaultTravelTime int
	DefaultDwellTime  int
	Timepoint         bool
}

type patternHaltJSON struct {
	StopID            *string `json:"stopId,omitempty"`
	LocationID        *string `json:"locationId,omitempty"`
	LocationGroupID   *string `json:"locationGroupId,omitempty"`
	DefaultTravelTime int     `json:"defaultTravelTime"`
	DefaultDwellTime  int     `json:"defaultDwellTime"`
	Timepoint         bool    `json:"timepoint"`
}

func (h PatternHalt) MarshalJSON() ([]byte, error) {
	out := patternHaltJSON{
		DefaultTravelTime: h.DefaultTravelTime,
		DefaultDwellTime:  h.DefaultDwellTime,
		Timepoint:         h.Timepoint,
	}
	switch ref := h.Ref.(type) {
	case StopRef:
		out.StopID = &ref.StopID
	case LocationRef:
		out.LocationID = &ref.LocationID
	case LocationGroupRef:
		out.LocationGroupID = &ref.LocationGroupID
	case nil:
	}
	return json.Marshal(out)
}

func (h *PatternHalt) UnmarshalJSON(b []byte) error {
	var in patternHaltJSON
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}

	set := 0
	var ref HaltRef
	if in.StopID != nil && *in.StopID != "" {
		set++
		ref = StopRef{StopID: *in.StopID}
	}
	if in.LocationID != nil && *in.LocationID != "" {
		set++
		ref = LocationRef{LocationID: *in.LocationID}
	}
	if in.LocationGroupID != nil && *in.LocationGroupID != "" {
		set++
		ref = LocationGroupRef{LocationGroupID: *in.LocationGroupID}
	}
	if set > 1 {
		return ErrAmbiguousHaltRef
	}

	*h = PatternHalt{
		Ref:               ref,
		DefaultTravelTime: in.DefaultTravelTime,
		DefaultDwellTime:  in.DefaultDwellTime,
		Timepoint:         in.Timepoint,
	}
	return nil
}
