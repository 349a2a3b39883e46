package models

import "encoding/json"

type ControlPointKind string

const (
	ControlPointStop ControlPointKind = "STOP"
	ControlPointFree ControlPointKind = "POINT"
)

// ControlPoint is a vertex of a pattern's shape. Stop control points anchor
// the shape to a halt; HaltIndex is -1 for free points.
type ControlPoint struct {
	Point     Coordinate
	Distance  float64
	Kind      ControlPointKind
	HaltIndex int
	Halt      HaltRef
}

// IsStop reports whether the control point is anchored to a halt.
func (cp ControlPoint) IsStop() bool {
	return cp.Kind == ControlPointStop && cp.Halt != nil && cp.HaltIndex >= 0
}

type controlPointJSON struct {
	Point     Coordinate       `json:"point"`
	Distance  float64          `json:"distance"`
	PointType ControlPointKind `json:"pointType"`
	HaltIndex *int             `json:"stopSequence,omitempty"`
	HaltKind  HaltKind         `json:"haltKind,omitempty"`
	HaltID    string           `json:"haltId,omitempty"`
}

func (cp ControlPoint) MarshalJSON() ([]byte, error) {
	out := controlPointJSON{
		Point:     cp.Point,
		Distance:  cp.Distance,
		PointType: cp.Kind,
	}
	if cp.IsStop() {
		idx := cp.HaltIndex
		out.HaltIndex = &idx
		out.HaltKind = cp.Halt.Kind()
		out.HaltID = cp.Halt.RefID()
	}
	return json.Marshal(out)
}

func (cp *ControlPoint) UnmarshalJSON(b []byte) error {
	var in controlPointJSON
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}
	ref, err := NewHaltRef(in.HaltKind, in.HaltID)
	if err != nil {
		return err
	}
	*cp = ControlPoint{
		Point:     in.Point,
		Distance:  in.Distance,
		Kind:      in.PointType,
		HaltIndex: -1,
		Halt:      ref,
	}
	if in.HaltIndex != nil {
		cp.HaltIndex = *in.HaltIndex
	}
	return nil
}
