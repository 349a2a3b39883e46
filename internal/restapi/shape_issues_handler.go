package restapi

import (
	"math"
	"net/http"
	"strconv"

	"editor.datatools.dev/internal/models"
	"editor.datatools.dev/internal/utils"
)

type shapeIssuesEntry struct {
	models.ShapeIssuesEntry
	Summary               string   `json:"summary,omitempty"`
	Details               []string `json:"details"`
	ZeroTravelTimeWarning string   `json:"zeroTravelTimeWarning,omitempty"`
}

func (api *RestAPI) shapeIssuesHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := api.pathID(w, r)
	if !ok {
		return
	}

	var threshold float64
	if raw := r.URL.Query().Get("threshold"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err == nil {
			err = utils.ValidateThreshold(parsed)
		}
		if err != nil {
			api.validationErrorResponse(w, r, map[string][]string{
				"threshold": {api.messages(r, "EditShapePanel").Get("invalidThreshold")},
			})
			return
		}
		threshold = parsed
	}

	report, err := api.GtfsManager.ShapeIssues(r.Context(), id, threshold)
	if err != nil {
		api.editorErrorResponse(w, r, err)
		return
	}

	pattern, err := api.GtfsManager.Pattern(r.Context(), id)
	if err != nil {
		api.editorErrorResponse(w, r, err)
		return
	}
	references := api.GtfsManager.References(pattern.Halts)

	entry := shapeIssuesEntry{ShapeIssuesEntry: report, Details: []string{}}
	panel := api.messages(r, "EditShapePanel")
	if len(report.Issues) > 0 {
		entry.Summary = panel.Format("stopsTooFar", map[string]string{
			"threshold": strconv.FormatFloat(report.ThresholdMeters, 'f', -1, 64),
		})
		for _, issue := range report.Issues {
			entry.Details = append(entry.Details, panel.Format("stopTooFar", map[string]string{
				"index":    strconv.Itoa(issue.HaltIndex + 1),
				"name":     haltName(references, issue.HaltKind, issue.HaltID),
				"distance": strconv.Itoa(int(math.Round(issue.Distance))),
			}))
		}
	}
	if len(report.ZeroTravelTime) > 0 {
		entry.ZeroTravelTimeWarning = api.messages(r, "PatternStopCard").Get("zeroTravelTime")
	}

	api.sendResponse(w, r, models.NewEntryResponse(entry, references))
}

// haltName is the display name of a referenced halt, or its id when the
// name is unknown.
func haltName(refs models.ReferencesModel, kind models.HaltKind, id string) string {
	name := ""
	switch kind {
	case models.HaltKindStop:
		for _, s := range refs.Stops {
			if s.ID == id {
				name = s.Name
			}
		}
	case models.HaltKindLocation:
		for _, l := range refs.Locations {
			if l.ID == id {
				name = l.Name
			}
		}
	case models.HaltKindLocationGroup:
		for _, g := range refs.LocationGroups {
			if g.ID == id {
				name = g.Name
			}
		}
	}
	if name == "" {
		return id
	}
	return name
}
