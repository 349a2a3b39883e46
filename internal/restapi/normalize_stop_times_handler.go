package restapi

import (
	"net/http"
	"strconv"

	"editor.datatools.dev/internal/models"
)

type normalizeRequest struct {
	StartIndex  int  `json:"startIndex"`
	Interpolate bool `json:"interpolate"`
}

type normalizeEntry struct {
	models.NormalizeResultEntry
	Message string `json:"message"`
}

func (api *RestAPI) normalizeStopTimesHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := api.pathID(w, r)
	if !ok {
		return
	}

	var req normalizeRequest
	if !api.decodeJSONBody(w, r, &req) {
		return
	}

	pattern, err := api.GtfsManager.Pattern(r.Context(), id)
	if err != nil {
		api.editorErrorResponse(w, r, err)
		return
	}

	modal := api.messages(r, "NormalizeStopTimesModal")
	if req.StartIndex < 0 || req.StartIndex >= len(pattern.Halts) {
		api.validationErrorResponse(w, r, map[string][]string{
			"startIndex": {modal.Format("invalidStartIndex", map[string]string{
				"count": strconv.Itoa(len(pattern.Halts)),
			})},
		})
		return
	}
	if req.Interpolate && pattern.TimepointsFrom(req.StartIndex) < 2 {
		api.validationErrorResponse(w, r, map[string][]string{
			"interpolate": {modal.Get("tooFewTimepoints")},
		})
		return
	}

	result, err := api.GtfsManager.NormalizeStopTimes(r.Context(), id, req.StartIndex, req.Interpolate)
	if err != nil {
		api.editorErrorResponse(w, r, err)
		return
	}

	entry := normalizeEntry{
		NormalizeResultEntry: result,
		Message: modal.Format("tripsUpdated", map[string]string{
			"count": strconv.Itoa(result.TripsUpdated),
		}),
	}
	api.sendResponse(w, r, models.NewEntryResponse(entry, models.NewEmptyReferences()))
}
