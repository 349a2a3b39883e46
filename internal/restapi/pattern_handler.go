package restapi

import (
	"net/http"

	"editor.datatools.dev/internal/models"
)

type patternSummary struct {
	ID       string `json:"id"`
	RouteID  string `json:"routeId"`
	Name     string `json:"name"`
	ShapeID  string `json:"shapeId,omitempty"`
	HasShape bool   `json:"hasShape"`
}

func (api *RestAPI) patternsHandler(w http.ResponseWriter, r *http.Request) {
	headers, err := api.GtfsManager.Patterns(r.Context())
	if err != nil {
		api.serverErrorResponse(w, r, err)
		return
	}

	list := make([]patternSummary, 0, len(headers))
	for _, p := range headers {
		list = append(list, patternSummary{
			ID:       p.ID,
			RouteID:  p.RouteID,
			Name:     p.Name,
			ShapeID:  p.ShapeID,
			HasShape: p.ShapeID != "",
		})
	}

	api.sendResponse(w, r, models.NewListResponse(list, models.NewEmptyReferences()))
}

func (api *RestAPI) patternHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := api.pathID(w, r)
	if !ok {
		return
	}

	pattern, err := api.GtfsManager.Pattern(r.Context(), id)
	if err != nil {
		api.editorErrorResponse(w, r, err)
		return
	}

	api.sendPattern(w, r, pattern)
}

func (api *RestAPI) sendPattern(w http.ResponseWriter, r *http.Request, pattern models.Pattern) {
	references := api.GtfsManager.References(pattern.Halts)
	api.sendResponse(w, r, models.NewEntryResponse(pattern, references))
}
