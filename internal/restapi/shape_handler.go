package restapi

import (
	"net/http"

	"editor.datatools.dev/internal/models"
	"editor.datatools.dev/internal/patterns"
)

// generateShapeHandler rebuilds a pattern's shape from its control points.
// The body is optional and defaults to straight lines.
func (api *RestAPI) generateShapeHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := api.pathID(w, r)
	if !ok {
		return
	}

	var opts patterns.Options
	if !api.decodeJSONBody(w, r, &opts) {
		return
	}

	pattern, err := api.GtfsManager.GenerateShape(r.Context(), id, opts)
	if err != nil {
		api.editorErrorResponse(w, r, err)
		return
	}

	api.sendPattern(w, r, pattern)
}

func (api *RestAPI) deleteShapeHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := api.pathID(w, r)
	if !ok {
		return
	}

	pattern, err := api.GtfsManager.DeleteShape(r.Context(), id)
	if err != nil {
		api.editorErrorResponse(w, r, err)
		return
	}

	response := models.NewEntryResponse(pattern, api.GtfsManager.References(pattern.Halts))
	response.Text = api.messages(r, "EditShapePanel").Get("shapeDeleted")
	api.sendResponse(w, r, response)
}

func (api *RestAPI) shapeHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := api.pathID(w, r)
	if !ok {
		return
	}

	shape, err := api.GtfsManager.Shape(r.Context(), id)
	if err != nil {
		api.editorErrorResponse(w, r, err)
		return
	}

	api.sendResponse(w, r, models.NewEntryResponse(shape, models.NewEmptyReferences()))
}
