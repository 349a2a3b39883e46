package restapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"editor.datatools.dev/gtfsdb"
	"editor.datatools.dev/internal/logging"
	"editor.datatools.dev/internal/models"
	"editor.datatools.dev/internal/patterns"
)

// invalidAPIKeyResponse sends a 401 Unauthorized response with the required format
// for invalid API key errors
func (api *RestAPI) invalidAPIKeyResponse(w http.ResponseWriter, r *http.Request) {
	response := struct {
		Code        int    `json:"code"`
		CurrentTime int64  `json:"currentTime"`
		Text        string `json:"text"`
		Version     int    `json:"version"`
	}{
		Code:        http.StatusUnauthorized,
		CurrentTime: models.ResponseCurrentTime(),
		Text:        api.messages(r, "Errors").Get("invalidApiKey"),
		Version:     1,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	err := json.NewEncoder(w).Encode(response)
	if err != nil {
		api.logger().Error("failed to encode invalid API key response", "error", err)
	}
}

func (api *RestAPI) serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	logging.LogError(logging.FromContext(r.Context()), "request failed", err,
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path))

	response := struct {
		Code        int    `json:"code"`
		CurrentTime int64  `json:"currentTime"`
		Text        string `json:"text"`
		Version     int    `json:"version"`
	}{
		Code:        http.StatusInternalServerError,
		CurrentTime: models.ResponseCurrentTime(),
		Text:        api.messages(r, "Errors").Get("serverError"),
		Version:     1,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	encoderErr := json.NewEncoder(w).Encode(response)
	if encoderErr != nil {
		api.logger().Error("failed to encode server error response", "error", encoderErr)
	}
}

// validationErrorResponse sends a 400 Bad Request response with field-specific validation errors
func (api *RestAPI) validationErrorResponse(w http.ResponseWriter, r *http.Request, fieldErrors map[string][]string) {
	response := struct {
		Code        int                 `json:"code"`
		CurrentTime int64               `json:"currentTime"`
		Text        string              `json:"text"`
		Version     int                 `json:"version"`
		FieldErrors map[string][]string `json:"fieldErrors"`
	}{
		Code:        http.StatusBadRequest,
		CurrentTime: models.ResponseCurrentTime(),
		Text:        api.messages(r, "Errors").Get("badRequest"),
		Version:     2,
		FieldErrors: fieldErrors,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	err := json.NewEncoder(w).Encode(response)
	if err != nil {
		api.logger().Error("failed to encode validation error response", "error", err)
	}
}

func (api *RestAPI) methodNotAllowedResponse(w http.ResponseWriter, r *http.Request) {
	api.sendStatus(w, r, http.StatusMethodNotAllowed, "method not allowed")
}

// editorErrorResponse maps errors from pattern edits to a status code.
func (api *RestAPI) editorErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	shapePanel := api.messages(r, "EditShapePanel")

	switch {
	case errors.Is(err, gtfsdb.ErrNotFound):
		api.sendNotFound(w, r)
	case errors.Is(err, patterns.ErrInvalidArgument), errors.Is(err, models.ErrFirstHaltTravelTime):
		api.sendStatus(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, patterns.ErrSuperseded):
		api.sendStatus(w, r, http.StatusConflict, shapePanel.Get("superseded"))
	case errors.Is(err, patterns.ErrNoGeometry):
		api.sendStatus(w, r, http.StatusUnprocessableEntity, shapePanel.Get("unreachable"))
	case errors.Is(err, context.Canceled):
		// client closed the request
		w.WriteHeader(499)
	default:
		api.serverErrorResponse(w, r, err)
	}
}

func (api *RestAPI) logger() *slog.Logger {
	if api.Logger != nil {
		return api.Logger
	}
	return slog.Default()
}
