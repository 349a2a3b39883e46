package restapi

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

type handlerFunc func(w http.ResponseWriter, r *http.Request)

func validateAPIKey(api *RestAPI, finalHandler handlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if api.RequestHasInvalidAPIKey(r) {
			api.invalidAPIKeyResponse(w, r)
			return
		}
		finalHandler(w, r)
	})
}

func (api *RestAPI) SetRoutes(router *httprouter.Router) {
	router.Handler(http.MethodGet, "/healthz", http.HandlerFunc(api.healthHandler))
	if api.Metrics != nil {
		router.Handler(http.MethodGet, "/metrics", api.Metrics.Handler())
	}

	router.Handler(http.MethodGet, "/api/editor/feed-info", validateAPIKey(api, api.feedInfoHandler))
	router.Handler(http.MethodGet, "/api/editor/patterns", validateAPIKey(api, api.patternsHandler))
	router.Handler(http.MethodGet, "/api/editor/pattern/:id", validateAPIKey(api, api.patternHandler))
	router.Handler(http.MethodPost, "/api/editor/pattern/:id/shape", validateAPIKey(api, api.generateShapeHandler))
	router.Handler(http.MethodDelete, "/api/editor/pattern/:id/shape", validateAPIKey(api, api.deleteShapeHandler))
	router.Handler(http.MethodGet, "/api/editor/pattern/:id/shape-issues", validateAPIKey(api, api.shapeIssuesHandler))
	router.Handler(http.MethodPost, "/api/editor/pattern/:id/normalize-stop-times", validateAPIKey(api, api.normalizeStopTimesHandler))
	router.Handler(http.MethodGet, "/api/editor/shape/:id", validateAPIKey(api, api.shapeHandler))
	router.Handler(http.MethodPost, "/api/editor/booking-rule/validate", validateAPIKey(api, api.validateBookingRuleHandler))

	router.NotFound = http.HandlerFunc(api.sendNotFound)
	router.MethodNotAllowed = http.HandlerFunc(api.methodNotAllowedResponse)
}
