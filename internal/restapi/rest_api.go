package restapi

import (
	"net/http"
	"sync"
	"time"

	"github.com/julienschmidt/httprouter"

	"editor.datatools.dev/internal/app"
	"editor.datatools.dev/internal/i18n"
)

type RestAPI struct {
	*app.Application
	rateLimiter *RateLimitMiddleware
}

// NewRestAPI creates a new RestAPI instance with initialized rate limiter
func NewRestAPI(app *app.Application) *RestAPI {
	if app.Messages == nil {
		app.Messages = defaultCatalog()
	}
	return &RestAPI{
		Application: app,
		rateLimiter: NewRateLimitMiddleware(app.Config.RateLimit, time.Second, app.Config.ExemptApiKeys),
	}
}

// Handler returns the router wrapped in the middleware stack: request
// logging, security headers, compression and finally rate limiting. extra
// registers additional routes on the same router.
func (api *RestAPI) Handler(extra ...func(*httprouter.Router)) http.Handler {
	router := httprouter.New()
	api.SetRoutes(router)
	for _, register := range extra {
		register(router)
	}

	var handler http.Handler = router
	if api.rateLimiter != nil {
		handler = api.rateLimiter.Handler(handler)
	}
	handler = CompressionMiddleware(handler)
	handler = api.WithSecurityHeaders(handler)
	return NewRequestLoggingMiddleware(api.logger())(handler)
}

// Shutdown stops the rate limiter's cleanup goroutine.
func (api *RestAPI) Shutdown() {
	if api.rateLimiter != nil {
		api.rateLimiter.Stop()
	}
}

// messages resolves a message component in the request's preferred locale.
func (api *RestAPI) messages(r *http.Request, component string) i18n.Messages {
	catalog := api.catalog()
	return catalog.Messages(catalog.Match(r.Header.Get("Accept-Language")), component)
}

var defaultCatalog = sync.OnceValue(i18n.MustLoad)

func (api *RestAPI) catalog() *i18n.Catalog {
	if api.Messages != nil {
		return api.Messages
	}
	return defaultCatalog()
}
