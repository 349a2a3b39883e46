package app

import (
	"net/http"
	"slices"
)

// APIKey returns the key query parameter of the request.
func APIKey(r *http.Request) string {
	return r.URL.Query().Get("key")
}

func (app *Application) RequestHasInvalidAPIKey(r *http.Request) bool {
	return app.IsInvalidAPIKey(APIKey(r))
}

func (app *Application) IsInvalidAPIKey(key string) bool {
	if key == "" {
		return true
	}
	return !slices.Contains(app.Config.ApiKeys, key) && !app.IsExemptAPIKey(key)
}

// IsExemptAPIKey reports whether key skips rate limiting. Exempt keys are
// also accepted as valid keys.
func (app *Application) IsExemptAPIKey(key string) bool {
	return key != "" && slices.Contains(app.Config.ExemptApiKeys, key)
}
