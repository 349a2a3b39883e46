package utils

import (
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"
)

// PathID returns the named route parameter with surrounding space and a
// trailing ".json" removed. Pattern ids may contain dots and colons, so only
// the suffix is stripped.
func PathID(r *http.Request, paramName string) string {
	raw := httprouter.ParamsFromContext(r.Context()).ByName(paramName)
	return strings.TrimSuffix(strings.TrimSpace(raw), ".json")
}
