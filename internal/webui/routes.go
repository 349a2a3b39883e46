package webui

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"editor.datatools.dev/internal/app"
)

// WebUI serves HTML views of the editor's store for troubleshooting.
type WebUI struct {
	*app.Application
}

func (webUI *WebUI) SetWebUIRoutes(router *httprouter.Router) {
	router.Handler(http.MethodGet, "/debug/", http.HandlerFunc(webUI.debugIndexHandler))
}
