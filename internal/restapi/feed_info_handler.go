package restapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"editor.datatools.dev/gtfsdb"
	"editor.datatools.dev/internal/models"
)

type feedInfoEntry struct {
	FileSource              string   `json:"fileSource"`
	FileHash                string   `json:"fileHash"`
	ImportTime              int64    `json:"importTime"`
	LastUpdated             int64    `json:"lastUpdated"`
	Lat                     float64  `json:"lat"`
	Lon                     float64  `json:"lon"`
	LatSpan                 float64  `json:"latSpan"`
	LonSpan                 float64  `json:"lonSpan"`
	PatternCount            int      `json:"patternCount"`
	ShapeFitThresholdMeters float64  `json:"shapeFitThresholdMeters"`
	Locales                 []string `json:"locales"`
}

// feedInfoHandler describes the loaded feed: where it came from, when it
// was imported and the map region its stops cover.
func (api *RestAPI) feedInfoHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	manager := api.GtfsManager

	entry := feedInfoEntry{
		ShapeFitThresholdMeters: manager.ShapeFitThreshold(),
		Locales:                 []string{},
	}

	metadata, err := manager.GtfsDB.GetImportMetadata(ctx)
	switch {
	case err == nil:
		entry.FileSource = metadata.FileSource
		entry.FileHash = metadata.FileHash
		entry.ImportTime = time.Unix(0, metadata.ImportTime).UnixMilli()
	case !errors.Is(err, gtfsdb.ErrNotFound):
		api.serverErrorResponse(w, r, err)
		return
	}

	headers, err := manager.Patterns(ctx)
	if err != nil {
		api.serverErrorResponse(w, r, err)
		return
	}
	entry.PatternCount = len(headers)

	entry.Lat, entry.Lon, entry.LatSpan, entry.LonSpan = manager.GetRegionBounds()
	if updated := manager.LastUpdated(); !updated.IsZero() {
		entry.LastUpdated = updated.UnixMilli()
	}
	for _, tag := range api.catalog().Locales() {
		entry.Locales = append(entry.Locales, tag.String())
	}

	api.sendResponse(w, r, models.NewEntryResponse(entry, models.NewEmptyReferences()))
}

func (api *RestAPI) healthHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if api.GtfsManager == nil || api.GtfsManager.GtfsDB.DB.PingContext(ctx) != nil {
		api.sendStatus(w, r, http.StatusServiceUnavailable, "unavailable")
		return
	}
	api.sendResponse(w, r, models.NewOKResponse(map[string]string{"status": "ok"}))
}
