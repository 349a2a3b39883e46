package webui

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/davecgh/go-spew/spew"

	"editor.datatools.dev/internal/logging"
	"editor.datatools.dev/internal/models"
)

//go:embed debug_index.html
var templateFS embed.FS

var debugTemplate = template.Must(template.ParseFS(templateFS, "debug_index.html"))

var dataTypes = []string{"import", "tables", "patterns", "pattern", "trips"}

type debugData struct {
	Title string
	Pre   string
	Key   string
	Links []string
}

type tripTimes struct {
	TripID    string
	ServiceID string
	Times     []string
}

// timetable renders stop times as arrival/departure clock pairs.
func timetable(trips []models.Trip) []tripTimes {
	out := make([]tripTimes, 0, len(trips))
	for _, trip := range trips {
		times := make([]string, len(trip.StopTimes))
		for i, st := range trip.StopTimes {
			times[i] = models.FormatGTFSTime(st.Arrival) + " / " + models.FormatGTFSTime(st.Departure)
		}
		out = append(out, tripTimes{TripID: trip.ID, ServiceID: trip.ServiceID, Times: times})
	}
	return out
}

func (webUI *WebUI) writeDebugData(w http.ResponseWriter, r *http.Request, title string, data interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := debugTemplate.Execute(w, debugData{
		Title: title,
		Pre:   spew.Sdump(data),
		Key:   r.URL.Query().Get("key"),
		Links: dataTypes,
	})
	if err != nil {
		logging.LogError(logging.FromContext(r.Context()), "failed to render debug page", err)
	}
}

func (webUI *WebUI) debugIndexHandler(w http.ResponseWriter, r *http.Request) {
	if webUI.RequestHasInvalidAPIKey(r) {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	ctx := r.Context()
	query := r.URL.Query()
	manager := webUI.GtfsManager

	var (
		data  interface{}
		title string
		err   error
	)

	switch query.Get("dataType") {
	case "import":
		title = "Feed Import"
		data, err = manager.GtfsDB.GetImportMetadata(ctx)
	case "tables":
		title = "Store - Table Counts"
		data, err = manager.GtfsDB.TableCounts()
	case "patterns":
		title = "Patterns"
		data, err = manager.Patterns(ctx)
	case "pattern":
		title = "Pattern " + query.Get("id")
		data, err = manager.Pattern(ctx, query.Get("id"))
	case "trips":
		title = "Trips for Pattern " + query.Get("id")
		var trips []models.Trip
		trips, err = manager.GtfsDB.ListTripsForPattern(ctx, query.Get("id"))
		data = timetable(trips)
	default:
		title = "Debug Index"
		data = map[string]interface{}{
			"dataTypes": dataTypes,
			"hint":      "pattern and trips take an id parameter",
		}
	}

	if err != nil {
		data = map[string]string{"error": err.Error()}
	}

	webUI.writeDebugData(w, r, title, data)
}
