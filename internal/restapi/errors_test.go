package restapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"editor.datatools.dev/gtfsdb"
	"editor.datatools.dev/internal/app"
	"editor.datatools.dev/internal/models"
	"editor.datatools.dev/internal/patterns"
)

func TestServerErrorResponse(t *testing.T) {
	api := &RestAPI{Application: &app.Application{}}

	r := httptest.NewRequest("GET", "/test", nil)
	rr := httptest.NewRecorder()

	api.serverErrorResponse(rr, r, errors.New("test server error"))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var response struct {
		Code        int    `json:"code"`
		CurrentTime int64  `json:"currentTime"`
		Text        string `json:"text"`
		Version     int    `json:"version"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))

	assert.Equal(t, http.StatusInternalServerError, response.Code)
	assert.Equal(t, "internal server error", response.Text)
	assert.Equal(t, 1, response.Version)

	now := time.Now().UnixNano() / int64(time.Millisecond)
	assert.InDelta(t, now, response.CurrentTime, 5000, "timestamp out of reasonable range")
}

func TestEditorErrorResponseStatusCodes(t *testing.T) {
	api := &RestAPI{Application: &app.Application{}}

	tests := []struct {
		name   string
		err    error
		status int
		text   string
	}{
		{"not found", fmt.Errorf("pattern: %w", gtfsdb.ErrNotFound), http.StatusNotFound, "resource not found"},
		{"invalid argument", fmt.Errorf("%w: start index 9", patterns.ErrInvalidArgument), http.StatusBadRequest, "invalid argument: start index 9"},
		{"first halt travel", models.ErrFirstHaltTravelTime, http.StatusBadRequest, models.ErrFirstHaltTravelTime.Error()},
		{"superseded", patterns.ErrSuperseded, http.StatusConflict, "A newer shape request for this pattern replaced this one."},
		{"no geometry", patterns.ErrNoGeometry, http.StatusUnprocessableEntity, "Could not derive geometry from halts. Some halts may be unreachable by the street network."},
		{"other", errors.New("disk on fire"), http.StatusInternalServerError, "internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/api/editor/pattern/P", nil)
			rr := httptest.NewRecorder()

			api.editorErrorResponse(rr, r, tt.err)

			assert.Equal(t, tt.status, rr.Code)
			var response models.ResponseModel
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))
			assert.Equal(t, tt.status, response.Code)
			assert.Equal(t, tt.text, response.Text)
		})
	}
}
