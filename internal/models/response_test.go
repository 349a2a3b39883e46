package models

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewResponseStampsTime(t *testing.T) {
	before := time.Now().UnixMilli()
	response := NewResponse(http.StatusUnprocessableEntity, nil, "no geometry")
	after := time.Now().UnixMilli()

	assert.Equal(t, http.StatusUnprocessableEntity, response.Code)
	assert.Equal(t, "no geometry", response.Text)
	assert.Equal(t, 2, response.Version)
	assert.Nil(t, response.Data)
	assert.GreaterOrEqual(t, response.CurrentTime, before)
	assert.LessOrEqual(t, response.CurrentTime, after)
}

func TestNewEntryResponseCarriesReferences(t *testing.T) {
	refs := NewEmptyReferences()
	refs.Stops = append(refs.Stops, Stop{ID: "S1", Name: "Harbor Terminal", Lat: 47.6, Lon: -122.3})
	entry := NormalizeResultEntry{PatternID: "R1:1", StartIndex: 0, TripsUpdated: 2, Trips: []Trip{}}

	response := NewEntryResponse(entry, refs)
	response.CurrentTime = 1746324484528

	body, err := json.Marshal(response)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"code": 200,
		"currentTime": 1746324484528,
		"text": "OK",
		"version": 2,
		"data": {
			"entry": {"patternId": "R1:1", "startIndex": 0, "interpolated": false, "tripsUpdated": 2, "trips": []},
			"references": {
				"stops": [{"id": "S1", "name": "Harbor Terminal", "lat": 47.6, "lon": -122.3}],
				"locations": [],
				"locationGroups": []
			}
		}
	}`, string(body))
}

func TestNewListResponse(t *testing.T) {
	list := []Trip{{ID: "T1", PatternID: "R1:1", ServiceID: "weekday"}}
	response := NewListResponse(list, NewEmptyReferences())

	assert.Equal(t, http.StatusOK, response.Code)
	data, ok := response.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, list, data["list"])
	assert.Equal(t, NewEmptyReferences(), data["references"])
}

func TestNewOKResponse(t *testing.T) {
	response := NewOKResponse(map[string]int{"patterns": 3})
	assert.Equal(t, http.StatusOK, response.Code)
	assert.Equal(t, "OK", response.Text)
	assert.Equal(t, map[string]int{"patterns": 3}, response.Data)
}

func TestNewEmptyReferences(t *testing.T) {
	body, err := json.Marshal(NewEmptyReferences())
	require.NoError(t, err)
	assert.JSONEq(t, `{"stops":[],"locations":[],"locationGroups":[]}`, string(body))
}
