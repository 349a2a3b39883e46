package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
)

func TestPathID(t *testing.T) {
	testCases := []struct {
		name string
		path string
		want string
	}{
		{name: "plain", path: "123", want: "123"},
		{name: "json suffix", path: "456.json", want: "456"},
		{name: "dots kept", path: "789.data.json", want: "789.data"},
		{name: "json in the middle", path: "a.json.b", want: "a.json.b"},
		{name: "pattern id with colon", path: "R1:2", want: "R1:2"},
		{name: "escaped space trimmed", path: "R1:2%20", want: "R1:2"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			router := httprouter.New()

			var got string
			router.Handler(http.MethodGet, "/api/test/:id", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = PathID(r, "id")
				w.WriteHeader(http.StatusOK)
			}))

			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/test/"+tc.path, nil))

			assert.Equal(t, http.StatusOK, rr.Code)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestPathIDWithoutRouter(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/test/123", nil)
	assert.Equal(t, "", PathID(req, "id"))
}
