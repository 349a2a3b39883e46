package restapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"editor.datatools.dev/internal/utils"
)

const maxRequestBodyBytes = 1 << 20

// pathID extracts and validates the :id route parameter. On failure the
// validation response has already been written.
func (api *RestAPI) pathID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := utils.PathID(r, "id")
	if err := utils.ValidateID(id); err != nil {
		api.validationErrorResponse(w, r, map[string][]string{"id": {err.Error()}})
		return "", false
	}
	return id, true
}

// decodeJSONBody reads a JSON request body into dst. An empty body leaves
// dst untouched. On failure the validation response has already been written.
func (api *RestAPI) decodeJSONBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}

	var (
		syntaxErr   *json.SyntaxError
		typeErr     *json.UnmarshalTypeError
		maxBytesErr *http.MaxBytesError
		message     string
	)
	switch {
	case errors.As(err, &syntaxErr):
		message = fmt.Sprintf("malformed JSON at offset %d", syntaxErr.Offset)
	case errors.As(err, &typeErr):
		message = fmt.Sprintf("invalid value for %q", typeErr.Field)
	case errors.As(err, &maxBytesErr):
		message = fmt.Sprintf("body must not exceed %d bytes", maxBytesErr.Limit)
	default:
		message = err.Error()
	}
	api.validationErrorResponse(w, r, map[string][]string{"body": {message}})
	return false
}
