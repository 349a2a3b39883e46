package restapi

import (
	"net/http"
	"slices"

	"editor.datatools.dev/internal/booking"
	"editor.datatools.dev/internal/models"
)

type bookingRuleRequest struct {
	BookingRule models.BookingRule `json:"bookingRule"`
	// Field restricts validation to one column. Value overrides the rule's
	// value for that column, as when a form field is being edited.
	Field string  `json:"field"`
	Value *string `json:"value"`
}

type bookingRuleEntry struct {
	Valid  bool            `json:"valid"`
	Issues []booking.Issue `json:"issues"`
}

func (api *RestAPI) validateBookingRuleHandler(w http.ResponseWriter, r *http.Request) {
	var req bookingRuleRequest
	if !api.decodeJSONBody(w, r, &req) {
		return
	}

	fieldErrors := map[string][]string{}
	switch req.BookingRule.BookingType {
	case models.BookingRealTime, models.BookingSameDay, models.BookingPriorDay:
	default:
		fieldErrors["bookingRule.booking_type"] = []string{"booking_type must be 0, 1 or 2"}
	}
	if req.Field != "" && !slices.Contains(booking.Fields, req.Field) {
		fieldErrors["field"] = []string{"unknown booking rule field"}
	}
	if len(fieldErrors) > 0 {
		api.validationErrorResponse(w, r, fieldErrors)
		return
	}

	messages := api.messages(r, booking.Component)
	var issues []booking.Issue
	if req.Field == "" {
		issues = booking.ValidateAll(req.BookingRule, messages)
	} else {
		value := req.BookingRule.FieldValue(req.Field)
		if req.Value != nil {
			value = *req.Value
		}
		issues = booking.Validate(req.BookingRule, req.Field, value, messages)
		if issues == nil {
			issues = []booking.Issue{}
		}
	}

	entry := bookingRuleEntry{Valid: len(issues) == 0, Issues: issues}
	api.sendResponse(w, r, models.NewEntryResponse(entry, models.NewEmptyReferences()))
}
