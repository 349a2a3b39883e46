// Package booking checks GTFS-Flex booking_rules.txt fields against the
// rule's booking_type.
package booking

import (
	"strconv"

	"editor.datatools.dev/internal/i18n"
	"editor.datatools.dev/internal/models"
)

// Component is the message catalog component for booking rule issues.
const Component = "BookingRuleValidation"

// Fields lists the booking_rules.txt columns with conditional presence.
var Fields = []string{
	"prior_notice_duration_min",
	"prior_notice_duration_max",
	"prior_notice_last_day",
	"prior_notice_last_time",
	"prior_notice_start_day",
	"prior_notice_start_time",
	"prior_notice_service_id",
}

// Issue is a problem with a single field.
type Issue struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// Validate checks the submitted value of one field.
func Validate(rule models.BookingRule, field, value string, messages i18n.Messages) []Issue {
	bookingType := strconv.Itoa(int(rule.BookingType))
	issue := func(key string, values map[string]string) []Issue {
		return []Issue{{Field: field, Reason: messages.Format(key, values)}}
	}
	forType := func(t string) map[string]string { return map[string]string{"bookingType": t} }
	forField := func(f string) map[string]string { return map[string]string{"field": f} }

	switch field {
	case "prior_notice_duration_min":
		if rule.BookingType == models.BookingSameDay && value == "" {
			return issue("requiredForBookingType", forType(bookingType))
		}
		if rule.BookingType != models.BookingSameDay && value != "" {
			return issue("forbiddenForBookingTypeOtherThan", forType("1"))
		}
	case "prior_notice_duration_max":
		// Only the known non-same-day types reject it.
		if value != "" && (rule.BookingType == models.BookingRealTime || rule.BookingType == models.BookingPriorDay) {
			return issue("forbiddenForBookingTypeOtherThan", forType("1"))
		}
	case "prior_notice_last_day":
		if rule.BookingType == models.BookingPriorDay && value == "" {
			return issue("requiredForBookingType", forType(bookingType))
		}
		if rule.BookingType != models.BookingPriorDay && value != "" {
			return issue("forbiddenForBookingTypeOtherThan", forType("2"))
		}
	case "prior_notice_last_time":
		if rule.BookingType == models.BookingPriorDay && rule.PriorNoticeLastDay != "" && value == "" {
			return issue("requiredIfFieldIsDefined", forField("prior_notice_last_day"))
		}
		if rule.BookingType != models.BookingPriorDay && value != "" {
			return issue("forbiddenForBookingType", forType(bookingType))
		}
	case "prior_notice_start_day":
		if rule.BookingType == models.BookingRealTime && value != "" {
			return issue("forbiddenForBookingType", forType(bookingType))
		}
		if rule.BookingType == models.BookingSameDay && rule.PriorNoticeDurationMax != "" && value != "" {
			return issue("forbiddenForBookingTypeIfDefined", map[string]string{
				"bookingType": bookingType,
				"field":       "prior_notice_duration_max",
			})
		}
	case "prior_notice_start_time":
		if rule.PriorNoticeStartDay != "" && value == "" {
			return issue("requiredIfFieldIsDefined", forField("prior_notice_start_day"))
		}
		if rule.PriorNoticeStartDay == "" && value != "" {
			return issue("forbiddenIfFieldNotDefined", forField("prior_notice_start_day"))
		}
	case "prior_notice_service_id":
		if rule.BookingType != models.BookingPriorDay && value != "" {
			return issue("forbiddenForBookingTypeOtherThan", forType("2"))
		}
	}
	return nil
}

// ValidateAll checks every conditional field of the rule.
func ValidateAll(rule models.BookingRule, messages i18n.Messages) []Issue {
	issues := []Issue{}
	for _, field := range Fields {
		issues = append(issues, Validate(rule, field, rule.FieldValue(field), messages)...)
	}
	return issues
}
