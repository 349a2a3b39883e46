package models

// BookingType mirrors booking_rules.txt booking_type.
type BookingType int

const (
	BookingRealTime BookingType = 0
	BookingSameDay  BookingType = 1
	BookingPriorDay BookingType = 2
)

// BookingRule is a GTFS-Flex booking rule. Optional fields are empty strings
// when unset, matching how the editor submits form values.
type BookingRule struct {
	ID                     string      `json:"booking_rule_id"`
	BookingType            BookingType `json:"booking_type"`
	PriorNoticeDurationMin string      `json:"prior_notice_duration_min"`
	PriorNoticeDurationMax string      `json:"prior_notice_duration_max"`
	PriorNoticeLastDay     string      `json:"prior_notice_last_day"`
	PriorNoticeLastTime    string      `json:"prior_notice_last_time"`
	PriorNoticeStartDay    string      `json:"prior_notice_start_day"`
	PriorNoticeStartTime   string      `json:"prior_notice_start_time"`
	PriorNoticeServiceID   string      `json:"prior_notice_service_id"`
	Message                string      `json:"message"`
	PhoneNumber            string      `json:"phone_number"`
	InfoURL                string      `json:"info_url"`
	BookingURL             string      `json:"booking_url"`
}

// FieldValue returns the submitted value for a booking_rules.txt column.
func (r BookingRule) FieldValue(field string) string {
	switch field {
	case "prior_notice_duration_min":
		return r.PriorNoticeDurationMin
	case "prior_notice_duration_max":
		return r.PriorNoticeDurationMax
	case "prior_notice_last_day":
		return r.PriorNoticeLastDay
	case "prior_notice_last_time":
		return r.PriorNoticeLastTime
	case "prior_notice_start_day":
		return r.PriorNoticeStartDay
	case "prior_notice_start_time":
		return r.PriorNoticeStartTime
	case "prior_notice_service_id":
		return r.PriorNoticeServiceID
	default:
		return ""
	}
}
