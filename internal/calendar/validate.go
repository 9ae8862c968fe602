package calendar

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Query is the raw, untyped query input as it arrives from the transport.
// All fields are optional strings.
type Query struct {
	Days  string
	Hours string
	Date  string
}

// Request is a validated calculation request. At least one of Days/Hours is
// positive; Start is nil when the caller wants "now".
type Request struct {
	Days  int
	Hours int
	Start *time.Time
}

// Validation error kinds surfaced to clients.
const (
	KindMissingParameter = "MissingParameter"
	KindInvalidDays      = "InvalidDays"
	KindInvalidHours     = "InvalidHours"
	KindInvalidDate      = "InvalidDate"
)

// Error is a client input error with a stable kind for the wire taxonomy.
type Error struct {
	Kind    string
	Message string
}

func (e *Error) Error() string { return e.Message }

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(\.\d{3})?Z$`)

const (
	layoutSeconds = "2006-01-02T15:04:05Z"
	layoutMillis  = "2006-01-02T15:04:05.000Z"
)

// ParseQuery validates raw query input with a fixed rule order: presence of
// days/hours, then days, then hours, then date. The first failing rule wins
// and no calendar math runs on malformed input.
func ParseQuery(raw Query) (Request, error) {
	if raw.Days == "" && raw.Hours == "" {
		return Request{}, &Error{
			Kind:    KindMissingParameter,
			Message: "at least one of days or hours must be provided",
		}
	}

	var req Request

	if raw.Days != "" {
		n, err := strconv.Atoi(raw.Days)
		if err != nil || n <= 0 {
			return Request{}, &Error{Kind: KindInvalidDays, Message: "days must be a positive integer"}
		}
		req.Days = n
	}

	if raw.Hours != "" {
		n, err := strconv.Atoi(raw.Hours)
		if err != nil || n <= 0 {
			return Request{}, &Error{Kind: KindInvalidHours, Message: "hours must be a positive integer"}
		}
		req.Hours = n
	}

	if raw.Date != "" {
		t, err := parseInstant(raw.Date)
		if err != nil {
			return Request{}, &Error{
				Kind:    KindInvalidDate,
				Message: "date must be an ISO 8601 UTC instant with Z suffix (e.g. 2025-08-01T14:00:00.000Z)",
			}
		}
		req.Start = &t
	}

	return req, nil
}

// parseInstant accepts YYYY-MM-DDTHH:mm:ss[.SSS]Z and rejects everything
// else, including offsets and impossible calendar dates.
func parseInstant(s string) (time.Time, error) {
	if !datePattern.MatchString(s) {
		return time.Time{}, &Error{Kind: KindInvalidDate, Message: "malformed instant"}
	}
	layout := layoutSeconds
	if strings.Contains(s, ".") {
		layout = layoutMillis
	}
	t, err := time.Parse(layout, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
