package events

import (
	"strings"
	"time"

	"github.com/agentstation/congressmap/pkg/constants"
	"github.com/agentstation/congressmap/pkg/errors"
)

// Date is a calendar date in canonical YYYY-MM-DD form. Canonical dates
// compare lexically in chronological order.
type Date string

// ParseDate parses s as a calendar date. Full RFC 3339 timestamps are
// accepted and truncated to their date.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", errors.NewValidationError("date", s, "empty date")
	}
	if t, err := time.Parse(constants.DateLayout, s); err == nil {
		return Date(t.Format(constants.DateLayout)), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return Date(t.Format(constants.DateLayout)), nil
	}
	return "", errors.NewValidationError("date", s, "not a YYYY-MM-DD date")
}

// Today returns the UTC calendar date of now.
func Today(now time.Time) Date {
	return Date(now.UTC().Format(constants.DateLayout))
}

// String returns the date text.
func (d Date) String() string {
	return string(d)
}

// IsZero reports whether the date is unset.
func (d Date) IsZero() bool {
	return d == ""
}

// Before reports whether d sorts strictly before o.
func (d Date) Before(o Date) bool {
	return d < o
}

// Year returns the calendar year of d, or 0 when d is not canonical.
func (d Date) Year() int {
	t, err := time.Parse(constants.DateLayout, string(d))
	if err != nil {
		return 0
	}
	return t.Year()
}
