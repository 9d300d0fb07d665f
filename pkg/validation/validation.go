// Package validation checks a batch of reconciled events before publishing.
// Every check runs on every event and all problems are reported together.
package validation

import (
	"fmt"
	"strings"

	"github.com/agentstation/congressmap/pkg/events"
)

// Report is the outcome of validating a batch.
type Report struct {
	OK     bool     `json:"ok"`
	Errors []string `json:"errors"`
}

// Validate checks evs and returns every problem found, each prefixed with
// the event's index as events[i].
func Validate(evs []events.Event) Report {
	errs := []string{}
	firstAt := make(map[string]int, len(evs))

	for i, e := range evs {
		prefix := fmt.Sprintf("events[%d]", i)

		if strings.TrimSpace(e.ID) == "" {
			errs = append(errs, prefix+": missing/invalid id")
		} else if first, dup := firstAt[e.ID]; dup {
			errs = append(errs, fmt.Sprintf("%s: duplicate id=%s (first at events[%d])", prefix, e.ID, first))
		} else {
			firstAt[e.ID] = i
		}

		if strings.TrimSpace(e.Series) == "" {
			errs = append(errs, prefix+": missing/invalid series")
		}
		if strings.TrimSpace(string(e.Type)) == "" {
			errs = append(errs, prefix+": missing/invalid type")
		}
		if !e.Type.Valid() {
			errs = append(errs, fmt.Sprintf("%s: type not allowed: %q", prefix, e.Type))
		}

		if e.Type.Ranged() {
			span, ok := e.When.(events.Span)
			switch {
			case !ok || span.Start == "" || span.End == "":
				errs = append(errs, prefix+": congress missing start_date/end_date")
			case span.End.Before(span.Start):
				errs = append(errs, fmt.Sprintf("%s: congress start_date after end_date (%s > %s)", prefix, span.Start, span.End))
			}
		} else {
			day, ok := e.When.(events.Day)
			if !ok || day.Date == "" {
				errs = append(errs, prefix+": non-congress missing date")
			}
		}
	}
	return Report{OK: len(errs) == 0, Errors: errs}
}
