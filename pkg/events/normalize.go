package events

import (
	"github.com/agentstation/congressmap/pkg/errors"
)

// Defaults supplies values for fields a collaborator may leave out.
type Defaults struct {
	// Series is used when the raw event has no series of its own.
	Series string
	// Priority is used when the raw event has no priority.
	Priority int
	// Origin tags the event; OriginScraped when empty.
	Origin Origin
}

// Normalize converts a collaborator payload into a typed Event. It enforces
// the shape invariant (a ranged type has start_date and end_date and no date,
// any other type has date and no range) and canonicalizes dates. Membership
// of the type in the allowed set is left to the validator.
func Normalize(raw Raw, d Defaults) (Event, error) {
	if raw == nil {
		return Event{}, errors.NewValidationError("", nil, "event is empty")
	}
	e, err := FromDocument(raw)
	if err != nil {
		return Event{}, err
	}
	e.ID = ""
	e.Type = ParseType(string(e.Type))
	if e.Series == "" {
		e.Series = d.Series
	}
	if e.Series == "" {
		return Event{}, errors.NewValidationError(KeySeries, nil, "missing series")
	}
	if e.Type == "" {
		return Event{}, errors.NewValidationError(KeyType, nil, "missing type")
	}

	start, hasStart := present(raw, KeyStartDate)
	end, hasEnd := present(raw, KeyEndDate)
	date, hasDate := present(raw, KeyDate)

	if e.Type.Ranged() {
		if hasDate {
			return Event{}, errors.NewValidationError(KeyDate, date, "ranged event must not carry date")
		}
		if !hasStart || !hasEnd {
			return Event{}, errors.NewValidationError(KeyStartDate, nil, "ranged event needs start_date and end_date")
		}
		s, err := ParseDate(start)
		if err != nil {
			return Event{}, errors.WrapValidation(KeyStartDate, err)
		}
		en, err := ParseDate(end)
		if err != nil {
			return Event{}, errors.WrapValidation(KeyEndDate, err)
		}
		e.When = Span{Start: s, End: en}
	} else {
		if hasStart || hasEnd {
			return Event{}, errors.NewValidationError(KeyStartDate, start, "point-dated event must not carry start_date or end_date")
		}
		if !hasDate {
			return Event{}, errors.NewValidationError(KeyDate, nil, "point-dated event needs date")
		}
		dd, err := ParseDate(date)
		if err != nil {
			return Event{}, errors.WrapValidation(KeyDate, err)
		}
		e.When = Day{Date: dd}
	}
	if e.Extra != nil {
		delete(e.Extra, KeyDate)
		delete(e.Extra, KeyStartDate)
		delete(e.Extra, KeyEndDate)
		if len(e.Extra) == 0 {
			e.Extra = nil
		}
	}

	if e.Year == 0 {
		e.Year = e.Anchor().Year()
	}
	if e.Year <= 0 {
		return Event{}, errors.NewValidationError(KeyYear, raw[KeyYear], "missing year")
	}
	if _, ok := raw[KeyPriority]; !ok || raw[KeyPriority] == nil {
		e.Priority = d.Priority
	}
	if e.Source == "" {
		e.Source = d.Origin
	}
	if e.Source == "" {
		e.Source = OriginScraped
	}
	return e, nil
}

// present returns the trimmed text of key and whether it is non-empty.
func present(raw Raw, key string) (string, bool) {
	v, ok := raw[key]
	if !ok || v == nil {
		return "", false
	}
	s := asString(v)
	return s, s != ""
}
