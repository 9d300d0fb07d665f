package events

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/agentstation/congressmap/pkg/authority"
	"github.com/agentstation/congressmap/pkg/errors"
)

// Known document keys.
const (
	KeyID        = "id"
	KeySeries    = "series"
	KeyYear      = "year"
	KeyType      = "type"
	KeyDate      = "date"
	KeyStartDate = "start_date"
	KeyEndDate   = "end_date"
	KeyLocation  = "location"
	KeyLink      = "link"
	KeyPriority  = "priority"
	KeyTitle     = "title"
	KeySource    = "source"
	KeyEvidence  = "evidence"
	KeyConflicts = "conflicts"
)

var knownKeys = map[string]bool{
	KeyID: true, KeySeries: true, KeyYear: true, KeyType: true,
	KeyDate: true, KeyStartDate: true, KeyEndDate: true,
	KeyLocation: true, KeyLink: true, KeyPriority: true, KeyTitle: true,
	KeySource: true, KeyEvidence: true, KeyConflicts: true,
}

// Document renders e as its flat feed document. Extra keys are included
// unless a modeled field of the same name takes precedence.
func (e Event) Document() map[string]any {
	doc := make(map[string]any, len(e.Extra)+12)
	for k, v := range e.Extra {
		doc[k] = v
	}
	if e.ID != "" {
		doc[KeyID] = e.ID
	}
	doc[KeySeries] = e.Series
	doc[KeyYear] = e.Year
	doc[KeyType] = string(e.Type)
	switch w := e.When.(type) {
	case Span:
		doc[KeyStartDate] = string(w.Start)
		doc[KeyEndDate] = string(w.End)
	case Day:
		doc[KeyDate] = string(w.Date)
	}
	doc[KeyLocation] = e.Location
	doc[KeyLink] = e.Link
	doc[KeyPriority] = e.Priority
	if e.Title != nil {
		doc[KeyTitle] = *e.Title
	}
	if e.Source != "" {
		doc[KeySource] = string(e.Source)
	}
	if e.Evidence != nil {
		doc[KeyEvidence] = *e.Evidence
	}
	if len(e.Conflicts) > 0 {
		doc[KeyConflicts] = e.Conflicts
	}
	return doc
}

// MarshalJSON implements json.Marshaler. Keys are emitted in sorted order.
func (e Event) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.Document())
}

// UnmarshalJSON implements json.Unmarshaler. Decoding is lenient about
// shape so that the validator, not the decoder, reports schema problems.
func (e *Event) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc map[string]any
	if err := dec.Decode(&doc); err != nil {
		return errors.WrapParse("json", "", err)
	}
	if doc == nil {
		return errors.NewValidationError("", nil, "event document is null")
	}
	ev, err := FromDocument(doc)
	if err != nil {
		return err
	}
	*e = ev
	return nil
}

// FromDocument builds an Event from a flat document. Dates are taken as
// written. Date keys that do not match the type's shape are kept in Extra.
func FromDocument(doc map[string]any) (Event, error) {
	var e Event
	e.ID = asString(doc[KeyID])
	e.Series = asString(doc[KeySeries])
	e.Type = Type(asString(doc[KeyType]))

	if v, ok := doc[KeyYear]; ok && v != nil {
		year, ok := asInt(v)
		if !ok {
			return Event{}, errors.NewValidationError(KeyYear, v, "year is not an integer")
		}
		e.Year = year
	}
	if v, ok := doc[KeyPriority]; ok && v != nil {
		p, ok := asInt(v)
		if !ok {
			return Event{}, errors.NewValidationError(KeyPriority, v, "priority is not an integer")
		}
		e.Priority = p
	}

	_, hasStart := doc[KeyStartDate]
	_, hasEnd := doc[KeyEndDate]
	_, hasDate := doc[KeyDate]
	matched := map[string]bool{}
	if e.Type.Ranged() {
		if hasStart || hasEnd {
			e.When = Span{Start: Date(asString(doc[KeyStartDate])), End: Date(asString(doc[KeyEndDate]))}
			matched[KeyStartDate], matched[KeyEndDate] = true, true
		}
	} else if hasDate {
		e.When = Day{Date: Date(asString(doc[KeyDate]))}
		matched[KeyDate] = true
	}

	e.Location = asString(doc[KeyLocation])
	e.Link = asString(doc[KeyLink])
	e.Source = Origin(asString(doc[KeySource]))

	titleKept := true
	switch t := doc[KeyTitle].(type) {
	case nil:
	case map[string]any:
		e.Title = &Title{EN: asString(t["en"]), PT: asString(t["pt"])}
	case string:
		e.Title = &Title{EN: t}
	default:
		titleKept = false
	}

	if m, ok := doc[KeyEvidence].(map[string]any); ok {
		e.Evidence = evidenceFrom(m)
	}
	if list, ok := doc[KeyConflicts].([]any); ok {
		e.Conflicts = conflictsFrom(list)
	}

	for k, v := range doc {
		switch {
		case k == KeyDate || k == KeyStartDate || k == KeyEndDate:
			if !matched[k] {
				e.setExtra(k, v)
			}
		case k == KeyTitle && !titleKept:
			e.setExtra(k, v)
		case k == KeyEvidence && e.Evidence == nil && v != nil:
			e.setExtra(k, v)
		case k == KeyConflicts && e.Conflicts == nil && v != nil:
			e.setExtra(k, v)
		case !knownKeys[k]:
			e.setExtra(k, v)
		}
	}
	return e, nil
}

func (e *Event) setExtra(k string, v any) {
	if e.Extra == nil {
		e.Extra = make(map[string]any)
	}
	e.Extra[k] = v
}

func evidenceFrom(m map[string]any) *Evidence {
	ev := &Evidence{
		URL:     asString(m["url"]),
		Snippet: asString(m["snippet"]),
		Field:   asString(m["field"]),
		Source:  asString(m["source"]),
	}
	if r, ok := m["role"]; ok && r != nil {
		ev.Role = authority.ParseRole(asString(r))
	}
	if v, ok := m["trust"]; ok && v != nil {
		if n, ok := asInt(v); ok {
			tr := authority.ClampTrust(n)
			ev.Trust = &tr
		}
	}
	return ev
}

func conflictsFrom(list []any) []Conflict {
	out := make([]Conflict, 0, len(list))
	for _, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			out = append(out, Conflict{Value: asString(item)})
			continue
		}
		c := Conflict{
			Value:   asString(m["value"]),
			Source:  asString(m["source"]),
			URL:     asString(m["url"]),
			Snippet: asString(m["snippet"]),
		}
		if r, ok := m["role"]; ok && r != nil {
			c.Role = authority.ParseRole(asString(r))
		}
		if n, ok := asInt(m["trust"]); ok {
			c.Trust = authority.ClampTrust(n)
		}
		out = append(out, c)
	}
	return out
}

// asString renders scalar values as text and trims surrounding space.
func asString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	case fmt.Stringer:
		return strings.TrimSpace(t.String())
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}

// asInt accepts the integer encodings produced by JSON, YAML and Go callers.
func asInt(v any) (int, bool) {
	switch t := v.(type) {
	case int:
		return t, true
	case int8:
		return int(t), true
	case int16:
		return int(t), true
	case int32:
		return int(t), true
	case int64:
		return int(t), true
	case uint:
		return int(t), true
	case uint8:
		return int(t), true
	case uint16:
		return int(t), true
	case uint32:
		return int(t), true
	case uint64:
		if t > math.MaxInt32 {
			return 0, false
		}
		return int(t), true
	case float32:
		return floatInt(float64(t))
	case float64:
		return floatInt(t)
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return int(n), true
		}
		if f, err := t.Float64(); err == nil {
			return floatInt(f)
		}
		return 0, false
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		return n, err == nil
	default:
		return 0, false
	}
}

func floatInt(f float64) (int, bool) {
	if f != math.Trunc(f) || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return int(f), true
}
