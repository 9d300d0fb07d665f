// Package overrides merges a curated override document into reconciled
// events. Overrides are keyed by event id; scalars replace, nested objects
// merge key by key and arrays are replaced wholesale.
package overrides

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/agentstation/congressmap/pkg/errors"
	"github.com/agentstation/congressmap/pkg/events"
)

// Overrides maps an event id to a partial event document.
type Overrides map[string]map[string]any

// Parse decodes an override document. A document that is not a JSON object
// yields no overrides; entries that are not objects are skipped. Both cases
// are reported as warnings.
func Parse(data []byte) (Overrides, []string, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return Overrides{}, nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, nil, errors.WrapParse("json", "", err)
	}
	obj, ok := doc.(map[string]any)
	if !ok {
		return Overrides{}, []string{"[overrides] document is not an object; ignored"}, nil
	}

	ids := make([]string, 0, len(obj))
	for id := range obj {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make(Overrides, len(obj))
	var warnings []string
	for _, id := range ids {
		entry, ok := obj[id].(map[string]any)
		if !ok {
			warnings = append(warnings, fmt.Sprintf("[overrides] entry %q is not an object; ignored", id))
			continue
		}
		out[id] = entry
	}
	return out, warnings, nil
}

// IDs returns the override ids in sorted order.
func (o Overrides) IDs() []string {
	ids := make([]string, 0, len(o))
	for id := range o {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Applied is the result of applying overrides to a batch.
type Applied struct {
	// Events are the merged events followed by injected manual events.
	Events []events.Event
	// Merged lists ids of collected events an override was applied to.
	Merged []string
	// Injected lists ids of events created from override entries alone.
	Injected []string
	// Warnings report override entries that could not be used.
	Warnings []string
}

// Apply merges overrides into evs and returns the merged batch. evs is not
// modified. Every event must already carry an id.
//
// Override entries whose id matches no event are injected as manual events
// when they describe a complete event; otherwise they produce a warning.
// An entry that does not decode onto its event is skipped with a warning
// and the event is kept unmerged.
func Apply(evs []events.Event, ovr Overrides) (Applied, error) {
	known := make(map[string]bool, len(evs))
	for i, e := range evs {
		if e.ID == "" {
			return Applied{}, errors.NewValidationError("id", i, fmt.Sprintf("events[%d]: missing id before override merge", i))
		}
		known[e.ID] = true
	}

	out := Applied{Events: make([]events.Event, 0, len(evs))}
	for _, e := range evs {
		patch, ok := ovr[e.ID]
		if !ok {
			out.Events = append(out.Events, e.Clone())
			continue
		}
		merged, err := Merge(e, patch)
		if err != nil {
			// a bad curator entry leaves the scraped event as it was
			out.Warnings = append(out.Warnings, fmt.Sprintf("[overrides] %s not applied: %v", e.ID, err))
			out.Events = append(out.Events, e.Clone())
			continue
		}
		out.Events = append(out.Events, merged)
		out.Merged = append(out.Merged, e.ID)
	}

	for _, id := range ovr.IDs() {
		if known[id] {
			continue
		}
		e, err := Manual(id, ovr[id])
		if err != nil {
			out.Warnings = append(out.Warnings, fmt.Sprintf("[overrides] %s matches no event and is not a complete event: %v", id, err))
			continue
		}
		out.Events = append(out.Events, e)
		out.Injected = append(out.Injected, id)
	}
	return out, nil
}

// Merge deep-merges patch over e. The id of e is never changed.
func Merge(e events.Event, patch map[string]any) (events.Event, error) {
	doc, err := documentOf(e)
	if err != nil {
		return events.Event{}, err
	}
	DeepMerge(doc, patch)
	doc[events.KeyID] = e.ID
	return events.FromDocument(doc)
}

// Manual builds a curator-supplied event from an override entry. The entry
// must name a series, a year, a type and the dates that type requires.
func Manual(id string, entry map[string]any) (events.Event, error) {
	doc := make(map[string]any, len(entry))
	DeepMerge(doc, entry)
	delete(doc, events.KeyID)
	e, err := events.Normalize(doc, events.Defaults{Origin: events.OriginManual})
	if err != nil {
		return events.Event{}, err
	}
	e.ID = id
	e.Source = events.OriginManual
	return e, nil
}

// DeepMerge merges src into dst in place. Nested objects merge recursively
// when both sides are objects; every other value in src replaces the value in
// dst, so arrays are replaced wholesale.
func DeepMerge(dst, src map[string]any) {
	for k, v := range src {
		if sv, ok := v.(map[string]any); ok {
			if dv, ok := dst[k].(map[string]any); ok {
				DeepMerge(dv, sv)
				continue
			}
			fresh := make(map[string]any, len(sv))
			DeepMerge(fresh, sv)
			dst[k] = fresh
			continue
		}
		dst[k] = copyValue(v)
	}
}

func copyValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(t))
		DeepMerge(m, t)
		return m
	case []any:
		s := make([]any, len(t))
		for i, item := range t {
			s[i] = copyValue(item)
		}
		return s
	default:
		return v
	}
}

// documentOf renders e as a plain JSON document of maps, slices and numbers.
func documentOf(e events.Event) (map[string]any, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc map[string]any
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	return doc, nil
}
