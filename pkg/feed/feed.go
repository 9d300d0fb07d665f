// Package feed builds the public feed document and the debug artifact that
// replaces it when validation fails.
package feed

import (
	"bytes"
	"encoding/json"
	"sort"
	"time"

	"github.com/agentstation/congressmap/pkg/errors"
	"github.com/agentstation/congressmap/pkg/events"
	"github.com/agentstation/congressmap/pkg/ledger"
)

// lastDate sorts events without a schedule after every dated event.
const lastDate events.Date = "9999-12-31"

// Entry is a published event with its display status.
type Entry struct {
	events.Event
	Status ledger.Status
}

// MarshalJSON renders the flat event document with a status key.
func (en Entry) MarshalJSON() ([]byte, error) {
	doc := en.Event.Document()
	doc["status"] = string(en.Status)
	return json.Marshal(doc)
}

// UnmarshalJSON implements json.Unmarshaler.
func (en *Entry) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc map[string]any
	if err := dec.Decode(&doc); err != nil {
		return errors.WrapParse("json", "", err)
	}
	status, _ := doc["status"].(string)
	delete(doc, "status")
	e, err := events.FromDocument(doc)
	if err != nil {
		return err
	}
	*en = Entry{Event: e, Status: ledger.Status(status)}
	return nil
}

// Feed is the public feed document.
type Feed struct {
	GeneratedAt time.Time `json:"generated_at"`
	Events      []Entry   `json:"events"`
}

// Debug is written instead of the feed when validation fails.
type Debug struct {
	GeneratedAt time.Time      `json:"generated_at"`
	Events      []events.Event `json:"events"`
	Errors      []string       `json:"errors"`
	Warnings    []string       `json:"warnings"`
}

// Options control feed construction.
type Options struct {
	// IncludeMissing appends ledger items that were not observed this run.
	IncludeMissing bool
}

// Build assembles the feed from validated events. Statuses come from the
// reconciled ledger, with ended derived from the UTC date of now.
func Build(evs []events.Event, l ledger.Ledger, now time.Time, opts Options) Feed {
	today := events.Today(now)
	sorted := Sorted(evs)

	entries := make([]Entry, 0, len(sorted))
	published := make(map[string]bool, len(sorted))
	for _, e := range sorted {
		item, ok := l.Items[e.ID]
		if !ok {
			item = ledger.Item{Status: ledger.StatusFor(e.Source), Event: e}
		}
		item.Event = e
		entries = append(entries, Entry{Event: e, Status: ledger.DisplayStatus(item, today)})
		published[e.ID] = true
	}

	if opts.IncludeMissing {
		var missing []events.Event
		for _, id := range l.IDs() {
			item := l.Items[id]
			if item.Status == ledger.StatusMissing && !published[id] {
				missing = append(missing, item.Event)
			}
		}
		for _, e := range Sorted(missing) {
			entries = append(entries, Entry{Event: e, Status: ledger.StatusMissing})
		}
	}

	return Feed{GeneratedAt: now.UTC().Truncate(time.Second), Events: entries}
}

// Sorted returns a copy of evs ordered by anchor date ascending, then
// priority descending, then id ascending.
func Sorted(evs []events.Event) []events.Event {
	out := append([]events.Event(nil), evs...)
	sort.SliceStable(out, func(i, j int) bool {
		return Less(out[i], out[j])
	})
	return out
}

// Less is the display order of the feed.
func Less(a, b events.Event) bool {
	aa, ba := a.Anchor(), b.Anchor()
	if aa == "" {
		aa = lastDate
	}
	if ba == "" {
		ba = lastDate
	}
	if aa != ba {
		return aa < ba
	}
	if a.Priority != b.Priority {
		return a.Priority > b.Priority
	}
	return a.ID < b.ID
}

// NewDebug builds the debug artifact for a failed validation.
func NewDebug(evs []events.Event, errs, warnings []string, now time.Time) Debug {
	if errs == nil {
		errs = []string{}
	}
	if warnings == nil {
		warnings = []string{}
	}
	if evs == nil {
		evs = []events.Event{}
	}
	return Debug{
		GeneratedAt: now.UTC().Truncate(time.Second),
		Events:      evs,
		Errors:      errs,
		Warnings:    warnings,
	}
}

// Decode parses a feed document.
func Decode(data []byte) (Feed, error) {
	var f Feed
	if err := json.Unmarshal(data, &f); err != nil {
		return Feed{}, errors.WrapParse("json", "", err)
	}
	return f, nil
}

// EventsOf returns the events of a feed without display status.
func (f Feed) EventsOf() []events.Event {
	out := make([]events.Event, len(f.Events))
	for i, en := range f.Events {
		out[i] = en.Event
	}
	return out
}
