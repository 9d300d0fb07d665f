// Package events holds the event data model shared by every stage of a run:
// the untyped Raw payload collaborators produce, the typed Event it is
// normalized into, and the provenance blocks attached during resolution.
package events

import (
	"maps"

	"github.com/agentstation/congressmap/pkg/authority"
)

// Raw is an untyped event payload as produced by a collaborator.
type Raw = map[string]any

// Origin records whether an event was collected or curated.
type Origin string

// Origins.
const (
	OriginScraped Origin = "scraped"
	OriginManual  Origin = "manual"
)

// Title is the bilingual display title.
type Title struct {
	EN string `json:"en"`
	PT string `json:"pt"`
}

// Evidence describes the source that asserted an event's dates.
type Evidence struct {
	URL     string           `json:"url,omitempty"`
	Snippet string           `json:"snippet,omitempty"`
	Field   string           `json:"field,omitempty"`
	Source  string           `json:"source,omitempty"`
	Role    authority.Role   `json:"role,omitempty"`
	Trust   *authority.Trust `json:"trust,omitempty"`
}

// Conflict is a competing value for the same datum that lost resolution, or
// a disagreement a collaborator noticed while collecting.
type Conflict struct {
	Value   string          `json:"value"`
	Source  string          `json:"source,omitempty"`
	Role    authority.Role  `json:"role,omitempty"`
	Trust   authority.Trust `json:"trust"`
	URL     string          `json:"url,omitempty"`
	Snippet string          `json:"snippet,omitempty"`
}

// Event is a normalized event. Its JSON form is the flat document published
// in the feed; keys the model does not know are kept in Extra.
type Event struct {
	ID        string
	Series    string
	Year      int
	Type      Type
	When      Schedule
	Location  string
	Link      string
	Priority  int
	Title     *Title
	Source    Origin
	Evidence  *Evidence
	Conflicts []Conflict
	Extra     map[string]any
}

// Anchor returns the date the event sorts by, or "" without a schedule.
func (e Event) Anchor() Date {
	if e.When == nil {
		return ""
	}
	return e.When.Anchor()
}

// Last returns the final relevant date, or "" without a schedule.
func (e Event) Last() Date {
	if e.When == nil {
		return ""
	}
	return e.When.Last()
}

// Value returns the comparable datum value of the schedule.
func (e Event) Value() string {
	if e.When == nil {
		return ""
	}
	return e.When.Value()
}

// Clone returns a copy that shares no mutable state with e.
func (e Event) Clone() Event {
	out := e
	if e.Title != nil {
		t := *e.Title
		out.Title = &t
	}
	if e.Evidence != nil {
		ev := *e.Evidence
		if ev.Trust != nil {
			tr := *ev.Trust
			ev.Trust = &tr
		}
		out.Evidence = &ev
	}
	if e.Conflicts != nil {
		out.Conflicts = append([]Conflict(nil), e.Conflicts...)
	}
	if e.Extra != nil {
		out.Extra = make(map[string]any, len(e.Extra))
		for k, v := range e.Extra {
			out.Extra[k] = cloneValue(v)
		}
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		m := maps.Clone(t)
		for k, inner := range m {
			m[k] = cloneValue(inner)
		}
		return m
	case []any:
		s := make([]any, len(t))
		for i, inner := range t {
			s[i] = cloneValue(inner)
		}
		return s
	default:
		return v
	}
}
