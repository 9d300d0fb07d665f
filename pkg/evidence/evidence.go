// Package evidence resolves competing values for the same logical datum.
//
// Every collected event contributes one Candidate for its datum (for example
// "ASA 2026 congress range"). Resolve picks the most trusted candidate and
// reports every candidate that disagrees with it. Resolution is pure and its
// ordering is total, so repeated runs over the same candidates agree.
package evidence

import (
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/agentstation/congressmap/pkg/authority"
	"github.com/agentstation/congressmap/pkg/constants"
	"github.com/agentstation/congressmap/pkg/events"
)

// Candidate is one proposed value for a datum.
type Candidate struct {
	Datum   string
	Value   string
	Trust   authority.Trust
	Role    authority.Role
	URL     string
	Snippet string
	// Source is the series of the collaborator that produced the candidate.
	Source string
	// Ref points back at the event the candidate was taken from.
	Ref int
}

// Conflict converts c into the conflict record attached to an event.
func (c Candidate) Conflict() events.Conflict {
	return events.Conflict{
		Value:   c.Value,
		Source:  c.Source,
		Role:    c.Role,
		Trust:   c.Trust,
		URL:     c.URL,
		Snippet: Bound(c.Snippet, constants.MaxSnippetLength),
	}
}

// Less reports whether a ranks ahead of b: higher trust, then higher role
// rank, then URL, source, value and ref in ascending order.
func Less(a, b Candidate) bool {
	if a.Trust != b.Trust {
		return a.Trust > b.Trust
	}
	if ra, rb := a.Role.Rank(), b.Role.Rank(); ra != rb {
		return ra > rb
	}
	if a.URL != b.URL {
		return a.URL < b.URL
	}
	if a.Source != b.Source {
		return a.Source < b.Source
	}
	if a.Value != b.Value {
		return a.Value < b.Value
	}
	return a.Ref < b.Ref
}

// Resolve returns the winning candidate and every candidate whose value
// differs from the winner's, in rank order with bounded snippets. An empty
// input yields no winner and no conflicts.
func Resolve(cands []Candidate) (*Candidate, []Candidate) {
	if len(cands) == 0 {
		return nil, nil
	}
	ranked := append([]Candidate(nil), cands...)
	sort.SliceStable(ranked, func(i, j int) bool { return Less(ranked[i], ranked[j]) })

	winner := ranked[0]
	var conflicts []Candidate
	for _, c := range ranked[1:] {
		if c.Value == winner.Value {
			continue
		}
		c.Snippet = Bound(c.Snippet, constants.MaxSnippetLength)
		conflicts = append(conflicts, c)
	}
	return &winner, conflicts
}

// Bound truncates s to at most n runes.
func Bound(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

// DatumKey names the logical datum an event asserts. Types a series holds
// once per year share a datum across sources; multi-instance types are keyed
// by event id so distinct deadlines are never collapsed.
func DatumKey(e events.Event) string {
	if e.Type.MultiInstance() {
		return "id:" + e.ID
	}
	return strings.Join([]string{
		strings.ToLower(strings.TrimSpace(e.Series)),
		strconv.Itoa(e.Year),
		string(e.Type),
	}, "|")
}
