// Package identity derives stable event identifiers.
//
// An id has the form {series}-{year}-{type}-{hash}. The hash covers the
// normalized series, year, type and temporal anchor only, so the same
// logical event reported by different sources, or with a different venue,
// link or title, always receives the same id. Correcting a date produces a
// new id.
package identity

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/agentstation/congressmap/pkg/constants"
	"github.com/agentstation/congressmap/pkg/events"
	"github.com/cespare/xxhash/v2"
	"golang.org/x/text/unicode/norm"
)

// KeyPolicy names the fields an identity key is built from. Location and link
// are never part of the key, for any type.
const KeyPolicy = "series|year|type|anchor"

const sep = "|"

// Key returns the normalized identity key of e.
func Key(e events.Event) string {
	anchor := ""
	switch w := e.When.(type) {
	case events.Span:
		anchor = string(w.Start) + sep + string(w.End)
	case events.Day:
		anchor = string(w.Date)
	}
	parts := []string{
		normalize(e.Series),
		strconv.Itoa(e.Year),
		normalize(string(e.Type)),
		normalize(anchor),
	}
	return strings.Join(parts, sep)
}

// Derive returns the id of e. It is pure and deterministic.
func Derive(e events.Event) string {
	return fmt.Sprintf("%s-%d-%s-%s", slug(e.Series), e.Year, slug(string(e.Type)), digest(Key(e)))
}

// Assign sets the id of every event in place.
func Assign(evs []events.Event) {
	for i := range evs {
		evs[i].ID = Derive(evs[i])
	}
}

func digest(key string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(key))[:constants.IDHashLength]
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(norm.NFKC.String(s)))
}

// slug lower-cases s and collapses anything outside letters, digits and
// underscores into single hyphens.
func slug(s string) string {
	var b strings.Builder
	hyphen := false
	for _, r := range normalize(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_':
			b.WriteRune(r)
			hyphen = false
		case !hyphen && b.Len() > 0:
			b.WriteByte('-')
			hyphen = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
