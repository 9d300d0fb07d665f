// Package authority defines how much each kind of source is believed when
// sources disagree about the same datum. Roles form a closed enumeration and
// trust is a bounded integer so that ad hoc strings never reach the resolver.
package authority

import (
	"sort"
	"strings"
)

// Role categorizes a source.
type Role string

// Roles known to the resolver. Anything else parses as RoleUnknown.
const (
	RoleOfficial      Role = "official"      // the organizer's own site
	RoleInstitutional Role = "institutional" // societies and partner institutions
	RoleAggregator    Role = "aggregator"    // third party listings
	RoleManual        Role = "manual"        // curator supplied
	RoleUnknown       Role = "unknown"
)

// Roles returns every role, most authoritative first.
func Roles() []Role {
	return []Role{RoleManual, RoleOfficial, RoleInstitutional, RoleAggregator, RoleUnknown}
}

// ParseRole maps a free-form role string onto the closed enumeration.
func ParseRole(s string) Role {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleOfficial:
		return RoleOfficial
	case RoleInstitutional:
		return RoleInstitutional
	case RoleAggregator:
		return RoleAggregator
	case RoleManual:
		return RoleManual
	default:
		return RoleUnknown
	}
}

// String returns the role name.
func (r Role) String() string {
	if r == "" {
		return string(RoleUnknown)
	}
	return string(r)
}

// Rank orders roles for tie-breaks between equally trusted candidates.
// Higher is more authoritative.
func (r Role) Rank() int {
	switch r {
	case RoleManual:
		return 4
	case RoleOfficial:
		return 3
	case RoleInstitutional:
		return 2
	case RoleAggregator:
		return 1
	default:
		return 0
	}
}

// Trust is a source reliability weight in [MinTrust, MaxTrust].
type Trust int

// Trust bounds.
const (
	MinTrust Trust = 0
	MaxTrust Trust = 100
)

// ClampTrust bounds n to the valid trust range.
func ClampTrust(n int) Trust {
	switch {
	case n < int(MinTrust):
		return MinTrust
	case n > int(MaxTrust):
		return MaxTrust
	default:
		return Trust(n)
	}
}

// Table maps roles to their default trust.
type Table map[Role]Trust

// Defaults returns the standard role trust table.
func Defaults() Table {
	return Table{
		RoleManual:        100,
		RoleOfficial:      90,
		RoleInstitutional: 70,
		RoleAggregator:    40,
		RoleUnknown:       10,
	}
}

// For returns the default trust of role, falling back to the unknown role.
func (t Table) For(role Role) Trust {
	if v, ok := t[role]; ok {
		return v
	}
	if v, ok := t[RoleUnknown]; ok {
		return v
	}
	return MinTrust
}

// Resolve picks the effective trust of one candidate. An explicit per-event
// trust beats the source's configured trust, which beats the role default.
func (t Table) Resolve(role Role, sourceTrust, eventTrust *Trust) Trust {
	switch {
	case eventTrust != nil:
		return ClampTrust(int(*eventTrust))
	case sourceTrust != nil:
		return ClampTrust(int(*sourceTrust))
	default:
		return t.For(role)
	}
}

// Entry is one row of a Table, for display.
type Entry struct {
	Role  Role  `json:"role" yaml:"role"`
	Trust Trust `json:"trust" yaml:"trust"`
}

// List returns the table rows ordered by trust, then role rank.
func (t Table) List() []Entry {
	entries := make([]Entry, 0, len(t))
	for role, trust := range t {
		entries = append(entries, Entry{Role: role, Trust: trust})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Trust != entries[j].Trust {
			return entries[i].Trust > entries[j].Trust
		}
		return entries[i].Role.Rank() > entries[j].Role.Rank()
	})
	return entries
}
