// Package ledger tracks every event id ever observed across runs.
//
// Reconcile combines the previous ledger with this run's events: new ids are
// created, present ids are refreshed and absent ids turn missing. Items are
// never deleted, and last_seen_at of a missing item stays at the last run
// that observed it.
package ledger

import (
	"context"
	"sort"
	"time"

	"github.com/agentstation/congressmap/pkg/events"
)

// Status is the persisted lifecycle state of an item.
type Status string

// Persisted statuses.
const (
	StatusActive  Status = "active"
	StatusManual  Status = "manual"
	StatusMissing Status = "missing"
)

// StatusEnded is a display status derived from the calendar. It is never
// stored.
const StatusEnded Status = "ended"

// Item is the persisted state of one event id.
type Item struct {
	FirstSeenAt time.Time    `json:"first_seen_at"`
	LastSeenAt  time.Time    `json:"last_seen_at"`
	Status      Status       `json:"status"`
	Event       events.Event `json:"event"`
}

// Ledger is the durable cross-run record.
type Ledger struct {
	UpdatedAt time.Time       `json:"updated_at"`
	Items     map[string]Item `json:"items"`
	Warnings  []string        `json:"warnings"`
}

// New returns an empty ledger.
func New() Ledger {
	return Ledger{Items: map[string]Item{}, Warnings: []string{}}
}

// IDs returns item ids in sorted order.
func (l Ledger) IDs() []string {
	ids := make([]string, 0, len(l.Items))
	for id := range l.Items {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Count returns the number of items per status.
func (l Ledger) Count() map[Status]int {
	counts := make(map[Status]int, 3)
	for _, item := range l.Items {
		counts[item.Status]++
	}
	return counts
}

// Store persists a ledger between runs.
type Store interface {
	// Load returns the previous ledger. Implementations return an empty
	// ledger when none has been saved yet.
	Load(ctx context.Context) (Ledger, error)
	// Save replaces the persisted ledger atomically.
	Save(ctx context.Context, l Ledger) error
}

// StatusFor maps an event origin to the status it earns when observed.
func StatusFor(origin events.Origin) Status {
	if origin == events.OriginManual {
		return StatusManual
	}
	return StatusActive
}

// Reconcile computes the next ledger from prev and this run's events. It is
// total: duplicate ids in current keep their first occurrence, and prev is
// never modified. now is stored in UTC truncated to seconds.
func Reconcile(prev Ledger, current []events.Event, now time.Time) Ledger {
	now = now.UTC().Truncate(time.Second)
	next := Ledger{
		UpdatedAt: now,
		Items:     make(map[string]Item, len(prev.Items)+len(current)),
		Warnings:  []string{},
	}

	seen := make(map[string]bool, len(current))
	for _, e := range current {
		if e.ID == "" || seen[e.ID] {
			continue
		}
		seen[e.ID] = true

		item := Item{
			FirstSeenAt: now,
			LastSeenAt:  now,
			Status:      StatusFor(e.Source),
			Event:       e.Clone(),
		}
		if old, ok := prev.Items[e.ID]; ok && !old.FirstSeenAt.IsZero() {
			item.FirstSeenAt = old.FirstSeenAt
		}
		next.Items[e.ID] = item
	}

	for id, old := range prev.Items {
		if seen[id] {
			continue
		}
		old.Event = old.Event.Clone()
		old.Status = StatusMissing
		next.Items[id] = old
	}
	return next
}

// Transitions summarizes how ids moved between two ledgers.
type Transitions struct {
	// Added ids were not in the previous ledger.
	Added []string
	// Returned ids were missing and are observed again.
	Returned []string
	// WentMissing ids were observed previously and are absent now.
	WentMissing []string
}

// Empty reports whether no id changed state.
func (t Transitions) Empty() bool {
	return len(t.Added) == 0 && len(t.Returned) == 0 && len(t.WentMissing) == 0
}

// Diff compares two ledgers. Each list is sorted.
func Diff(prev, next Ledger) Transitions {
	var t Transitions
	for _, id := range next.IDs() {
		item := next.Items[id]
		old, existed := prev.Items[id]
		switch {
		case !existed:
			t.Added = append(t.Added, id)
		case old.Status == StatusMissing && item.Status != StatusMissing:
			t.Returned = append(t.Returned, id)
		case old.Status != StatusMissing && item.Status == StatusMissing:
			t.WentMissing = append(t.WentMissing, id)
		}
	}
	return t
}

// DisplayStatus returns the status shown to readers: ended when an active or
// manual item's last date is before today, otherwise the stored status.
func DisplayStatus(item Item, today events.Date) Status {
	if item.Status == StatusMissing {
		return StatusMissing
	}
	if last := item.Event.Last(); last != "" && last.Before(today) {
		return StatusEnded
	}
	return item.Status
}
