package sync

import (
	"fmt"
	"strings"
	"time"

	"github.com/agentstation/congressmap/pkg/events"
	"github.com/agentstation/congressmap/pkg/feed"
	"github.com/agentstation/congressmap/pkg/ledger"
)

// Result represents the complete result of an update run.
type Result struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time
	DryRun     bool

	// Published reports whether the feed and ledger were written. It is
	// false for dry runs and for runs whose feed failed validation.
	Published bool
	// Valid reports whether the feed passed validation.
	Valid bool

	Sources []SourceResult

	// Events are the resolved events after overrides, in feed order.
	Events []events.Event
	// Feed is the feed that was (or, for a dry run, would have been)
	// published. It is nil when validation failed.
	Feed *feed.Feed
	// Ledger is the reconciled ledger, or the previous one when validation
	// failed.
	Ledger      ledger.Ledger
	Transitions ledger.Transitions

	Merged    []string // ids of scraped events changed by overrides
	Injected  []string // ids of manual events added by overrides
	Conflicts int      // conflicting values recorded across events

	Warnings []string
	Errors   []string // validation errors
	// DebugPath is where the debug artifact was written after a failed
	// validation.
	DebugPath string
}

// SourceResult is the outcome of one collaborator call.
type SourceResult struct {
	Series   string
	Kind     string
	Events   int // raw events returned
	Accepted int // events that passed normalization
	Warnings int
	Duration time.Duration
	Err      error
}

// OK reports whether the collaborator succeeded.
func (sr SourceResult) OK() bool {
	return sr.Err == nil
}

// Failed returns the series of the collaborators that failed.
func (r *Result) Failed() []string {
	var out []string
	for _, s := range r.Sources {
		if !s.OK() {
			out = append(out, s.Series)
		}
	}
	return out
}

// Collected returns the number of raw events per series.
func (r *Result) Collected() map[string]int {
	out := make(map[string]int, len(r.Sources))
	for _, s := range r.Sources {
		out[s.Series] += s.Events
	}
	return out
}

// Duration returns the wall time of the run.
func (r *Result) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Summary returns a human-readable summary of the run.
func (r *Result) Summary() string {
	var parts []string
	if r.DryRun {
		parts = append(parts, "(Dry run)")
	}

	var summary string
	switch {
	case !r.Valid:
		summary = fmt.Sprintf("Feed rejected: %d validation error(s)", len(r.Errors))
	case r.Published:
		summary = fmt.Sprintf("Published %d events", len(r.Events))
	default:
		summary = fmt.Sprintf("Resolved %d events", len(r.Events))
	}
	summary += fmt.Sprintf(" from %d source(s)", len(r.Sources))
	if failed := r.Failed(); len(failed) > 0 {
		summary += fmt.Sprintf(", %d failed (%s)", len(failed), strings.Join(failed, ", "))
	}
	if !r.Transitions.Empty() {
		summary += fmt.Sprintf("; %d added, %d returned, %d missing",
			len(r.Transitions.Added), len(r.Transitions.Returned), len(r.Transitions.WentMissing))
	}
	if len(r.Warnings) > 0 {
		summary += fmt.Sprintf("; %d warning(s)", len(r.Warnings))
	}
	if len(parts) > 0 {
		summary += " " + strings.Join(parts, " ")
	}
	return summary
}

// Summary returns a one-line description of the collaborator call.
func (sr SourceResult) Summary() string {
	if !sr.OK() {
		return fmt.Sprintf("%s: failed: %v", sr.Series, sr.Err)
	}
	return fmt.Sprintf("%s: %d events (%d accepted)", sr.Series, sr.Events, sr.Accepted)
}
