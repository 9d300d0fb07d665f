// Package table converts feed entries, ledger items and run results into
// rows for CLI table output.
package table

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/agentstation/congressmap/pkg/authority"
	"github.com/agentstation/congressmap/pkg/events"
	"github.com/agentstation/congressmap/pkg/feed"
	"github.com/agentstation/congressmap/pkg/ledger"
	"github.com/agentstation/congressmap/pkg/sources"
	pkgsync "github.com/agentstation/congressmap/pkg/sync"
)

// Align represents column alignment in tables.
type Align int

const (
	// AlignDefault uses the default alignment (skip).
	AlignDefault Align = iota
	// AlignLeft aligns content to the left.
	AlignLeft
	// AlignCenter centers content.
	AlignCenter
	// AlignRight aligns content to the right.
	AlignRight
)

// Data is a rendered table.
type Data struct {
	Headers         []string
	Rows            [][]string
	ColumnAlignment []Align // Optional: column alignment
}

const maxLocation = 32

// EntriesToTableData converts feed entries to table format. Wide output adds
// location, trust and conflict columns.
func EntriesToTableData(entries []feed.Entry, wide bool) Data {
	headers := []string{"ID", "Series", "Type", "Date", "Priority", "Status"}
	align := []Align{AlignLeft, AlignLeft, AlignLeft, AlignLeft, AlignRight, AlignLeft}
	if wide {
		headers = append(headers, "Location", "Source", "Trust", "Conflicts")
		align = append(align, AlignLeft, AlignLeft, AlignRight, AlignRight)
	}

	rows := make([][]string, 0, len(entries))
	for _, en := range entries {
		row := []string{
			en.ID,
			en.Series,
			TypeLabel(en.Type),
			When(en.Event),
			fmt.Sprintf("%d", en.Priority),
			string(en.Status),
		}
		if wide {
			row = append(row,
				Truncate(en.Location, maxLocation),
				evidenceSource(en.Event),
				evidenceTrust(en.Event),
				fmt.Sprintf("%d", len(en.Conflicts)),
			)
		}
		rows = append(rows, row)
	}

	return Data{Headers: headers, Rows: rows, ColumnAlignment: align}
}

// LedgerToTableData converts ledger items, in id order, to table format.
// The status column shows the display status for today.
func LedgerToTableData(l ledger.Ledger, today events.Date, wide bool) Data {
	headers := []string{"ID", "Series", "Type", "Date", "Status", "Last Seen"}
	if wide {
		headers = append(headers, "Stored", "First Seen")
	}

	ids := l.IDs()
	rows := make([][]string, 0, len(ids))
	for _, id := range ids {
		item := l.Items[id]
		row := []string{
			id,
			item.Event.Series,
			TypeLabel(item.Event.Type),
			When(item.Event),
			string(ledger.DisplayStatus(item, today)),
			Timestamp(item.LastSeenAt),
		}
		if wide {
			row = append(row, string(item.Status), Timestamp(item.FirstSeenAt))
		}
		rows = append(rows, row)
	}

	return Data{Headers: headers, Rows: rows}
}

// SourcesToTableData converts the per-collaborator outcomes of a run.
func SourcesToTableData(results []pkgsync.SourceResult) Data {
	rows := make([][]string, 0, len(results))
	for _, sr := range results {
		status := "ok"
		if !sr.OK() {
			status = Truncate(sr.Err.Error(), 60)
		}
		rows = append(rows, []string{
			sr.Series,
			sr.Kind,
			fmt.Sprintf("%d", sr.Events),
			fmt.Sprintf("%d", sr.Accepted),
			sr.Duration.Round(time.Millisecond).String(),
			status,
		})
	}
	return Data{
		Headers:         []string{"Series", "Kind", "Events", "Accepted", "Duration", "Status"},
		Rows:            rows,
		ColumnAlignment: []Align{AlignLeft, AlignLeft, AlignRight, AlignRight, AlignRight, AlignLeft},
	}
}

// ConfigsToTableData converts the configured sources to table format.
func ConfigsToTableData(cfgs []sources.Config) Data {
	rows := make([][]string, 0, len(cfgs))
	for _, cfg := range cfgs {
		priority := "-"
		if cfg.Priority != nil {
			priority = fmt.Sprintf("%d", *cfg.Priority)
		}
		timeout := "default"
		if cfg.Timeout > 0 {
			timeout = cfg.Timeout.String()
		}
		enabled := "yes"
		if cfg.Disabled {
			enabled = "no"
		}
		role := cfg.Role
		if role == "" {
			role = authority.RoleOfficial
		}
		rows = append(rows, []string{cfg.Series, cfg.Key(), role.String(), priority, timeout, enabled})
	}
	return Data{
		Headers:         []string{"Series", "Kind", "Role", "Priority", "Timeout", "Enabled"},
		Rows:            rows,
		ColumnAlignment: []Align{AlignLeft, AlignLeft, AlignLeft, AlignRight, AlignRight, AlignLeft},
	}
}

// ErrorsToTableData lists validation errors or warnings one per row.
func ErrorsToTableData(header string, msgs []string) Data {
	rows := make([][]string, 0, len(msgs))
	for i, msg := range msgs {
		rows = append(rows, []string{fmt.Sprintf("%d", i+1), msg})
	}
	return Data{
		Headers:         []string{"#", header},
		Rows:            rows,
		ColumnAlignment: []Align{AlignRight, AlignLeft},
	}
}

// TypeLabel renders an event type as words, e.g. "Abstract Deadline".
func TypeLabel(t events.Type) string {
	if t == "" {
		return "-"
	}
	caser := cases.Title(language.English)
	return caser.String(strings.ReplaceAll(string(t), "_", " "))
}

// When renders the schedule of e: a single date or "start..end".
func When(e events.Event) string {
	if e.When == nil {
		return "-"
	}
	return e.When.Value()
}

// Timestamp formats t in UTC, or "-" when unset.
func Timestamp(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format(time.RFC3339)
}

// Truncate shortens s to at most n runes, ending in "...".
func Truncate(s string, n int) string {
	if s == "" {
		return "-"
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}

func evidenceSource(e events.Event) string {
	if e.Evidence == nil || e.Evidence.Source == "" {
		return "-"
	}
	return e.Evidence.Source
}

func evidenceTrust(e events.Event) string {
	if e.Evidence == nil || e.Evidence.Trust == nil {
		return "-"
	}
	return fmt.Sprintf("%d", int(*e.Evidence.Trust))
}
