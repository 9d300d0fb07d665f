package ledger_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/agentstation/congressmap/pkg/events"
	"github.com/agentstation/congressmap/pkg/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	t1 = time.Date(2026, 1, 1, 6, 0, 0, 0, time.UTC)
	t2 = time.Date(2026, 1, 2, 6, 0, 0, 0, time.UTC)
	t3 = time.Date(2026, 1, 3, 6, 0, 0, 0, time.UTC)
)

func event(id string, origin events.Origin) events.Event {
	return events.Event{
		ID:     id,
		Series: "ASA",
		Year:   2026,
		Type:   events.TypeCongress,
		When:   events.Span{Start: "2026-10-16", End: "2026-10-20"},
		Source: origin,
	}
}

func TestReconcileLifecycle(t *testing.T) {
	e := event("E", events.OriginScraped)

	run1 := ledger.Reconcile(ledger.New(), []events.Event{e}, t1)
	item := run1.Items["E"]
	assert.Equal(t, t1, item.FirstSeenAt)
	assert.Equal(t, t1, item.LastSeenAt)
	assert.Equal(t, ledger.StatusActive, item.Status)

	run2 := ledger.Reconcile(run1, nil, t2)
	item = run2.Items["E"]
	assert.Equal(t, ledger.StatusMissing, item.Status)
	assert.Equal(t, t1, item.LastSeenAt)
	assert.Equal(t, t1, item.FirstSeenAt)
	assert.Equal(t, e, item.Event)

	run3 := ledger.Reconcile(run2, []events.Event{e}, t3)
	item = run3.Items["E"]
	assert.Equal(t, ledger.StatusActive, item.Status)
	assert.Equal(t, t3, item.LastSeenAt)
	assert.Equal(t, t1, item.FirstSeenAt)
	assert.Equal(t, t3, run3.UpdatedAt)
}

func TestReconcileManualStatus(t *testing.T) {
	l := ledger.Reconcile(ledger.New(), []events.Event{event("M", events.OriginManual)}, t1)
	assert.Equal(t, ledger.StatusManual, l.Items["M"].Status)

	l = ledger.Reconcile(l, []events.Event{event("M", events.OriginScraped)}, t2)
	assert.Equal(t, ledger.StatusActive, l.Items["M"].Status)
	assert.Equal(t, t1, l.Items["M"].FirstSeenAt)
}

func TestReconcileNeverDeletes(t *testing.T) {
	prev := ledger.Reconcile(ledger.New(), []events.Event{event("A", events.OriginScraped), event("B", events.OriginScraped)}, t1)
	next := ledger.Reconcile(prev, []events.Event{event("C", events.OriginScraped)}, t2)
	assert.Equal(t, []string{"A", "B", "C"}, next.IDs())
	assert.Equal(t, map[ledger.Status]int{ledger.StatusMissing: 2, ledger.StatusActive: 1}, next.Count())
}

func TestReconcileDuplicateFirstWins(t *testing.T) {
	first := event("D", events.OriginScraped)
	first.Location = "first"
	second := event("D", events.OriginManual)
	second.Location = "second"

	l := ledger.Reconcile(ledger.New(), []events.Event{first, second}, t1)
	require.Len(t, l.Items, 1)
	assert.Equal(t, "first", l.Items["D"].Event.Location)
	assert.Equal(t, ledger.StatusActive, l.Items["D"].Status)
}

func TestReconcileDoesNotMutatePrevious(t *testing.T) {
	prev := ledger.Reconcile(ledger.New(), []events.Event{event("A", events.OriginScraped)}, t1)
	_ = ledger.Reconcile(prev, nil, t2)
	assert.Equal(t, ledger.StatusActive, prev.Items["A"].Status)
}

func TestReconcileDeterministic(t *testing.T) {
	prev := ledger.Reconcile(ledger.New(), []events.Event{
		event("A", events.OriginScraped), event("B", events.OriginScraped), event("C", events.OriginScraped),
	}, t1)
	current := []events.Event{event("B", events.OriginScraped), event("D", events.OriginManual)}

	want, err := json.Marshal(ledger.Reconcile(prev, current, t2))
	require.NoError(t, err)
	for range 20 {
		got, err := json.Marshal(ledger.Reconcile(prev, current, t2))
		require.NoError(t, err)
		assert.Equal(t, string(want), string(got))
	}
}

func TestDiff(t *testing.T) {
	run1 := ledger.Reconcile(ledger.New(), []events.Event{event("A", events.OriginScraped), event("B", events.OriginScraped)}, t1)
	run2 := ledger.Reconcile(run1, []events.Event{event("A", events.OriginScraped), event("C", events.OriginScraped)}, t2)

	d := ledger.Diff(run1, run2)
	assert.Equal(t, []string{"C"}, d.Added)
	assert.Equal(t, []string{"B"}, d.WentMissing)
	assert.Empty(t, d.Returned)

	run3 := ledger.Reconcile(run2, []events.Event{event("A", events.OriginScraped), event("B", events.OriginScraped), event("C", events.OriginScraped)}, t3)
	d = ledger.Diff(run2, run3)
	assert.Equal(t, []string{"B"}, d.Returned)
	assert.Empty(t, d.Added)
	assert.Empty(t, d.WentMissing)

	assert.True(t, ledger.Diff(run3, run3).Empty())
}

func TestDisplayStatus(t *testing.T) {
	congress := ledger.Item{Status: ledger.StatusActive, Event: event("A", events.OriginScraped)}
	deadline := ledger.Item{Status: ledger.StatusManual, Event: events.Event{Type: events.TypeAbstractDeadline, When: events.Day{Date: "2026-03-01"}}}
	missing := ledger.Item{Status: ledger.StatusMissing, Event: event("A", events.OriginScraped)}

	tests := []struct {
		name  string
		item  ledger.Item
		today events.Date
		want  ledger.Status
	}{
		{"congress running", congress, "2026-10-20", ledger.StatusActive},
		{"congress ended", congress, "2026-10-21", ledger.StatusEnded},
		{"deadline today", deadline, "2026-03-01", ledger.StatusManual},
		{"deadline passed", deadline, "2026-03-02", ledger.StatusEnded},
		{"missing stays missing", missing, "2030-01-01", ledger.StatusMissing},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ledger.DisplayStatus(tt.item, tt.today))
		})
	}
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := ledger.NewMemoryStore(nil)

	empty, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty.Items)

	l := ledger.Reconcile(ledger.New(), []events.Event{event("A", events.OriginScraped)}, t1)
	l.Warnings = []string{"[COPA] timeout"}
	require.NoError(t, store.Save(ctx, l))
	assert.Equal(t, 1, store.Saves())

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, l, loaded)
}

func TestDecode(t *testing.T) {
	l, err := ledger.Decode([]byte(`{"updated_at":"2026-01-01T06:00:00Z"}`))
	require.NoError(t, err)
	assert.NotNil(t, l.Items)
	assert.NotNil(t, l.Warnings)

	_, err = ledger.Decode([]byte(`{"items": [`))
	require.Error(t, err)
}
