package persistence_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/agentstation/congressmap/internal/persistence"
	pkgerrors "github.com/agentstation/congressmap/pkg/errors"
	"github.com/agentstation/congressmap/pkg/events"
	"github.com/agentstation/congressmap/pkg/feed"
	"github.com/agentstation/congressmap/pkg/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "out.json")

	require.NoError(t, persistence.WriteFile(path, []byte("one")))
	require.NoError(t, persistence.WriteFile(path, []byte("two")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "two", string(data))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must not be left behind")
}

func TestWriteJSONKeepsUnicode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.json")
	require.NoError(t, persistence.WriteJSON(path, map[string]string{"pt": "Reunião & Congresso"}))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"pt\": \"Reunião & Congresso\"\n}\n", string(data))
}

func TestLedgerFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "ledger.json")
	store := persistence.NewLedgerFile(path)

	empty, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty.Items)

	e := events.Event{ID: "a", Series: "ASA", Year: 2026, Type: events.TypeAbstractDeadline, When: events.Day{Date: "2026-03-01"}, Source: events.OriginScraped}
	l := ledger.Reconcile(ledger.New(), []events.Event{e}, now)
	l.Warnings = []string{"[COPA] timed out"}
	require.NoError(t, store.Save(ctx, l))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, l.IDs(), loaded.IDs())
	assert.Equal(t, l.Warnings, loaded.Warnings)
	assert.True(t, l.UpdatedAt.Equal(loaded.UpdatedAt))
	assert.Equal(t, ledger.StatusActive, loaded.Items["a"].Status)
	assert.Equal(t, events.Date("2026-03-01"), loaded.Items["a"].Event.Anchor())
}

func TestLedgerFileCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := persistence.NewLedgerFile(path).Load(context.Background())
	require.Error(t, err)
	var parseErr *pkgerrors.ParseError
	assert.ErrorAs(t, err, &parseErr)
}

func TestFeedFile(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	out := persistence.NewFeedFile(filepath.Join(dir, "events.json"), filepath.Join(dir, "debug.json"))

	require.NoError(t, out.Publish(ctx, feed.Feed{GeneratedAt: now}))
	f, err := persistence.ReadFeed(out.FeedPath)
	require.NoError(t, err)
	assert.Empty(t, f.Events)
	assert.Equal(t, now, f.GeneratedAt)

	where, err := out.PublishDebug(ctx, feed.NewDebug(nil, []string{"events[0]: missing/invalid id"}, nil, now))
	require.NoError(t, err)
	assert.Equal(t, out.DebugPath, where)
	assert.FileExists(t, where)
}

func TestReadFeedMissing(t *testing.T) {
	_, err := persistence.ReadFeed(filepath.Join(t.TempDir(), "none.json"))
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestSourcesFile(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	cfgs, warnings, err := persistence.NewSourcesFile(filepath.Join(dir, "missing.yaml")).LoadSources(ctx)
	require.NoError(t, err)
	assert.Empty(t, cfgs)
	require.Len(t, warnings, 1)

	path := filepath.Join(dir, "sources.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"sources": [{"series": "ASA", "kind": "static"}]}`), 0o644))
	cfgs, warnings, err = persistence.NewSourcesFile(path).LoadSources(ctx)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	require.Len(t, cfgs, 1)
	assert.Equal(t, "static", cfgs[0].Key())
}

func TestOverridesFile(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	ovr, _, err := persistence.NewOverridesFile(filepath.Join(dir, "none.json")).LoadOverrides(ctx)
	require.NoError(t, err)
	assert.Empty(t, ovr)

	path := filepath.Join(dir, "manual_overrides.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"id1": {"location": "Updated"}}`), 0o644))
	ovr, warnings, err := persistence.NewOverridesFile(path).LoadOverrides(ctx)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, "Updated", ovr["id1"]["location"])
}
