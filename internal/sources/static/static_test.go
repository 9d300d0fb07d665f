package static_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/agentstation/congressmap/internal/sources/static"
	"github.com/agentstation/congressmap/pkg/events"
	"github.com/agentstation/congressmap/pkg/sources"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func configFor(t *testing.T, doc string) sources.Config {
	t.Helper()
	cfgs, warnings, err := sources.ParseConfigs([]byte(doc))
	require.NoError(t, err)
	require.Empty(t, warnings)
	require.Len(t, cfgs, 1)
	return cfgs[0]
}

func TestCollectInline(t *testing.T) {
	cfg := configFor(t, `
- series: ASA
  kind: static
  events:
    - type: congress
      year: 2026
      start_date: "2026-10-16"
      end_date: "2026-10-20"
      location: San Diego, CA, USA
      title:
        en: ANESTHESIOLOGY 2026
        pt: ANESTHESIOLOGY 2026
    - not-an-object
`)

	res := static.New().Collect(context.Background(), cfg)
	require.True(t, res.OK(), "%v", res.Err)
	assert.Equal(t, "ASA", res.Series)
	require.Len(t, res.Events, 1)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "[ASA]")

	raw := res.Events[0]
	assert.Equal(t, "scraped", raw[events.KeySource])

	e, err := events.Normalize(raw, events.Defaults{Series: cfg.Series})
	require.NoError(t, err)
	assert.Equal(t, events.Span{Start: "2026-10-16", End: "2026-10-20"}, e.When)
	require.NotNil(t, e.Title)
	assert.Equal(t, "ANESTHESIOLOGY 2026", e.Title.EN)
}

func TestCollectFile(t *testing.T) {
	dir := t.TempDir()
	doc := `events:
  - series: LASRA
    type: abstract_deadline
    date: 2026-05-01
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "lasra.yaml"), []byte(doc), 0o644))

	cfg := configFor(t, `[{series: LASRA, kind: static, file: lasra.yaml}]`)
	res := static.New(static.WithBaseDir(dir)).Collect(context.Background(), cfg)
	require.True(t, res.OK(), "%v", res.Err)
	require.Len(t, res.Events, 1)

	e, err := events.Normalize(res.Events[0], events.Defaults{})
	require.NoError(t, err)
	assert.Equal(t, events.Date("2026-05-01"), e.Anchor())
	assert.Equal(t, 2026, e.Year)
}

func TestCollectErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{name: "nothing configured", doc: `[{series: X, kind: static}]`},
		{name: "events not a list", doc: `[{series: X, kind: static, events: {type: congress}}]`},
		{name: "missing file", doc: `[{series: X, kind: static, file: /does/not/exist.yaml}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := static.New().Collect(context.Background(), configFor(t, tt.doc))
			assert.False(t, res.OK())
			assert.Empty(t, res.Events)
		})
	}
}

func TestCollectCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res := static.New().Collect(ctx, sources.Config{Series: "X"})
	assert.ErrorIs(t, res.Err, context.Canceled)
}
