package overrides_test

import (
	"testing"

	pkgerrors "github.com/agentstation/congressmap/pkg/errors"
	"github.com/agentstation/congressmap/pkg/events"
	"github.com/agentstation/congressmap/pkg/overrides"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() events.Event {
	return events.Event{
		ID:       "id1",
		Series:   "COPA",
		Year:     2026,
		Type:     events.TypeCongress,
		When:     events.Span{Start: "2026-04-23", End: "2026-04-26"},
		Location: "Old",
		Link:     "https://example.org/copa",
		Priority: 4,
		Title:    &events.Title{EN: "COPA", PT: "Congresso Paulista"},
		Source:   events.OriginScraped,
		Extra:    map[string]any{"tags": []any{"a", "b"}, "meta": map[string]any{"keep": "yes", "change": "old"}},
	}
}

func TestApplyScalarOverride(t *testing.T) {
	in := []events.Event{sample()}
	res, err := overrides.Apply(in, overrides.Overrides{"id1": {"location": "Updated"}})
	require.NoError(t, err)
	require.Len(t, res.Events, 1)

	want := sample()
	want.Location = "Updated"
	assert.Equal(t, want, res.Events[0])
	assert.Equal(t, []string{"id1"}, res.Merged)
	assert.Equal(t, "Old", in[0].Location, "input must not be modified")
}

func TestApplyNestedAndArrays(t *testing.T) {
	patch := map[string]any{
		"title": map[string]any{"pt": "COPA 2026"},
		"meta":  map[string]any{"change": "new"},
		"tags":  []any{"c"},
	}
	res, err := overrides.Apply([]events.Event{sample()}, overrides.Overrides{"id1": patch})
	require.NoError(t, err)
	got := res.Events[0]

	assert.Equal(t, &events.Title{EN: "COPA", PT: "COPA 2026"}, got.Title)
	assert.Equal(t, map[string]any{"keep": "yes", "change": "new"}, got.Extra["meta"])
	assert.Equal(t, []any{"c"}, got.Extra["tags"])
}

func TestApplyDatesAndIDImmutable(t *testing.T) {
	patch := map[string]any{"id": "hijack", "start_date": "2026-04-22"}
	res, err := overrides.Apply([]events.Event{sample()}, overrides.Overrides{"id1": patch})
	require.NoError(t, err)
	got := res.Events[0]
	assert.Equal(t, "id1", got.ID)
	assert.Equal(t, events.Span{Start: "2026-04-22", End: "2026-04-26"}, got.When)
}

func TestApplyIdempotent(t *testing.T) {
	ovr := overrides.Overrides{"id1": {"location": "Updated", "title": map[string]any{"en": "X"}}}
	once, err := overrides.Apply([]events.Event{sample()}, ovr)
	require.NoError(t, err)
	twice, err := overrides.Apply(once.Events, ovr)
	require.NoError(t, err)
	assert.Equal(t, once.Events, twice.Events)
}

func TestApplyMissingID(t *testing.T) {
	e := sample()
	e.ID = ""
	_, err := overrides.Apply([]events.Event{e}, overrides.Overrides{})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsValidationError(err))
	assert.Contains(t, err.Error(), "events[0]")
}

func TestApplyInjectsManualEvents(t *testing.T) {
	ovr := overrides.Overrides{
		"cba-2026-congress-manual": {
			"series": "CBA", "year": 2026, "type": "congress",
			"start_date": "2026-11-12", "end_date": "2026-11-15", "location": "Recife",
		},
		"orphan": {"location": "Nowhere"},
	}
	res, err := overrides.Apply([]events.Event{sample()}, ovr)
	require.NoError(t, err)
	require.Len(t, res.Events, 2)

	manual := res.Events[1]
	assert.Equal(t, "cba-2026-congress-manual", manual.ID)
	assert.Equal(t, events.OriginManual, manual.Source)
	assert.Equal(t, "Recife", manual.Location)
	assert.Equal(t, []string{"cba-2026-congress-manual"}, res.Injected)

	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "orphan")
	assert.Contains(t, res.Warnings[0], "[overrides]")
}

func TestParse(t *testing.T) {
	t.Run("object", func(t *testing.T) {
		ovr, warnings, err := overrides.Parse([]byte(`{"b": {"location": "X"}, "a": 3}`))
		require.NoError(t, err)
		assert.Len(t, ovr, 1)
		assert.Equal(t, "X", ovr["b"]["location"])
		require.Len(t, warnings, 1)
		assert.Contains(t, warnings[0], `"a"`)
	})

	t.Run("non object document", func(t *testing.T) {
		ovr, warnings, err := overrides.Parse([]byte(`[1, 2]`))
		require.NoError(t, err)
		assert.Empty(t, ovr)
		assert.Len(t, warnings, 1)
	})

	t.Run("empty", func(t *testing.T) {
		ovr, warnings, err := overrides.Parse(nil)
		require.NoError(t, err)
		assert.Empty(t, ovr)
		assert.Empty(t, warnings)
	})

	t.Run("malformed", func(t *testing.T) {
		_, _, err := overrides.Parse([]byte(`{`))
		require.Error(t, err)
	})
}

func TestDeepMerge(t *testing.T) {
	dst := map[string]any{"a": map[string]any{"x": 1, "y": 2}, "b": []any{1, 2}, "c": "keep"}
	src := map[string]any{"a": map[string]any{"y": 3, "z": 4}, "b": []any{9}, "d": map[string]any{"n": 1}}
	overrides.DeepMerge(dst, src)
	assert.Equal(t, map[string]any{
		"a": map[string]any{"x": 1, "y": 3, "z": 4},
		"b": []any{9},
		"c": "keep",
		"d": map[string]any{"n": 1},
	}, dst)

	src["d"].(map[string]any)["n"] = 2
	assert.Equal(t, 1, dst["d"].(map[string]any)["n"], "merged values must not alias src")
}

func TestApplySkipsUndecodableEntry(t *testing.T) {
	tests := []struct {
		name  string
		patch map[string]any
	}{
		{name: "text priority", patch: map[string]any{"priority": "high"}},
		{name: "fractional year", patch: map[string]any{"year": 2026.5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := overrides.Apply([]events.Event{sample()}, overrides.Overrides{"id1": tt.patch})
			require.NoError(t, err)
			require.Len(t, res.Events, 1)
			assert.Equal(t, sample(), res.Events[0])
			assert.Empty(t, res.Merged)
			require.Len(t, res.Warnings, 1)
			assert.Contains(t, res.Warnings[0], "[overrides] id1")
		})
	}
}
