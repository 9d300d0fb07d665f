package output_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/congressmap/internal/cmd/output"
	"github.com/agentstation/congressmap/internal/cmd/table"
	"github.com/agentstation/congressmap/pkg/events"
	"github.com/agentstation/congressmap/pkg/feed"
	"github.com/agentstation/congressmap/pkg/ledger"
)

func entry() feed.Entry {
	return feed.Entry{
		Event: events.Event{
			ID:     "asa-2026-abstract_deadline-2026-04-01",
			Series: "ASA",
			Year:   2026,
			Type:   events.TypeAbstractDeadline,
			When:   events.Day{Date: "2026-04-01"},
			Source: events.OriginScraped,
		},
		Status: ledger.StatusActive,
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    output.Format
		wantErr bool
	}{
		{in: "table", want: output.FormatTable},
		{in: "JSON", want: output.FormatJSON},
		{in: "yaml", want: output.FormatYAML},
		{in: "wide", want: output.FormatWide},
		{in: "", want: ""},
		{in: "csv", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := output.ParseFormat(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDetectFormatExplicit(t *testing.T) {
	assert.Equal(t, output.FormatYAML, output.DetectFormat("YAML"))
}

func TestRenderTable(t *testing.T) {
	var buf bytes.Buffer
	data := table.EntriesToTableData([]feed.Entry{entry()}, false)
	require.NoError(t, output.Render(&buf, output.FormatTable, data, nil))

	out := buf.String()
	assert.Contains(t, out, "asa-2026-abstract_deadline-2026-04-01")
	assert.Contains(t, out, "Abstract Deadline")
	assert.Contains(t, out, "active")
}

func TestRenderJSONUsesFeedDocument(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, output.Render(&buf, output.FormatJSON, table.Data{}, []feed.Entry{entry()}))

	out := buf.String()
	assert.Contains(t, out, `"status": "active"`)
	assert.Contains(t, out, `"date": "2026-04-01"`)
}

func TestRenderYAMLUsesFeedDocument(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, output.Render(&buf, output.FormatYAML, table.Data{}, []feed.Entry{entry()}))

	out := buf.String()
	assert.True(t, strings.Contains(out, "status: active"), out)
	assert.Contains(t, out, "series: ASA")
}

func TestTableFormatterFallsBackToJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, output.NewFormatter(output.FormatTable).Format(&buf, map[string]int{"n": 1}))
	assert.Contains(t, buf.String(), `"n": 1`)
}
