package validation_test

import (
	"testing"

	"github.com/agentstation/congressmap/pkg/events"
	"github.com/agentstation/congressmap/pkg/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func congress(id, start, end string) events.Event {
	return events.Event{ID: id, Series: "ASA", Year: 2026, Type: events.TypeCongress,
		When: events.Span{Start: events.Date(start), End: events.Date(end)}}
}

func deadline(id, date string) events.Event {
	return events.Event{ID: id, Series: "ASA", Year: 2026, Type: events.TypeAbstractDeadline,
		When: events.Day{Date: events.Date(date)}}
}

func TestValidateOK(t *testing.T) {
	r := validation.Validate([]events.Event{
		congress("a", "2026-10-16", "2026-10-20"),
		congress("b", "2026-10-16", "2026-10-16"),
		deadline("c", "2026-04-01"),
	})
	assert.True(t, r.OK)
	assert.Empty(t, r.Errors)
}

func TestValidateEmptyBatch(t *testing.T) {
	r := validation.Validate(nil)
	assert.True(t, r.OK)
	assert.NotNil(t, r.Errors)
}

func TestValidateStartAfterEnd(t *testing.T) {
	r := validation.Validate([]events.Event{
		deadline("a", "2026-04-01"),
		congress("b", "2026-10-20", "2026-10-16"),
	})
	assert.False(t, r.OK)
	require.Len(t, r.Errors, 1)
	assert.Contains(t, r.Errors[0], "events[1]")
	assert.Contains(t, r.Errors[0], "start_date after end_date")
}

func TestValidateDuplicateIDs(t *testing.T) {
	r := validation.Validate([]events.Event{
		deadline("x", "2026-04-01"),
		deadline("y", "2026-04-02"),
		deadline("x", "2026-04-03"),
		deadline("x", "2026-04-04"),
	})
	assert.False(t, r.OK)
	require.Len(t, r.Errors, 2)
	assert.Equal(t, "events[2]: duplicate id=x (first at events[0])", r.Errors[0])
	assert.Equal(t, "events[3]: duplicate id=x (first at events[0])", r.Errors[1])
}

func TestValidateAccumulates(t *testing.T) {
	bad := events.Event{Type: "keynote"}
	noDates := events.Event{ID: "c", Series: "ASA", Type: events.TypeCongress}
	noDate := events.Event{ID: "d", Series: "ASA", Type: events.TypeHousingDeadline}
	halfRange := events.Event{ID: "e", Series: "ASA", Type: events.TypeCongress, When: events.Span{Start: "2026-01-01"}}

	r := validation.Validate([]events.Event{bad, noDates, noDate, halfRange})
	assert.False(t, r.OK)
	assert.Equal(t, []string{
		"events[0]: missing/invalid id",
		"events[0]: missing/invalid series",
		`events[0]: type not allowed: "keynote"`,
		"events[0]: non-congress missing date",
		"events[1]: congress missing start_date/end_date",
		"events[2]: non-congress missing date",
		"events[3]: congress missing start_date/end_date",
	}, r.Errors)
}

func TestValidateMissingType(t *testing.T) {
	r := validation.Validate([]events.Event{{ID: "a", Series: "ASA", When: events.Day{Date: "2026-01-01"}}})
	assert.Equal(t, []string{
		"events[0]: missing/invalid type",
		`events[0]: type not allowed: ""`,
	}, r.Errors)
}
