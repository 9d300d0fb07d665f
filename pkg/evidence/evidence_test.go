package evidence_test

import (
	"strings"
	"testing"

	"github.com/agentstation/congressmap/pkg/authority"
	"github.com/agentstation/congressmap/pkg/events"
	"github.com/agentstation/congressmap/pkg/evidence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveEmpty(t *testing.T) {
	winner, conflicts := evidence.Resolve(nil)
	assert.Nil(t, winner)
	assert.Empty(t, conflicts)
}

func TestResolveTrustOrdering(t *testing.T) {
	winner, conflicts := evidence.Resolve([]evidence.Candidate{
		{Value: "A", Trust: 5},
		{Value: "B", Trust: 9},
	})
	require.NotNil(t, winner)
	assert.Equal(t, "B", winner.Value)
	require.Len(t, conflicts, 1)
	assert.Equal(t, "A", conflicts[0].Value)
}

func TestResolveAgreeingCandidatesAreNotConflicts(t *testing.T) {
	winner, conflicts := evidence.Resolve([]evidence.Candidate{
		{Value: "2026-10-16..2026-10-20", Trust: 90, Source: "ASA"},
		{Value: "2026-10-16..2026-10-20", Trust: 40, Source: "AGG"},
		{Value: "2026-10-17..2026-10-21", Trust: 40, Source: "OTHER"},
	})
	require.NotNil(t, winner)
	assert.Equal(t, "ASA", winner.Source)
	require.Len(t, conflicts, 1)
	assert.Equal(t, "OTHER", conflicts[0].Source)
}

func TestResolveTieBreaks(t *testing.T) {
	tests := []struct {
		name   string
		cands  []evidence.Candidate
		winner string
	}{
		{
			name: "role rank",
			cands: []evidence.Candidate{
				{Value: "x", Trust: 50, Role: authority.RoleAggregator},
				{Value: "y", Trust: 50, Role: authority.RoleOfficial},
			},
			winner: "y",
		},
		{
			name: "url",
			cands: []evidence.Candidate{
				{Value: "x", Trust: 50, URL: "https://b.example"},
				{Value: "y", Trust: 50, URL: "https://a.example"},
			},
			winner: "y",
		},
		{
			name: "source",
			cands: []evidence.Candidate{
				{Value: "x", Trust: 50, Source: "ZED"},
				{Value: "y", Trust: 50, Source: "ALPHA"},
			},
			winner: "y",
		},
		{
			name: "value",
			cands: []evidence.Candidate{
				{Value: "2026-02-02", Trust: 50},
				{Value: "2026-01-01", Trust: 50},
			},
			winner: "2026-01-01",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, _ := evidence.Resolve(tt.cands)
			require.NotNil(t, w)
			assert.Equal(t, tt.winner, w.Value)

			reversed := []evidence.Candidate{tt.cands[1], tt.cands[0]}
			w2, _ := evidence.Resolve(reversed)
			assert.Equal(t, w.Value, w2.Value, "result must not depend on input order")
		})
	}
}

func TestResolveDoesNotMutateInput(t *testing.T) {
	long := strings.Repeat("é", 500)
	in := []evidence.Candidate{{Value: "a", Trust: 1, Snippet: long}, {Value: "b", Trust: 2}}
	_, conflicts := evidence.Resolve(in)
	require.Len(t, conflicts, 1)
	assert.Equal(t, 220, len([]rune(conflicts[0].Snippet)))
	assert.Equal(t, long, in[0].Snippet)
	assert.Equal(t, "a", in[0].Value)
}

func TestBound(t *testing.T) {
	assert.Equal(t, "", evidence.Bound("abc", 0))
	assert.Equal(t, "abc", evidence.Bound("abc", 5))
	assert.Equal(t, "ab", evidence.Bound("abc", 2))
	assert.Equal(t, "çã", evidence.Bound("çãé", 2))
}

func TestDatumKey(t *testing.T) {
	congress := events.Event{ID: "asa-2026-congress-1", Series: "ASA", Year: 2026, Type: events.TypeCongress}
	assert.Equal(t, "asa|2026|congress", evidence.DatumKey(congress))

	workshop := events.Event{ID: "asa-2026-workshop_deadline-2", Series: "ASA", Year: 2026, Type: events.TypeWorkshopDeadline}
	assert.Equal(t, "id:asa-2026-workshop_deadline-2", evidence.DatumKey(workshop))
}

func TestBoardResolveSortedAndPerDatum(t *testing.T) {
	b := evidence.NewBoard()
	b.Add(evidence.Candidate{Datum: "copa|2026|congress", Value: "r1", Trust: 90, Ref: 0})
	b.Add(evidence.Candidate{Datum: "asa|2026|congress", Value: "r2", Trust: 10, Ref: 1})
	b.Add(evidence.Candidate{Datum: "asa|2026|congress", Value: "r3", Trust: 70, Ref: 2})

	assert.Equal(t, 2, b.Len())
	res := b.Resolve()
	require.Len(t, res, 2)
	assert.Equal(t, "asa|2026|congress", res[0].Datum)
	assert.Equal(t, 2, res[0].Winner.Ref)
	require.Len(t, res[0].Conflicts, 1)
	assert.Equal(t, "r2", res[0].Conflicts[0].Value)
	assert.Equal(t, "copa|2026|congress", res[1].Datum)
	assert.Empty(t, res[1].Conflicts)
}

func TestCandidateConflict(t *testing.T) {
	c := evidence.Candidate{Value: "v", Source: "COPA", Role: authority.RoleInstitutional, Trust: 70, URL: "u", Snippet: strings.Repeat("x", 300)}
	conflict := c.Conflict()
	assert.Equal(t, "v", conflict.Value)
	assert.Equal(t, authority.Trust(70), conflict.Trust)
	assert.Len(t, conflict.Snippet, 220)
}
