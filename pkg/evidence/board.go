package evidence

import "sort"

// Resolution is the outcome of resolving one datum.
type Resolution struct {
	Datum     string
	Winner    Candidate
	Conflicts []Candidate
}

// Board collects candidates across sources and resolves them per datum.
type Board struct {
	byDatum map[string][]Candidate
}

// NewBoard returns an empty board.
func NewBoard() *Board {
	return &Board{byDatum: make(map[string][]Candidate)}
}

// Add records a candidate under its datum.
func (b *Board) Add(c Candidate) {
	b.byDatum[c.Datum] = append(b.byDatum[c.Datum], c)
}

// Len returns the number of distinct datums.
func (b *Board) Len() int {
	return len(b.byDatum)
}

// Datums returns the datum keys in sorted order.
func (b *Board) Datums() []string {
	keys := make([]string, 0, len(b.byDatum))
	for k := range b.byDatum {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Candidates returns the candidates recorded for datum.
func (b *Board) Candidates(datum string) []Candidate {
	return append([]Candidate(nil), b.byDatum[datum]...)
}

// Resolve resolves every datum, in sorted datum order.
func (b *Board) Resolve() []Resolution {
	out := make([]Resolution, 0, len(b.byDatum))
	for _, datum := range b.Datums() {
		winner, conflicts := Resolve(b.byDatum[datum])
		if winner == nil {
			continue
		}
		out = append(out, Resolution{Datum: datum, Winner: *winner, Conflicts: conflicts})
	}
	return out
}
