package events

// Schedule is the temporal part of an event: a Span for ranged types or a
// Day for point-dated types.
type Schedule interface {
	// Anchor is the date the event is sorted and identified by.
	Anchor() Date
	// Last is the final day the event is relevant.
	Last() Date
	// Value renders the schedule as a comparable datum value.
	Value() string

	isSchedule()
}

// Span is a start and end date, both inclusive.
type Span struct {
	Start Date
	End   Date
}

// Anchor implements Schedule.
func (s Span) Anchor() Date { return s.Start }

// Last implements Schedule.
func (s Span) Last() Date { return s.End }

// Value implements Schedule.
func (s Span) Value() string { return string(s.Start) + ".." + string(s.End) }

func (Span) isSchedule() {}

// Day is a single date.
type Day struct {
	Date Date
}

// Anchor implements Schedule.
func (d Day) Anchor() Date { return d.Date }

// Last implements Schedule.
func (d Day) Last() Date { return d.Date }

// Value implements Schedule.
func (d Day) Value() string { return string(d.Date) }

func (Day) isSchedule() {}
