package booking

import (
	"strconv"
	"strings"
)

// CalendarDay is one selectable cell of the booking calendar.
type CalendarDay struct {
	Label   string
	Active  bool
	Element Element
}

// DayOfMonth parses the visible label. ok is false when the label is not a number.
func (d CalendarDay) DayOfMonth() (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(d.Label))
	if err != nil {
		return 0, false
	}
	return n, true
}

// TimeSlotRow is one row of a day's time table. Label is the text of its first column.
type TimeSlotRow struct {
	Label   string
	Element Element
}

// TargetTimeRange is matched byte for byte against row labels, e.g. "[ 08:00 - 09:00 ]".
type TargetTimeRange string

type Outcome int

const (
	OutcomeUnmatched Outcome = iota
	OutcomeSuccess
	OutcomeAlreadyBooked
	OutcomeUnexpected
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeAlreadyBooked:
		return "already_booked"
	case OutcomeUnexpected:
		return "unexpected"
	default:
		return "unmatched"
	}
}

// DayResult records what happened to one eligible day.
type DayResult struct {
	Day     int
	Label   string
	Row     string
	Outcome Outcome
}

// Report is the summary of one run, in visiting order.
type Report struct {
	Today   int
	Results []DayResult
}

// Count returns how many days ended with outcome o.
func (r Report) Count(o Outcome) int {
	n := 0
	for _, res := range r.Results {
		if res.Outcome == o {
			n++
		}
	}
	return n
}
