package period

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

var ErrInverted = errors.New("period_start must not be after period_end")

// Period is an inclusive range of calendar days in UTC.
type Period struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// New truncates both ends to their calendar day.
func New(start, end time.Time) (Period, error) {
	p := Period{Start: Day(start), End: Day(end)}
	if p.Start.After(p.End) {
		return Period{}, ErrInverted
	}
	return p, nil
}

// Parse reads two YYYY-MM-DD strings. Both empty means no period (nil).
func Parse(start, end string) (*Period, error) {
	start, end = strings.TrimSpace(start), strings.TrimSpace(end)
	if start == "" && end == "" {
		return nil, nil
	}
	if start == "" || end == "" {
		return nil, fmt.Errorf("both start and end are required")
	}
	s, err := time.Parse(DateLayout, start)
	if err != nil {
		return nil, fmt.Errorf("invalid start: %w", err)
	}
	e, err := time.Parse(DateLayout, end)
	if err != nil {
		return nil, fmt.Errorf("invalid end: %w", err)
	}
	p, err := New(s, e)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Bounds returns the half-open instant range [from, until) covering every
// moment of every day in the period.
func (p Period) Bounds() (from, until time.Time) {
	return p.Start, p.End.AddDate(0, 0, 1)
}

// Contains reports whether t falls on one of the period's days.
func (p Period) Contains(t time.Time) bool {
	from, until := p.Bounds()
	t = t.UTC()
	return !t.Before(from) && t.Before(until)
}

func (p Period) String() string {
	return p.Start.Format(DateLayout) + ".." + p.End.Format(DateLayout)
}

// Day returns midnight UTC of t's calendar day.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// LastDays returns the period ending today that spans n days.
func LastDays(now time.Time, n int) Period {
	if n < 1 {
		n = 1
	}
	end := Day(now)
	return Period{Start: end.AddDate(0, 0, -(n - 1)), End: end}
}
