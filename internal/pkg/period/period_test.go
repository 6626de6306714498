package period

import (
	"errors"
	"testing"
	"time"
)

func TestParse(t *testing.T) {
	p, err := Parse("", "")
	if err != nil || p != nil {
		t.Fatalf("empty: want nil,nil got %v,%v", p, err)
	}
	if _, err := Parse("2026-01-01", ""); err == nil {
		t.Fatalf("half-open range should fail")
	}
	if _, err := Parse("2026-02-01", "2026-01-01"); !errors.Is(err, ErrInverted) {
		t.Fatalf("inverted: want ErrInverted got %v", err)
	}
	p, err = Parse("2026-01-01", "2026-01-31")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if p.String() != "2026-01-01..2026-01-31" {
		t.Fatalf("String: got %q", p.String())
	}
}

func TestContainsIsInclusiveOnBothDays(t *testing.T) {
	p, err := New(time.Date(2026, 3, 1, 15, 0, 0, 0, time.UTC), time.Date(2026, 3, 31, 1, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	cases := []struct {
		at   time.Time
		want bool
	}{
		{at: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), want: true},
		{at: time.Date(2026, 3, 31, 23, 59, 59, 0, time.UTC), want: true},
		{at: time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), want: false},
		{at: time.Date(2026, 2, 28, 23, 59, 59, 0, time.UTC), want: false},
	}
	for _, tc := range cases {
		if got := p.Contains(tc.at); got != tc.want {
			t.Fatalf("Contains(%s): want=%v got=%v", tc.at, tc.want, got)
		}
	}
}

func TestLastDays(t *testing.T) {
	now := time.Date(2026, 5, 30, 18, 0, 0, 0, time.UTC)
	p := LastDays(now, 30)
	if want := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC); !p.Start.Equal(want) {
		t.Fatalf("start: want=%s got=%s", want, p.Start)
	}
	if !p.Contains(now) {
		t.Fatalf("period should contain now")
	}
}
