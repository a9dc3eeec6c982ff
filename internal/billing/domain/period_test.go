package billing

import (
	"errors"
	"testing"
	"time"
)

func TestPeriodOfTruncatesToMonth(t *testing.T) {
	cases := []struct {
		name string
		in   time.Time
		want Period
	}{
		{"mid month", time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC), "2024-03"},
		{"first of month", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), "2024-01"},
		{"last day near midnight", time.Date(2023, 12, 31, 23, 59, 59, 0, time.UTC), "2023-12"},
		{"single digit month zero padded", time.Date(2025, 7, 4, 0, 0, 0, 0, time.UTC), "2025-07"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := PeriodOf(tc.in); got != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}
		})
	}
}

func TestNextMonth(t *testing.T) {
	cases := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{"plain step", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)},
		{"december rolls year", time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"day thirty one does not drift", time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)},
		{"february leap year", time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := NextMonth(tc.in); !got.Equal(tc.want) {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}
		})
	}
}

func TestParseDate(t *testing.T) {
	parsed, err := ParseDate("2024-01-15")
	if err != nil {
		t.Fatalf("parse date: %v", err)
	}
	if parsed.Year() != 2024 || parsed.Month() != time.January || parsed.Day() != 15 {
		t.Fatalf("unexpected date %s", parsed)
	}

	for _, bad := range []string{"", "2024-13-01", "15/01/2024", "yesterday", "2024-01"} {
		if _, err := ParseDate(bad); !errors.Is(err, ErrInvalidDate) {
			t.Fatalf("expected ErrInvalidDate for %q, got %v", bad, err)
		}
	}
}

func TestParsePeriod(t *testing.T) {
	if _, err := ParsePeriod("2024-03"); err != nil {
		t.Fatalf("parse period: %v", err)
	}
	for _, bad := range []string{"", "2024-3", "2024-13", "202403", "2024-03-01"} {
		if _, err := ParsePeriod(bad); !errors.Is(err, ErrInvalidPeriod) {
			t.Fatalf("expected ErrInvalidPeriod for %q, got %v", bad, err)
		}
	}
}

func TestPeriodOrderingIsLexicographic(t *testing.T) {
	// Chronological order must equal string order for the zero-padded form.
	earlier := PeriodOf(time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC))
	later := PeriodOf(time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC))
	if !(earlier < later) {
		t.Fatalf("expected %s < %s", earlier, later)
	}
}

func TestPeriodSetContains(t *testing.T) {
	set := NewPeriodSet([]Period{"2024-01", "2024-03"})
	if !set.Contains("2024-01") {
		t.Fatal("expected 2024-01 in set")
	}
	if set.Contains("2024-02") {
		t.Fatal("did not expect 2024-02 in set")
	}
	var empty PeriodSet
	if empty.Contains("2024-01") {
		t.Fatal("nil set must contain nothing")
	}
}
