package billing

import "time"

const (
	periodLayout = "2006-01"
	dateLayout   = "2006-01-02"
)

// Period identifies a calendar month in "YYYY-MM" form. The zero-padded
// string form sorts lexicographically in chronological order.
type Period string

// String returns the raw period string.
func (p Period) String() string { return string(p) }

// MonthStart returns the first day of the period's month.
func (p Period) MonthStart() (time.Time, error) {
	parsed, err := time.Parse(periodLayout, string(p))
	if err != nil {
		return time.Time{}, ErrInvalidPeriod
	}
	return parsed, nil
}

// ParsePeriod validates a YYYY-MM period string.
func ParsePeriod(value string) (Period, error) {
	if _, err := time.Parse(periodLayout, value); err != nil {
		return "", ErrInvalidPeriod
	}
	return Period(value), nil
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(value string) (time.Time, error) {
	parsed, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return parsed, nil
}

// PeriodOf truncates a date to its calendar month. It operates on the
// date's own calendar components, never on the underlying instant, so a
// timestamp near midnight cannot land in a neighbouring month.
func PeriodOf(t time.Time) Period {
	return Period(t.Format(periodLayout))
}

// MonthStart truncates a date to the first day of its month.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// NextMonth returns the first day of the month after t. Month fifteen of a
// year normalizes to March of the next, so December rolls over without a
// special case. Day-preserving addition is deliberately avoided: it drifts
// across months of different lengths.
func NextMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month()+1, 1, 0, 0, 0, 0, t.Location())
}

// PeriodSet is a read-only membership set of paid periods.
type PeriodSet map[Period]struct{}

// NewPeriodSet builds a set from a slice of periods.
func NewPeriodSet(periods []Period) PeriodSet {
	set := make(PeriodSet, len(periods))
	for _, p := range periods {
		set[p] = struct{}{}
	}
	return set
}

// Contains reports membership.
func (s PeriodSet) Contains(p Period) bool {
	_, ok := s[p]
	return ok
}
