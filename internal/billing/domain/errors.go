package billing

import "errors"

var (
	// ErrInvalidDate indicates an unparsable or out-of-range calendar date.
	ErrInvalidDate = errors.New("billing: invalid date")
	// ErrInvalidPeriod indicates a period string not in YYYY-MM form.
	ErrInvalidPeriod = errors.New("billing: invalid period")
)
