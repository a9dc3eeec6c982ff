package billing

import (
	"time"

	"github.com/shopspring/decimal"
)

// Walk limits bound the month walk against malformed registration dates.
// They are policy, not domain limits: twenty years of debt for the unpaid
// walk, ten for payment allocation, both overridable per deployment.
const (
	DefaultUnpaidWalkLimit   = 240
	DefaultAllocateWalkLimit = 120
)

// Reconciler computes outstanding billing periods and allocates payments
// to them. It holds no state beyond its walk limits; every computation is
// a pure function of its arguments, including the caller-supplied clock
// value, so results for the same inputs never differ between calls.
type Reconciler struct {
	unpaidWalkLimit   int
	allocateWalkLimit int
}

// ReconcilerOption customizes a Reconciler.
type ReconcilerOption func(*Reconciler)

// WithUnpaidWalkLimit overrides the unpaid-period walk bound.
func WithUnpaidWalkLimit(limit int) ReconcilerOption {
	return func(r *Reconciler) {
		if limit > 0 {
			r.unpaidWalkLimit = limit
		}
	}
}

// WithAllocateWalkLimit overrides the allocation walk bound.
func WithAllocateWalkLimit(limit int) ReconcilerOption {
	return func(r *Reconciler) {
		if limit > 0 {
			r.allocateWalkLimit = limit
		}
	}
}

// NewReconciler constructs a Reconciler with default walk limits.
func NewReconciler(opts ...ReconcilerOption) *Reconciler {
	r := &Reconciler{
		unpaidWalkLimit:   DefaultUnpaidWalkLimit,
		allocateWalkLimit: DefaultAllocateWalkLimit,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// UnpaidWalkLimit returns the configured unpaid walk bound.
func (r *Reconciler) UnpaidWalkLimit() int { return r.unpaidWalkLimit }

// AllocateWalkLimit returns the configured allocation walk bound.
func (r *Reconciler) AllocateWalkLimit() int { return r.allocateWalkLimit }

// UnpaidPeriods walks every month from the registration month through the
// month of now, inclusive, and returns those not present in paid, oldest
// first. A zero registration date yields nil: registration is the
// precondition for any obligation. A registration month after now yields
// nil because the walk's upper bound precedes its lower bound.
func (r *Reconciler) UnpaidPeriods(now, registeredAt time.Time, paid PeriodSet) []Period {
	if registeredAt.IsZero() {
		return nil
	}

	var unpaid []Period
	current := MonthStart(registeredAt)
	last := MonthStart(now)
	for steps := 0; steps < r.unpaidWalkLimit && !current.After(last); steps++ {
		period := PeriodOf(current)
		if !paid.Contains(period) {
			unpaid = append(unpaid, period)
		}
		current = NextMonth(current)
	}
	return unpaid
}

// Allocate determines which unpaid periods a payment covers, oldest first.
// Only whole monthly fees are allocated: a payment below one fee covers
// nothing, and allocation stops the moment the remainder drops under the
// fee. The result is always a prefix of UnpaidPeriods for the same inputs.
func (r *Reconciler) Allocate(amount, monthlyFee decimal.Decimal, now, registeredAt time.Time, paid PeriodSet) []Period {
	if monthlyFee.Sign() <= 0 || amount.Cmp(monthlyFee) < 0 {
		return nil
	}
	if registeredAt.IsZero() {
		return nil
	}

	var covered []Period
	remaining := amount
	current := MonthStart(registeredAt)
	last := MonthStart(now)
	// Every visited month counts against the limit, paid months included.
	for steps := 0; steps < r.allocateWalkLimit && !current.After(last); steps++ {
		if remaining.Cmp(monthlyFee) < 0 {
			break
		}
		period := PeriodOf(current)
		if !paid.Contains(period) {
			covered = append(covered, period)
			remaining = remaining.Sub(monthlyFee)
		}
		current = NextMonth(current)
	}
	return covered
}

// TotalDue returns the amount owed for a count of unpaid periods.
func TotalDue(monthlyFee decimal.Decimal, unpaidCount int) decimal.Decimal {
	if unpaidCount <= 0 {
		return decimal.Zero
	}
	return monthlyFee.Mul(decimal.NewFromInt(int64(unpaidCount)))
}
