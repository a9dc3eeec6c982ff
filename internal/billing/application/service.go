package application

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/trisnoaminudin-sketch/ClusterMadani-2026/internal/auth"
	billing "github.com/trisnoaminudin-sketch/ClusterMadani-2026/internal/billing/domain"
	paymentrepo "github.com/trisnoaminudin-sketch/ClusterMadani-2026/internal/billing/infrastructure/postgres"
	"github.com/trisnoaminudin-sketch/ClusterMadani-2026/internal/observability/metrics"
	residents "github.com/trisnoaminudin-sketch/ClusterMadani-2026/internal/residents/domain"
	residentrepo "github.com/trisnoaminudin-sketch/ClusterMadani-2026/internal/residents/infrastructure/postgres"
)

var (
	// ErrMonthlyFeeNotSet indicates payments cannot be recorded while the
	// fee setting is zero.
	ErrMonthlyFeeNotSet = errors.New("billing: monthly fee not set")
	// ErrAmountTooLow indicates the amount covers no whole period.
	ErrAmountTooLow = errors.New("billing: amount below one monthly fee")
	// ErrNothingOutstanding indicates every period through now is paid.
	ErrNothingOutstanding = errors.New("billing: nothing outstanding")
	// ErrInvalidAmount indicates a non-positive or unparsable amount.
	ErrInvalidAmount = errors.New("billing: invalid amount")
)

// Clock returns the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock uses time.Now.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// Service handles IPL billing use cases: the fee setting, per-household
// debt summaries, payment recording and history.
type Service struct {
	payments   *paymentrepo.PaymentRepository
	settings   *paymentrepo.SettingsRepository
	households *residentrepo.Repository
	reconciler *billing.Reconciler
	clock      Clock
	policy     Policy
}

// NewService constructs a billing service.
func NewService(
	payments *paymentrepo.PaymentRepository,
	settings *paymentrepo.SettingsRepository,
	households *residentrepo.Repository,
	policy Policy,
	clock Clock,
) (*Service, error) {
	if payments == nil {
		return nil, errors.New("billing service: nil payment repo")
	}
	if settings == nil {
		return nil, errors.New("billing service: nil settings repo")
	}
	if households == nil {
		return nil, errors.New("billing service: nil resident repo")
	}
	if clock == nil {
		clock = SystemClock{}
	}
	reconciler := billing.NewReconciler(
		billing.WithUnpaidWalkLimit(policy.UnpaidWalkLimit),
		billing.WithAllocateWalkLimit(policy.AllocateWalkLimit),
	)
	return &Service{
		payments:   payments,
		settings:   settings,
		households: households,
		reconciler: reconciler,
		clock:      clock,
		policy:     policy,
	}, nil
}

// Policy returns the active billing policy.
func (s *Service) Policy() Policy { return s.policy }

// MonthlyFee reads the global fee setting. An unset or unparsable value
// reads as zero so a misconfigured setting renders as "no debt" instead
// of an error page.
func (s *Service) MonthlyFee(ctx context.Context) (decimal.Decimal, error) {
	raw, err := s.settings.GetIPLAmount(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	fee, err := decimal.NewFromString(raw)
	if err != nil || fee.Sign() < 0 {
		return decimal.Zero, nil
	}
	return fee, nil
}

// UpdateMonthlyFee stores a new global fee setting.
func (s *Service) UpdateMonthlyFee(ctx context.Context, value string) error {
	fee, err := decimal.NewFromString(value)
	if err != nil || fee.Sign() < 0 {
		return ErrInvalidAmount
	}
	return s.settings.UpsertIPLAmount(ctx, fee.String())
}

// DebtSummary reconciles one household's paid periods against its
// registration date and returns what is outstanding.
func (s *Service) DebtSummary(ctx context.Context, residentID string) (*billing.DebtSummary, error) {
	household, err := s.visibleHousehold(ctx, residentID)
	if err != nil {
		return nil, err
	}
	fee, err := s.MonthlyFee(ctx)
	if err != nil {
		return nil, err
	}
	paid, err := s.payments.ListPaidPeriods(ctx, residentID)
	if err != nil {
		return nil, err
	}

	unpaid := s.reconciler.UnpaidPeriods(s.clock.Now(), household.CreatedAt, billing.NewPeriodSet(paid))
	if len(unpaid) >= s.reconciler.UnpaidWalkLimit() {
		metrics.IncReconcileTruncation()
	}
	return &billing.DebtSummary{
		ResidentID:    residentID,
		UnpaidPeriods: unpaid,
		MonthlyFee:    fee,
		TotalDue:      billing.TotalDue(fee, len(unpaid)),
	}, nil
}

// RecordPayment allocates an amount to the oldest outstanding periods and
// persists one payment row per covered period at exactly the monthly fee.
// Any remainder below one fee stays with the payer; it is never recorded.
// The household is flagged paid-up only when nothing remains outstanding.
func (s *Service) RecordPayment(ctx context.Context, residentID string, amount decimal.Decimal) ([]billing.Period, error) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObservePaymentRecord(result, time.Since(start))
	}()

	if amount.Sign() <= 0 {
		result = metrics.ResultError
		return nil, ErrInvalidAmount
	}
	household, err := s.visibleHousehold(ctx, residentID)
	if err != nil {
		result = metrics.ResultError
		return nil, err
	}
	fee, err := s.MonthlyFee(ctx)
	if err != nil {
		result = metrics.ResultError
		return nil, err
	}
	if fee.Sign() <= 0 {
		result = metrics.ResultError
		return nil, ErrMonthlyFeeNotSet
	}
	paid, err := s.payments.ListPaidPeriods(ctx, residentID)
	if err != nil {
		result = metrics.ResultError
		return nil, err
	}

	now := s.clock.Now()
	paidSet := billing.NewPeriodSet(paid)
	covered := s.reconciler.Allocate(amount, fee, now, household.CreatedAt, paidSet)
	if len(covered) == 0 {
		result = metrics.ResultError
		if amount.Cmp(fee) < 0 {
			return nil, ErrAmountTooLow
		}
		return nil, ErrNothingOutstanding
	}

	unpaid := s.reconciler.UnpaidPeriods(now, household.CreatedAt, paidSet)
	markPaid := len(covered) == len(unpaid)

	if err := s.payments.RecordAllocation(
		ctx, residentID, covered, fee, markPaid,
		residents.IPLStatusPaid, residents.IPLStatusUnpaid, now,
	); err != nil {
		result = metrics.ResultError
		return nil, err
	}
	return covered, nil
}

// ResetStatus flips a household back to unpaid without touching payments.
func (s *Service) ResetStatus(ctx context.Context, residentID string) error {
	if _, err := s.visibleHousehold(ctx, residentID); err != nil {
		return err
	}
	return s.payments.UpdateResidentStatus(ctx, residentID, residents.IPLStatusUnpaid)
}

// History returns payment history visible to the caller, newest first.
func (s *Service) History(ctx context.Context) ([]billing.HistoryEntry, error) {
	var block, houseNumber string
	scope := auth.ScopeFromContext(ctx)
	if auth.RoleFromContext(ctx) != auth.RoleAdmin && scope.IsRestricted() {
		block = scope.Block
		houseNumber = scope.HouseNumber
	}
	return s.payments.ListHistory(ctx, block, houseNumber)
}

// LatestPayments returns recent payments of one household for receipts.
func (s *Service) LatestPayments(ctx context.Context, residentID string) (*residents.Resident, []billing.Payment, error) {
	household, err := s.visibleHousehold(ctx, residentID)
	if err != nil {
		return nil, nil, err
	}
	payments, err := s.payments.LatestForResident(ctx, residentID, s.policy.ReceiptRows)
	if err != nil {
		return nil, nil, err
	}
	return household, payments, nil
}

func (s *Service) visibleHousehold(ctx context.Context, residentID string) (*residents.Resident, error) {
	if residentID == "" {
		return nil, residents.ErrNotFound
	}
	household, err := s.households.Get(ctx, residentID)
	if err != nil {
		return nil, err
	}
	scope := auth.ScopeFromContext(ctx)
	if auth.RoleFromContext(ctx) != auth.RoleAdmin && !scope.AllowsHousehold(household.Block, household.HouseNumber) {
		return nil, residents.ErrNotFound
	}
	return household, nil
}
