package integration_test

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/trisnoaminudin-sketch/ClusterMadani-2026/internal/auth"
	billingapp "github.com/trisnoaminudin-sketch/ClusterMadani-2026/internal/billing/application"
	billing "github.com/trisnoaminudin-sketch/ClusterMadani-2026/internal/billing/domain"
	billingrepo "github.com/trisnoaminudin-sketch/ClusterMadani-2026/internal/billing/infrastructure/postgres"
	residents "github.com/trisnoaminudin-sketch/ClusterMadani-2026/internal/residents/domain"
	residentrepo "github.com/trisnoaminudin-sketch/ClusterMadani-2026/internal/residents/infrastructure/postgres"

	_ "github.com/jackc/pgx/v5/stdlib"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

func TestBillingFlowPostgres(t *testing.T) {
	dsn := os.Getenv("PG_DSN")
	if dsn == "" {
		t.Skip("PG_DSN not set")
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()

	for _, table := range []string{"residents", "ipl_payments", "app_settings"} {
		if !tableExists(db, table) {
			t.Skipf("%s missing; run migrations", table)
		}
	}

	ctx := auth.WithIdentity(context.Background(), "it-admin", auth.RoleAdmin, auth.Scope{})
	now := time.Date(2024, 3, 20, 10, 0, 0, 0, time.UTC)

	households := residentrepo.NewRepository(db)
	payments := billingrepo.NewPaymentRepository(db)
	settings := billingrepo.NewSettingsRepository(db)

	policy := billingapp.Policy{UnpaidWalkLimit: 240, AllocateWalkLimit: 120, Currency: "IDR", ReceiptRows: 12}
	service, err := billingapp.NewService(payments, settings, households, policy, fixedClock{now: now})
	if err != nil {
		t.Fatalf("billing service: %v", err)
	}

	resident := &residents.Resident{
		NIK:              "it-nik-billing-flow",
		FamilyCardNumber: "it-kk-billing-flow",
		Name:             "Integration Tester",
		Block:            "IT",
		HouseNumber:      "99",
		CreatedAt:        time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
	}
	if err := households.Create(ctx, resident); err != nil {
		t.Fatalf("create resident: %v", err)
	}
	defer func() {
		_, _ = db.ExecContext(ctx, `DELETE FROM ipl_payments WHERE resident_id = $1`, resident.ID)
		_, _ = db.ExecContext(ctx, `DELETE FROM residents WHERE id = $1`, resident.ID)
	}()

	if err := service.UpdateMonthlyFee(ctx, "150000"); err != nil {
		t.Fatalf("update fee: %v", err)
	}

	summary, err := service.DebtSummary(ctx, resident.ID)
	if err != nil {
		t.Fatalf("debt summary: %v", err)
	}
	wantUnpaid := []billing.Period{"2024-01", "2024-02", "2024-03"}
	if len(summary.UnpaidPeriods) != len(wantUnpaid) {
		t.Fatalf("unpaid = %v, want %v", summary.UnpaidPeriods, wantUnpaid)
	}
	for i, period := range wantUnpaid {
		if summary.UnpaidPeriods[i] != period {
			t.Fatalf("unpaid = %v, want %v", summary.UnpaidPeriods, wantUnpaid)
		}
	}
	if !summary.TotalDue.Equal(decimal.NewFromInt(450000)) {
		t.Fatalf("total due = %s, want 450000", summary.TotalDue)
	}

	covered, err := service.RecordPayment(ctx, resident.ID, decimal.NewFromInt(300000))
	if err != nil {
		t.Fatalf("record payment: %v", err)
	}
	if len(covered) != 2 || covered[0] != "2024-01" || covered[1] != "2024-02" {
		t.Fatalf("covered = %v, want [2024-01 2024-02]", covered)
	}

	summary, err = service.DebtSummary(ctx, resident.ID)
	if err != nil {
		t.Fatalf("debt summary after payment: %v", err)
	}
	if len(summary.UnpaidPeriods) != 1 || summary.UnpaidPeriods[0] != "2024-03" {
		t.Fatalf("unpaid after payment = %v, want [2024-03]", summary.UnpaidPeriods)
	}

	// Partial coverage must not flag the household as paid up.
	got, err := households.Get(ctx, resident.ID)
	if err != nil {
		t.Fatalf("get resident: %v", err)
	}
	if got.IPLStatus != residents.IPLStatusUnpaid {
		t.Fatalf("status = %q, want %q", got.IPLStatus, residents.IPLStatusUnpaid)
	}

	covered, err = service.RecordPayment(ctx, resident.ID, decimal.NewFromInt(150000))
	if err != nil {
		t.Fatalf("record final payment: %v", err)
	}
	if len(covered) != 1 || covered[0] != "2024-03" {
		t.Fatalf("covered = %v, want [2024-03]", covered)
	}
	got, err = households.Get(ctx, resident.ID)
	if err != nil {
		t.Fatalf("get resident: %v", err)
	}
	if got.IPLStatus != residents.IPLStatusPaid {
		t.Fatalf("status = %q, want %q", got.IPLStatus, residents.IPLStatusPaid)
	}

	if _, err := service.RecordPayment(ctx, resident.ID, decimal.NewFromInt(150000)); err != billingapp.ErrNothingOutstanding {
		t.Fatalf("expected ErrNothingOutstanding, got %v", err)
	}
	if _, err := service.RecordPayment(ctx, resident.ID, decimal.NewFromInt(1000)); err != billingapp.ErrAmountTooLow {
		t.Fatalf("expected ErrAmountTooLow, got %v", err)
	}

	history, err := service.History(ctx)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	found := 0
	for _, entry := range history {
		if entry.ResidentID == resident.ID {
			found++
		}
	}
	if found != 3 {
		t.Fatalf("history rows for resident = %d, want 3", found)
	}

	if err := service.ResetStatus(ctx, resident.ID); err != nil {
		t.Fatalf("reset status: %v", err)
	}
	got, err = households.Get(ctx, resident.ID)
	if err != nil {
		t.Fatalf("get resident: %v", err)
	}
	if got.IPLStatus != residents.IPLStatusUnpaid {
		t.Fatalf("status after reset = %q, want %q", got.IPLStatus, residents.IPLStatusUnpaid)
	}
}

func tableExists(db *sql.DB, name string) bool {
	var exists bool
	err := db.QueryRow(`SELECT EXISTS (
		SELECT 1 FROM information_schema.tables
		WHERE table_schema = 'public' AND table_name = $1
	)`, name).Scan(&exists)
	return err == nil && exists
}
