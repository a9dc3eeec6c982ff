package application

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadPolicyDefaults(t *testing.T) {
	t.Setenv("BILLING_CONFIG", "")
	t.Setenv("BILLING_UNPAID_WALK_LIMIT", "")
	t.Setenv("BILLING_ALLOCATE_WALK_LIMIT", "")
	t.Setenv("BILLING_CURRENCY", "")
	t.Setenv("BILLING_RECEIPT_ROWS", "")

	policy, err := LoadPolicy()
	if err != nil {
		t.Fatalf("load policy: %v", err)
	}
	if policy.UnpaidWalkLimit != 240 {
		t.Fatalf("unpaid walk limit = %d, want 240", policy.UnpaidWalkLimit)
	}
	if policy.AllocateWalkLimit != 120 {
		t.Fatalf("allocate walk limit = %d, want 120", policy.AllocateWalkLimit)
	}
	if policy.Currency != "IDR" {
		t.Fatalf("currency = %q, want IDR", policy.Currency)
	}
	if policy.ReceiptRows != 12 {
		t.Fatalf("receipt rows = %d, want 12", policy.ReceiptRows)
	}
}

func TestLoadPolicyEnvOverride(t *testing.T) {
	t.Setenv("BILLING_CONFIG", "")
	t.Setenv("BILLING_UNPAID_WALK_LIMIT", "60")
	t.Setenv("BILLING_CURRENCY", "USD")

	policy, err := LoadPolicy()
	if err != nil {
		t.Fatalf("load policy: %v", err)
	}
	if policy.UnpaidWalkLimit != 60 {
		t.Fatalf("unpaid walk limit = %d, want 60", policy.UnpaidWalkLimit)
	}
	if policy.Currency != "USD" {
		t.Fatalf("currency = %q, want USD", policy.Currency)
	}
}

func TestLoadPolicyYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "billing.yaml")
	data := []byte("unpaid_walk_limit: 48\nallocate_walk_limit: 24\ncurrency: IDR\nreceipt_rows: 6\n")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("BILLING_CONFIG", path)

	policy, err := LoadPolicy()
	if err != nil {
		t.Fatalf("load policy: %v", err)
	}
	if policy.UnpaidWalkLimit != 48 || policy.AllocateWalkLimit != 24 || policy.ReceiptRows != 6 {
		t.Fatalf("unexpected policy: %+v", policy)
	}
}

func TestLoadPolicyRejectsNonPositiveLimits(t *testing.T) {
	t.Setenv("BILLING_CONFIG", "")
	t.Setenv("BILLING_UNPAID_WALK_LIMIT", "-1")

	if _, err := LoadPolicy(); err == nil {
		t.Fatal("expected error for negative walk limit")
	}
}
