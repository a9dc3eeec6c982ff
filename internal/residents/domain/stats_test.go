package residents

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestComputeStats(t *testing.T) {
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	list := []Resident{
		{
			Name:             "Budi",
			NIK:              "317" + "1234567890001",
			FamilyCardNumber: "KK-001",
			Gender:           GenderMale,
			BirthDate:        time.Date(1980, 5, 2, 0, 0, 0, 0, time.UTC),
			IPLAmount:        decimal.NewFromInt(100000),
			IPLStatus:        IPLStatusPaid,
		},
		{
			Name:             "Sari",
			NIK:              "3171234567890002",
			FamilyCardNumber: "KK-001",
			Gender:           GenderFemale,
			BirthDate:        time.Date(2015, 1, 10, 0, 0, 0, 0, time.UTC),
			IPLAmount:        decimal.NewFromInt(100000),
			IPLStatus:        IPLStatusUnpaid,
		},
		{
			Name:             "Andi",
			NIK:              "3171234567890003",
			FamilyCardNumber: "KK-002",
			Gender:           GenderMale,
			BirthDate:        time.Date(2008, 9, 20, 0, 0, 0, 0, time.UTC),
			IPLAmount:        decimal.NewFromInt(150000),
			IPLStatus:        IPLStatusUnpaid,
		},
	}

	stats := ComputeStats(list, now)
	if stats.Total != 3 {
		t.Fatalf("expected 3 total, got %d", stats.Total)
	}
	if stats.FamilyCards != 2 {
		t.Fatalf("expected 2 family cards, got %d", stats.FamilyCards)
	}
	if stats.Male != 2 || stats.Female != 1 {
		t.Fatalf("unexpected gender split: %d male, %d female", stats.Male, stats.Female)
	}
	// Andi turns 18 on 2026-09-20, so he still counts as a child.
	if stats.Children != 2 {
		t.Fatalf("expected 2 children, got %d", stats.Children)
	}
	if !stats.TotalIPLBilled.Equal(decimal.NewFromInt(350000)) {
		t.Fatalf("expected 350000 billed, got %s", stats.TotalIPLBilled)
	}
	if stats.PaidUpResidents != 1 {
		t.Fatalf("expected 1 paid up, got %d", stats.PaidUpResidents)
	}
}

func TestComputeStatsEmpty(t *testing.T) {
	stats := ComputeStats(nil, time.Now())
	if stats.Total != 0 || stats.FamilyCards != 0 {
		t.Fatalf("expected zero stats, got %+v", stats)
	}
	if !stats.TotalIPLBilled.Equal(decimal.Zero) {
		t.Fatalf("expected zero billed, got %s", stats.TotalIPLBilled)
	}
}

func TestResidentValidate(t *testing.T) {
	r := Resident{Name: "Budi", NIK: "317", FamilyCardNumber: "KK-1"}
	if err := r.Validate(); err != nil {
		t.Fatalf("expected valid, got %v", err)
	}

	cases := []struct {
		name string
		r    Resident
		want error
	}{
		{"missing name", Resident{NIK: "317", FamilyCardNumber: "KK-1"}, ErrEmptyName},
		{"missing nik", Resident{Name: "Budi", FamilyCardNumber: "KK-1"}, ErrEmptyNIK},
		{"missing family card", Resident{Name: "Budi", NIK: "317"}, ErrEmptyFamilyCard},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.r.Validate(); err != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestResidentAge(t *testing.T) {
	r := Resident{BirthDate: time.Date(2000, 6, 15, 0, 0, 0, 0, time.UTC)}
	if got := r.Age(time.Date(2026, 6, 14, 0, 0, 0, 0, time.UTC)); got != 25 {
		t.Fatalf("expected 25 the day before the birthday, got %d", got)
	}
	if got := r.Age(time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)); got != 26 {
		t.Fatalf("expected 26 on the birthday, got %d", got)
	}

	unknown := Resident{}
	if got := unknown.Age(time.Now()); got != 0 {
		t.Fatalf("expected 0 for unknown birth date, got %d", got)
	}
}
