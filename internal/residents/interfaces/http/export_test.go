package http

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	residents "github.com/trisnoaminudin-sketch/ClusterMadani-2026/internal/residents/domain"
)

func TestRosterXLSXRoundTrip(t *testing.T) {
	list := []residents.Resident{
		{
			NIK:              "3201010101010001",
			FamilyCardNumber: "3201010101010000",
			Name:             "Budi Santoso",
			HeadPhone:        "081234567890",
			MemberCount:      4,
			Gender:           residents.GenderMale,
			BirthDate:        time.Date(1985, 3, 12, 0, 0, 0, 0, time.UTC),
			Address:          "Jl. Madani Raya",
			HouseNumber:      "12",
			Block:            "A",
			RT:               "01",
			RW:               "05",
			OwnershipStatus:  "Milik Sendiri",
			IPLAmount:        decimal.NewFromInt(150000),
			IPLStatus:        residents.IPLStatusUnpaid,
		},
		{
			NIK:              "3201010101010002",
			FamilyCardNumber: "3201010101010099",
			Name:             "Siti Aminah",
			Gender:           residents.GenderFemale,
			HouseNumber:      "3",
			Block:            "B",
			IPLStatus:        residents.IPLStatusPaid,
		},
	}

	data, err := BuildRosterXLSX(list)
	if err != nil {
		t.Fatalf("build roster: %v", err)
	}
	parsed, err := ParseRosterXLSX(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("parse roster: %v", err)
	}
	if len(parsed) != len(list) {
		t.Fatalf("parsed %d rows, want %d", len(parsed), len(list))
	}

	got := parsed[0]
	if got.NIK != list[0].NIK || got.Name != list[0].Name || got.FamilyCardNumber != list[0].FamilyCardNumber {
		t.Fatalf("identity fields lost: %+v", got)
	}
	if got.MemberCount != 4 {
		t.Fatalf("member count = %d, want 4", got.MemberCount)
	}
	if !got.BirthDate.Equal(list[0].BirthDate) {
		t.Fatalf("birth date = %v, want %v", got.BirthDate, list[0].BirthDate)
	}
	if !got.IPLAmount.Equal(list[0].IPLAmount) {
		t.Fatalf("ipl amount = %s, want %s", got.IPLAmount, list[0].IPLAmount)
	}
	if got.Block != "A" || got.HouseNumber != "12" {
		t.Fatalf("address fields lost: %+v", got)
	}
	if parsed[1].IPLStatus != residents.IPLStatusPaid {
		t.Fatalf("status = %q, want %q", parsed[1].IPLStatus, residents.IPLStatusPaid)
	}
}

func TestParseRosterXLSXSkipsBlankRows(t *testing.T) {
	data, err := BuildRosterXLSX([]residents.Resident{
		{NIK: "1", Name: "Satu"},
		{},
		{NIK: "2", Name: "Dua"},
	})
	if err != nil {
		t.Fatalf("build roster: %v", err)
	}
	parsed, err := ParseRosterXLSX(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("parse roster: %v", err)
	}
	if len(parsed) != 2 {
		t.Fatalf("parsed %d rows, want 2", len(parsed))
	}
}
