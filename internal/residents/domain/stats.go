package residents

import (
	"time"

	"github.com/shopspring/decimal"
)

// Stats is the dashboard summary over the whole roster.
type Stats struct {
	Total           int             `json:"total"`
	FamilyCards     int             `json:"family_cards"`
	Male            int             `json:"male"`
	Female          int             `json:"female"`
	Children        int             `json:"children"`
	TotalIPLBilled  decimal.Decimal `json:"total_ipl_billed"`
	PaidUpResidents int             `json:"paid_up_residents"`
}

const childAgeLimit = 18

// ComputeStats aggregates dashboard statistics at the given time.
func ComputeStats(list []Resident, now time.Time) Stats {
	stats := Stats{TotalIPLBilled: decimal.Zero}
	cards := make(map[string]struct{})
	for i := range list {
		r := &list[i]
		stats.Total++
		if r.FamilyCardNumber != "" {
			cards[r.FamilyCardNumber] = struct{}{}
		}
		switch r.Gender {
		case GenderMale:
			stats.Male++
		case GenderFemale:
			stats.Female++
		}
		if !r.BirthDate.IsZero() && r.Age(now) < childAgeLimit {
			stats.Children++
		}
		stats.TotalIPLBilled = stats.TotalIPLBilled.Add(r.IPLAmount)
		if r.IPLStatus == IPLStatusPaid {
			stats.PaidUpResidents++
		}
	}
	stats.FamilyCards = len(cards)
	return stats
}
