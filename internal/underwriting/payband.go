package underwriting

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/lendora/backoffice/internal/domain"
)

// Band is one [Min, Max] net-pay interval of a segment's policy.
type Band struct {
	Min float64
	Max float64
}

// ValidateBands checks that the candidate band, inserted among its active
// siblings for the same (tenant, segment), keeps the set a partition:
// sorted by Min, every adjacent pair must share exactly one boundary.
// Comparisons are exact on two-decimal fixed point, never float tolerance.
// Returns the offending pair index alongside the validation error.
func ValidateBands(candidate Band, existing []Band) (int, error) {
	bands := make([]Band, 0, len(existing)+1)
	bands = append(bands, existing...)
	bands = append(bands, candidate)

	sort.Slice(bands, func(i, j int) bool {
		return bands[i].Min < bands[j].Min
	})

	for i := 0; i < len(bands)-1; i++ {
		prevMax := decimal.NewFromFloat(bands[i].Max).Round(2)
		nextMin := decimal.NewFromFloat(bands[i+1].Min).Round(2)

		switch prevMax.Cmp(nextMin) {
		case -1:
			return i, &domain.ValidationError{Kind: domain.ValidationGap, Field: "net_pay_band", Index: i}
		case 1:
			return i, &domain.ValidationError{Kind: domain.ValidationOverlap, Field: "net_pay_band", Index: i}
		}
	}

	return -1, nil
}
