package underwriting_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/lendora/backoffice/internal/underwriting"
)

func TestPrice_ReferenceVector(t *testing.T) {
	// 100,000 principal, 5% upfront fee, 2%/month flat, 6 months, 500 transfer fee.
	quote := underwriting.Price(100000, 0.05, 0.02, 6, 500)

	assert.Equal(t, 5000.0, quote.UpfrontFee)
	assert.Equal(t, 18666.67, quote.Repayment)
	// Total carries the per-period rounding: 18666.67 * 6, not 112000 exactly.
	assert.Equal(t, 112000.02, quote.TotalRepayment)
	assert.Equal(t, 94500.0, quote.NetValue)
}

func TestPrice_RoundHalfUp(t *testing.T) {
	// 6666.70 * 0.05 = 333.335, exactly on the half cent: rounds up.
	quote := underwriting.Price(6666.70, 0.05, 0.0, 1, 0)
	assert.Equal(t, 333.34, quote.UpfrontFee)
}

func TestPrice_ZeroRate(t *testing.T) {
	quote := underwriting.Price(12000, 0, 0, 12, 0)

	assert.Equal(t, 0.0, quote.UpfrontFee)
	assert.Equal(t, 1000.0, quote.Repayment)
	assert.Equal(t, 12000.0, quote.TotalRepayment)
	assert.Equal(t, 12000.0, quote.NetValue)
}

func TestMaturityDate(t *testing.T) {
	approved := time.Date(2025, 1, 15, 14, 30, 0, 0, time.UTC)

	got := underwriting.MaturityDate(approved, 6)

	assert.Equal(t, time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC), got)
}

func TestMaturityDate_CrossesYear(t *testing.T) {
	approved := time.Date(2024, 11, 30, 9, 0, 0, 0, time.UTC)

	got := underwriting.MaturityDate(approved, 4)

	// True month addition, not a milliseconds-per-month constant.
	assert.Equal(t, time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC), got)
}

func TestMaturityDate_SingleMonthTenor(t *testing.T) {
	approved := time.Date(2025, 5, 10, 0, 0, 0, 0, time.UTC)

	got := underwriting.MaturityDate(approved, 1)

	assert.Equal(t, time.Date(2025, 5, 10, 0, 0, 0, 0, time.UTC), got)
}
