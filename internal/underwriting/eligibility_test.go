package underwriting_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/lendora/backoffice/internal/domain"
	"github.com/lendora/backoffice/internal/underwriting"
)

var evalAt = time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

func TestCheckAge(t *testing.T) {
	tests := []struct {
		name      string
		dob       time.Time
		wantValid bool
		wantValue float64
	}{
		{"within bracket", time.Date(1990, 3, 1, 0, 0, 0, 0, time.UTC), true, 35},
		{"too young", time.Date(2005, 1, 1, 0, 0, 0, 0, time.UTC), false, 20},
		{"lower bound inclusive", time.Date(2004, 6, 15, 0, 0, 0, 0, time.UTC), true, 21},
		{"upper bound inclusive", time.Date(1968, 6, 15, 0, 0, 0, 0, time.UTC), true, 57},
		{"too old", time.Date(1967, 6, 14, 0, 0, 0, 0, time.UTC), false, 58},
		{"birthday not yet reached", time.Date(2004, 6, 16, 0, 0, 0, 0, time.UTC), false, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			check := underwriting.CheckAge(tt.dob, evalAt, 0, 0)
			assert.Equal(t, tt.wantValid, check.Valid)
			assert.Equal(t, tt.wantValue, check.Value)
		})
	}
}

func TestCheckAge_TenantOverrides(t *testing.T) {
	dob := time.Date(1967, 1, 1, 0, 0, 0, 0, time.UTC) // 58 at evaluation

	assert.False(t, underwriting.CheckAge(dob, evalAt, 0, 0).Valid)
	assert.True(t, underwriting.CheckAge(dob, evalAt, 0, 60).Valid)
}

func TestCheckServiceLength(t *testing.T) {
	enlisted := time.Date(1991, 6, 1, 0, 0, 0, 0, time.UTC) // 34 years

	check := underwriting.CheckServiceLength(enlisted, evalAt, 0)
	assert.False(t, check.Valid)
	assert.Equal(t, float64(34), check.Value)

	check = underwriting.CheckServiceLength(enlisted, evalAt, 35)
	assert.True(t, check.Valid)
}

func TestCheckNetPay(t *testing.T) {
	assert.True(t, underwriting.CheckNetPay(80000, 50000).Valid)
	assert.True(t, underwriting.CheckNetPay(50000, 50000).Valid)
	assert.False(t, underwriting.CheckNetPay(49999.99, 50000).Valid)
}

func TestCheckDTI_StrictInequality(t *testing.T) {
	// Exactly at the ceiling fails.
	check := underwriting.CheckDTI(16000, 80000, 0.2)
	assert.False(t, check.Valid)
	assert.Equal(t, 0.2, check.Value)

	assert.True(t, underwriting.CheckDTI(15999, 80000, 0.2).Valid)
}

func TestCheckDTI_ZeroNetPay(t *testing.T) {
	check := underwriting.CheckDTI(16000, 0, 0.2)
	assert.False(t, check.Valid)
	assert.Zero(t, check.Value)
}

func TestEvaluate_AllChecksAlwaysPopulated(t *testing.T) {
	customer := domain.Customer{
		NetPay:           80000,
		DateOfBirth:      time.Date(2005, 1, 1, 0, 0, 0, 0, time.UTC), // 20: fails
		DateOfEnlistment: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	policy := domain.SegmentConfig{MinNetPay: 50000, MaxNetPay: 100000, MaxDTI: 0.33}

	eval := underwriting.Evaluate(customer, policy, 18666.67, evalAt)

	assert.False(t, eval.Age.Valid)
	assert.Equal(t, float64(20), eval.Age.Value)

	// Age failing does not suppress the remaining checks.
	assert.True(t, eval.Service.Valid)
	assert.True(t, eval.NetPay.Valid)
	assert.True(t, eval.DTI.Valid)
	assert.InDelta(t, 0.2333, eval.DTI.Value, 0.0001)
}
