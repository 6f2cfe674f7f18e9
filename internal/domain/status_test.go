package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lendora/backoffice/internal/domain"
)

func TestLoanStatusTransitions(t *testing.T) {
	tests := []struct {
		from    domain.LoanStatus
		to      domain.LoanStatus
		allowed bool
	}{
		{domain.LoanPending, domain.LoanApproved, true},
		{domain.LoanPending, domain.LoanDenied, true},
		{domain.LoanPending, domain.LoanOnHold, true},
		{domain.LoanPending, domain.LoanCompleted, false},
		{domain.LoanApproved, domain.LoanLiquidated, true},
		{domain.LoanApproved, domain.LoanDiscontinued, true},
		{domain.LoanApproved, domain.LoanCompleted, true},
		{domain.LoanApproved, domain.LoanDenied, false},
		{domain.LoanOnHold, domain.LoanApproved, true},
		{domain.LoanOnHold, domain.LoanDenied, true},
		{domain.LoanOnHold, domain.LoanLiquidated, false},
		{domain.LoanDenied, domain.LoanApproved, false},
		{domain.LoanLiquidated, domain.LoanApproved, false},
		{domain.LoanDiscontinued, domain.LoanPending, false},
		{domain.LoanCompleted, domain.LoanApproved, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"_to_"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestLoanStatusTerminal(t *testing.T) {
	assert.True(t, domain.LoanDenied.Terminal())
	assert.True(t, domain.LoanLiquidated.Terminal())
	assert.True(t, domain.LoanDiscontinued.Terminal())
	assert.True(t, domain.LoanCompleted.Terminal())

	assert.False(t, domain.LoanPending.Terminal())
	assert.False(t, domain.LoanApproved.Terminal())
	assert.False(t, domain.LoanOnHold.Terminal())
}

func TestRequiresRemark(t *testing.T) {
	assert.True(t, domain.LoanPending.RequiresRemark())
	assert.True(t, domain.LoanOnHold.RequiresRemark())
	assert.False(t, domain.LoanApproved.RequiresRemark())
}

func TestCanEditTerms(t *testing.T) {
	open := domain.Loan{Status: domain.LoanPending}
	assert.NoError(t, open.CanEditTerms())

	held := domain.Loan{Status: domain.LoanOnHold}
	assert.NoError(t, held.CanEditTerms())

	locked := domain.Loan{Status: domain.LoanApproved, Locked: true}
	err := locked.CanEditTerms()

	var derr *domain.DomainError
	assert.ErrorAs(t, err, &derr)
	assert.Equal(t, string(domain.LoanApproved), derr.Current)
}

func TestKnownRemark(t *testing.T) {
	assert.True(t, domain.KnownRemark("Ok for disbursement"))
	assert.True(t, domain.KnownRemark("Confirm BVN"))
	assert.False(t, domain.KnownRemark("looks fine to me"))
	assert.False(t, domain.KnownRemark(""))
}
