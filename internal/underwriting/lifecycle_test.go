package underwriting_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lendora/backoffice/internal/domain"
	"github.com/lendora/backoffice/internal/underwriting"
)

func pendingLoan() domain.Loan {
	return domain.Loan{
		ID:          900,
		Status:      domain.LoanPending,
		Amount:      120000,
		TenorMonths: 6,
	}
}

func approvedLoan(t *testing.T) domain.Loan {
	loan := pendingLoan()
	changed, err := underwriting.ApplyTransition(&loan, domain.LoanApproved, "Ok for disbursement", evalAt)
	require.NoError(t, err)
	require.True(t, changed)
	return loan
}

func TestApplyTransition_ApprovalSideEffects(t *testing.T) {
	loan := pendingLoan()

	changed, err := underwriting.ApplyTransition(&loan, domain.LoanApproved, "Ok for disbursement", evalAt)

	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, domain.LoanApproved, loan.Status)
	assert.True(t, loan.Active)
	assert.True(t, loan.Locked)
	assert.Equal(t, "Ok for disbursement", loan.Remark)
	require.NotNil(t, loan.DateApprovedOrDenied)
	assert.Equal(t, evalAt, *loan.DateApprovedOrDenied)
	require.NotNil(t, loan.MaturityDate)
	assert.Equal(t, time.Date(2025, 11, 15, 0, 0, 0, 0, time.UTC), *loan.MaturityDate)
}

func TestApplyTransition_ReapprovalIsNoOp(t *testing.T) {
	loan := approvedLoan(t)
	firstMaturity := *loan.MaturityDate
	firstDecision := *loan.DateApprovedOrDenied

	later := evalAt.AddDate(0, 2, 0)
	changed, err := underwriting.ApplyTransition(&loan, domain.LoanApproved, "Ok for disbursement", later)

	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, firstMaturity, *loan.MaturityDate)
	assert.Equal(t, firstDecision, *loan.DateApprovedOrDenied)
	assert.True(t, loan.Active)
}

func TestApplyTransition_RemarkRules(t *testing.T) {
	tests := []struct {
		name     string
		from     domain.LoanStatus
		remark   string
		wantKind domain.ValidationKind
	}{
		{"pending without remark", domain.LoanPending, "", domain.ValidationMissingRemark},
		{"pending with unknown remark", domain.LoanPending, "looks fine to me", domain.ValidationUnknownRemark},
		{"on hold without remark", domain.LoanOnHold, "", domain.ValidationMissingRemark},
		{"on hold with unknown remark", domain.LoanOnHold, "approved by boss", domain.ValidationUnknownRemark},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loan := pendingLoan()
			loan.Status = tt.from

			changed, err := underwriting.ApplyTransition(&loan, domain.LoanApproved, tt.remark, evalAt)

			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.wantKind, verr.Kind)
			assert.False(t, changed)

			// Rejected before any mutation.
			assert.Equal(t, tt.from, loan.Status)
			assert.False(t, loan.Active)
			assert.False(t, loan.Locked)
			assert.Nil(t, loan.MaturityDate)
		})
	}
}

func TestApplyTransition_IllegalLeavesLoanUntouched(t *testing.T) {
	loan := pendingLoan()

	changed, err := underwriting.ApplyTransition(&loan, domain.LoanLiquidated, "Early settlement", evalAt)

	var derr *domain.DomainError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, string(domain.LoanPending), derr.Current)
	assert.False(t, changed)
	assert.Equal(t, domain.LoanPending, loan.Status)
	assert.Empty(t, loan.Remark)
	assert.Nil(t, loan.DateLiquidated)
}

func TestApplyTransition_TerminalFinality(t *testing.T) {
	terminals := []domain.LoanStatus{
		domain.LoanDenied, domain.LoanLiquidated, domain.LoanDiscontinued, domain.LoanCompleted,
	}
	targets := []domain.LoanStatus{
		domain.LoanPending, domain.LoanApproved, domain.LoanDenied, domain.LoanOnHold,
		domain.LoanLiquidated, domain.LoanDiscontinued, domain.LoanCompleted,
	}

	for _, from := range terminals {
		for _, target := range targets {
			t.Run(string(from)+"_to_"+string(target), func(t *testing.T) {
				loan := pendingLoan()
				loan.Status = from

				changed, err := underwriting.ApplyTransition(&loan, target, "Ok for disbursement", evalAt)

				assert.Error(t, err)
				assert.False(t, changed)
				assert.Equal(t, from, loan.Status)
			})
		}
	}
}

func TestApplyTransition_Denial(t *testing.T) {
	loan := pendingLoan()

	changed, err := underwriting.ApplyTransition(&loan, domain.LoanDenied, "DTI above segment limit", evalAt)

	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, domain.LoanDenied, loan.Status)
	assert.False(t, loan.Active)
	require.NotNil(t, loan.DateApprovedOrDenied)
	assert.Equal(t, evalAt, *loan.DateApprovedOrDenied)
	assert.Nil(t, loan.MaturityDate)
}

func TestApplyTransition_OnHoldRoundTrip(t *testing.T) {
	loan := pendingLoan()

	changed, err := underwriting.ApplyTransition(&loan, domain.LoanOnHold, "Confirm BVN", evalAt)
	require.NoError(t, err)
	require.True(t, changed)
	assert.Equal(t, domain.LoanOnHold, loan.Status)
	assert.False(t, loan.Active)

	changed, err = underwriting.ApplyTransition(&loan, domain.LoanApproved, "Ok for disbursement", evalAt)
	require.NoError(t, err)
	require.True(t, changed)
	assert.True(t, loan.Active)
	assert.True(t, loan.Locked)
	require.NotNil(t, loan.MaturityDate)
}

func TestApplyTransition_Liquidation(t *testing.T) {
	loan := approvedLoan(t)

	changed, err := underwriting.ApplyTransition(&loan, domain.LoanLiquidated, "Early settlement", evalAt)

	require.NoError(t, err)
	assert.True(t, changed)
	assert.False(t, loan.Active)
	require.NotNil(t, loan.DateLiquidated)
	assert.Equal(t, evalAt, *loan.DateLiquidated)
	// The original decision date survives liquidation.
	require.NotNil(t, loan.DateApprovedOrDenied)
}

func TestApplyTransition_CompletionClearsActive(t *testing.T) {
	loan := approvedLoan(t)

	changed, err := underwriting.ApplyTransition(&loan, domain.LoanCompleted, "", evalAt)

	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, domain.LoanCompleted, loan.Status)
	assert.False(t, loan.Active)
}

func TestReprice_SnapshotTracksTerms(t *testing.T) {
	customer := domain.Customer{
		NetPay:           80000,
		DateOfBirth:      time.Date(1990, 3, 1, 0, 0, 0, 0, time.UTC),
		DateOfEnlistment: time.Date(2010, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	policy := domain.SegmentConfig{
		InterestRate: 0.03,
		Fees:         []domain.Fee{{Name: "processing", Percent: 0.02}, {Name: "insurance", Percent: 0.01}},
		TransferFee:  100,
		MinNetPay:    50000,
		MaxNetPay:    100000,
		MaxDTI:       0.4,
	}
	loan := domain.Loan{Amount: 120000, TenorMonths: 12}

	underwriting.Reprice(&loan, customer, policy, evalAt)

	assert.Equal(t, 3600.0, loan.UpfrontFee)
	assert.Equal(t, 13600.0, loan.Repayment)
	assert.Equal(t, 163200.0, loan.TotalRepayment)
	assert.Equal(t, 116300.0, loan.NetValue)
	assert.Equal(t, 0.03, loan.InterestRate)
	assert.True(t, loan.NetPayValid)
	assert.True(t, loan.DTIValid)
	assert.InDelta(t, 0.17, loan.DTI, 0.0001)
}

func TestReprice_NetPayDropFlipsChecks(t *testing.T) {
	customer := domain.Customer{
		NetPay:           30000,
		DateOfBirth:      time.Date(1990, 3, 1, 0, 0, 0, 0, time.UTC),
		DateOfEnlistment: time.Date(2010, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	policy := domain.SegmentConfig{
		InterestRate: 0.03,
		Fees:         []domain.Fee{{Name: "processing", Percent: 0.02}, {Name: "insurance", Percent: 0.01}},
		TransferFee:  100,
		MinNetPay:    50000,
		MaxNetPay:    100000,
		MaxDTI:       0.4,
	}
	loan := domain.Loan{Amount: 120000, TenorMonths: 12, NetPayValid: true, DTIValid: true}

	underwriting.Reprice(&loan, customer, policy, evalAt)

	// Economics stay a pure function of the terms, checks re-run against
	// the new net pay.
	assert.Equal(t, 13600.0, loan.Repayment)
	assert.False(t, loan.NetPayValid)
	assert.Equal(t, float64(30000), loan.NetPayValue)
	assert.False(t, loan.DTIValid)
	assert.InDelta(t, 0.4533, loan.DTI, 0.0001)
}
