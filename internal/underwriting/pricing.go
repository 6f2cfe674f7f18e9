package underwriting

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/lendora/backoffice/internal/domain"
)

// Quote is the priced economics of a loan. All four figures are rounded to
// two decimals, half up; intermediate math keeps full precision.
type Quote struct {
	UpfrontFee     float64
	Repayment      float64
	TotalRepayment float64
	NetValue       float64
}

// Price derives the borrower-facing economics from principal, the segment's
// upfront fee percent, a flat periodic interest rate and the tenor in
// months. The flat-rate repayment spreads principal plus total interest
// evenly across the tenor; it is not an amortizing schedule. TotalRepayment
// is the rounded periodic figure times tenor, so per-period rounding shows
// up in the total.
func Price(principal, upfrontFeePercent, interestRate float64, tenorMonths int, transferFee float64) Quote {
	p := decimal.NewFromFloat(principal)
	rate := decimal.NewFromFloat(interestRate)
	tenor := decimal.NewFromInt(int64(tenorMonths))

	upfront := p.Mul(decimal.NewFromFloat(upfrontFeePercent)).Round(2)

	repayment := p.Mul(decimal.NewFromInt(1).Add(rate.Mul(tenor))).Div(tenor).Round(2)
	total := repayment.Mul(tenor).Round(2)

	net := p.Sub(upfront).Sub(decimal.NewFromFloat(transferFee)).Round(2)

	return Quote{
		UpfrontFee:     upfront.InexactFloat64(),
		Repayment:      repayment.InexactFloat64(),
		TotalRepayment: total.InexactFloat64(),
		NetValue:       net.InexactFloat64(),
	}
}

// Reprice overwrites the loan's stored economics and eligibility snapshot
// from its current amount and tenor against the policy band covering the
// customer's net pay. Every site that changes an input of the quote or of
// an eligibility check goes through here, so the snapshot can never drift
// from the terms.
func Reprice(loan *domain.Loan, customer domain.Customer, policy domain.SegmentConfig, at time.Time) {
	quote := Price(loan.Amount, policy.UpfrontFeePercent(), policy.InterestRate, loan.TenorMonths, policy.TransferFee)
	eval := Evaluate(customer, policy, quote.Repayment, at)

	loan.InterestRate = policy.InterestRate
	loan.UpfrontFee = quote.UpfrontFee
	loan.Repayment = quote.Repayment
	loan.TotalRepayment = quote.TotalRepayment
	loan.NetValue = quote.NetValue
	loan.DTI = eval.DTI.Value

	loan.AgeValid = eval.Age.Valid
	loan.AgeValue = eval.Age.Value
	loan.ServiceValid = eval.Service.Valid
	loan.ServiceValue = eval.Service.Value
	loan.NetPayValid = eval.NetPay.Valid
	loan.NetPayValue = eval.NetPay.Value
	loan.DTIValid = eval.DTI.Valid
}
