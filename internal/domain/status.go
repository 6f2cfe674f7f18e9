package domain

type LoanStatus string

const (
	LoanPending      LoanStatus = "PENDING"
	LoanApproved     LoanStatus = "APPROVED"
	LoanDenied       LoanStatus = "DENIED"
	LoanOnHold       LoanStatus = "ON_HOLD"
	LoanLiquidated   LoanStatus = "LIQUIDATED"
	LoanDiscontinued LoanStatus = "DISCONTINUED"
	LoanCompleted    LoanStatus = "COMPLETED"
)

// loanTransitions is the full set of legal status moves. Anything not listed
// here is rejected before the record is touched.
var loanTransitions = map[LoanStatus][]LoanStatus{
	LoanPending:  {LoanApproved, LoanDenied, LoanOnHold},
	LoanApproved: {LoanLiquidated, LoanDiscontinued, LoanCompleted},
	LoanOnHold:   {LoanApproved, LoanDenied},
}

func (s LoanStatus) CanTransitionTo(target LoanStatus) bool {
	for _, t := range loanTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

func (s LoanStatus) Terminal() bool {
	switch s {
	case LoanDenied, LoanLiquidated, LoanDiscontinued, LoanCompleted:
		return true
	}
	return false
}

// RequiresRemark reports whether leaving this status needs an underwriting
// remark. Both review states do: a decision without a recorded reason is
// useless to the next reviewer.
func (s LoanStatus) RequiresRemark() bool {
	return s == LoanPending || s == LoanOnHold
}

// CanEditTerms reports whether the recommended amount and tenor may still
// be overwritten. Approval locks the terms for good.
func (l *Loan) CanEditTerms() error {
	if l.Locked {
		return &DomainError{Op: "edit terms", Current: string(l.Status)}
	}
	return nil
}

// UnderwritingRemarks is the fixed taxonomy a reviewer must pick from when
// moving a loan out of review.
var UnderwritingRemarks = []string{
	"Ok for disbursement",
	"Net pay below threshold",
	"DTI above segment limit",
	"Confirm BVN",
	"Confirm employment records",
	"Outside age bracket",
	"Service length exceeded",
	"Duplicate application",
	"Incomplete documentation",
	"Customer requested cancellation",
	"Early settlement",
	"Restructured into new facility",
}

func KnownRemark(remark string) bool {
	for _, r := range UnderwritingRemarks {
		if r == remark {
			return true
		}
	}
	return false
}
