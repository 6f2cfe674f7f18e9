package underwriting

import (
	"fmt"
	"time"

	"github.com/lendora/backoffice/internal/domain"
)

// ApplyTransition validates target against the loan's lifecycle and, when
// legal, mutates the loan in place: status, remark, decision dates, the
// active/locked flags and the maturity stamp. On any error the loan is
// untouched. The bool reports whether anything changed: re-approving an
// already active loan is a legal no-op, so a retried decision can never
// re-stamp the maturity date.
func ApplyTransition(loan *domain.Loan, target domain.LoanStatus, remark string, at time.Time) (bool, error) {
	if target == domain.LoanApproved && loan.Status == domain.LoanApproved && loan.Active {
		return false, nil
	}

	if loan.Status.RequiresRemark() {
		if remark == "" {
			return false, &domain.ValidationError{Kind: domain.ValidationMissingRemark, Field: "remark"}
		}
		if !domain.KnownRemark(remark) {
			return false, &domain.ValidationError{Kind: domain.ValidationUnknownRemark, Field: "remark"}
		}
	}

	if !loan.Status.CanTransitionTo(target) {
		return false, &domain.DomainError{
			Op:      fmt.Sprintf("transition to %s", target),
			Current: string(loan.Status),
		}
	}

	loan.Status = target
	if remark != "" {
		loan.Remark = remark
	}

	decided := at
	switch target {
	case domain.LoanApproved:
		if !loan.Active {
			loan.Active = true
			loan.Locked = true
			loan.DateApprovedOrDenied = &decided
			maturity := MaturityDate(at, loan.TenorMonths)
			loan.MaturityDate = &maturity
		}
	case domain.LoanDenied:
		loan.DateApprovedOrDenied = &decided
	case domain.LoanLiquidated:
		loan.DateLiquidated = &decided
		loan.Active = false
	case domain.LoanDiscontinued, domain.LoanCompleted:
		loan.Active = false
	}

	return true, nil
}
