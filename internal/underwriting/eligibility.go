package underwriting

import (
	"time"

	"github.com/lendora/backoffice/internal/domain"
)

// Default thresholds, applied when the segment policy leaves its overrides
// at zero.
const (
	DefaultMinAge          = 21
	DefaultMaxAge          = 57
	DefaultMaxServiceYears = 33
)

// Check is one eligibility verdict. Value is always populated so the
// reviewer sees the computed number even when the check fails.
type Check struct {
	Valid bool
	Value float64
}

// Evaluation carries all four checks. They are independent: every one is
// computed, none short-circuits.
type Evaluation struct {
	Age     Check
	Service Check
	NetPay  Check
	DTI     Check
}

// wholeYears counts full calendar years between from and at, not a 365-day
// approximation.
func wholeYears(from, at time.Time) int {
	years := at.Year() - from.Year()
	anniversary := time.Date(at.Year(), from.Month(), from.Day(), 0, 0, 0, 0, at.Location())
	if at.Before(anniversary) {
		years--
	}
	return years
}

func CheckAge(dateOfBirth, at time.Time, minAge, maxAge int) Check {
	if minAge == 0 {
		minAge = DefaultMinAge
	}
	if maxAge == 0 {
		maxAge = DefaultMaxAge
	}
	age := wholeYears(dateOfBirth, at)
	return Check{Valid: age >= minAge && age <= maxAge, Value: float64(age)}
}

func CheckServiceLength(dateOfEnlistment, at time.Time, maxYears int) Check {
	if maxYears == 0 {
		maxYears = DefaultMaxServiceYears
	}
	years := wholeYears(dateOfEnlistment, at)
	return Check{Valid: years <= maxYears, Value: float64(years)}
}

func CheckNetPay(netPay, minNetPay float64) Check {
	return Check{Valid: netPay >= minNetPay, Value: netPay}
}

// CheckDTI uses strict inequality: a ratio exactly at the segment ceiling
// fails.
func CheckDTI(repayment, netPay, maxDTI float64) Check {
	if netPay <= 0 {
		return Check{Valid: false, Value: 0}
	}
	dti := repayment / netPay
	return Check{Valid: dti < maxDTI, Value: dti}
}

// Evaluate runs the full eligibility pass for an applicant against a segment
// policy. The periodic repayment must already reflect the recommended amount
// and tenor; callers re-run Evaluate whenever any input changes.
func Evaluate(customer domain.Customer, policy domain.SegmentConfig, repayment float64, at time.Time) Evaluation {
	return Evaluation{
		Age:     CheckAge(customer.DateOfBirth, at, policy.MinAge, policy.MaxAge),
		Service: CheckServiceLength(customer.DateOfEnlistment, at, policy.MaxServiceYears),
		NetPay:  CheckNetPay(customer.NetPay, policy.MinNetPay),
		DTI:     CheckDTI(repayment, customer.NetPay, policy.MaxDTI),
	}
}
