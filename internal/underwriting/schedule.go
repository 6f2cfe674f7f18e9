package underwriting

import "time"

// MaturityDate places the final repayment at approval date plus
// (tenor - 1) calendar months, date component only. Month arithmetic is
// calendar-aware, not a fixed day-count constant.
func MaturityDate(approvedAt time.Time, tenorMonths int) time.Time {
	d := approvedAt.AddDate(0, tenorMonths-1, 0)
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
}
