package billing

import (
	"time"

	"github.com/subtrackhq/subtrack/app/models"
)

// CycleMonths returns the length of one billing cycle in calendar months.
// Unrecognized cycles count as monthly, matching NextPaymentDate.
func CycleMonths(cycle models.BillingCycle) int {
	switch cycle {
	case models.CycleQuarterly:
		return 3
	case models.CycleYearly:
		return 12
	default:
		return 1
	}
}

// NextPaymentDate advances an anchor date by one billing cycle: one month for
// monthly, three for quarterly, twelve for yearly. An unrecognized cycle falls
// back to the monthly rule rather than failing; callers that want strictness
// must validate the cycle up front.
//
// Month arithmetic clamps the day of month: Jan 31 + 1 month is the last day
// of February, never an overflow into March. This matters for long-running
// renewals anchored on the 29th-31st.
func NextPaymentDate(anchor time.Time, cycle models.BillingCycle) time.Time {
	return AddMonths(anchor, CycleMonths(cycle))
}

// AddMonths adds n calendar months to a date, clamping the day to the length
// of the target month.
func AddMonths(t time.Time, n int) time.Time {
	year, month, day := t.Date()

	m := int(month) - 1 + n
	year += m / 12
	m %= 12
	if m < 0 {
		m += 12
		year--
	}
	target := time.Month(m + 1)

	if last := daysInMonth(year, target); day > last {
		day = last
	}

	return time.Date(year, target, day, 0, 0, 0, 0, t.Location())
}

// DateOnly strips the time-of-day portion, keeping the calendar date.
func DateOnly(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

func daysInMonth(year int, month time.Month) int {
	// Day 0 of the following month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
