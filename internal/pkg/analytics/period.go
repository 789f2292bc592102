package analytics

import (
	"errors"
	"time"

	"github.com/subtrackhq/subtrack/internal/pkg/billing"
)

// PeriodType selects the calendar bucket analytics are grouped into.
type PeriodType string

const (
	PeriodMonth   PeriodType = "month"
	PeriodQuarter PeriodType = "quarter"
	PeriodYear    PeriodType = "year"
)

var (
	ErrInvalidPeriodType = errors.New("invalid period type")
	ErrMonthRequired     = errors.New("month parameter is required for monthly period")
	ErrInvalidMonth      = errors.New("month must be between 1 and 12")
	ErrQuarterRequired   = errors.New("quarter parameter is required for quarterly period")
	ErrInvalidQuarter    = errors.New("quarter must be between 1 and 4")
)

// Period is a resolved calendar window. Start and End are inclusive dates.
type Period struct {
	Type    PeriodType `json:"type"`
	Year    int        `json:"year"`
	Month   int        `json:"month,omitempty"`
	Quarter int        `json:"quarter,omitempty"`
	Start   time.Time  `json:"-"`
	End     time.Time  `json:"-"`
}

// NewPeriod validates the raw period parameters and computes the window
// bounds. A zero month/quarter means the parameter was not supplied; for the
// year period both are ignored even when present.
func NewPeriod(periodType PeriodType, year, month, quarter int) (Period, error) {
	p := Period{Type: periodType, Year: year}

	switch periodType {
	case PeriodMonth:
		if month == 0 {
			return Period{}, ErrMonthRequired
		}
		if month < 1 || month > 12 {
			return Period{}, ErrInvalidMonth
		}
		p.Month = month
		p.Start = time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
		p.End = billing.AddMonths(p.Start, 1).AddDate(0, 0, -1)

	case PeriodQuarter:
		if quarter == 0 {
			return Period{}, ErrQuarterRequired
		}
		if quarter < 1 || quarter > 4 {
			return Period{}, ErrInvalidQuarter
		}
		p.Quarter = quarter
		startMonth := (quarter-1)*3 + 1
		p.Start = time.Date(year, time.Month(startMonth), 1, 0, 0, 0, 0, time.UTC)
		p.End = billing.AddMonths(p.Start, 3).AddDate(0, 0, -1)

	case PeriodYear:
		p.Start = time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
		p.End = time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)

	default:
		return Period{}, ErrInvalidPeriodType
	}

	return p, nil
}
