package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNewPeriodMonth(t *testing.T) {
	p, err := NewPeriod(PeriodMonth, 2024, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, date(2024, time.January, 1), p.Start)
	assert.Equal(t, date(2024, time.January, 31), p.End)

	p, err = NewPeriod(PeriodMonth, 2024, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, date(2024, time.February, 29), p.End)
}

func TestNewPeriodMonthValidation(t *testing.T) {
	_, err := NewPeriod(PeriodMonth, 2024, 0, 0)
	assert.ErrorIs(t, err, ErrMonthRequired)

	_, err = NewPeriod(PeriodMonth, 2024, 13, 0)
	assert.ErrorIs(t, err, ErrInvalidMonth)
}

func TestNewPeriodQuarter(t *testing.T) {
	p, err := NewPeriod(PeriodQuarter, 2024, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, date(2024, time.April, 1), p.Start)
	assert.Equal(t, date(2024, time.June, 30), p.End)

	p, err = NewPeriod(PeriodQuarter, 2024, 0, 4)
	require.NoError(t, err)
	assert.Equal(t, date(2024, time.October, 1), p.Start)
	assert.Equal(t, date(2024, time.December, 31), p.End)
}

func TestNewPeriodQuarterValidation(t *testing.T) {
	_, err := NewPeriod(PeriodQuarter, 2024, 0, 0)
	assert.ErrorIs(t, err, ErrQuarterRequired)

	_, err = NewPeriod(PeriodQuarter, 2024, 0, 5)
	assert.ErrorIs(t, err, ErrInvalidQuarter)
}

func TestNewPeriodYearIgnoresMonthAndQuarter(t *testing.T) {
	p, err := NewPeriod(PeriodYear, 2024, 7, 3)
	require.NoError(t, err)
	assert.Equal(t, date(2024, time.January, 1), p.Start)
	assert.Equal(t, date(2024, time.December, 31), p.End)
	assert.Zero(t, p.Month)
	assert.Zero(t, p.Quarter)
}

func TestNewPeriodUnknownType(t *testing.T) {
	_, err := NewPeriod(PeriodType("week"), 2024, 0, 0)
	assert.ErrorIs(t, err, ErrInvalidPeriodType)
}
