package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/subtrackhq/subtrack/app/models"
)

func sub(id uint, name string, category models.Category, cycle models.BillingCycle) models.Subscription {
	return models.Subscription{ID: id, UserID: 1, Name: name, Category: category, BillingCycle: cycle}
}

func entry(subID uint, amount int, start time.Time) models.PriceHistory {
	return models.PriceHistory{SubscriptionID: subID, Amount: amount, StartDate: start}
}

func mustPeriod(t *testing.T, pt PeriodType, year, month, quarter int) Period {
	t.Helper()
	p, err := NewPeriod(pt, year, month, quarter)
	require.NoError(t, err)
	return p
}

func TestOverallSumsPerCategorySortedDescending(t *testing.T) {
	period := mustPeriod(t, PeriodMonth, 2024, 1, 0)
	subs := []models.Subscription{
		sub(1, "Netflix", models.CategoryVideo, models.CycleMonthly),
		sub(2, "Spotify", models.CategoryMusic, models.CycleMonthly),
	}
	entries := []models.PriceHistory{
		entry(1, 1499, date(2024, time.January, 15)),
		entry(2, 999, date(2024, time.January, 10)),
	}

	report := Overall(subs, entries, period)

	assert.Equal(t, 2498, report.Total)
	require.Len(t, report.Categories, 2)
	assert.Equal(t, models.CategoryVideo, report.Categories[0].Category)
	assert.Equal(t, 1499, report.Categories[0].Total)
	assert.InDelta(t, 60.01, report.Categories[0].Percentage, 0.001)
	assert.Equal(t, models.CategoryMusic, report.Categories[1].Category)
	assert.Equal(t, 999, report.Categories[1].Total)
	assert.InDelta(t, 39.99, report.Categories[1].Percentage, 0.001)
}

func TestOverallPercentagesSumToHundred(t *testing.T) {
	period := mustPeriod(t, PeriodYear, 2024, 0, 0)
	subs := []models.Subscription{
		sub(1, "a", models.CategoryVideo, models.CycleMonthly),
		sub(2, "b", models.CategoryMusic, models.CycleMonthly),
		sub(3, "c", models.CategoryBooks, models.CycleMonthly),
	}
	entries := []models.PriceHistory{
		entry(1, 1000, date(2024, time.March, 1)),
		entry(2, 1000, date(2024, time.March, 1)),
		entry(3, 1000, date(2024, time.March, 1)),
	}

	report := Overall(subs, entries, period)

	sum := 0.0
	for _, c := range report.Categories {
		sum += c.Percentage
	}
	assert.InDelta(t, 100, sum, 0.05)
}

func TestOverallExcludesEntriesBeforePeriodStart(t *testing.T) {
	period := mustPeriod(t, PeriodMonth, 2024, 2, 0)
	subs := []models.Subscription{sub(1, "Netflix", models.CategoryVideo, models.CycleMonthly)}
	entries := []models.PriceHistory{
		entry(1, 1499, date(2024, time.January, 15)),
		entry(1, 1999, date(2024, time.February, 1)),
	}

	report := Overall(subs, entries, period)

	assert.Equal(t, 1999, report.Total)
}

func TestOverallCountsOpenEntriesPastPeriodEnd(t *testing.T) {
	// No upper bound: an entry starting inside the period counts in full even
	// when it runs past the period end.
	period := mustPeriod(t, PeriodMonth, 2024, 1, 0)
	subs := []models.Subscription{sub(1, "Netflix", models.CategoryVideo, models.CycleYearly)}
	entries := []models.PriceHistory{entry(1, 9999, date(2024, time.January, 31))}

	report := Overall(subs, entries, period)

	assert.Equal(t, 9999, report.Total)
}

func TestOverallIncludesArchivedSubscriptions(t *testing.T) {
	period := mustPeriod(t, PeriodMonth, 2024, 1, 0)
	archived := sub(1, "OldMag", models.CategoryBooks, models.CycleMonthly)
	archivedDate := date(2024, time.June, 1)
	archived.ArchivedDate = &archivedDate
	entries := []models.PriceHistory{entry(1, 500, date(2024, time.January, 5))}

	report := Overall([]models.Subscription{archived}, entries, period)

	assert.Equal(t, 500, report.Total)
}

func TestOverallEmptyLedger(t *testing.T) {
	period := mustPeriod(t, PeriodMonth, 2024, 1, 0)

	report := Overall(nil, nil, period)

	assert.Equal(t, 0, report.Total)
	assert.Empty(t, report.Categories)
}

func TestCategoryIncludesZeroSpendRows(t *testing.T) {
	period := mustPeriod(t, PeriodMonth, 2024, 1, 0)
	subs := []models.Subscription{
		sub(1, "Netflix", models.CategoryVideo, models.CycleMonthly),
		sub(2, "Disney", models.CategoryVideo, models.CycleMonthly),
		sub(3, "Twitch", models.CategoryVideo, models.CycleMonthly),
	}
	entries := []models.PriceHistory{
		entry(1, 1499, date(2024, time.January, 15)),
		entry(2, 899, date(2024, time.January, 20)),
	}

	report := Category(models.CategoryVideo, subs, entries, period)

	assert.Equal(t, 2398, report.Total)
	require.Len(t, report.Subscriptions, 3)
	assert.Equal(t, uint(1), report.Subscriptions[0].SubscriptionID)
	assert.Equal(t, uint(2), report.Subscriptions[1].SubscriptionID)
	// Zero-spend rows come last with zero totals and percentages.
	assert.Equal(t, uint(3), report.Subscriptions[2].SubscriptionID)
	assert.Equal(t, 0, report.Subscriptions[2].Total)
	assert.Equal(t, 0.0, report.Subscriptions[2].Percentage)
}

func TestCategoryCoverageRuleExcludesLapsedEntries(t *testing.T) {
	// An entry starting before the period start is out regardless of cycle;
	// with a monthly cycle its coverage window has lapsed as well.
	period := mustPeriod(t, PeriodQuarter, 2024, 0, 2)
	subs := []models.Subscription{sub(1, "Netflix", models.CategoryVideo, models.CycleMonthly)}
	entries := []models.PriceHistory{
		entry(1, 1499, date(2024, time.February, 1)),
		entry(1, 1999, date(2024, time.April, 10)),
	}

	report := Category(models.CategoryVideo, subs, entries, period)

	assert.Equal(t, 1999, report.Total)
	require.Len(t, report.Subscriptions, 1)
	assert.InDelta(t, 100, report.Subscriptions[0].Percentage, 0.001)
}

func TestCategoryAllZeroWhenNoEntriesInPeriod(t *testing.T) {
	period := mustPeriod(t, PeriodMonth, 2024, 6, 0)
	subs := []models.Subscription{
		sub(1, "Netflix", models.CategoryVideo, models.CycleMonthly),
		sub(2, "Disney", models.CategoryVideo, models.CycleMonthly),
	}

	report := Category(models.CategoryVideo, subs, nil, period)

	assert.Equal(t, 0, report.Total)
	require.Len(t, report.Subscriptions, 2)
	for _, row := range report.Subscriptions {
		assert.Equal(t, 0, row.Total)
		assert.Equal(t, 0.0, row.Percentage)
	}
}
