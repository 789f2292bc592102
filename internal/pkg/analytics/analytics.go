// Package analytics turns a user's price-history ledgers into period-bucketed
// spend rollups. It is read-only: the ledger maintained by the billing
// reconciler is its sole input.
package analytics

import (
	"math"
	"sort"

	"github.com/subtrackhq/subtrack/app/models"
	"github.com/subtrackhq/subtrack/internal/pkg/billing"
)

// CategoryTotal is one row of the overall rollup.
type CategoryTotal struct {
	Category   models.Category `json:"category"`
	Total      int             `json:"total"`
	Percentage float64         `json:"percentage"`
}

// OverallReport sums a user's spend per category within a period.
type OverallReport struct {
	Total      int             `json:"total"`
	Period     Period          `json:"period"`
	Categories []CategoryTotal `json:"categories"`
}

// SubscriptionTotal is one row of the per-category rollup.
type SubscriptionTotal struct {
	SubscriptionID uint    `json:"id"`
	Name           string  `json:"name"`
	Total          int     `json:"total"`
	Percentage     float64 `json:"percentage"`
}

// CategoryReport breaks one category's spend down per subscription.
type CategoryReport struct {
	Category      models.Category     `json:"category"`
	Total         int                 `json:"total"`
	Period        Period              `json:"period"`
	Subscriptions []SubscriptionTotal `json:"subscriptions"`
}

// Overall buckets ledger entries of all given subscriptions (archived ones
// included - archival does not erase spend history) into the period and sums
// them per category. An entry counts when its start date falls on or after the
// period start; there is deliberately no upper bound, so an entry opened late
// in the period counts in full.
func Overall(subs []models.Subscription, entries []models.PriceHistory, period Period) OverallReport {
	categoryOf := make(map[uint]models.Category, len(subs))
	for _, sub := range subs {
		categoryOf[sub.ID] = sub.Category
	}

	totals := map[models.Category]int{}
	grand := 0
	for _, entry := range entries {
		category, ok := categoryOf[entry.SubscriptionID]
		if !ok {
			continue
		}
		if billing.DateOnly(entry.StartDate).Before(period.Start) {
			continue
		}
		totals[category] += entry.Amount
		grand += entry.Amount
	}

	report := OverallReport{Total: grand, Period: period, Categories: make([]CategoryTotal, 0, len(totals))}
	for category, total := range totals {
		report.Categories = append(report.Categories, CategoryTotal{
			Category:   category,
			Total:      total,
			Percentage: percentage(total, grand),
		})
	}
	sort.Slice(report.Categories, func(i, j int) bool {
		if report.Categories[i].Total != report.Categories[j].Total {
			return report.Categories[i].Total > report.Categories[j].Total
		}
		return report.Categories[i].Category < report.Categories[j].Category
	})

	return report
}

// Category breaks the spend of one category down per subscription. The
// inclusion rule is stricter than Overall's: besides starting on or after the
// period start, an entry's paid coverage window (start advanced by one billing
// cycle) must end strictly after the period start, so entries whose coverage
// had already lapsed before the period are excluded. Subscriptions without
// matching spend still get a zero row, appended after the nonzero ones.
func Category(category models.Category, subs []models.Subscription, entries []models.PriceHistory, period Period) CategoryReport {
	cycleOf := make(map[uint]models.BillingCycle, len(subs))
	for _, sub := range subs {
		cycleOf[sub.ID] = sub.BillingCycle
	}

	totals := map[uint]int{}
	grand := 0
	for _, entry := range entries {
		cycle, ok := cycleOf[entry.SubscriptionID]
		if !ok {
			continue
		}
		start := billing.DateOnly(entry.StartDate)
		if start.Before(period.Start) {
			continue
		}
		if !billing.NextPaymentDate(start, cycle).After(period.Start) {
			continue
		}
		totals[entry.SubscriptionID] += entry.Amount
		grand += entry.Amount
	}

	report := CategoryReport{Category: category, Total: grand, Period: period}

	nonzero := make([]SubscriptionTotal, 0, len(totals))
	for _, sub := range subs {
		if total, ok := totals[sub.ID]; ok {
			nonzero = append(nonzero, SubscriptionTotal{
				SubscriptionID: sub.ID,
				Name:           sub.Name,
				Total:          total,
				Percentage:     percentage(total, grand),
			})
		}
	}
	sort.Slice(nonzero, func(i, j int) bool {
		if nonzero[i].Total != nonzero[j].Total {
			return nonzero[i].Total > nonzero[j].Total
		}
		return nonzero[i].SubscriptionID < nonzero[j].SubscriptionID
	})
	report.Subscriptions = nonzero

	for _, sub := range subs {
		if _, ok := totals[sub.ID]; !ok {
			report.Subscriptions = append(report.Subscriptions, SubscriptionTotal{
				SubscriptionID: sub.ID,
				Name:           sub.Name,
				Total:          0,
				Percentage:     0,
			})
		}
	}

	return report
}

// percentage computes share*100 rounded to two decimals, 0 for an empty total.
func percentage(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(part)/float64(total)*100*100) / 100
}
