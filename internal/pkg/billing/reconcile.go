package billing

import (
	"time"

	"github.com/subtrackhq/subtrack/app/models"
)

// Action is the reconciler's decision for a declared amount change.
type Action int

const (
	// ActionNone leaves the ledger untouched: the current entry already
	// records this amount for today (idempotent re-submission).
	ActionNone Action = iota
	// ActionAmend corrects the latest in-scope entry in place instead of
	// opening a new interval. Successive same-day edits collapse into one
	// record; the intermediate value is discarded on purpose.
	ActionAmend
	// ActionOpen closes the open entry (if any) at today and opens a new
	// entry starting today.
	ActionOpen
)

// Plan is the write set produced by Reconcile. The caller is responsible for
// applying Close and Upsert inside a single transaction so that the ledger
// never commits with zero or two open entries.
type Plan struct {
	Action Action
	// Close holds entries whose EndDate must be set to today.
	Close []models.PriceHistory
	// Upsert is the entry to insert (zero ID) or update in place.
	Upsert *models.PriceHistory
}

// Reconcile decides how a subscription's price ledger absorbs a newly declared
// amount. The ledger invariant it maintains: at most one entry is open (nil
// EndDate) and entries tile a non-overlapping timeline.
//
// The decision is keyed on the "current" entry - the open one, or failing
// that the latest by start date (ties broken by creation time):
//
//	started today, same amount                  -> none
//	open, started today, new amount             -> amend in place
//	open, started earlier, amount unchanged     -> amend in place
//	closed, ends on or after today              -> amend in place
//	anything else (price change on a later day,
//	future start, lapsed entry, no entry)       -> close open entry, open new one
//
// A price change on a day after the open entry started always closes that
// entry and opens a new interval; amending is reserved for corrections that
// do not rewrite history.
func Reconcile(ledger []models.PriceHistory, subscriptionID uint, newAmount int, today time.Time) Plan {
	today = DateOnly(today)

	current := currentEntry(ledger)
	action := classify(current, newAmount, today)

	switch action {
	case ActionNone:
		return Plan{Action: ActionNone, Upsert: current}

	case ActionAmend:
		amended := *current
		amended.Amount = newAmount
		amended.CreatedAt = time.Now()
		return Plan{Action: ActionAmend, Upsert: &amended}

	default:
		plan := Plan{
			Action: ActionOpen,
			Upsert: &models.PriceHistory{
				SubscriptionID: subscriptionID,
				Amount:         newAmount,
				StartDate:      today,
			},
		}
		for _, entry := range ledger {
			if entry.IsOpen() {
				closed := entry
				end := today
				closed.EndDate = &end
				plan.Close = append(plan.Close, closed)
			}
		}
		return plan
	}
}

// classify is the reconciler's decision table over (is-open, start-vs-today,
// end-vs-today). Each rule is independent; the first match wins.
func classify(current *models.PriceHistory, newAmount int, today time.Time) Action {
	if current == nil {
		return ActionOpen
	}

	start := DateOnly(current.StartDate)

	if start.Equal(today) && current.Amount == newAmount {
		return ActionNone
	}
	if current.IsOpen() {
		// Amending is limited to same-day corrections and no-change touches
		// of an earlier entry. A new amount on a later day must close the
		// open interval, or the ledger would never record the old price.
		if start.Equal(today) || (current.Amount == newAmount && start.Before(today)) {
			return ActionAmend
		}
		return ActionOpen
	}
	if !DateOnly(*current.EndDate).Before(today) {
		return ActionAmend
	}
	return ActionOpen
}

// currentEntry picks the entry the reconciler operates on: the open entry when
// one exists, otherwise the one with the latest start date, ties broken by
// creation time.
func currentEntry(ledger []models.PriceHistory) *models.PriceHistory {
	var latest *models.PriceHistory
	for i := range ledger {
		entry := &ledger[i]
		if entry.IsOpen() {
			return entry
		}
		if latest == nil ||
			entry.StartDate.After(latest.StartDate) ||
			(entry.StartDate.Equal(latest.StartDate) && entry.CreatedAt.After(latest.CreatedAt)) {
			latest = entry
		}
	}
	return latest
}
