package billing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/subtrackhq/subtrack/app/models"
)

func openEntry(id uint, amount int, start time.Time) models.PriceHistory {
	return models.PriceHistory{ID: id, SubscriptionID: 1, Amount: amount, StartDate: start, CreatedAt: start}
}

func closedEntry(id uint, amount int, start, end time.Time) models.PriceHistory {
	return models.PriceHistory{ID: id, SubscriptionID: 1, Amount: amount, StartDate: start, EndDate: &end, CreatedAt: start}
}

func TestReconcileEmptyLedgerOpensFirstEntry(t *testing.T) {
	today := date(2024, time.January, 15)

	plan := Reconcile(nil, 1, 1499, today)

	assert.Equal(t, ActionOpen, plan.Action)
	assert.Empty(t, plan.Close)
	require.NotNil(t, plan.Upsert)
	assert.Equal(t, uint(0), plan.Upsert.ID)
	assert.Equal(t, 1499, plan.Upsert.Amount)
	assert.Equal(t, today, plan.Upsert.StartDate)
	assert.Nil(t, plan.Upsert.EndDate)
}

func TestReconcileAmountChangeClosesAndOpens(t *testing.T) {
	start := date(2024, time.January, 15)
	today := date(2024, time.February, 1)
	ledger := []models.PriceHistory{openEntry(10, 1499, start)}

	plan := Reconcile(ledger, 1, 1999, today)

	assert.Equal(t, ActionOpen, plan.Action)
	require.Len(t, plan.Close, 1)
	assert.Equal(t, uint(10), plan.Close[0].ID)
	require.NotNil(t, plan.Close[0].EndDate)
	assert.Equal(t, today, *plan.Close[0].EndDate)

	require.NotNil(t, plan.Upsert)
	assert.Equal(t, 1999, plan.Upsert.Amount)
	assert.Equal(t, today, plan.Upsert.StartDate)
	assert.Nil(t, plan.Upsert.EndDate)
}

func TestReconcileSameDaySameAmountIsNoop(t *testing.T) {
	today := date(2024, time.February, 1)
	ledger := []models.PriceHistory{openEntry(10, 1999, today)}

	plan := Reconcile(ledger, 1, 1999, today)

	assert.Equal(t, ActionNone, plan.Action)
	assert.Empty(t, plan.Close)
	require.NotNil(t, plan.Upsert)
	assert.Equal(t, uint(10), plan.Upsert.ID)
	assert.Equal(t, 1999, plan.Upsert.Amount)
}

func TestReconcileSameDayDifferentAmountAmendsInPlace(t *testing.T) {
	// Two edits on the same day collapse into one record; the intermediate
	// amount is discarded.
	today := date(2024, time.February, 1)
	ledger := []models.PriceHistory{openEntry(10, 1999, today)}

	plan := Reconcile(ledger, 1, 2499, today)

	assert.Equal(t, ActionAmend, plan.Action)
	assert.Empty(t, plan.Close)
	require.NotNil(t, plan.Upsert)
	assert.Equal(t, uint(10), plan.Upsert.ID)
	assert.Equal(t, 2499, plan.Upsert.Amount)
	assert.Nil(t, plan.Upsert.EndDate)
}

func TestReconcileOpenEntryStartedEarlierAmendsInPlace(t *testing.T) {
	start := date(2024, time.January, 15)
	today := date(2024, time.February, 1)
	ledger := []models.PriceHistory{openEntry(10, 1499, start)}

	// Amount unchanged, start before today: the open entry is touched in
	// place rather than split into a new interval.
	plan := Reconcile(ledger, 1, 1499, today)

	assert.Equal(t, ActionAmend, plan.Action)
	require.NotNil(t, plan.Upsert)
	assert.Equal(t, uint(10), plan.Upsert.ID)
	assert.Equal(t, start, plan.Upsert.StartDate)
}

func TestReconcileClosedEntryStillInScopeAmendsInPlace(t *testing.T) {
	start := date(2024, time.January, 1)
	end := date(2024, time.February, 10)
	today := date(2024, time.February, 1)
	ledger := []models.PriceHistory{closedEntry(10, 999, start, end)}

	plan := Reconcile(ledger, 1, 1299, today)

	assert.Equal(t, ActionAmend, plan.Action)
	assert.Empty(t, plan.Close)
	require.NotNil(t, plan.Upsert)
	assert.Equal(t, uint(10), plan.Upsert.ID)
	assert.Equal(t, 1299, plan.Upsert.Amount)
	require.NotNil(t, plan.Upsert.EndDate)
	assert.Equal(t, end, *plan.Upsert.EndDate)
}

func TestReconcileLapsedClosedEntryOpensNew(t *testing.T) {
	start := date(2023, time.November, 1)
	end := date(2023, time.December, 1)
	today := date(2024, time.February, 1)
	ledger := []models.PriceHistory{closedEntry(10, 999, start, end)}

	plan := Reconcile(ledger, 1, 1299, today)

	assert.Equal(t, ActionOpen, plan.Action)
	assert.Empty(t, plan.Close)
	require.NotNil(t, plan.Upsert)
	assert.Equal(t, uint(0), plan.Upsert.ID)
	assert.Equal(t, today, plan.Upsert.StartDate)
}

func TestReconcileFutureStartClosesAndOpens(t *testing.T) {
	start := date(2024, time.March, 1)
	today := date(2024, time.February, 1)
	ledger := []models.PriceHistory{openEntry(10, 999, start)}

	plan := Reconcile(ledger, 1, 1299, today)

	assert.Equal(t, ActionOpen, plan.Action)
	require.Len(t, plan.Close, 1)
	assert.Equal(t, uint(10), plan.Close[0].ID)
}

func TestReconcilePicksLatestClosedEntryWithCreatedAtTieBreak(t *testing.T) {
	start := date(2024, time.January, 1)
	end := date(2024, time.March, 1)
	today := date(2024, time.February, 1)

	first := closedEntry(10, 999, start, end)
	second := closedEntry(11, 1099, start, end)
	second.CreatedAt = first.CreatedAt.Add(time.Hour)
	ledger := []models.PriceHistory{first, second}

	plan := Reconcile(ledger, 1, 1299, today)

	assert.Equal(t, ActionAmend, plan.Action)
	require.NotNil(t, plan.Upsert)
	assert.Equal(t, uint(11), plan.Upsert.ID)
}

func TestReconcileIdempotentAcrossRepeatedCalls(t *testing.T) {
	today := date(2024, time.February, 1)

	plan := Reconcile(nil, 1, 1499, today)
	require.Equal(t, ActionOpen, plan.Action)

	// Apply the plan and feed the resulting ledger back in: entry count must
	// not grow.
	ledger := []models.PriceHistory{*plan.Upsert}
	ledger[0].ID = 10

	again := Reconcile(ledger, 1, 1499, today)
	assert.Equal(t, ActionNone, again.Action)
	assert.Empty(t, again.Close)
	assert.Equal(t, uint(10), again.Upsert.ID)
}

func TestReconcileKeepsSingleOpenEntry(t *testing.T) {
	// Walk a sequence of changes across different days; after each applied
	// plan exactly one entry is open and intervals do not overlap.
	ledger := []models.PriceHistory{}
	days := []struct {
		today  time.Time
		amount int
	}{
		{date(2024, time.January, 15), 1499},
		{date(2024, time.February, 1), 1999},
		{date(2024, time.February, 1), 1999},
		{date(2024, time.March, 10), 2499},
	}

	nextID := uint(1)
	for _, step := range days {
		plan := Reconcile(ledger, 1, step.amount, step.today)
		ledger = applyPlan(ledger, plan, &nextID)

		open := 0
		for _, e := range ledger {
			if e.IsOpen() {
				open++
			}
		}
		require.Equal(t, 1, open)
	}

	require.Len(t, ledger, 3)
	for i := 0; i < len(ledger)-1; i++ {
		require.NotNil(t, ledger[i].EndDate)
		assert.False(t, ledger[i+1].StartDate.Before(*ledger[i].EndDate))
	}

	// Every superseded price survives as its own closed interval.
	assert.Equal(t, 1499, ledger[0].Amount)
	assert.Equal(t, date(2024, time.January, 15), ledger[0].StartDate)
	assert.Equal(t, 1999, ledger[1].Amount)
	assert.Equal(t, date(2024, time.February, 1), ledger[1].StartDate)
	assert.Equal(t, 2499, ledger[2].Amount)
	assert.Equal(t, date(2024, time.March, 10), ledger[2].StartDate)
	assert.True(t, ledger[2].IsOpen())
}

func applyPlan(ledger []models.PriceHistory, plan Plan, nextID *uint) []models.PriceHistory {
	byID := map[uint]int{}
	for i, e := range ledger {
		byID[e.ID] = i
	}
	for _, closed := range plan.Close {
		ledger[byID[closed.ID]] = closed
	}
	if plan.Upsert != nil && plan.Action != ActionNone {
		if plan.Upsert.ID == 0 {
			entry := *plan.Upsert
			entry.ID = *nextID
			*nextID++
			ledger = append(ledger, entry)
		} else {
			ledger[byID[plan.Upsert.ID]] = *plan.Upsert
		}
	}
	return ledger
}
