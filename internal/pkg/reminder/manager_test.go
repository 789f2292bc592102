package reminder

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/subtrackhq/subtrack/app/models"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestReminderKey(t *testing.T) {
	key := reminderKey(42, date(2026, time.March, 1))
	assert.Equal(t, "reminder:42:2026-03-01", key)
}

func TestReminderKeyChangesWithPaymentDate(t *testing.T) {
	first := reminderKey(7, date(2026, time.January, 15))
	second := reminderKey(7, date(2026, time.February, 15))
	assert.NotEqual(t, first, second)
}

func TestReminderGuardTTL(t *testing.T) {
	today := date(2026, time.March, 1)

	// Payment five days out keeps the guard alive past the payment day
	ttl := reminderGuardTTL(today, date(2026, time.March, 6))
	assert.Equal(t, 5*24*time.Hour+48*time.Hour, ttl)

	// Payment today still gets the minimum guard window
	ttl = reminderGuardTTL(today, today)
	assert.Equal(t, 48*time.Hour, ttl)
}

func TestReminderMessage(t *testing.T) {
	today := date(2026, time.March, 1)

	sub := &models.Subscription{Name: "Netflix"}

	next := date(2026, time.March, 1)
	sub.NextPaymentDate = &next
	assert.Equal(t, "Netflix renews today", reminderMessage(sub, today))

	next = date(2026, time.March, 2)
	sub.NextPaymentDate = &next
	assert.Equal(t, "Netflix renews tomorrow", reminderMessage(sub, today))

	next = date(2026, time.March, 4)
	sub.NextPaymentDate = &next
	assert.Equal(t, "Netflix renews in 3 days", reminderMessage(sub, today))
}
