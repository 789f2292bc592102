package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCategory(t *testing.T) {
	for _, c := range Categories() {
		parsed, err := ParseCategory(string(c))
		require.NoError(t, err)
		assert.Equal(t, c, parsed)
	}

	_, err := ParseCategory("streaming")
	assert.Error(t, err)

	_, err = ParseCategory("")
	assert.Error(t, err)
}

func TestParseBillingCycle(t *testing.T) {
	for _, raw := range []string{"monthly", "quarterly", "yearly"} {
		parsed, err := ParseBillingCycle(raw)
		require.NoError(t, err)
		assert.Equal(t, BillingCycle(raw), parsed)
	}

	_, err := ParseBillingCycle("weekly")
	assert.Error(t, err)
}

func TestSubscriptionValidate(t *testing.T) {
	sub := Subscription{
		Name:          "Netflix",
		CurrentAmount: 1299,
		Category:      CategoryVideo,
		BillingCycle:  CycleMonthly,
		NotifyDays:    NotifyDaysDefault,
	}
	assert.NoError(t, sub.Validate())

	sub.NotifyDays = 0
	assert.Error(t, sub.Validate())

	sub.NotifyDays = 31
	assert.Error(t, sub.Validate())

	sub.NotifyDays = NotifyDaysDefault
	sub.Name = ""
	assert.Error(t, sub.Validate())

	sub.Name = "Netflix"
	sub.CurrentAmount = -1
	assert.Error(t, sub.Validate())
}

func TestSubscriptionIsArchived(t *testing.T) {
	sub := Subscription{}
	assert.False(t, sub.IsArchived())

	archived := time.Date(2026, time.May, 1, 0, 0, 0, 0, time.UTC)
	sub.ArchivedDate = &archived
	assert.True(t, sub.IsArchived())
}

func TestSubscriptionDaysRemaining(t *testing.T) {
	today := time.Date(2026, time.May, 1, 0, 0, 0, 0, time.UTC)

	sub := Subscription{}
	assert.Equal(t, 0, sub.DaysRemaining(today))

	next := time.Date(2026, time.May, 8, 0, 0, 0, 0, time.UTC)
	sub.NextPaymentDate = &next
	assert.Equal(t, 7, sub.DaysRemaining(today))

	sub.NextPaymentDate = &today
	assert.Equal(t, 0, sub.DaysRemaining(today))
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("secret123")
	require.NoError(t, err)
	assert.NotEqual(t, "secret123", hash)

	assert.True(t, CheckPasswordHash("secret123", hash))
	assert.False(t, CheckPasswordHash("wrong", hash))
}
