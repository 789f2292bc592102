package models

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

// Category is the closed set of subscription categories. Adding one is a
// schema change, not runtime configuration.
type Category string

const (
	CategoryMusic     Category = "music"
	CategoryVideo     Category = "video"
	CategoryBooks     Category = "books"
	CategoryGames     Category = "games"
	CategoryEducation Category = "education"
	CategorySocial    Category = "social"
	CategoryOther     Category = "other"
)

// Categories lists every valid category in display order.
func Categories() []Category {
	return []Category{
		CategoryMusic,
		CategoryVideo,
		CategoryBooks,
		CategoryGames,
		CategoryEducation,
		CategorySocial,
		CategoryOther,
	}
}

// ParseCategory validates a raw string against the closed category set.
func ParseCategory(raw string) (Category, error) {
	for _, c := range Categories() {
		if string(c) == raw {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category %q", raw)
}

// BillingCycle is the closed set of recurrence units.
type BillingCycle string

const (
	CycleMonthly   BillingCycle = "monthly"
	CycleQuarterly BillingCycle = "quarterly"
	CycleYearly    BillingCycle = "yearly"
)

// ParseBillingCycle validates a raw string against the closed cycle set.
func ParseBillingCycle(raw string) (BillingCycle, error) {
	switch BillingCycle(raw) {
	case CycleMonthly, CycleQuarterly, CycleYearly:
		return BillingCycle(raw), nil
	}
	return "", fmt.Errorf("unknown billing cycle %q", raw)
}

const (
	NotifyDaysMin     = 1
	NotifyDaysMax     = 30
	NotifyDaysDefault = 3
)

// Subscription is a user-owned recurring-cost record. Amounts are stored in
// minor currency units. An entry in the price history ledger is opened on
// creation (when the amount is positive) and on every amount change.
type Subscription struct {
	ID                   uint           `gorm:"primaryKey" json:"id"`
	UserID               uint           `gorm:"not null;index" json:"user_id"`
	Name                 string         `gorm:"type:varchar(150);uniqueIndex;not null" json:"name" validate:"required,min=1,max=150"`
	CurrentAmount        int            `gorm:"not null;default:0" json:"current_amount" validate:"gte=0"`
	Category             Category       `gorm:"type:varchar(20);not null;index" json:"category"`
	BillingCycle         BillingCycle   `gorm:"type:varchar(16);not null;default:'monthly'" json:"billing_cycle"`
	ConnectedDate        time.Time      `gorm:"type:date;not null" json:"connected_date"`
	NextPaymentDate      *time.Time     `gorm:"type:date;default:null" json:"next_payment_date"`
	ArchivedDate         *time.Time     `gorm:"type:date;default:null" json:"archived_date"`
	NotifyDays           int            `gorm:"not null;default:3" json:"notify_days" validate:"min=1,max=30"`
	AutoRenewal          bool           `gorm:"default:false" json:"auto_renewal"`
	NotificationsEnabled bool           `gorm:"default:true" json:"notifications_enabled"`
	CreatedAt            time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt            time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	PriceHistory         []PriceHistory `gorm:"foreignKey:SubscriptionID;constraint:OnDelete:CASCADE" json:"price_history,omitempty"`
}

func (s *Subscription) Validate() error {
	v := validator.New()

	return v.Struct(s)
}

// IsArchived reports whether the subscription has been archived. Archived
// subscriptions are read-only and excluded from active listings.
func (s *Subscription) IsArchived() bool {
	return s.ArchivedDate != nil
}

// DaysRemaining returns the number of days until the next payment, or 0 when
// no next payment date is set.
func (s *Subscription) DaysRemaining(today time.Time) int {
	if s.NextPaymentDate == nil {
		return 0
	}
	return int(s.NextPaymentDate.Sub(today).Hours() / 24)
}

// BeforeSave keeps invalid enum values out of the database even when a caller
// skips request validation.
func (s *Subscription) BeforeSave(tx *gorm.DB) error {
	if _, err := ParseCategory(string(s.Category)); err != nil {
		return err
	}
	if _, err := ParseBillingCycle(string(s.BillingCycle)); err != nil {
		return err
	}
	return nil
}
