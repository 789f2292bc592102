package models

import "time"

// PriceHistory is one row of a subscription's append-only price ledger:
// "amount X was in effect starting on StartDate until EndDate", where a nil
// EndDate marks the currently open entry. For any subscription at most one
// entry is open at a time; superseded entries are closed, not deleted.
type PriceHistory struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	SubscriptionID uint       `gorm:"not null;index" json:"subscription_id"`
	Amount         int        `gorm:"not null" json:"amount"`
	StartDate      time.Time  `gorm:"type:date;not null" json:"start_date"`
	EndDate        *time.Time `gorm:"type:date;default:null" json:"end_date"`
	CreatedAt      time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

// IsOpen reports whether this entry carries the currently in-effect amount.
func (p *PriceHistory) IsOpen() bool {
	return p.EndDate == nil
}

func (PriceHistory) TableName() string { return "price_history" }
